package jobs

import "errors"

var (
	// ErrDuplicateJob is returned when a catalog already holds a job with the same name.
	ErrDuplicateJob = errors.New("jobs: duplicate job")

	// ErrIncompletePolicy is returned when a state policy does not decide every host state.
	ErrIncompletePolicy = errors.New("jobs: incomplete state policy")

	// ErrEmptyJobName is returned when a job is built or registered without a name.
	ErrEmptyJobName = errors.New("jobs: empty job name")
)

// Job is a unit of work that acts on a resource of kind R.
//
// CanRun reports whether the job is eligible to run against resource in its
// current state. It must be pure and total: no side effects, no errors, and
// false for a nil resource.
type Job[R any] interface {
	Name() string
	CanRun(resource *R) bool
}

// Func adapts a name and a predicate into a Job.
type Func[R any] struct {
	JobName string
	Pred    func(resource *R) bool
}

// Name returns the job name.
func (f Func[R]) Name() string { return f.JobName }

// CanRun evaluates the predicate. A nil resource or predicate yields false.
func (f Func[R]) CanRun(resource *R) bool {
	if resource == nil || f.Pred == nil {
		return false
	}
	return f.Pred(resource)
}

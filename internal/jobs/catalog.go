package jobs

import (
	"fmt"
	"sort"
	"sync"

	"evalgo.org/hostjobs/models"
)

// Catalog holds the jobs available for one resource kind, keyed by name.
// It is safe for concurrent use.
type Catalog[R any] struct {
	mu   sync.RWMutex
	jobs map[string]Job[R]
}

// NewCatalog creates an empty catalog.
func NewCatalog[R any]() *Catalog[R] {
	return &Catalog[R]{jobs: make(map[string]Job[R])}
}

// Register adds a job. Names must be unique within the catalog.
func (c *Catalog[R]) Register(job Job[R]) error {
	name := job.Name()
	if name == "" {
		return ErrEmptyJobName
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.jobs[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateJob, name)
	}
	c.jobs[name] = job
	return nil
}

// Get returns the job registered under name.
func (c *Catalog[R]) Get(name string) (Job[R], bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	j, ok := c.jobs[name]
	return j, ok
}

// Names returns all registered job names, sorted.
func (c *Catalog[R]) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.jobs))
	for name := range c.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Available returns the sorted names of every job that can run against resource.
func (c *Catalog[R]) Available(resource *R) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.jobs))
	for name, j := range c.jobs {
		if j.CanRun(resource) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// DefaultHostCatalog returns a catalog holding the built-in host jobs.
func DefaultHostCatalog() *Catalog[models.Host] {
	c := NewCatalog[models.Host]()
	_ = c.Register(RebootHostJob())
	return c
}

// DefaultTargetCatalog returns a catalog holding the built-in target jobs.
func DefaultTargetCatalog() *Catalog[models.Target] {
	c := NewCatalog[models.Target]()
	_ = c.Register(FailoverTargetJob{})
	_ = c.Register(FailbackTargetJob{})
	return c
}

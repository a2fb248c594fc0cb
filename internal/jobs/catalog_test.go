package jobs

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evalgo.org/hostjobs/models"
)

func TestCatalog_RegisterAndGet(t *testing.T) {
	c := NewCatalog[models.Host]()
	require.NoError(t, c.Register(RebootHostJob()))

	j, ok := c.Get(RebootHostName)
	require.True(t, ok)
	assert.Equal(t, RebootHostName, j.Name())

	_, ok = c.Get("nonexistent")
	assert.False(t, ok)
}

func TestCatalog_Duplicate(t *testing.T) {
	c := DefaultHostCatalog()
	err := c.Register(RebootHostJob())
	assert.ErrorIs(t, err, ErrDuplicateJob)

	err = c.Register(Func[models.Host]{})
	assert.ErrorIs(t, err, ErrEmptyJobName)
}

func TestCatalog_Available(t *testing.T) {
	c := DefaultHostCatalog()
	require.NoError(t, c.Register(Func[models.Host]{
		JobName: "decommission",
		Pred:    func(h *models.Host) bool { return h.State != models.HostStateRemoved },
	}))

	assert.Equal(t, []string{"decommission", RebootHostName}, c.Names())
	assert.Equal(t, []string{"decommission", RebootHostName}, c.Available(hostIn(models.HostStateWorking)))
	assert.Equal(t, []string{"decommission"}, c.Available(hostIn(models.HostStateUndeployed)))
	assert.Empty(t, c.Available(hostIn(models.HostStateRemoved)))
	assert.Empty(t, c.Available(nil))
}

func TestDefaultTargetCatalog(t *testing.T) {
	c := DefaultTargetCatalog()
	assert.Equal(t, []string{FailbackTargetName, FailoverTargetName}, c.Names())

	target := &models.Target{
		State:         models.TargetStateMounted,
		PrimaryHost:   "a",
		FailoverHosts: []string{"b"},
		ActiveHost:    "a",
	}
	assert.Equal(t, []string{FailoverTargetName}, c.Available(target))
}

func TestCatalog_Concurrent(t *testing.T) {
	c := NewCatalog[models.Host]()
	host := hostIn(models.HostStateManaged)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = c.Register(Func[models.Host]{
				JobName: fmt.Sprintf("job-%02d", i),
				Pred:    func(*models.Host) bool { return true },
			})
		}(i)
		go func() {
			defer wg.Done()
			_ = c.Available(host)
		}()
	}
	wg.Wait()

	assert.Len(t, c.Names(), 20)
	assert.Len(t, c.Available(host), 20)
}

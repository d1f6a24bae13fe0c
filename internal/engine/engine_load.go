package engine

import (
	"context"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"

	"goRowSet/internal/logger"
)

// LoadJob names one query to load.
type LoadJob struct {
	Name       string
	Query      string
	KeyColumns []string
}

// LoadAll runs the given loads concurrently on a pool bounded by the
// configured worker count. It waits for every load and returns the first
// error; row sets that loaded are kept either way.
func (e *Engine) LoadAll(ctx context.Context, jobs ...LoadJob) error {
	if _, err := e.database(); err != nil {
		return err
	}

	size := e.cfg.Database.Workers
	if size <= 0 {
		size = 1
	}
	pool, err := ants.NewPool(size, ants.WithPanicHandler(func(v any) {
		logger.Error("load worker panic", "panic", v)
	}))
	if err != nil {
		return errors.Wrap(err, "worker pool")
	}
	defer pool.Release()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	for _, job := range jobs {
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			if _, err := e.Load(ctx, job.Name, job.Query, job.KeyColumns...); err != nil {
				fail(err)
			}
		})
		if err != nil {
			wg.Done()
			fail(errors.Wrapf(err, "submit %s", job.Name))
		}
	}
	wg.Wait()
	return firstErr
}

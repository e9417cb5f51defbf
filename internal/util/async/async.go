package async

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Task represents an asynchronous operation with a name and function.
type Task struct {
	Name string
	Func func(context.Context) error
}

// RunParallel executes tasks concurrently, at most limit at a time (limit
// <= 0 means unbounded), and waits for all of them. Every failure is
// returned, joined in task order and prefixed with the task name.
//
//	err := async.RunParallel(ctx, []async.Task{
//	    {Name: "chain", Func: o.reconcileChain},
//	    {Name: "firewall", Func: o.reconcileFirewall},
//	}, 0)
func RunParallel(ctx context.Context, tasks []Task, limit int) error {
	if len(tasks) == 0 {
		return nil
	}

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}

	var mu sync.Mutex
	errs := make([]error, len(tasks))
	for i, task := range tasks {
		g.Go(func() error {
			if err := task.Func(ctx); err != nil {
				mu.Lock()
				errs[i] = fmt.Errorf("%s: %w", task.Name, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(errs...)
}

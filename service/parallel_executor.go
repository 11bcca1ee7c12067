package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ludo-technologies/pqhint/domain"
)

// ParallelExecutorImpl implements the ParallelExecutor interface. A failing
// task does not cancel the others; all failures are joined.
type ParallelExecutorImpl struct {
	maxConcurrency int
	timeout        time.Duration
}

// NewParallelExecutor creates a new parallel executor
func NewParallelExecutor() domain.ParallelExecutor {
	return &ParallelExecutorImpl{
		maxConcurrency: 0, // No limit by default
		timeout:        domain.DefaultTimeoutSeconds * time.Second,
	}
}

// Execute runs the enabled tasks and waits for all of them.
func (pe *ParallelExecutorImpl) Execute(ctx context.Context, tasks []domain.ExecutableTask) error {
	if len(tasks) == 0 {
		return nil
	}

	if pe.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, pe.timeout)
		defer cancel()
	}

	var g errgroup.Group
	if pe.maxConcurrency > 0 {
		g.SetLimit(pe.maxConcurrency)
	}

	var mu sync.Mutex
	var failures []error
	record := func(err error) {
		mu.Lock()
		failures = append(failures, err)
		mu.Unlock()
	}

	for _, task := range tasks {
		if !task.IsEnabled() {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				record(fmt.Errorf("task %s cancelled: %w", task.Name(), err))
				return nil
			}
			if _, err := task.Execute(ctx); err != nil {
				record(fmt.Errorf("task %s failed: %w", task.Name(), err))
			}
			return nil
		})
	}
	_ = g.Wait()

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("parallel execution timed out after %v: %w", pe.timeout, ctx.Err())
	}
	if len(failures) > 0 {
		return fmt.Errorf("parallel execution failed with %d errors: %w", len(failures), errors.Join(failures...))
	}
	return nil
}

// SetMaxConcurrency sets the maximum number of concurrent tasks
func (pe *ParallelExecutorImpl) SetMaxConcurrency(max int) {
	pe.maxConcurrency = max
}

// SetTimeout sets the timeout for all tasks
func (pe *ParallelExecutorImpl) SetTimeout(timeout time.Duration) {
	pe.timeout = timeout
}

// SimpleTask is a basic implementation of ExecutableTask
type SimpleTask struct {
	name    string
	enabled bool
	execute func(context.Context) (interface{}, error)
}

// NewSimpleTask creates a new simple task
func NewSimpleTask(name string, enabled bool, execute func(context.Context) (interface{}, error)) domain.ExecutableTask {
	return &SimpleTask{
		name:    name,
		enabled: enabled,
		execute: execute,
	}
}

// Name returns the name of the task
func (t *SimpleTask) Name() string {
	return t.name
}

// Execute runs the task and returns the result
func (t *SimpleTask) Execute(ctx context.Context) (interface{}, error) {
	if t.execute == nil {
		return nil, fmt.Errorf("task %s has no execute function", t.name)
	}
	return t.execute(ctx)
}

// IsEnabled returns whether the task should be executed
func (t *SimpleTask) IsEnabled() bool {
	return t.enabled
}

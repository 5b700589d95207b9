// Package worker runs file checks on a bounded number of goroutines.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
)

// Task is one unit of work.
type Task interface {
	Execute(ctx context.Context) error
	ID() string
}

// Result is the outcome of an executed task.
type Result struct {
	TaskID string
	Error  error
}

// Config bounds a run.
type Config struct {
	Workers   int // 0 means GOMAXPROCS
	QueueSize int // 0 means twice the workers
}

func (c Config) normalize(tasks int) Config {
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	if tasks > 0 && c.Workers > tasks {
		c.Workers = tasks
	}
	if c.QueueSize <= 0 {
		c.QueueSize = c.Workers * 2
	}
	return c
}

// Stats summarizes a run.
type Stats struct {
	Workers   int
	Processed int64
	Errors    int64
	Skipped   int
}

func (s Stats) String() string {
	return fmt.Sprintf("workers=%d processed=%d errors=%d skipped=%d",
		s.Workers, s.Processed, s.Errors, s.Skipped)
}

// Run executes tasks on cfg.Workers goroutines and returns the results of
// the tasks that ran, in input order. Once ctx is done no new task starts;
// the skipped ones are counted in Stats.
func Run(ctx context.Context, cfg Config, tasks []Task) ([]Result, Stats) {
	cfg = cfg.normalize(len(tasks))
	stats := Stats{Workers: cfg.Workers}
	if len(tasks) == 0 {
		return nil, stats
	}

	var (
		processed, failed atomic.Int64
		ran               = make([]bool, len(tasks))
		results           = make([]Result, len(tasks))
		queue             = make(chan int, cfg.QueueSize)
		wg                sync.WaitGroup
	)

	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range queue {
				if ctx.Err() != nil {
					continue
				}
				err := execute(ctx, tasks[i])
				results[i] = Result{TaskID: tasks[i].ID(), Error: err}
				ran[i] = true
				processed.Add(1)
				if err != nil {
					failed.Add(1)
				}
			}
		}()
	}

feed:
	for i := range tasks {
		select {
		case queue <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(queue)
	wg.Wait()

	out := make([]Result, 0, len(tasks))
	for i, r := range results {
		if ran[i] {
			out = append(out, r)
		}
	}

	stats.Processed = processed.Load()
	stats.Errors = failed.Load()
	stats.Skipped = len(tasks) - len(out)
	return out, stats
}

// execute runs task, turning a panic into an error.
func execute(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task %s panicked: %v", task.ID(), r)
		}
	}()
	return task.Execute(ctx)
}

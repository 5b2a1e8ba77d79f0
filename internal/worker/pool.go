// Package worker runs slow jobs (password hashing, file copies) off the caller's
// goroutine with bounded parallelism. Admission honours the context; a job that
// has started always runs to completion.
package worker

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"
)

const DefaultSize = 4

type Pool struct {
	sem *semaphore.Weighted
}

func New(size int) *Pool {
	if size <= 0 {
		size = DefaultSize
	}
	return &Pool{sem: semaphore.NewWeighted(int64(size))}
}

// Do waits for a free slot, runs job on a worker goroutine and waits for it.
// Once the job started, cancelling ctx does not interrupt or abandon it.
func (p *Pool) Do(ctx context.Context, job func() error) error {
	return <-p.Go(ctx, job)
}

// Go is the non-blocking form of Do. The returned channel receives exactly one value.
func (p *Pool) Go(ctx context.Context, job func() error) <-chan error {
	done := make(chan error, 1)
	if err := p.sem.Acquire(ctx, 1); err != nil {
		done <- err
		return done
	}
	go func() {
		defer p.sem.Release(1)
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("worker job panicked: %v", r)
			}
		}()
		done <- job()
	}()
	return done
}

// Call runs fn through p and returns its result.
func Call[T any](ctx context.Context, p *Pool, fn func() (T, error)) (T, error) {
	var res T
	err := p.Do(ctx, func() error {
		var err error
		res, err = fn()
		return err
	})
	return res, err
}

// Package worker provides a bounded pool for fanning out recovery work.
package worker

import (
	"sync"
)

type task func()

// Pool runs submitted tasks on a fixed number of goroutines
type Pool struct {
	wg   sync.WaitGroup
	jobs chan task
}

// NewPool starts a pool with n workers
func NewPool(n int) *Pool {
	p := &Pool{jobs: make(chan task, 1024)}
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				job()
			}
		}()
	}
	return p
}

// Submit enqueues a task. Blocks when the queue is full.
func (p *Pool) Submit(f task) { p.jobs <- f }

// Stop drains the queue and waits for all workers to exit
func (p *Pool) Stop() { close(p.jobs); p.wg.Wait() }

package jobs

import (
	"sync"

	"go.uber.org/zap"

	"github.com/jime0083/BatsuGaku/logger"
)

// Pool runs submitted tasks with bounded concurrency. The scheduled jobs
// use it to fan out per-user work without letting one slow user serialize
// the whole batch.
type Pool struct {
	workers int
	tasks   chan func() error
	wg      sync.WaitGroup

	mu        sync.Mutex
	processed uint64
	failed    uint64
}

// NewPool creates a pool with the given worker count.
func NewPool(workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{
		workers: workers,
		tasks:   make(chan func() error, workers*2),
	}
}

// Start launches the workers.
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Submit queues one task. Blocks when all workers are busy and the buffer
// is full, which bounds memory for large user bases.
func (p *Pool) Submit(task func() error) {
	p.tasks <- task
}

// Wait closes the queue, waits for in-flight tasks, and reports counts.
func (p *Pool) Wait() (processed, failed uint64) {
	close(p.tasks)
	p.wg.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.processed, p.failed
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for task := range p.tasks {
		err := task()

		p.mu.Lock()
		if err != nil {
			p.failed++
		} else {
			p.processed++
		}
		p.mu.Unlock()

		if err != nil {
			logger.Get().Error("task failed", zap.Int("worker_id", id), zap.Error(err))
		}
	}
}

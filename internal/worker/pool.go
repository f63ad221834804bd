package worker

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// Job is one unit of work.
type Job interface {
	Execute(ctx context.Context) Result
}

// Result is what a job produces.
type Result interface {
	GetError() error
}

// Recoverer is implemented by jobs that turn a panic into a result. A job
// that panics without it yields a PanicResult.
type Recoverer interface {
	Recover(v any) Result
}

// PanicResult reports a job that panicked.
type PanicResult struct {
	Value any
}

func (r *PanicResult) GetError() error {
	return fmt.Errorf("job panicked: %v", r.Value)
}

// Pool runs jobs on a fixed number of goroutines.
type Pool struct {
	workers int
	queue   chan Job
	results chan Result
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc

	mu     sync.RWMutex
	closed bool

	closeOnce sync.Once
	inFlight  atomic.Int64
	completed atomic.Int64
}

// NewPool creates a pool whose jobs run under a child of ctx. Fewer than
// one worker means one.
func NewPool(ctx context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(ctx)
	return &Pool{
		workers: workers,
		queue:   make(chan Job, workers*2),
		results: make(chan Result, workers*2),
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (p *Pool) Start() {
	p.wg.Add(p.workers)
	for range p.workers {
		go p.loop()
	}
}

func (p *Pool) loop() {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.queue:
			if !ok {
				return
			}
			res := p.run(job)
			select {
			case p.results <- res:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

func (p *Pool) run(job Job) (res Result) {
	p.inFlight.Add(1)
	defer func() {
		if v := recover(); v != nil {
			if r, ok := job.(Recoverer); ok {
				res = r.Recover(v)
			} else {
				res = &PanicResult{Value: v}
			}
		}
		p.inFlight.Add(-1)
		p.completed.Add(1)
	}()
	return job.Execute(p.ctx)
}

// Submit queues a job, blocking while the queue is full. It returns false
// once the pool is closed or its context is done.
func (p *Pool) Submit(job Job) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed || p.ctx.Err() != nil {
		return false
	}
	select {
	case <-p.ctx.Done():
		return false
	case p.queue <- job:
		return true
	}
}

// Results streams job results. It is closed once every worker has exited.
func (p *Pool) Results() <-chan Result {
	return p.results
}

// Close stops accepting jobs; the queue drains in the background and
// Results is closed after the last job. Close is idempotent.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	go func() {
		p.wg.Wait()
		p.cancel()
		p.closeResults()
	}()
}

// Wait closes the pool and collects every remaining result.
func (p *Pool) Wait() []Result {
	p.Close()
	var results []Result
	for r := range p.results {
		results = append(results, r)
	}
	return results
}

// Shutdown cancels running jobs, refuses further submissions and waits for
// the workers to exit. Queued jobs that have not started are dropped.
func (p *Pool) Shutdown() {
	p.cancel()
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.wg.Wait()
	p.closeResults()
}

// InFlight reports jobs currently executing.
func (p *Pool) InFlight() int64 { return p.inFlight.Load() }

// Completed reports jobs that have finished, including panicked ones.
func (p *Pool) Completed() int64 { return p.completed.Load() }

func (p *Pool) closeResults() {
	p.closeOnce.Do(func() { close(p.results) })
}

package publisher

import "sync"

// runner is the serial execution facility for database jobs. Jobs run one at
// a time on a single goroutine, so completion callbacks fire exactly once, in
// submission order, on the runner goroutine.
type runner struct {
	mu     sync.Mutex
	closed bool
	jobs   chan func()
	done   chan struct{}
}

func newRunner() *runner {
	r := &runner{
		jobs: make(chan func(), 16),
		done: make(chan struct{}),
	}
	go r.loop()
	return r
}

func (r *runner) loop() {
	defer close(r.done)
	for job := range r.jobs {
		job()
	}
}

// submit enqueues a job. Returns false if the runner has been closed, in
// which case the job never runs.
func (r *runner) submit(job func()) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return false
	}
	r.jobs <- job
	return true
}

// close stops intake and waits for in-flight jobs to finish.
func (r *runner) close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.jobs)
	r.mu.Unlock()
	<-r.done
}

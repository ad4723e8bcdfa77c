package workerpool

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	gferrors "github.com/vnykmshr/asyncflow/pkg/common/errors"
	"github.com/vnykmshr/asyncflow/pkg/promise"
)

// Submit queues task and returns a token that is fulfilled when the task
// succeeds and rejected with its error (or a *PanicError) when it fails.
// ctx bounds the wait for queue space and is passed to the task.
//
// A token is rejected with ErrClosed when the pool is shut down, and with
// ctx.Err() when ctx ends before the task is queued.
func (p *Pool) Submit(ctx context.Context, task Task) *promise.Promise[promise.Void] {
	if task == nil {
		return promise.Rejected[promise.Void](gferrors.NewValidationError("workerpool", "task", nil, "must not be nil"))
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var j job
	token := promise.New(func(resolve func(promise.Void), reject func(error)) {
		j = job{ctx: ctx, task: task, resolve: resolve, reject: reject}
	})

	// Holding the read lock keeps Shutdown from closing the queue under us.
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.isShutdown {
		j.reject(fmt.Errorf("cannot submit task to pool %q: %w", p.config.Name, gferrors.ErrClosed))
		return token
	}

	select {
	case <-ctx.Done():
		j.reject(fmt.Errorf("cannot submit task: %w", ctx.Err()))
		return token
	default:
	}

	select {
	case p.tasks <- j:
		p.submitted.Add(1)
		p.observeQueue()
	case <-ctx.Done():
		j.reject(fmt.Errorf("cannot submit task: %w", ctx.Err()))
	}
	return token
}

// Shutdown stops accepting tasks. Already queued tasks still run. The
// returned channel is closed once every worker has exited.
func (p *Pool) Shutdown() <-chan struct{} {
	p.shutdownOnce.Do(func() {
		p.mu.Lock()
		p.isShutdown = true
		p.mu.Unlock()

		close(p.shutdownCh)

		go func() {
			p.workerWg.Wait()
			p.log.Debug("worker pool stopped", zap.Int64("completed", p.completed.Load()))
			close(p.done)
		}()
	})
	return p.done
}

// ShutdownContext shuts the pool down and waits for the workers, or for ctx.
func (p *Pool) ShutdownContext(ctx context.Context) error {
	select {
	case <-p.Shutdown():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("worker pool %q shutdown: %w", p.config.Name, ctx.Err())
	}
}

// worker is the main loop for one worker.
func (p *Pool) worker(id int) {
	defer p.workerWg.Done()

	for {
		select {
		case j := <-p.tasks:
			p.execute(id, j)
		case <-p.shutdownCh:
			// Submit cannot enqueue any more: drain what is left.
			for {
				select {
				case j := <-p.tasks:
					p.execute(id, j)
				default:
					return
				}
			}
		}
	}
}

// execute runs a single job and settles its token.
func (p *Pool) execute(workerID int, j job) {
	p.observeQueue()
	p.active.Add(1)
	if r := p.config.Registry; r != nil {
		r.WorkerPoolActive.WithLabelValues(p.config.Name).Inc()
	}

	start := time.Now()
	err := p.run(j)
	result := Result{Error: err, Duration: time.Since(start), WorkerID: workerID}

	p.active.Add(-1)
	p.completed.Add(1)
	if r := p.config.Registry; r != nil {
		status := "success"
		if err != nil {
			status = "failure"
		}
		r.WorkerPoolActive.WithLabelValues(p.config.Name).Dec()
		r.WorkerPoolTasks.WithLabelValues(p.config.Name, status).Inc()
		r.WorkerPoolTaskDuration.WithLabelValues(p.config.Name).Observe(result.Duration.Seconds())
	}

	if p.config.OnTaskComplete != nil {
		p.config.OnTaskComplete(result)
	}

	if err != nil {
		p.log.Debug("task failed", zap.Int("worker", workerID), zap.Error(err))
		j.reject(err)
		return
	}
	j.resolve(promise.Void{})
}

func (p *Pool) run(j job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = gferrors.NewPanicError(r)
		}
	}()

	ctx := j.ctx
	if p.config.TaskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.TaskTimeout)
		defer cancel()
	}
	return j.task.Execute(ctx)
}

func (p *Pool) observeQueue() {
	if r := p.config.Registry; r != nil {
		r.WorkerPoolQueued.WithLabelValues(p.config.Name).Set(float64(len(p.tasks)))
	}
}

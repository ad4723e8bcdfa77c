package workerpool

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/vnykmshr/asyncflow/pkg/common/validation"
	"github.com/vnykmshr/asyncflow/pkg/metrics"
	"github.com/vnykmshr/asyncflow/pkg/promise"
)

// Task represents a unit of work that can be executed by a worker.
type Task interface {
	// Execute runs the task with the given context.
	// It should respect context cancellation and return any error encountered.
	Execute(ctx context.Context) error
}

// TaskFunc is a function type that implements the Task interface.
type TaskFunc func(ctx context.Context) error

// Execute implements the Task interface for TaskFunc.
func (f TaskFunc) Execute(ctx context.Context) error {
	return f(ctx)
}

// Result describes one finished task.
type Result struct {
	// Error is the task's failure, including a recovered panic.
	Error error

	// Duration is how long the task took to execute.
	Duration time.Duration

	// WorkerID identifies which worker executed the task.
	WorkerID int
}

// Config holds configuration options for creating a worker pool.
type Config struct {
	// Name labels the pool in logs and metrics.
	Name string

	// WorkerCount is the number of workers in the pool.
	// Must be greater than 0.
	WorkerCount int

	// QueueSize is the number of tasks that may wait for a worker.
	// Zero hands tasks directly to an idle worker.
	QueueSize int

	// TaskTimeout bounds each task's execution. Zero means no timeout.
	TaskTimeout time.Duration

	// OnTaskComplete is called after every task, before its token settles.
	OnTaskComplete func(result Result)

	// Logger receives pool diagnostics (default: no-op).
	Logger *zap.Logger

	// Registry receives pool metrics. Nil disables metrics.
	Registry *metrics.Registry
}

// DefaultConfig returns a pool sized to the number of CPUs.
func DefaultConfig() Config {
	return Config{
		Name:        "default",
		WorkerCount: runtime.NumCPU(),
		QueueSize:   runtime.NumCPU() * 4,
		Logger:      zap.NewNop(),
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	return validation.First(
		validation.Positive("workerpool", "WorkerCount", c.WorkerCount),
		validation.NonNegative("workerpool", "QueueSize", c.QueueSize),
		validation.NonNegative("workerpool", "TaskTimeout", c.TaskTimeout),
	)
}

// job is a queued task together with the settle functions of its token.
type job struct {
	ctx     context.Context
	task    Task
	resolve func(promise.Void)
	reject  func(error)
}

// Pool runs tasks on a fixed set of workers. Every submission returns a
// pending token that settles with the task's outcome, so a Pool can back
// asynchronous stream handlers directly (see Handler).
type Pool struct {
	config Config
	log    *zap.Logger

	tasks        chan job
	shutdownCh   chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	mu         sync.RWMutex
	isShutdown bool

	workerWg sync.WaitGroup

	active    atomic.Int64
	submitted atomic.Int64
	completed atomic.Int64
}

// New creates a pool with the specified number of workers and queue size.
func New(workerCount, queueSize int) (*Pool, error) {
	config := DefaultConfig()
	config.WorkerCount = workerCount
	config.QueueSize = queueSize
	return NewWithConfig(config)
}

// NewWithConfig creates a pool and starts its workers.
func NewWithConfig(config Config) (*Pool, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.Name == "" {
		config.Name = DefaultConfig().Name
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}

	p := &Pool{
		config:     config,
		log:        config.Logger.With(zap.String("component", "workerpool"), zap.String("pool", config.Name)),
		tasks:      make(chan job, config.QueueSize),
		shutdownCh: make(chan struct{}),
		done:       make(chan struct{}),
	}

	if r := config.Registry; r != nil {
		r.WorkerPoolWorkers.WithLabelValues(config.Name).Set(float64(config.WorkerCount))
	}

	for i := 0; i < config.WorkerCount; i++ {
		p.workerWg.Add(1)
		go p.worker(i)
	}
	return p, nil
}

// Size returns the number of workers in the pool.
func (p *Pool) Size() int {
	return p.config.WorkerCount
}

// QueueSize returns the current number of queued tasks waiting for execution.
func (p *Pool) QueueSize() int {
	return len(p.tasks)
}

// ActiveWorkers returns the number of workers currently executing tasks.
func (p *Pool) ActiveWorkers() int {
	return int(p.active.Load())
}

// TotalSubmitted returns the total number of tasks accepted by the pool.
func (p *Pool) TotalSubmitted() int64 {
	return p.submitted.Load()
}

// TotalCompleted returns the total number of tasks the pool has finished.
func (p *Pool) TotalCompleted() int64 {
	return p.completed.Load()
}

package writer

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	gferrors "github.com/vnykmshr/asyncflow/pkg/common/errors"
	"github.com/vnykmshr/asyncflow/pkg/common/validation"
	"github.com/vnykmshr/asyncflow/pkg/metrics"
	"github.com/vnykmshr/asyncflow/pkg/promise"
	"github.com/vnykmshr/asyncflow/pkg/streaming/stream"
)

// Stats holds statistics about the writer.
type Stats struct {
	// BytesWritten is the total number of bytes flushed successfully.
	BytesWritten int64

	// WriteCount is the total number of accepted Write calls.
	WriteCount int64

	// FlushCount is the total number of flushes that wrote data.
	FlushCount int64

	// ErrorCount is the total number of flushes that failed after retries.
	ErrorCount int64

	// LastFlush is when data was last flushed, successfully or not.
	LastFlush time.Time
}

// Config holds configuration options for a Writer.
type Config struct {
	// Name labels the writer in logs and metrics.
	Name string

	// BufferSize is the number of buffered bytes that triggers a flush.
	// Default: 64KB
	BufferSize int

	// FlushInterval is how often to flush the buffer automatically.
	// Zero disables timed flushing.
	FlushInterval time.Duration

	// MaxRetries is the number of times a failed write is retried.
	MaxRetries int

	// RetryDelay is the delay between retries.
	RetryDelay time.Duration

	// Logger receives writer diagnostics (default: no-op).
	Logger *zap.Logger

	// Registry receives writer metrics. Nil disables metrics.
	Registry *metrics.Registry
}

// DefaultConfig returns a default configuration.
func DefaultConfig() Config {
	return Config{
		Name:          "default",
		BufferSize:    64 * 1024, // 64KB
		FlushInterval: time.Second,
		MaxRetries:    3,
		RetryDelay:    100 * time.Millisecond,
		Logger:        zap.NewNop(),
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	return validation.First(
		validation.Positive("writer", "BufferSize", c.BufferSize),
		validation.NonNegative("writer", "FlushInterval", c.FlushInterval),
		validation.NonNegative("writer", "MaxRetries", c.MaxRetries),
		validation.NonNegative("writer", "RetryDelay", c.RetryDelay),
	)
}

// Writer buffers writes to an io.Writer and flushes them from a background
// goroutine. Every Write returns a pending token that settles once its bytes
// have been flushed, which makes a Writer a natural asynchronous stream sink.
type Writer struct {
	out    io.Writer
	config Config
	log    *zap.Logger

	mu      sync.Mutex
	buf     []byte
	waiters []func(error)
	closed  bool

	// flushMu serializes access to out.
	flushMu sync.Mutex

	kick      chan struct{}
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error

	bytesWritten atomic.Int64
	writeCount   atomic.Int64
	flushCount   atomic.Int64
	errorCount   atomic.Int64
	lastFlush    atomic.Int64
}

// New creates a Writer with the given configuration and starts its
// background goroutine. Zero fields of config are taken from DefaultConfig,
// except FlushInterval.
func New(w io.Writer, config Config) (*Writer, error) {
	d := DefaultConfig()
	if config.Name == "" {
		config.Name = d.Name
	}
	if config.BufferSize == 0 {
		config.BufferSize = d.BufferSize
	}
	if config.Logger == nil {
		config.Logger = d.Logger
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if w == nil {
		return nil, gferrors.NewValidationError("writer", "io.Writer", nil, "must not be nil")
	}

	aw := &Writer{
		out:    w,
		config: config,
		log:    config.Logger.With(zap.String("component", "writer"), zap.String("writer", config.Name)),
		buf:    make([]byte, 0, config.BufferSize),
		kick:   make(chan struct{}, 1),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go aw.loop()
	return aw, nil
}

// Write buffers a copy of data. The returned token is fulfilled once the
// data has reached the underlying writer and rejected if that fails after
// all retries. Writing to a closed Writer rejects with errors.ErrClosed.
func (w *Writer) Write(data []byte) *promise.Promise[promise.Void] {
	var settle func(error)
	token := promise.New(func(resolve func(promise.Void), reject func(error)) {
		settle = func(err error) {
			if err != nil {
				reject(err)
				return
			}
			resolve(promise.Void{})
		}
	})

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		settle(fmt.Errorf("writer %q: %w", w.config.Name, gferrors.ErrClosed))
		return token
	}
	if len(data) == 0 {
		w.mu.Unlock()
		settle(nil)
		return token
	}
	w.buf = append(w.buf, data...)
	w.waiters = append(w.waiters, settle)
	full := len(w.buf) >= w.config.BufferSize
	w.mu.Unlock()

	w.writeCount.Add(1)
	if full {
		select {
		case w.kick <- struct{}{}:
		default:
		}
	}
	return token
}

// WriteString is Write for a string.
func (w *Writer) WriteString(s string) *promise.Promise[promise.Void] {
	return w.Write([]byte(s))
}

// Flush writes everything buffered so far and returns the outcome. ctx
// bounds the wait, not the write itself.
func (w *Writer) Flush(ctx context.Context) error {
	if w.IsClosed() {
		return fmt.Errorf("writer %q: %w", w.config.Name, gferrors.ErrClosed)
	}

	done := make(chan error, 1)
	go func() { done <- w.flush() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting writes, flushes what is buffered and waits for the
// background goroutine. It returns the final flush's error. Later calls
// return the same result.
func (w *Writer) Close() error {
	w.closeOnce.Do(func() {
		w.mu.Lock()
		w.closed = true
		w.mu.Unlock()

		close(w.stop)
		<-w.done
	})
	return w.closeErr
}

// IsClosed reports whether Close has been called.
func (w *Writer) IsClosed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

// Buffered returns the number of bytes waiting to be flushed.
func (w *Writer) Buffered() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.buf)
}

// Stats returns a snapshot of the writer's statistics.
func (w *Writer) Stats() Stats {
	s := Stats{
		BytesWritten: w.bytesWritten.Load(),
		WriteCount:   w.writeCount.Load(),
		FlushCount:   w.flushCount.Load(),
		ErrorCount:   w.errorCount.Load(),
	}
	if ns := w.lastFlush.Load(); ns != 0 {
		s.LastFlush = time.Unix(0, ns)
	}
	return s
}

// Handler returns an asynchronous stream handler that writes each value.
func (w *Writer) Handler() stream.AsyncNextFunc[[]byte] {
	return func(data []byte) *stream.Pending {
		return w.Write(data)
	}
}

// Lines returns an asynchronous stream handler that writes each value
// formatted by format, followed by a newline.
func Lines[T any](w *Writer, format func(T) string) stream.AsyncNextFunc[T] {
	return func(value T) *stream.Pending {
		return w.WriteString(format(value) + "\n")
	}
}

// Sink returns an observer that writes values as lines and flushes when the
// stream completes, so completion implies the output reached w's target. A
// failed final flush fails the complete handler.
func Sink[T any](w *Writer, format func(T) string) stream.Observer[T] {
	return stream.Observer[T]{
		NextAsync: Lines(w, format),
		Complete: func() error {
			return w.Flush(context.Background())
		},
	}
}

// loop is the background goroutine that flushes on size, on the timer and
// on Close.
func (w *Writer) loop() {
	defer close(w.done)

	var tick <-chan time.Time
	if w.config.FlushInterval > 0 {
		ticker := time.NewTicker(w.config.FlushInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-w.stop:
			w.closeErr = w.flush()
			return
		case <-w.kick:
			_ = w.flush()
		case <-tick:
			_ = w.flush()
		}
	}
}

// flush writes the current buffer and settles the tokens of every write
// it contained.
func (w *Writer) flush() error {
	w.flushMu.Lock()
	defer w.flushMu.Unlock()

	w.mu.Lock()
	data, waiters := w.buf, w.waiters
	w.buf = make([]byte, 0, w.config.BufferSize)
	w.waiters = nil
	w.mu.Unlock()

	if len(data) == 0 {
		return nil
	}

	start := time.Now()
	err := w.writeAll(data)
	w.lastFlush.Store(time.Now().UnixNano())

	status := "success"
	if err != nil {
		status = "failure"
		w.errorCount.Add(1)
		w.log.Warn("flush failed", zap.Int("bytes", len(data)), zap.Error(err))
	} else {
		w.flushCount.Add(1)
		w.bytesWritten.Add(int64(len(data)))
		w.log.Debug("flushed", zap.Int("bytes", len(data)), zap.Duration("took", time.Since(start)))
	}
	if r := w.config.Registry; r != nil {
		r.WriterFlushes.WithLabelValues(w.config.Name, status).Inc()
		if err == nil {
			r.WriterBytes.WithLabelValues(w.config.Name).Add(float64(len(data)))
		}
	}

	for _, settle := range waiters {
		settle(err)
	}
	return err
}

// writeAll writes data, retrying the unwritten remainder on failure.
func (w *Writer) writeAll(data []byte) error {
	var lastErr error
	for attempt := 0; attempt <= w.config.MaxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(w.config.RetryDelay)
		}

		n, err := w.out.Write(data)
		if err == nil && n == len(data) {
			return nil
		}
		if err == nil {
			err = io.ErrShortWrite
		}
		if n > 0 {
			data = data[n:]
		}
		lastErr = err
	}
	return gferrors.NewOperationError("writer", "write", lastErr).
		WithContext(fmt.Sprintf("after %d retries", w.config.MaxRetries))
}

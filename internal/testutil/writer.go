package testutil

import (
	"bytes"
	"sync"
)

// FlakyWriter is an io.Writer that records what it receives and can be
// told to fail a number of upcoming writes.
type FlakyWriter struct {
	mu       sync.Mutex
	buf      bytes.Buffer
	writes   int
	failures int
	err      error
}

// NewFlakyWriter creates a FlakyWriter that never fails until told to.
func NewFlakyWriter() *FlakyWriter {
	return &FlakyWriter{}
}

// Write implements io.Writer. Failed writes accept no bytes.
func (w *FlakyWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.writes++
	if w.failures != 0 {
		if w.failures > 0 {
			w.failures--
		}
		return 0, w.err
	}
	return w.buf.Write(p)
}

// FailNext makes the next n writes fail with err. A negative n fails every
// write from now on.
func (w *FlakyWriter) FailNext(n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.failures = n
	w.err = err
}

// String returns everything written successfully so far.
func (w *FlakyWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.String()
}

// Writes returns the number of Write calls, failed ones included.
func (w *FlakyWriter) Writes() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.writes
}

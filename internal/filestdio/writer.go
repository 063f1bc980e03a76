package filestdio

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"

	"tailpipe/internal/logging"
)

// AppendWriter appends to a channel file. It never seeks and never truncates.
//
// The first failed write breaks the writer: that write and every later one
// report an error, and the channel should be rebuilt rather than reused.
type AppendWriter struct {
	path   string
	file   *os.File
	lock   *flock.Flock
	logger *slog.Logger

	closed    atomic.Bool
	broken    atomic.Pointer[error]
	closeOnce sync.Once
}

// NewAppendWriter creates the parent directory when missing and opens path in
// append-only mode, creating the file if absent.
func NewAppendWriter(path string, opts ...Option) (*AppendWriter, error) {
	o := buildOptions(opts)

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve channel path %q: %w", path, err)
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create channel directory %q: %w", dir, err)
	}
	file, err := os.OpenFile(abs, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open channel file for append: %w", err)
	}

	w := &AppendWriter{
		path:   abs,
		file:   file,
		logger: o.logger.With(logging.String(logging.FieldComponent, "append-writer"), logging.String(logging.FieldChannel, abs)),
	}

	if o.exclusive {
		lock := flock.New(abs)
		locked, err := lock.TryLock()
		if err != nil {
			_ = file.Close()
			return nil, fmt.Errorf("lock channel file: %w", err)
		}
		if !locked {
			_ = file.Close()
			return nil, fmt.Errorf("%s: %w", abs, ErrWriterBusy)
		}
		w.lock = lock
	}

	w.logger.Debug("append writer opened", logging.Bool("exclusive", w.lock != nil))
	return w, nil
}

// Path returns the absolute path of the file being appended to.
func (w *AppendWriter) Path() string { return w.path }

// Write appends p to the file.
func (w *AppendWriter) Write(p []byte) (int, error) {
	if w.closed.Load() {
		return 0, ErrClosed
	}
	if cause := w.broken.Load(); cause != nil {
		return 0, fmt.Errorf("%w: %w", ErrBroken, *cause)
	}
	n, err := w.file.Write(p)
	if err != nil {
		w.broken.CompareAndSwap(nil, &err)
		w.logger.Warn("append to channel file failed; writer is broken",
			logging.Error(err),
			logging.Int("written", n),
		)
		return n, fmt.Errorf("append to %s: %w", w.path, err)
	}
	return n, nil
}

// Close flushes written data to storage and releases the handle. It is safe
// to call more than once and always returns nil.
func (w *AppendWriter) Close() error {
	w.closeOnce.Do(func() {
		w.closed.Store(true)
		if err := flush(w.file); err != nil {
			w.logger.Debug("flush channel file failed", logging.Error(err))
		}
		if w.lock != nil {
			if err := w.lock.Unlock(); err != nil {
				w.logger.Debug("unlock channel file failed", logging.Error(err))
			}
		}
		if err := w.file.Close(); err != nil {
			w.logger.Debug("close channel file failed", logging.Error(err))
		}
		w.logger.Debug("append writer closed")
	})
	return nil
}

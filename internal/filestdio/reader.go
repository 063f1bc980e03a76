package filestdio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"tailpipe/internal/logging"
)

// TailReader delivers bytes appended to a file, in file order, from a private
// cursor that only moves forward.
//
// A single goroutine polls the file on a ticker. Each new chunk is handed to
// the consumer over an unbuffered channel, so the poll loop never reads ahead
// of what Read has accepted.
type TailReader struct {
	path   string
	file   *os.File
	opts   options
	logger *slog.Logger

	cursor atomic.Int64

	chunks  chan []byte
	wake    chan struct{}
	done    chan struct{}
	stopped chan struct{}

	watcher     *fsnotify.Watcher
	watchDone   chan struct{}
	closeOnce   sync.Once
	pending     []byte
	replacedLog bool
}

// NewTailReader creates the parent directory and the file when missing, opens
// the file for reading and starts polling it. Setup failures are returned
// before any goroutine starts.
func NewTailReader(path string, opts ...Option) (*TailReader, error) {
	o := buildOptions(opts)

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve channel path %q: %w", path, err)
	}
	if err := ensureFile(abs); err != nil {
		return nil, err
	}
	file, err := os.Open(abs)
	if err != nil {
		return nil, fmt.Errorf("open channel file for reading: %w", err)
	}

	r := &TailReader{
		path:    abs,
		file:    file,
		opts:    o,
		logger:  o.logger.With(logging.String(logging.FieldComponent, "tail-reader"), logging.String(logging.FieldChannel, abs)),
		chunks:  make(chan []byte),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}

	if o.start == StartAtEnd {
		info, err := file.Stat()
		if err != nil {
			_ = file.Close()
			return nil, fmt.Errorf("stat channel file: %w", err)
		}
		r.cursor.Store(info.Size())
	}

	if o.watch {
		r.startWatch()
	}

	r.logger.Debug("tail reader started",
		logging.Int64("cursor", r.cursor.Load()),
		logging.Duration("poll_interval", o.pollInterval),
		logging.Bool("watch", r.watcher != nil),
	)
	go r.run()
	return r, nil
}

// Path returns the absolute path of the tailed file.
func (r *TailReader) Path() string { return r.path }

// Cursor returns the number of bytes delivered so far, counted from the start
// of the file.
func (r *TailReader) Cursor() int64 { return r.cursor.Load() }

// Read implements io.Reader. It blocks until new data arrives or the reader is
// closed, in which case it returns io.EOF.
func (r *TailReader) Read(p []byte) (int, error) {
	return r.ReadContext(context.Background(), p)
}

// ReadContext is Read with cancellation. A cancelled read consumes nothing.
func (r *TailReader) ReadContext(ctx context.Context, p []byte) (int, error) {
	select {
	case <-r.done:
		return 0, io.EOF
	default:
	}
	if len(p) == 0 {
		return 0, nil
	}
	if len(r.pending) == 0 {
		select {
		case chunk := <-r.chunks:
			r.pending = chunk
		case <-r.done:
			return 0, io.EOF
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
	n := copy(p, r.pending)
	r.pending = r.pending[n:]
	return n, nil
}

// Close stops polling and releases the file handle. It is safe to call more
// than once and always returns nil; once it returns no further data is
// delivered.
func (r *TailReader) Close() error {
	r.closeOnce.Do(func() {
		close(r.done)
		<-r.stopped
		r.stopWatch()
		if err := r.file.Close(); err != nil {
			r.logger.Debug("close channel file failed", logging.Error(err))
		}
		r.logger.Debug("tail reader closed", logging.Int64("cursor", r.cursor.Load()))
	})
	return nil
}

func (r *TailReader) run() {
	defer close(r.stopped)

	ticker := time.NewTicker(r.opts.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.done:
			return
		case <-ticker.C:
		case <-r.wake:
		}
		if !r.drain() {
			return
		}
	}
}

// drain delivers chunks until the file shows no growth past the cursor. It
// returns false when the reader was closed mid hand-off.
func (r *TailReader) drain() bool {
	for {
		chunk := r.poll()
		if len(chunk) == 0 {
			return true
		}
		select {
		case r.chunks <- chunk:
			r.cursor.Add(int64(len(chunk)))
		case <-r.done:
			return false
		}
	}
}

// poll performs one bounded size check and read. Failures are treated as "no
// data this tick".
func (r *TailReader) poll() []byte {
	info, err := r.file.Stat()
	if err != nil {
		r.logger.Debug("stat channel file failed; retrying next tick", logging.Error(err))
		return nil
	}
	r.noteReplacement(info)

	cursor := r.cursor.Load()
	size := info.Size()
	if size < cursor {
		r.logger.Debug("channel file shrank below cursor; waiting for growth",
			logging.Int64("size", size),
			logging.Int64("cursor", cursor),
		)
		return nil
	}
	if size == cursor {
		return nil
	}

	want := size - cursor
	if want > int64(r.opts.chunkSize) {
		want = int64(r.opts.chunkSize)
	}
	buf := make([]byte, want)
	n, err := r.file.ReadAt(buf, cursor)
	if err != nil && !errors.Is(err, io.EOF) {
		r.logger.Debug("read channel file failed; retrying next tick", logging.Error(err))
		return nil
	}
	return buf[:n]
}

// noteReplacement logs once when the path no longer names the open file. The
// reader keeps its original handle either way.
func (r *TailReader) noteReplacement(open os.FileInfo) {
	if r.replacedLog {
		return
	}
	current, err := os.Stat(r.path)
	switch {
	case err != nil && errors.Is(err, os.ErrNotExist):
	case err == nil && !os.SameFile(open, current):
	default:
		return
	}
	r.replacedLog = true
	r.logger.Info("channel file removed or replaced; continuing on the original handle")
}

func ensureFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create channel directory %q: %w", dir, err)
	}
	// O_CREATE without O_TRUNC leaves existing content untouched.
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create channel file %q: %w", path, err)
	}
	return file.Close()
}

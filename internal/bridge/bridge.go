package bridge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sync/atomic"
	"time"

	"tailpipe/internal/logging"
)

const copyBufferSize = 32 * 1024

// Stream is one side of a file-backed channel: cancellable reads from the
// peer and appends towards it. *filestdio.Endpoint satisfies it.
type Stream interface {
	io.Writer
	ReadContext(ctx context.Context, p []byte) (int, error)
}

// Stats counts bytes moved through a bridge. In is channel -> local, Out is
// local -> channel.
type Stats struct {
	BytesIn  int64
	BytesOut int64
}

// Options tunes Attach.
type Options struct {
	// IdleAfterEOF ends Attach once local input has reached EOF and the
	// channel has been quiet for this long. Zero keeps Attach running until
	// its context is cancelled.
	IdleAfterEOF time.Duration
}

// Bridge pumps bytes between a Stream and local readers and writers.
type Bridge struct {
	logger *slog.Logger
}

// New returns a Bridge that logs through logger (nil discards logs).
func New(logger *slog.Logger) *Bridge {
	return &Bridge{logger: logging.NewComponentLogger(logger, "bridge")}
}

// Attach copies local input into the stream and stream data to output until
// ctx is cancelled, output fails, or the idle rule in opts fires.
func (b *Bridge) Attach(ctx context.Context, stream Stream, input io.Reader, output io.Writer, opts Options) (Stats, error) {
	var in, out atomic.Int64

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// eofCtx is cancelled when local input ends, switching the downstream
	// pump into idle-timeout mode.
	eofCtx, inputDone := context.WithCancel(ctx)
	defer inputDone()

	upstreamErr := make(chan error, 1)
	go func() {
		n, err := io.CopyBuffer(stream, input, make([]byte, copyBufferSize))
		out.Add(n)
		if err != nil {
			upstreamErr <- fmt.Errorf("forward local input: %w", err)
			cancel()
			return
		}
		b.logger.Debug("local input reached EOF", logging.Int64("bytes", n))
		if opts.IdleAfterEOF > 0 {
			inputDone()
		}
	}()

	err := b.pumpToOutput(ctx, eofCtx, stream, output, &in, opts.IdleAfterEOF)
	cancel()
	// The upstream copy may stay blocked on a local read that never returns
	// (an interactive terminal); its result is only collected when ready.
	select {
	case upErr := <-upstreamErr:
		if err == nil {
			err = upErr
		}
	default:
	}

	stats := Stats{BytesIn: in.Load(), BytesOut: out.Load()}
	b.logger.Info("attach finished",
		logging.Int64("bytes_in", stats.BytesIn),
		logging.Int64("bytes_out", stats.BytesOut),
	)
	return stats, err
}

func (b *Bridge) pumpToOutput(ctx, eofCtx context.Context, stream Stream, output io.Writer, counter *atomic.Int64, idle time.Duration) error {
	buf := make([]byte, copyBufferSize)
	for {
		readCtx := eofCtx
		var stop context.CancelFunc = func() {}
		if eofCtx.Err() != nil && ctx.Err() == nil {
			readCtx, stop = context.WithTimeout(ctx, idle)
		}
		n, err := stream.ReadContext(readCtx, buf)
		stop()
		if n > 0 {
			if _, werr := output.Write(buf[:n]); werr != nil {
				return fmt.Errorf("write local output: %w", werr)
			}
			counter.Add(int64(n))
		}
		switch {
		case err == nil:
		case ctx.Err() != nil:
			return nil
		case errors.Is(err, context.DeadlineExceeded):
			b.logger.Debug("channel idle after local EOF; detaching", logging.Duration("idle", idle))
			return nil
		case errors.Is(err, context.Canceled):
			// Local input just ended; loop again in idle-timeout mode.
		case errors.Is(err, io.EOF):
			return nil
		default:
			return fmt.Errorf("read channel: %w", err)
		}
	}
}

// Run starts cmd with its stdin fed from the stream and its stdout appended
// to the stream, and waits for it to exit. cmd.Stderr is left as configured
// by the caller. Cancelling ctx kills the process when cmd was built with
// exec.CommandContext.
func (b *Bridge) Run(ctx context.Context, stream Stream, cmd *exec.Cmd) (Stats, error) {
	var in, out atomic.Int64

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return Stats{}, fmt.Errorf("stdin pipe: %w", err)
	}
	cmd.Stdout = countingWriter{w: stream, n: &out}

	if err := cmd.Start(); err != nil {
		return Stats{}, fmt.Errorf("start %s: %w", cmd.Path, err)
	}
	logger := b.logger.With(logging.String(logging.FieldCommand, cmd.Path), logging.Int("pid", cmd.Process.Pid))
	logger.Info("hosted command started")

	pumpCtx, stopPump := context.WithCancel(ctx)
	pumpDone := make(chan struct{})
	go func() {
		defer close(pumpDone)
		buf := make([]byte, copyBufferSize)
		for {
			n, err := stream.ReadContext(pumpCtx, buf)
			if n > 0 {
				if _, werr := stdin.Write(buf[:n]); werr != nil {
					logger.Debug("hosted command stdin closed", logging.Error(werr))
					return
				}
				in.Add(int64(n))
			}
			if err != nil {
				if !errors.Is(err, context.Canceled) && !errors.Is(err, io.EOF) {
					logger.Debug("channel read stopped", logging.Error(err))
				}
				_ = stdin.Close()
				return
			}
		}
	}()

	waitErr := cmd.Wait()
	stopPump()
	<-pumpDone

	stats := Stats{BytesIn: in.Load(), BytesOut: out.Load()}
	attrs := []logging.Attr{
		logging.Int64("bytes_in", stats.BytesIn),
		logging.Int64("bytes_out", stats.BytesOut),
	}
	if waitErr != nil {
		logger.Warn("hosted command exited with error", logging.Args(append(attrs, logging.Error(waitErr))...)...)
		return stats, fmt.Errorf("hosted command: %w", waitErr)
	}
	logger.Info("hosted command exited", logging.Args(attrs...)...)
	return stats, nil
}

type countingWriter struct {
	w io.Writer
	n *atomic.Int64
}

func (c countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n.Add(int64(n))
	return n, err
}

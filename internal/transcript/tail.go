package transcript

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

// maxLine bounds a single returned line; longer runs without a newline are
// returned in pieces of this size.
const maxLine = 1 << 20

// DefaultPollInterval is used by Follow when Options.PollInterval is zero.
const DefaultPollInterval = 250 * time.Millisecond

// Options selects which part of a channel file Tail returns.
type Options struct {
	// Offset < 0 returns the last Limit lines; otherwise lines after Offset.
	Offset int64
	Limit  int
	// Follow waits up to Wait for new lines when none are available.
	Follow       bool
	Wait         time.Duration
	PollInterval time.Duration
}

// Result holds complete lines and the offset to resume from.
type Result struct {
	Lines  []string
	Offset int64
}

// Tail reads lines from the channel file at path. A missing file yields an
// empty result at offset 0.
func Tail(ctx context.Context, path string, opts Options) (Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Result{}, nil
		}
		return Result{Offset: opts.Offset}, fmt.Errorf("stat channel file: %w", err)
	}
	if info.IsDir() {
		return Result{Offset: opts.Offset}, fmt.Errorf("channel path %q is a directory", path)
	}
	if opts.Wait < 0 {
		opts.Wait = 0
	}

	var res Result
	if opts.Offset < 0 {
		res, err = lastLines(path, opts.Limit)
	} else {
		offset := opts.Offset
		if offset > info.Size() {
			offset = info.Size()
		}
		res, err = linesFrom(path, offset)
	}
	if err != nil {
		return res, err
	}
	if opts.Follow && opts.Wait > 0 && len(res.Lines) == 0 {
		return waitForLines(ctx, path, res.Offset, opts.Wait, opts.PollInterval)
	}
	return res, nil
}

// lastLines keeps a ring of the final limit complete lines.
func lastLines(path string, limit int) (Result, error) {
	file, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("open channel file: %w", err)
	}
	defer file.Close()

	var ring []string
	if limit > 0 {
		ring = make([]string, 0, limit)
	}
	var offset int64
	err = scanLines(file, func(line string, end int64) {
		offset = end
		if limit <= 0 {
			return
		}
		if len(ring) == limit {
			ring = append(ring[:0], ring[1:]...)
		}
		ring = append(ring, line)
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Lines: ring, Offset: offset}, nil
}

func linesFrom(path string, offset int64) (Result, error) {
	file, err := os.Open(path)
	if err != nil {
		return Result{Offset: offset}, fmt.Errorf("open channel file: %w", err)
	}
	defer file.Close()

	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return Result{Offset: offset}, fmt.Errorf("seek channel file: %w", err)
	}
	res := Result{Offset: offset}
	err = scanLines(file, func(line string, end int64) {
		res.Lines = append(res.Lines, line)
		res.Offset = offset + end
	})
	return res, err
}

// scanLines calls fn for every complete line with the offset just past it,
// relative to where r started. A trailing partial line is not reported.
func scanLines(r io.Reader, fn func(line string, end int64)) error {
	br := bufio.NewReaderSize(r, 64*1024)
	var pos int64
	var pending []byte
	for {
		chunk, err := br.ReadSlice('\n')
		pending = append(pending, chunk...)
		switch {
		case err == nil:
			pos += int64(len(pending))
			fn(string(bytes.TrimRight(pending, "\r\n")), pos)
			pending = pending[:0]
		case errors.Is(err, bufio.ErrBufferFull):
			if len(pending) < maxLine {
				continue
			}
			if lineEndsNext(br) {
				continue
			}
			pos += int64(len(pending))
			fn(string(pending), pos)
			pending = pending[:0]
		case errors.Is(err, io.EOF):
			return nil
		default:
			return fmt.Errorf("read channel file: %w", err)
		}
	}
}

func waitForLines(ctx context.Context, path string, offset int64, wait, interval time.Duration) (Result, error) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	deadline := time.Now().Add(wait)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		res, err := linesFrom(path, offset)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return Result{Offset: offset}, err
		}
		if len(res.Lines) > 0 {
			return res, nil
		}
		if time.Now().After(deadline) {
			return Result{Offset: offset}, nil
		}
		select {
		case <-ctx.Done():
			return Result{Offset: offset}, ctx.Err()
		case <-ticker.C:
		}
	}
}

// lineEndsNext reports whether the piece read so far should not be split off:
// the line terminator follows it, or the reader is at EOF and the piece is
// still partial.
func lineEndsNext(br *bufio.Reader) bool {
	next, _ := br.Peek(2)
	switch {
	case len(next) == 0:
		return true
	case next[0] == '\n':
		return true
	case next[0] == '\r':
		return len(next) == 1 || next[1] == '\n'
	}
	return false
}

package filestdio

import "errors"

var (
	// ErrClosed is returned by writes issued after Close.
	ErrClosed = errors.New("filestdio: stream closed")
	// ErrBroken wraps the first filesystem failure seen by an AppendWriter;
	// every later write reports it.
	ErrBroken = errors.New("filestdio: writer broken")
	// ErrWriterBusy reports that another process holds the exclusive writer
	// lock on a channel file.
	ErrWriterBusy = errors.New("filestdio: channel file already has a writer")
	// ErrNotRequested is returned by ResolvePaths when no file-backed stdio was
	// asked for.
	ErrNotRequested = errors.New("filestdio: file-backed stdio not requested")
)

package filestdio

import (
	"context"
	"fmt"
	"sync"
)

// Role names which side of a channel an Endpoint plays.
type Role string

const (
	// RoleServer reads Paths.In and writes Paths.Out.
	RoleServer Role = "server"
	// RoleClient reads Paths.Out and writes Paths.In.
	RoleClient Role = "client"
)

// Endpoint is one side of a file-backed duplex channel: a reader over one
// file and a writer over the other. It implements io.ReadWriteCloser.
type Endpoint struct {
	role   Role
	paths  Paths
	reader *TailReader
	writer *AppendWriter

	closeOnce sync.Once
}

// NewServerEndpoint tails paths.In and appends to paths.Out.
func NewServerEndpoint(paths Paths, opts ...Option) (*Endpoint, error) {
	return newEndpoint(RoleServer, paths, paths.In, paths.Out, opts)
}

// NewClientEndpoint is the complement of NewServerEndpoint over the same
// paths: it tails paths.Out and appends to paths.In.
func NewClientEndpoint(paths Paths, opts ...Option) (*Endpoint, error) {
	return newEndpoint(RoleClient, paths, paths.Out, paths.In, opts)
}

func newEndpoint(role Role, paths Paths, readPath, writePath string, opts []Option) (*Endpoint, error) {
	if err := paths.Validate(); err != nil {
		return nil, err
	}
	reader, err := NewTailReader(readPath, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s endpoint reader: %w", role, err)
	}
	writer, err := NewAppendWriter(writePath, opts...)
	if err != nil {
		_ = reader.Close()
		return nil, fmt.Errorf("%s endpoint writer: %w", role, err)
	}
	return &Endpoint{role: role, paths: paths, reader: reader, writer: writer}, nil
}

// Role reports which side of the channel e plays.
func (e *Endpoint) Role() Role { return e.role }

// Paths returns the channel's path pair as given at construction.
func (e *Endpoint) Paths() Paths { return e.paths }

// Reader returns the endpoint's tailing reader.
func (e *Endpoint) Reader() *TailReader { return e.reader }

// Writer returns the endpoint's append writer.
func (e *Endpoint) Writer() *AppendWriter { return e.writer }

func (e *Endpoint) Read(p []byte) (int, error) { return e.reader.Read(p) }

// ReadContext reads with cancellation; see TailReader.ReadContext.
func (e *Endpoint) ReadContext(ctx context.Context, p []byte) (int, error) {
	return e.reader.ReadContext(ctx, p)
}

func (e *Endpoint) Write(p []byte) (int, error) { return e.writer.Write(p) }

// Close closes the writer, then the reader. Safe to call more than once.
func (e *Endpoint) Close() error {
	e.closeOnce.Do(func() {
		_ = e.writer.Close()
		_ = e.reader.Close()
	})
	return nil
}

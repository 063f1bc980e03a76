package filestdio

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"tailpipe/internal/logging"
)

const (
	// DefaultPollInterval is how often a TailReader checks its file for growth.
	DefaultPollInterval = 50 * time.Millisecond
	// DefaultChunkSize bounds a single read from the tailed file.
	DefaultChunkSize = 64 * 1024
)

// StartOffset selects where a new TailReader places its cursor.
type StartOffset int

const (
	// StartAtBeginning replays any content already in the file.
	StartAtBeginning StartOffset = iota
	// StartAtEnd skips existing content and delivers only later appends.
	StartAtEnd
)

func (s StartOffset) String() string {
	switch s {
	case StartAtEnd:
		return "end"
	default:
		return "beginning"
	}
}

// ParseStartOffset maps "beginning"/"start" and "end" to a StartOffset.
func ParseStartOffset(value string) (StartOffset, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "beginning", "start", "0":
		return StartAtBeginning, nil
	case "end", "tail":
		return StartAtEnd, nil
	default:
		return StartAtBeginning, fmt.Errorf("start offset: unsupported value %q", value)
	}
}

type options struct {
	pollInterval time.Duration
	chunkSize    int
	start        StartOffset
	watch        bool
	exclusive    bool
	logger       *slog.Logger
}

// Option tunes readers, writers and endpoints. Options that do not apply to a
// given constructor are ignored.
type Option func(*options)

// WithPollInterval sets the reader's poll period. Non-positive values keep the default.
func WithPollInterval(interval time.Duration) Option {
	return func(o *options) {
		if interval > 0 {
			o.pollInterval = interval
		}
	}
}

// WithChunkSize bounds the bytes read per poll. Non-positive values keep the default.
func WithChunkSize(size int) Option {
	return func(o *options) {
		if size > 0 {
			o.chunkSize = size
		}
	}
}

// WithStartOffset selects the reader's initial cursor policy.
func WithStartOffset(start StartOffset) Option {
	return func(o *options) { o.start = start }
}

// WithWatch enables filesystem notifications as an early wake-up for the poll
// loop. Polling continues regardless.
func WithWatch(enabled bool) Option {
	return func(o *options) { o.watch = enabled }
}

// WithExclusive makes writers take a non-blocking advisory lock on their file.
func WithExclusive(enabled bool) Option {
	return func(o *options) { o.exclusive = enabled }
}

// WithLogger routes diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		pollInterval: DefaultPollInterval,
		chunkSize:    DefaultChunkSize,
		start:        StartAtBeginning,
		logger:       logging.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

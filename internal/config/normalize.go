package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Environment fallbacks applied when the matching field is empty.
const (
	EnvStdioIn    = "TAILPIPE_STDIO_IN"
	EnvStdioOut   = "TAILPIPE_STDIO_OUT"
	EnvStdioFiles = "TAILPIPE_STDIO_FILES"
	EnvLogLevel   = "TAILPIPE_LOG_LEVEL"
)

func (c *Config) normalize() error {
	if err := c.normalizeStdio(); err != nil {
		return err
	}
	return c.normalizeLogging()
}

func (c *Config) normalizeStdio() error {
	if c.Stdio.In == "" {
		c.Stdio.In = lookupEnv(EnvStdioIn)
	}
	if c.Stdio.Out == "" {
		c.Stdio.Out = lookupEnv(EnvStdioOut)
	}
	// TAILPIPE_STDIO_FILES is either a boolean or a prefix.
	if value := lookupEnv(EnvStdioFiles); value != "" && c.Stdio.Prefix == "" {
		if enabled, err := strconv.ParseBool(value); err == nil {
			c.Stdio.Files = c.Stdio.Files || enabled
		} else {
			c.Stdio.Prefix = value
			c.Stdio.Files = true
		}
	}

	var err error
	if c.Stdio.In, err = expandPath(strings.TrimSpace(c.Stdio.In)); err != nil {
		return fmt.Errorf("stdio.in: %w", err)
	}
	if c.Stdio.Out, err = expandPath(strings.TrimSpace(c.Stdio.Out)); err != nil {
		return fmt.Errorf("stdio.out: %w", err)
	}
	if c.Stdio.Prefix, err = expandPath(strings.TrimSpace(c.Stdio.Prefix)); err != nil {
		return fmt.Errorf("stdio.prefix: %w", err)
	}

	if c.Stdio.PollIntervalMS == 0 {
		c.Stdio.PollIntervalMS = defaultPollIntervalMS
	}
	if c.Stdio.ChunkSize == 0 {
		c.Stdio.ChunkSize = defaultChunkSize
	}
	c.Stdio.StartOffset = strings.ToLower(strings.TrimSpace(c.Stdio.StartOffset))
	if c.Stdio.StartOffset == "" {
		c.Stdio.StartOffset = defaultStartOffset
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	if c.Logging.Level == "" {
		c.Logging.Level = lookupEnv(EnvLogLevel)
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	var err error
	if c.Logging.File, err = expandPath(strings.TrimSpace(c.Logging.File)); err != nil {
		return fmt.Errorf("logging.file: %w", err)
	}
	return nil
}

func lookupEnv(key string) string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return ""
	}
	return strings.TrimSpace(value)
}

package filestdio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	// InSuffix is appended to a prefix to name the server's input file.
	InSuffix = ".in"
	// OutSuffix is appended to a prefix to name the server's output file.
	OutSuffix = ".out"
	// TempDirName is the working-directory-relative folder for default prefixes.
	TempDirName = ".tailpipe-tmp"
)

// Paths names the two files of one duplex channel, from the server's point of
// view: the server reads In and writes Out.
type Paths struct {
	In  string
	Out string
}

// Validate rejects empty or identical paths.
func (p Paths) Validate() error {
	if strings.TrimSpace(p.In) == "" || strings.TrimSpace(p.Out) == "" {
		return errors.New("channel paths: in and out must both be set")
	}
	if filepath.Clean(p.In) == filepath.Clean(p.Out) {
		return fmt.Errorf("channel paths: in and out are the same file %q", p.In)
	}
	return nil
}

// DerivePaths appends the fixed suffixes to prefix.
func DerivePaths(prefix string) Paths {
	return Paths{In: prefix + InSuffix, Out: prefix + OutSuffix}
}

// DefaultPrefix returns the per-process prefix under dir, so concurrent
// instances do not collide unless they share a prefix explicitly.
func DefaultPrefix(dir string, pid int) string {
	return filepath.Join(dir, TempDirName, "stdio-"+strconv.Itoa(pid))
}

// Selection is the user-facing request for file-backed stdio.
type Selection struct {
	// In and Out override the derived paths individually.
	In  string
	Out string
	// Prefix derives both paths; empty means DefaultPrefix.
	Prefix string
	// Files requests file-backed stdio even when no path is given.
	Files bool
	// WorkDir and PID feed DefaultPrefix; zero values use the current process.
	WorkDir string
	PID     int
}

// Requested reports whether the selection asks for file-backed stdio at all.
func (s Selection) Requested() bool {
	return s.Files ||
		strings.TrimSpace(s.In) != "" ||
		strings.TrimSpace(s.Out) != "" ||
		strings.TrimSpace(s.Prefix) != ""
}

// ResolvePaths turns a selection into absolute channel paths.
func ResolvePaths(sel Selection) (Paths, error) {
	if !sel.Requested() {
		return Paths{}, ErrNotRequested
	}

	prefix := strings.TrimSpace(sel.Prefix)
	if prefix == "" {
		dir := sel.WorkDir
		if dir == "" {
			wd, err := os.Getwd()
			if err != nil {
				return Paths{}, fmt.Errorf("resolve working directory: %w", err)
			}
			dir = wd
		}
		pid := sel.PID
		if pid == 0 {
			pid = os.Getpid()
		}
		prefix = DefaultPrefix(dir, pid)
	}

	paths := DerivePaths(prefix)
	if in := strings.TrimSpace(sel.In); in != "" {
		paths.In = in
	}
	if out := strings.TrimSpace(sel.Out); out != "" {
		paths.Out = out
	}

	var err error
	if paths.In, err = filepath.Abs(paths.In); err != nil {
		return Paths{}, fmt.Errorf("resolve input path: %w", err)
	}
	if paths.Out, err = filepath.Abs(paths.Out); err != nil {
		return Paths{}, fmt.Errorf("resolve output path: %w", err)
	}
	if err := paths.Validate(); err != nil {
		return Paths{}, err
	}
	return paths, nil
}

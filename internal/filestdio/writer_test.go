package filestdio_test

import (
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"tailpipe/internal/filestdio"
	"tailpipe/internal/testsupport"
)

func TestAppendWriterAppendsWithoutTruncating(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "chan.out")
	testsupport.AppendFile(t, path, []byte("existing|"))

	w, err := filestdio.NewAppendWriter(path)
	if err != nil {
		t.Fatalf("NewAppendWriter: %v", err)
	}
	for _, piece := range []string{"one|", "two|", "three"} {
		if _, err := w.Write([]byte(piece)); err != nil {
			t.Fatalf("write %q: %v", piece, err)
		}
	}
	// Another appender interleaving between our writes lands at the end too.
	testsupport.AppendFile(t, path, []byte("|other"))
	if _, err := w.Write([]byte("|four")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if got := string(testsupport.ReadFile(t, path)); got != "existing|one|two|three|other|four" {
		t.Fatalf("unexpected file content %q", got)
	}
}

func TestAppendWriterCreatesMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "chan.out")
	w, err := filestdio.NewAppendWriter(path)
	if err != nil {
		t.Fatalf("NewAppendWriter: %v", err)
	}
	defer w.Close()

	if w.Path() != path {
		t.Fatalf("unexpected path %q", w.Path())
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file to exist: %v", err)
	}
}

func TestAppendWriterCloseIsIdempotentAndRejectsLateWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chan.out")
	w, err := filestdio.NewAppendWriter(path)
	if err != nil {
		t.Fatalf("NewAppendWriter: %v", err)
	}
	if _, err := w.Write([]byte("data")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}

	if _, err := w.Write([]byte("late")); !errors.Is(err, filestdio.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if got := string(testsupport.ReadFile(t, path)); got != "data" {
		t.Fatalf("unexpected content %q", got)
	}
}

func TestAppendWriterExclusiveRejectsSecondWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chan.out")

	first, err := filestdio.NewAppendWriter(path, filestdio.WithExclusive(true))
	if err != nil {
		t.Fatalf("first writer: %v", err)
	}

	if _, err := filestdio.NewAppendWriter(path, filestdio.WithExclusive(true)); !errors.Is(err, filestdio.ErrWriterBusy) {
		t.Fatalf("expected ErrWriterBusy, got %v", err)
	}

	_ = first.Close()

	second, err := filestdio.NewAppendWriter(path, filestdio.WithExclusive(true))
	if err != nil {
		t.Fatalf("writer after release: %v", err)
	}
	_ = second.Close()
}

func TestAppendWriterSetupFailure(t *testing.T) {
	dir := t.TempDir()
	if _, err := filestdio.NewAppendWriter(dir); err == nil {
		t.Fatal("expected error when the path is a directory")
	}
}

func TestAppendWriterBreaksAfterFailedAppend(t *testing.T) {
	const full = "/dev/full"
	if _, err := os.Stat(full); err != nil {
		t.Skipf("%s not available: %v", full, err)
	}

	w, err := filestdio.NewAppendWriter(full)
	if err != nil {
		t.Fatalf("NewAppendWriter: %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })

	_, first := w.Write([]byte("payload"))
	if first == nil {
		t.Fatal("expected the first append to fail on a full device")
	}
	if errors.Is(first, filestdio.ErrBroken) {
		t.Fatalf("first failure should report the cause, not ErrBroken: %v", first)
	}

	n, second := w.Write([]byte("more"))
	if n != 0 || !errors.Is(second, filestdio.ErrBroken) {
		t.Fatalf("expected ErrBroken after a failed append, got n=%d err=%v", n, second)
	}
	if !errors.Is(first, syscall.ENOSPC) || !errors.Is(second, syscall.ENOSPC) {
		t.Fatalf("both errors should carry ENOSPC: first=%v second=%v", first, second)
	}
}

package filestdio_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"tailpipe/internal/filestdio"
	"tailpipe/internal/testsupport"
)

const (
	testPoll    = 5 * time.Millisecond
	testTimeout = 5 * time.Second
)

func newReader(t *testing.T, path string, opts ...filestdio.Option) *filestdio.TailReader {
	t.Helper()
	opts = append([]filestdio.Option{filestdio.WithPollInterval(testPoll)}, opts...)
	r, err := filestdio.NewTailReader(path, opts...)
	if err != nil {
		t.Fatalf("NewTailReader: %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestTailReaderDeliversAppendsInOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chan.in")
	r := newReader(t, path, filestdio.WithChunkSize(7))

	rng := rand.New(rand.NewSource(42))
	var want bytes.Buffer
	for i := 0; i < 60; i++ {
		piece := make([]byte, 1+rng.Intn(40))
		for j := range piece {
			piece[j] = byte('a' + (i+j)%26)
		}
		want.Write(piece)
		testsupport.AppendFile(t, path, piece)
		if i%3 == 0 {
			time.Sleep(time.Duration(rng.Intn(3)) * testPoll)
		}
	}

	testsupport.ReadExactly(t, r, want.Bytes(), testTimeout)
	testsupport.ExpectSilence(t, r, 10*testPoll)
}

func TestTailReaderDeliversExactlyAppendedBytes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chan.in")
	r := newReader(t, path)

	testsupport.ExpectSilence(t, r, 5*testPoll)
	if got := r.Cursor(); got != 0 {
		t.Fatalf("expected cursor 0 before any append, got %d", got)
	}

	testsupport.AppendFile(t, path, []byte("0123456789"))
	testsupport.ReadExactly(t, r, []byte("0123456789"), testTimeout)
	testsupport.ExpectSilence(t, r, 5*testPoll)

	if got := r.Cursor(); got != 10 {
		t.Fatalf("expected cursor 10, got %d", got)
	}

	testsupport.AppendFile(t, path, []byte("abc"))
	testsupport.ReadExactly(t, r, []byte("abc"), testTimeout)
	testsupport.ExpectSilence(t, r, 5*testPoll)
	if got := r.Cursor(); got != 13 {
		t.Fatalf("expected cursor 13, got %d", got)
	}
}

func TestTailReaderCreatesMissingDirectoryAndFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "nested", "chan.in")
	newReader(t, path)

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("expected channel file to be created: %v", err)
	}
	if info.Size() != 0 {
		t.Fatalf("expected empty channel file, got %d bytes", info.Size())
	}
}

func TestTailReaderStartOffsets(t *testing.T) {
	tests := []struct {
		name  string
		start filestdio.StartOffset
		want  string
	}{
		{name: "beginning replays existing content", start: filestdio.StartAtBeginning, want: "old|new"},
		{name: "end skips existing content", start: filestdio.StartAtEnd, want: "new"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "chan.in")
			testsupport.AppendFile(t, path, []byte("old|"))

			r := newReader(t, path, filestdio.WithStartOffset(tc.start))
			testsupport.AppendFile(t, path, []byte("new"))

			testsupport.ReadExactly(t, r, []byte(tc.want), testTimeout)
			testsupport.ExpectSilence(t, r, 5*testPoll)

			if content := testsupport.ReadFile(t, path); string(content) != "old|new" {
				t.Fatalf("existing content must be preserved, got %q", content)
			}
		})
	}
}

func TestTailReaderBoundsChunks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chan.in")
	r := newReader(t, path, filestdio.WithChunkSize(4))

	testsupport.AppendFile(t, path, []byte("abcdefghij"))

	buf := make([]byte, 64)
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()
	var got []byte
	for len(got) < 10 {
		n, err := r.ReadContext(ctx, buf)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if n > 4 {
			t.Fatalf("expected reads bounded by chunk size, got %d bytes", n)
		}
		got = append(got, buf[:n]...)
	}
	if string(got) != "abcdefghij" {
		t.Fatalf("unexpected content %q", got)
	}
}

func TestTailReaderSplitsChunkAcrossSmallReads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chan.in")
	r := newReader(t, path)

	testsupport.AppendFile(t, path, []byte("hello"))

	got := testsupport.ReadN(t, r, 5, testTimeout)
	if string(got) != "hello" {
		t.Fatalf("unexpected content %q", got)
	}
}

func TestTailReaderHonoursBackpressure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chan.in")
	r := newReader(t, path, filestdio.WithChunkSize(4))

	testsupport.AppendFile(t, path, []byte("abcdefghijkl"))
	time.Sleep(20 * testPoll)

	if got := r.Cursor(); got != 0 {
		t.Fatalf("poll loop ran ahead of the consumer: cursor %d", got)
	}

	testsupport.ReadExactly(t, r, []byte("abcdefghijkl"), testTimeout)

	deadline := time.Now().Add(testTimeout)
	for r.Cursor() != 12 {
		if time.Now().After(deadline) {
			t.Fatalf("cursor did not settle at 12, got %d", r.Cursor())
		}
		time.Sleep(testPoll)
	}
}

func TestTailReaderCloseIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chan.in")
	r, err := filestdio.NewTailReader(path, filestdio.WithPollInterval(testPoll))
	if err != nil {
		t.Fatalf("NewTailReader: %v", err)
	}

	if err := r.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}

	testsupport.AppendFile(t, path, []byte("late"))
	time.Sleep(5 * testPoll)

	n, err := r.Read(make([]byte, 8))
	if n != 0 || !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF after close, got n=%d err=%v", n, err)
	}
}

func TestTailReaderCloseUnblocksPendingRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chan.in")
	r := newReader(t, path)

	result := make(chan error, 1)
	go func() {
		_, err := r.Read(make([]byte, 8))
		result <- err
	}()

	time.Sleep(5 * testPoll)
	_ = r.Close()

	select {
	case err := <-result:
		if !errors.Is(err, io.EOF) {
			t.Fatalf("expected io.EOF, got %v", err)
		}
	case <-time.After(testTimeout):
		t.Fatal("pending read was not released by Close")
	}
}

func TestTailReaderSurvivesFileDeletion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chan.in")
	r := newReader(t, path)

	testsupport.AppendFile(t, path, []byte("before"))
	testsupport.ReadExactly(t, r, []byte("before"), testTimeout)

	if err := os.Remove(path); err != nil {
		t.Fatalf("remove channel file: %v", err)
	}
	testsupport.ExpectSilence(t, r, 10*testPoll)

	// The reader stays on its original handle; a recreated file is not followed.
	testsupport.AppendFile(t, path, []byte("recreated"))
	testsupport.ExpectSilence(t, r, 10*testPoll)

	if got := r.Cursor(); got != int64(len("before")) {
		t.Fatalf("cursor moved after deletion: %d", got)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("close after deletion: %v", err)
	}
}

func TestTailReaderIgnoresTruncation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chan.in")
	r := newReader(t, path)

	testsupport.AppendFile(t, path, []byte("0123456789"))
	testsupport.ReadExactly(t, r, []byte("0123456789"), testTimeout)

	if err := os.Truncate(path, 0); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	testsupport.AppendFile(t, path, []byte("xyz"))
	testsupport.ExpectSilence(t, r, 10*testPoll)

	if got := r.Cursor(); got != 10 {
		t.Fatalf("cursor must never decrease, got %d", got)
	}

	// Growth past the old cursor resumes delivery from the cursor: the file is
	// now "xyzabcdefghij" and offset 10 starts at "hij".
	testsupport.AppendFile(t, path, []byte("abcdefghij"))
	testsupport.ReadExactly(t, r, []byte("hij"), testTimeout)
}

func TestTailReaderWatchWakesBeforeTick(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chan.in")
	r, err := filestdio.NewTailReader(path,
		filestdio.WithPollInterval(time.Hour),
		filestdio.WithWatch(true),
	)
	if err != nil {
		t.Fatalf("NewTailReader: %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })

	testsupport.AppendFile(t, path, []byte("ping"))
	testsupport.ReadExactly(t, r, []byte("ping"), testTimeout)
}

func TestTailReaderSetupFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "not-a-dir")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}

	if _, err := filestdio.NewTailReader(filepath.Join(blocker, "chan.in")); err == nil {
		t.Fatal("expected setup error when the parent is a regular file")
	}
}

func TestParseStartOffset(t *testing.T) {
	tests := map[string]filestdio.StartOffset{
		"":          filestdio.StartAtBeginning,
		"beginning": filestdio.StartAtBeginning,
		"START":     filestdio.StartAtBeginning,
		"end":       filestdio.StartAtEnd,
		" tail ":    filestdio.StartAtEnd,
	}
	for input, want := range tests {
		got, err := filestdio.ParseStartOffset(input)
		if err != nil {
			t.Fatalf("ParseStartOffset(%q): %v", input, err)
		}
		if got != want {
			t.Fatalf("ParseStartOffset(%q) = %v, want %v", input, got, want)
		}
	}
	if _, err := filestdio.ParseStartOffset("middle"); err == nil {
		t.Fatal("expected error for unknown start offset")
	}
}

package testsupport

import (
	"bytes"
	"context"
	"testing"
	"time"
)

// ContextReader is satisfied by filestdio readers and endpoints.
type ContextReader interface {
	ReadContext(ctx context.Context, p []byte) (int, error)
}

// ReadExactly reads until want bytes have arrived or timeout elapses, then
// compares them with want.
func ReadExactly(t testing.TB, r ContextReader, want []byte, timeout time.Duration) {
	t.Helper()

	got := ReadN(t, r, len(want), timeout)
	if !bytes.Equal(got, want) {
		t.Fatalf("unexpected stream content: got %q want %q", got, want)
	}
}

// ReadN collects n bytes from r within timeout.
func ReadN(t testing.TB, r ContextReader, n int, timeout time.Duration) []byte {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	out := make([]byte, 0, n)
	buf := make([]byte, 4096)
	for len(out) < n {
		limit := n - len(out)
		if limit > len(buf) {
			limit = len(buf)
		}
		read, err := r.ReadContext(ctx, buf[:limit])
		out = append(out, buf[:read]...)
		if err != nil {
			t.Fatalf("read after %d/%d bytes: %v (got %q)", len(out), n, err, out)
		}
	}
	return out
}

// ExpectSilence fails if r yields any data within wait.
func ExpectSilence(t testing.TB, r ContextReader, wait time.Duration) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), wait)
	defer cancel()

	buf := make([]byte, 1)
	if n, err := r.ReadContext(ctx, buf); n > 0 {
		t.Fatalf("expected no data, got %q (err=%v)", buf[:n], err)
	}
}

package main

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"tailpipe/internal/config"
	"tailpipe/internal/testsupport"
)

// isolateCLI points HOME and the working directory at temp dirs and disables
// config file discovery.
func isolateCLI(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv(config.NoConfigEnv, "1")
	for _, key := range []string{config.EnvStdioIn, config.EnvStdioOut, config.EnvStdioFiles, config.EnvLogLevel} {
		t.Setenv(key, "")
	}
	wd := t.TempDir()
	testsupport.Chdir(t, wd)
	return wd
}

func runCLI(t *testing.T, ctx context.Context, args []string, stdin io.Reader) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if stdin == nil {
		stdin = strings.NewReader("")
	}
	cmd.SetIn(stdin)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected %q to contain %q", haystack, needle)
	}
}

// requireTOMLString accepts either literal or basic string quoting.
func requireTOMLString(t *testing.T, doc, key, value string) {
	t.Helper()
	if strings.Contains(doc, key+" = '"+value+"'") || strings.Contains(doc, key+" = \""+value+"\"") {
		return
	}
	t.Fatalf("expected %s = %q in:\n%s", key, value, doc)
}

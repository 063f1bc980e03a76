package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// Chdir mirrors testing.T.Chdir (added in Go 1.24) so tests build with older
// toolchains: it changes the working directory to dir, sets PWD, and restores
// the previous directory when the test finishes.
func Chdir(t *testing.T, dir string) {
	t.Helper()

	oldwd, err := os.Open(".")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		oldwd.Close()
		t.Fatal(err)
	}
	if !filepath.IsAbs(dir) {
		dir, err = os.Getwd()
		if err != nil {
			t.Fatal(err)
		}
	}
	t.Setenv("PWD", dir)
	t.Cleanup(func() {
		err := oldwd.Chdir()
		oldwd.Close()
		if err != nil {
			panic("testsupport.Chdir: restore working directory: " + err.Error())
		}
	})
}

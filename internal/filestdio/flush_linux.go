package filestdio

import (
	"os"

	"golang.org/x/sys/unix"
)

// flush pushes file data to storage; metadata other than size is skipped.
func flush(f *os.File) error {
	return unix.Fdatasync(int(f.Fd()))
}

//go:build !linux

package filestdio

import "os"

func flush(f *os.File) error {
	return f.Sync()
}

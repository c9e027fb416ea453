//go:build !windows

package fsutil

import "os"

// replace renames tmp over dest; atomic on POSIX filesystems.
func replace(tmp, dest string) error {
	return os.Rename(tmp, dest)
}

// syncDir persists the directory entry after a rename.
func syncDir(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}

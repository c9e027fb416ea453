//go:build windows

package fsutil

import "golang.org/x/sys/windows"

// replace moves tmp over dest with MoveFileEx, replacing an existing file.
func replace(tmp, dest string) error {
	from, err := windows.UTF16PtrFromString(tmp)
	if err != nil {
		return err
	}
	to, err := windows.UTF16PtrFromString(dest)
	if err != nil {
		return err
	}
	return windows.MoveFileEx(from, to, windows.MOVEFILE_REPLACE_EXISTING|windows.MOVEFILE_WRITE_THROUGH)
}

// syncDir is a no-op; directories cannot be fsynced on Windows.
func syncDir(string) error { return nil }

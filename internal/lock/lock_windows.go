//go:build windows

package lock

import (
	"os"

	"github.com/cockroachdb/errors"
	"golang.org/x/sys/windows"
)

// LockFile places an exclusive lock on the open database file.
//
// On Windows this uses LockFileEx over the first byte of the file, which
// fails immediately when another process holds the lock.
//
// The lock lasts until UnlockFile is called or the file handle is closed.
func LockFile(f *os.File) error {
	err := windows.LockFileEx(windows.Handle(f.Fd()),
		windows.LOCKFILE_EXCLUSIVE_LOCK|windows.LOCKFILE_FAIL_IMMEDIATELY,
		0, 1, 0, new(windows.Overlapped))
	if err != nil {
		return errors.Wrapf(err, "database file %s is in use by another process", f.Name())
	}
	return nil
}

// UnlockFile releases a lock acquired via LockFile.
func UnlockFile(f *os.File) {
	windows.UnlockFileEx(windows.Handle(f.Fd()), 0, 1, 0, new(windows.Overlapped))
}

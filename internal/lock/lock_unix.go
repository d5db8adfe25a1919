//go:build unix

package lock

import (
	"os"
	"syscall"

	"github.com/cockroachdb/errors"
)

// LockFile places an exclusive, non-blocking advisory lock on the open
// database file.
//
// On Unix systems this uses flock(2) on the file itself, so no sidecar lock
// file is created. If the lock cannot be acquired, the file is assumed to be
// open in another process.
//
// The lock lasts until UnlockFile is called or the file handle is closed.
func LockFile(f *os.File) error {
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		return errors.Wrapf(err, "database file %s is in use by another process", f.Name())
	}
	return nil
}

// UnlockFile releases a lock acquired via LockFile.
func UnlockFile(f *os.File) {
	syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
}

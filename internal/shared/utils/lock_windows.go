//go:build windows

package utils

import "os"

// FileLock provides file-based locking so two wintune processes cannot
// interleave writes to the same state directory. On Windows the exclusive
// create of the lock file itself is the lock: O_CREATE|O_EXCL fails while
// another process holds it.
type FileLock struct {
	path string
	file *os.File
}

// NewFileLock creates a new file lock
func NewFileLock(path string) *FileLock {
	return &FileLock{path: path}
}

// Lock acquires the file lock
func (fl *FileLock) Lock() error {
	f, err := os.OpenFile(fl.path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return err
	}
	fl.file = f
	return nil
}

// TryLock attempts to acquire the file lock without blocking
func (fl *FileLock) TryLock() (bool, error) {
	f, err := os.OpenFile(fl.path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0644)
	if err != nil {
		if os.IsExist(err) {
			return false, nil
		}
		return false, err
	}
	fl.file = f
	return true, nil
}

// Unlock releases the file lock
func (fl *FileLock) Unlock() error {
	if fl.file == nil {
		return nil
	}
	err := fl.file.Close()
	fl.file = nil
	os.Remove(fl.path)
	return err
}

//go:build linux

package platform

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// openSequential opens path read-only without updating atime (when the
// caller owns the file) and advises the kernel of a sequential scan.
//
//nolint:gosec // G115: fd values are small non-negative integers
func openSequential(path string) (*os.File, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_CLOEXEC|unix.O_NOATIME, 0)
	if errors.Is(err, unix.EPERM) {
		// O_NOATIME is only permitted for the file owner.
		fd, err = unix.Open(path, unix.O_RDONLY|unix.O_CLOEXEC, 0)
	}
	if err != nil {
		return nil, &os.PathError{Op: "open", Path: path, Err: err}
	}

	//nolint:errcheck // fadvise is advisory; not supported on all filesystems
	unix.Fadvise(fd, 0, 0, unix.FADV_SEQUENTIAL)

	return os.NewFile(uintptr(fd), path), nil
}

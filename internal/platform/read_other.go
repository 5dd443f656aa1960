//go:build !linux

package platform

import "os"

// openSequential has no read hints outside Linux.
func openSequential(path string) (*os.File, error) {
	return openPlain(path)
}

//go:build !unix

package observability

import "os"

// lockFile is a no-op where flock is unavailable; the in-process mutex
// still serialises writers within one process.
func lockFile(_ *os.File) (unlock func() error, err error) {
	return func() error { return nil }, nil
}

//go:build !windows

package fs

import "time"

// Creation time cannot be set through a portable syscall outside Windows.
func setBirthTime(string, time.Time) error {
	return nil
}

package fs

import (
	"os"
	"time"

	"github.com/djherbis/times"
)

type FileTimes struct {
	ModTime   time.Time
	BirthTime *time.Time
}

// StatTimes returns the modification time of path and, where the platform records
// it, its creation time.
func StatTimes(path string) (FileTimes, error) {
	ts, err := times.Stat(path)
	if err != nil {
		return FileTimes{}, err
	}

	ft := FileTimes{ModTime: ts.ModTime()}
	if ts.HasBirthTime() {
		bt := ts.BirthTime()
		ft.BirthTime = &bt
	}

	return ft, nil
}

// SetFileTimes sets the access, modification and, where supported, creation time of path.
func SetFileTimes(path string, t time.Time) error {
	if err := os.Chtimes(path, t, t); err != nil {
		return err
	}

	return setBirthTime(path, t)
}

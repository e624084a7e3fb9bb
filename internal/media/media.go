package media

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/fedragon/media-timediff/internal/fs"
	"github.com/fedragon/media-timediff/internal/models"

	"github.com/rwcarlsen/goexif/exif"
	"go.uber.org/zap"
)

const exifLayout = "2006:01:02 15:04:05"

// DefaultLocation is the zone camera clocks are assumed to be set to.
var DefaultLocation = time.FixedZone("UTC+09:00", 9*60*60)

// Accessor reads and writes the shooting time of a media file.
type Accessor interface {
	ReadShootingTime(ctx context.Context, path string) (time.Time, error)
	WriteShootingTime(ctx context.Context, path string, t time.Time) error
}

type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Tool reads EXIF capture times natively and rewrites them through exiftool.
// Files other than JPEG only carry their filesystem times.
type Tool struct {
	ExifTool string
	Location *time.Location
	Logger   *zap.Logger

	run commandRunner
}

func NewTool(logger *zap.Logger, exifTool string, loc *time.Location) *Tool {
	if exifTool == "" {
		exifTool = "exiftool"
	}
	if loc == nil {
		loc = DefaultLocation
	}

	return &Tool{
		ExifTool: exifTool,
		Location: loc,
		Logger:   logger,
		run:      runCommand,
	}
}

func (t *Tool) ReadShootingTime(_ context.Context, path string) (time.Time, error) {
	var (
		ts  time.Time
		err error
	)

	if fs.HasType(path, fs.ImageTypes) {
		ts, err = t.readExif(path)
	} else {
		ts, err = readModTime(path)
	}

	if err != nil || ts.IsZero() {
		return time.Time{}, &models.ExpectedError{
			Kind: models.ShootingDateUnavailable,
			Msg:  "cannot read shooting date of " + path,
			Err:  err,
		}
	}

	return ts, nil
}

func (t *Tool) readExif(path string) (time.Time, error) {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, err
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return time.Time{}, err
	}

	tag, err := x.Get(exif.DateTimeOriginal)
	if err != nil {
		if tag, err = x.Get(exif.DateTime); err != nil {
			return time.Time{}, err
		}
	}

	raw, err := tag.StringVal()
	if err != nil {
		return time.Time{}, err
	}

	return time.ParseInLocation(exifLayout, strings.TrimRight(raw, "\x00 "), t.Location)
}

func readModTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}

	return info.ModTime(), nil
}

// WriteShootingTime rewrites the EXIF dates of JPEG files, then sets the filesystem times
// of any file to ts.
func (t *Tool) WriteShootingTime(ctx context.Context, path string, ts time.Time) error {
	if fs.HasType(path, fs.ImageTypes) {
		value := ts.In(t.Location).Format(exifLayout)
		t.Logger.Debug("Rewriting EXIF dates", zap.String("path", path), zap.String("value", value))

		out, err := t.run(ctx, t.ExifTool, "-overwrite_original", "-AllDates="+value, path)
		if err != nil {
			return fmt.Errorf("%v failed on %v: %w: %s", t.ExifTool, path, err, strings.TrimSpace(string(out)))
		}
	}

	if err := fs.SetFileTimes(path, ts); err != nil {
		return fmt.Errorf("unable to set file times of %v: %w", path, err)
	}

	return nil
}

package fs

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fedragon/media-timediff/internal/models"

	"go.uber.org/zap"
	"lukechampine.com/blake3"
)

const (
	JPG  = ".jpg"
	JPEG = ".jpeg"
	MP4  = ".mp4"

	// DoneMarker is appended to the base name of every processed file.
	DoneMarker = "_adjusted"
)

var (
	MediaTypes = []string{JPG, JPEG, MP4}
	ImageTypes = []string{JPG, JPEG}
)

// HasType reports whether path's extension, compared case-insensitively, is one of types.
func HasType(path string, types []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, t := range types {
		if ext == t {
			return true
		}
	}
	return false
}

func IsDone(name string) bool {
	return strings.Contains(name, DoneMarker)
}

// Walk streams, in lexical order, every file under root having one of the given types
// and not yet carrying the done marker. A walk failure is sent as the last item.
func Walk(ctx context.Context, logger *zap.Logger, root string, types []string) <-chan models.Media {
	media := make(chan models.Media)

	typesMap := make(map[string]bool)
	for _, t := range types {
		typesMap[strings.ToLower(t)] = true
	}

	send := func(m models.Media) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case media <- m:
			return nil
		}
	}

	go func() {
		defer close(media)

		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if d.IsDir() {
				return nil
			}

			if !typesMap[strings.ToLower(filepath.Ext(d.Name()))] {
				return nil
			}

			if IsDone(d.Name()) {
				logger.Debug("Skipping already adjusted file", zap.String("path", path))
				return nil
			}

			return send(models.Media{Path: path})
		})

		if err != nil && ctx.Err() == nil {
			_ = send(models.Media{Err: err})
		}
	}()

	return media
}

// DonePath returns the name path gets once processed: same directory and extension,
// base name suffixed with DoneMarker.
func DonePath(path string) string {
	dir, name := filepath.Split(path)
	ext := filepath.Ext(name)
	return filepath.Join(dir, strings.TrimSuffix(name, ext)+DoneMarker+ext)
}

var renameFunc = os.Rename

// MarkDone renames path to DonePath(path), refusing to replace anything already there.
func MarkDone(path string) (string, error) {
	target := DonePath(path)

	if _, err := os.Lstat(target); err == nil {
		return "", fmt.Errorf("cannot mark %v as done: %v already exists: %w", path, target, os.ErrExist)
	} else if !os.IsNotExist(err) {
		return "", err
	}

	if err := renameFunc(path, target); err != nil {
		return "", err
	}

	return target, nil
}

// Hash returns the hex encoded blake3 digest of the file's content.
func Hash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := blake3.New(32, nil)
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

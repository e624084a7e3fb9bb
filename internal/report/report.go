package report

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/fedragon/media-timediff/internal/models"

	"github.com/natefinch/atomic"
)

type File struct {
	Path          string    `json:"path"`
	DonePath      string    `json:"done_path,omitempty"`
	Original      time.Time `json:"original"`
	Corrected     time.Time `json:"corrected"`
	OffsetMinutes int       `json:"offset_minutes"`
	Matched       bool      `json:"matched"`
}

type Report struct {
	Root       string    `json:"root"`
	RuleFile   string    `json:"rule_file"`
	Rules      int       `json:"rules"`
	DryRun     bool      `json:"dry_run"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Processed  int       `json:"processed"`
	Error      string    `json:"error,omitempty"`
	Files      []File    `json:"files"`
}

// Add appends m, processed or planned, to the report.
func (r *Report) Add(m models.Media, donePath string) {
	r.Files = append(r.Files, File{
		Path:          m.Path,
		DonePath:      donePath,
		Original:      m.Original,
		Corrected:     m.Corrected,
		OffsetMinutes: m.OffsetMinutes,
		Matched:       m.Matched,
	})
}

// Write replaces the file at path with the indented JSON rendering of r, atomically.
func Write(path string, r Report) error {
	if r.Files == nil {
		r.Files = []File{}
	}

	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')

	return atomic.WriteFile(path, bytes.NewReader(b))
}

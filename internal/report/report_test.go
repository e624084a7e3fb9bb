package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fedragon/media-timediff/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))

	original := time.Date(2021, 2, 10, 8, 0, 0, 0, time.UTC)
	r := Report{Root: "/trip", RuleFile: "/trip/rules.csv", Rules: 2, Processed: 1}
	r.Add(models.Media{
		Path:          "/trip/a.jpg",
		Original:      original,
		Corrected:     original.Add(9 * time.Hour),
		OffsetMinutes: -540,
		Matched:       true,
	}, "/trip/a_adjusted.jpg")

	require.NoError(t, Write(path, r))

	b, err := os.ReadFile(path)
	require.NoError(t, err)

	var got Report
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, 1, got.Processed)
	require.Len(t, got.Files, 1)
	assert.Equal(t, "/trip/a_adjusted.jpg", got.Files[0].DonePath)
	assert.Equal(t, -540, got.Files[0].OffsetMinutes)
}

func TestWriteEmptyReportListsNoFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")

	require.NoError(t, Write(path, Report{Root: "/trip", Error: "no files"}))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"files": []`)
}

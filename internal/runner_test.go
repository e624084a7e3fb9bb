package internal

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fedragon/media-timediff/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const ruleTable = "開始日時_写真,終了日時_写真,増減分\n" +
	"2021/02/01 12:00,2021/02/15 18:00,-540\n" +
	"2021/02/16 06:00,2021/02/27 06:00,-60\n"

func TestRunMissingArguments(t *testing.T) {
	cases := []struct {
		name   string
		config Config
	}{
		{name: "without a rule file", config: Config{TargetDir: "/trip"}},
		{name: "without a target directory", config: Config{RuleFile: "/trip/rules.csv"}},
	}

	for _, c := range cases {
		_, err := NewRunner(zaptest.NewLogger(t), c.config).Run(context.Background())
		assert.Equal(t, models.MissingArguments, models.KindOf(err), c.name)
	}
}

func TestRunNoRuleFile(t *testing.T) {
	dir := t.TempDir()

	_, err := NewRunner(zaptest.NewLogger(t), Config{
		RuleFile:  filepath.Join(dir, "missing.csv"),
		TargetDir: dir,
		Quiet:     true,
	}).Run(context.Background())

	assert.Equal(t, models.NoRuleFile, models.KindOf(err))
}

func TestRunVideos(t *testing.T) {
	dir := t.TempDir()
	ruleFile := filepath.Join(dir, "rules.csv")
	require.NoError(t, os.WriteFile(ruleFile, []byte(ruleTable), 0o644))

	target := filepath.Join(dir, "trip")
	require.NoError(t, os.MkdirAll(target, 0o755))
	clip := filepath.Join(target, "clip.mp4")
	require.NoError(t, os.WriteFile(clip, []byte("x"), 0o644))

	jst := time.FixedZone("JST", 9*60*60)
	original := time.Date(2021, 2, 20, 12, 0, 0, 0, jst)
	require.NoError(t, os.Chtimes(clip, original, original))

	reportPath := filepath.Join(dir, "report.json")
	journalPath := filepath.Join(dir, "journal.db")

	n, err := NewRunner(zaptest.NewLogger(t), Config{
		RuleFile:    ruleFile,
		TargetDir:   target,
		JournalPath: journalPath,
		ReportPath:  reportPath,
		Location:    jst,
		Quiet:       true,
	}).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, n)

	info, err := os.Stat(filepath.Join(target, "clip_adjusted.mp4"))
	require.NoError(t, err)
	assert.True(t, original.Add(time.Hour).Equal(info.ModTime()))
	assert.FileExists(t, reportPath)
	assert.FileExists(t, journalPath)
}

func TestRunDryRun(t *testing.T) {
	dir := t.TempDir()
	ruleFile := filepath.Join(dir, "rules.csv")
	require.NoError(t, os.WriteFile(ruleFile, []byte(ruleTable), 0o644))
	clip := filepath.Join(dir, "clip.MP4")
	require.NoError(t, os.WriteFile(clip, []byte("x"), 0o644))

	n, err := NewRunner(zaptest.NewLogger(t), Config{
		RuleFile:    ruleFile,
		TargetDir:   dir,
		JournalPath: filepath.Join(dir, "journal.db"),
		DryRun:      true,
		Quiet:       true,
	}).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.FileExists(t, clip)
	assert.NoFileExists(t, filepath.Join(dir, "journal.db"))
}

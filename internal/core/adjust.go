package core

import (
	"context"
	"fmt"
	"time"

	"github.com/fedragon/media-timediff/internal/db"
	"github.com/fedragon/media-timediff/internal/fs"
	"github.com/fedragon/media-timediff/internal/media"
	"github.com/fedragon/media-timediff/internal/models"
	"github.com/fedragon/media-timediff/internal/progress"
	"github.com/fedragon/media-timediff/internal/rules"

	"go.uber.org/zap"
)

const (
	PhaseDiscover = "discover"
	PhaseAdjust   = "adjust"
)

// Sign tells how a rule's offset combines with a file's original shooting time.
type Sign int

const (
	// SignSubtract turns a time recorded in the home zone back into the local one:
	// the offset is what, added to the shooting time, gives the local time,
	// so it is removed. This is the default.
	SignSubtract Sign = iota
	SignAdd
)

func (s Sign) Apply(t time.Time, offsetMinutes int) time.Time {
	d := time.Duration(offsetMinutes) * time.Minute
	if s == SignAdd {
		return t.Add(d)
	}
	return t.Add(-d)
}

type Result struct {
	Media    models.Media
	DonePath string
}

type Adjuster interface {
	Adjust(ctx context.Context, root string) ([]Result, error)
}

// SequentialAdjuster corrects one file at a time: every file is read and resolved first,
// then each one is written and renamed. The first failure stops the run.
type SequentialAdjuster struct {
	Accessor media.Accessor
	Resolver *rules.Resolver
	Reporter progress.Reporter
	Repo     db.Repository
	Sign     Sign
	DryRun   bool
	Logger   *zap.Logger
}

func (sa *SequentialAdjuster) Adjust(ctx context.Context, root string) ([]Result, error) {
	planned, err := sa.Discover(ctx, root)
	if err != nil {
		return nil, err
	}

	if len(planned) == 0 {
		return nil, models.Expected(models.NoTargetFiles, "no files to adjust found in %v", root)
	}

	if sa.DryRun {
		results := make([]Result, 0, len(planned))
		for _, m := range planned {
			sa.Logger.Info("Would have adjusted file",
				zap.String("path", m.Path),
				zap.Time("original", m.Original),
				zap.Time("corrected", m.Corrected),
				zap.String("dest", fs.DonePath(m.Path)))
			results = append(results, Result{Media: m})
		}
		return results, nil
	}

	return sa.Apply(ctx, planned)
}

// Discover lists the files to adjust under root and computes their corrected time.
func (sa *SequentialAdjuster) Discover(ctx context.Context, root string) ([]models.Media, error) {
	sa.Logger.Info("Discovering files", zap.String("root", root))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	tracker := progress.Track(sa.Reporter, PhaseDiscover, progress.Unbounded)
	defer tracker.Finish()

	var planned []models.Media
	for m := range fs.Walk(ctx, sa.Logger, root, fs.MediaTypes) {
		if m.Err != nil {
			return nil, fmt.Errorf("unable to walk %v: %w", root, m.Err)
		}

		original, err := sa.Accessor.ReadShootingTime(ctx, m.Path)
		if err != nil {
			return nil, err
		}

		offset, ok := sa.Resolver.Resolve(original)
		m.Original = original
		m.OffsetMinutes = offset
		m.Matched = ok
		m.Corrected = sa.Sign.Apply(original, offset)

		sa.Logger.Debug("Resolved offset",
			zap.String("path", m.Path),
			zap.Time("original", m.Original),
			zap.Int("offset_minutes", offset),
			zap.Bool("matched", ok))

		planned = append(planned, m)
		tracker.Step()
	}

	return planned, nil
}

// Apply writes the corrected time of every planned file and marks it as done.
// Results hold the files processed before a failure, if any.
func (sa *SequentialAdjuster) Apply(ctx context.Context, planned []models.Media) ([]Result, error) {
	tracker := progress.Track(sa.Reporter, PhaseAdjust, len(planned))
	defer tracker.Finish()

	results := make([]Result, 0, len(planned))
	for _, m := range planned {
		donePath, err := sa.apply(ctx, m)
		if donePath != "" {
			results = append(results, Result{Media: m, DonePath: donePath})
		}
		if err != nil {
			return results, err
		}

		tracker.Step()
	}

	return results, nil
}

func (sa *SequentialAdjuster) apply(ctx context.Context, m models.Media) (string, error) {
	prev, err := fs.StatTimes(m.Path)
	if err != nil {
		return "", err
	}

	if err := sa.Accessor.WriteShootingTime(ctx, m.Path, m.Corrected); err != nil {
		return "", err
	}

	donePath, err := fs.MarkDone(m.Path)
	if err != nil {
		return "", err
	}

	sa.Logger.Debug("Adjusted file",
		zap.String("source", m.Path),
		zap.String("dest", donePath),
		zap.Time("corrected", m.Corrected))

	if sa.Repo == nil {
		return donePath, nil
	}

	hash, err := fs.Hash(donePath)
	if err != nil {
		return donePath, err
	}

	return donePath, sa.Repo.Record(models.Correction{
		Path:          m.Path,
		DonePath:      donePath,
		Original:      m.Original,
		Corrected:     m.Corrected,
		OffsetMinutes: m.OffsetMinutes,
		PrevModTime:   prev.ModTime,
		PrevBirthTime: prev.BirthTime,
		Hash:          hash,
		ProcessedAt:   time.Now(),
	})
}

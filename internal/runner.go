package internal

import (
	"context"
	"os"
	"time"

	"github.com/fedragon/media-timediff/internal/core"
	dedb "github.com/fedragon/media-timediff/internal/db"
	"github.com/fedragon/media-timediff/internal/media"
	"github.com/fedragon/media-timediff/internal/models"
	"github.com/fedragon/media-timediff/internal/progress"
	"github.com/fedragon/media-timediff/internal/report"
	"github.com/fedragon/media-timediff/internal/rules"

	"go.uber.org/zap"
)

type Config struct {
	RuleFile    string
	TargetDir   string
	JournalPath string
	ReportPath  string
	ExifTool    string
	Location    *time.Location
	DryRun      bool
	Quiet       bool
}

type Runner struct {
	logger *zap.Logger
	config Config
}

func NewRunner(logger *zap.Logger, config Config) *Runner {
	if config.Location == nil {
		config.Location = media.DefaultLocation
	}

	return &Runner{
		logger: logger,
		config: config,
	}
}

// Run adjusts every media file under the target directory and returns how many were processed.
func (r *Runner) Run(ctx context.Context) (int, error) {
	if r.config.RuleFile == "" || r.config.TargetDir == "" {
		return 0, models.Expected(models.MissingArguments, "both the rule file and the target directory are required")
	}

	start := time.Now()
	defer func() {
		r.logger.Info("Elapsed time", zap.Duration("elapsed", time.Since(start)))
	}()

	if r.config.DryRun {
		r.logger.Info("Running in DRY-RUN mode: files will be neither modified nor renamed")
	}

	timeDiffRules, err := rules.LoadTimeDiffRules(rules.NewParser(r.config.Location), r.config.RuleFile)
	if err != nil {
		return 0, err
	}
	r.logger.Info("Loaded time difference rules", zap.String("path", r.config.RuleFile), zap.Int("rules", len(timeDiffRules)))

	adjuster := &core.SequentialAdjuster{
		Accessor: media.NewTool(r.logger, r.config.ExifTool, r.config.Location),
		Resolver: rules.NewResolver(timeDiffRules),
		Reporter: r.reporter(),
		Sign:     core.SignSubtract,
		DryRun:   r.config.DryRun,
		Logger:   r.logger,
	}

	if r.config.JournalPath != "" && !r.config.DryRun {
		db, err := dedb.Connect(r.config.JournalPath)
		if err != nil {
			return 0, err
		}
		defer func() {
			if err := db.Close(); err != nil {
				r.logger.Info(err.Error())
			}
		}()
		if err := dedb.Init(db); err != nil {
			return 0, err
		}

		repo, err := dedb.NewRepository(db, r.logger)
		if err != nil {
			return 0, err
		}
		adjuster.Repo = repo
	}

	rr := report.Report{
		Root:      r.config.TargetDir,
		RuleFile:  r.config.RuleFile,
		Rules:     adjuster.Resolver.Len(),
		DryRun:    r.config.DryRun,
		StartedAt: start,
	}

	results, err := adjuster.Adjust(ctx, r.config.TargetDir)
	for _, res := range results {
		rr.Add(res.Media, res.DonePath)
	}
	rr.Processed = len(results)
	rr.FinishedAt = time.Now()
	if err != nil {
		rr.Error = err.Error()
	}

	if r.config.ReportPath != "" {
		if werr := report.Write(r.config.ReportPath, rr); werr != nil {
			r.logger.Error("Cannot write report", zap.String("path", r.config.ReportPath), zap.Error(werr))
		}
	}

	if err != nil {
		return len(results), err
	}

	r.logger.Info("Total adjusted files", zap.Int("total", len(results)))
	return len(results), nil
}

func (r *Runner) reporter() progress.Reporter {
	if r.config.Quiet {
		return progress.Log{Logger: r.logger}
	}
	return progress.Console{W: os.Stderr}
}

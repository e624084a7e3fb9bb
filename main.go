package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/fedragon/media-timediff/internal"
	dedb "github.com/fedragon/media-timediff/internal/db"
	"github.com/fedragon/media-timediff/internal/models"

	"github.com/mitchellh/go-homedir"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

const description = `Adjusts the shooting time of the JPG and MP4 files found under --target-dir
following the rules listed in --csv-file-path. The rule file is a CSV file (extra columns
are ignored) encoded in Shift_JIS or UTF-8:

   開始日時_写真,終了日時_写真,増減分
   2021/02/01 12:00,2021/02/15 18:00,-540
   2021/02/16 06:00,2021/02/27 06:00, -60

Start and end are home-zone times of the stay; 増減分 holds the minutes that, added to the
shooting time of a file, give the local shooting time. A rule is in effect from its start
until the next rule's start, so with the rules above files shot between 2021/02/01 12:00
and 2021/02/16 06:00 (not 02/15 18:00) are shifted by 540 minutes.
Processed files are renamed with an "_adjusted" suffix and skipped on later runs.`

func main() {
	logger := zap.NewNop()

	app := &cli.App{
		Name:        "media-timediff",
		Usage:       "fix the shooting time of photos and videos taken abroad",
		Description: description,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
			&cli.StringFlag{
				Name:    "csv-file-path",
				Usage:   "path of the CSV file holding the time difference rules (required)",
				EnvVars: []string{"TIMEDIFF_CSV"},
			},
			&cli.StringFlag{
				Name:    "target-dir",
				Usage:   "directory holding the JPG and MP4 files to adjust (required)",
				EnvVars: []string{"TIMEDIFF_TARGET"},
			},
			&cli.StringFlag{
				Name:    "journal",
				Usage:   "path of the database recording every adjusted file",
				EnvVars: []string{"TIMEDIFF_JOURNAL"},
			},
			&cli.StringFlag{
				Name:  "report",
				Usage: "path of the JSON report to write at the end of the run",
			},
			&cli.StringFlag{
				Name:    "exiftool",
				Usage:   "exiftool executable used to rewrite EXIF dates",
				Value:   "exiftool",
				EnvVars: []string{"EXIFTOOL"},
			},
			&cli.DurationFlag{
				Name:  "zone-offset",
				Usage: "UTC offset of the camera clock and of the dates in the rule file",
				Value: 9 * time.Hour,
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "only report what would be adjusted",
			},
			&cli.BoolFlag{
				Name:  "quiet",
				Usage: "log progress instead of drawing it on the terminal",
			},
		},
		Before: func(c *cli.Context) error {
			l, err := newLogger(c.Bool("debug"))
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
		Action: func(c *cli.Context) error {
			if c.String("csv-file-path") == "" || c.String("target-dir") == "" {
				return models.Expected(models.MissingArguments, "both --csv-file-path and --target-dir are required")
			}

			ruleFile, err := homedir.Expand(c.String("csv-file-path"))
			if err != nil {
				return err
			}
			targetDir, err := homedir.Expand(c.String("target-dir"))
			if err != nil {
				return err
			}
			journal, err := homedir.Expand(c.String("journal"))
			if err != nil {
				return err
			}
			reportPath, err := homedir.Expand(c.String("report"))
			if err != nil {
				return err
			}

			_, err = internal.NewRunner(logger, internal.Config{
				RuleFile:    ruleFile,
				TargetDir:   targetDir,
				JournalPath: journal,
				ReportPath:  reportPath,
				ExifTool:    c.String("exiftool"),
				Location:    zone(c.Duration("zone-offset")),
				DryRun:      c.Bool("dry-run"),
				Quiet:       c.Bool("quiet"),
			}).Run(context.Background())

			return err
		},
		Commands: []*cli.Command{
			{
				Name:  "history",
				Usage: "list the files recorded in a journal",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "journal",
						Usage:    "path of the journal database",
						EnvVars:  []string{"TIMEDIFF_JOURNAL"},
						Required: true,
					},
				},
				Action: func(c *cli.Context) error {
					path, err := homedir.Expand(c.String("journal"))
					if err != nil {
						return err
					}

					return history(logger, path)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		printError(os.Stderr, err)
		_ = logger.Sync()
		os.Exit(1)
	}

	_ = logger.Sync()
}

// printError writes err once: expected failures as a short message, anything else in full.
func printError(w io.Writer, err error) {
	if models.IsExpected(err) {
		fmt.Fprintln(w, "[ERROR]", err.Error())
		return
	}
	fmt.Fprintf(w, "%+v\n", err)
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func zone(offset time.Duration) *time.Location {
	sign := '+'
	abs := offset
	if offset < 0 {
		sign = '-'
		abs = -offset
	}

	name := fmt.Sprintf("UTC%c%02d:%02d", sign, int(abs.Hours()), int(abs.Minutes())%60)
	return time.FixedZone(name, int(offset.Seconds()))
}

func history(logger *zap.Logger, path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("cannot open journal %v: %w", path, err)
	}

	db, err := dedb.Connect(path)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Info(err.Error())
		}
	}()
	if err := dedb.Init(db); err != nil {
		return err
	}

	repo, err := dedb.NewRepository(db, logger)
	if err != nil {
		return err
	}

	corrections, err := repo.List()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PROCESSED\tORIGINAL\tCORRECTED\tOFFSET\tFILE")
	for _, c := range corrections {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			c.ProcessedAt.Format(time.RFC3339),
			c.Original.Format(time.RFC3339),
			c.Corrected.Format(time.RFC3339),
			c.OffsetMinutes,
			c.DonePath)
	}

	return w.Flush()
}

package progress

import (
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
)

// Unbounded is the total of a phase whose item count is not known upfront.
const Unbounded = -1

// Reporter receives the progress of a phase. Implementations only present it.
type Reporter interface {
	Start(phase string, total int)
	// Step is called once per item; remaining is negative when it cannot be estimated.
	Step(phase string, done, total int, remaining time.Duration)
	Finish(phase string, done int, elapsed time.Duration)
}

// Tracker times a phase and estimates how long the remaining items will take.
type Tracker struct {
	reporter Reporter
	phase    string
	total    int
	done     int
	started  time.Time
	now      func() time.Time
}

func Track(r Reporter, phase string, total int) *Tracker {
	return track(r, phase, total, time.Now)
}

func track(r Reporter, phase string, total int, now func() time.Time) *Tracker {
	if r == nil {
		r = Nop{}
	}

	t := &Tracker{reporter: r, phase: phase, total: total, started: now(), now: now}
	r.Start(phase, total)
	return t
}

func (t *Tracker) Step() {
	t.done++
	t.reporter.Step(t.phase, t.done, t.total, Remaining(t.now().Sub(t.started), t.done, t.total))
}

func (t *Tracker) Finish() time.Duration {
	elapsed := t.now().Sub(t.started)
	t.reporter.Finish(t.phase, t.done, elapsed)
	return elapsed
}

// Remaining extrapolates the average time per item over the items left.
func Remaining(elapsed time.Duration, done, total int) time.Duration {
	if total < 0 || done <= 0 {
		return -1
	}
	if done >= total {
		return 0
	}

	return elapsed / time.Duration(done) * time.Duration(total-done)
}

type Nop struct{}

func (Nop) Start(string, int)                    {}
func (Nop) Step(string, int, int, time.Duration) {}
func (Nop) Finish(string, int, time.Duration)    {}

// Console rewrites a single status line per phase, e.g. "[adjust] 3/10 (ETA 12s)".
type Console struct {
	W io.Writer
}

func (c Console) Start(phase string, total int) {
	fmt.Fprintf(c.W, "[%s] starting (%s items)\n", phase, count(total))
}

func (c Console) Step(phase string, done, total int, remaining time.Duration) {
	if remaining < 0 {
		fmt.Fprintf(c.W, "\r[%s] %d/%s", phase, done, count(total))
		return
	}
	fmt.Fprintf(c.W, "\r[%s] %d/%s (ETA %s)", phase, done, count(total), remaining.Round(time.Second))
}

func (c Console) Finish(phase string, done int, elapsed time.Duration) {
	fmt.Fprintf(c.W, "\n[%s] done: %d items in %s\n", phase, done, elapsed.Round(time.Millisecond))
}

func count(total int) string {
	if total < 0 {
		return "?"
	}
	return fmt.Sprint(total)
}

// Log reports progress as structured debug entries and phase boundaries as info entries.
type Log struct {
	Logger *zap.Logger
}

func (l Log) Start(phase string, total int) {
	l.Logger.Info("Phase started", zap.String("phase", phase), zap.Int("total", total))
}

func (l Log) Step(phase string, done, total int, remaining time.Duration) {
	l.Logger.Debug("Progress",
		zap.String("phase", phase),
		zap.Int("done", done),
		zap.Int("total", total),
		zap.Duration("remaining", remaining))
}

func (l Log) Finish(phase string, done int, elapsed time.Duration) {
	l.Logger.Info("Phase finished", zap.String("phase", phase), zap.Int("done", done), zap.Duration("elapsed", elapsed))
}

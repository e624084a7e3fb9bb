package rules

import (
	"errors"
	"io/fs"
	"math"
	"sort"
	"time"

	"github.com/fedragon/media-timediff/internal/models"
)

// Headers of the rule table: stay start and end (home-zone photo times) and the
// minutes that, added to a file's shooting time, yield the local shooting time.
const (
	StartHeader  = "開始日時_写真"
	EndHeader    = "終了日時_写真"
	OffsetHeader = "増減分"
)

// MaxOffsetMinutes bounds the offset of a rule, in either direction.
const MaxOffsetMinutes = 48 * 60

var TimeDiffColumns = []Column{
	{From: StartHeader, To: "start", Type: Date},
	{From: EndHeader, To: "end", Type: Date},
	{From: OffsetHeader, To: "diff", Type: Number, Validate: validOffset},
}

func validOffset(v any) bool {
	f, ok := v.(float64)
	return ok && !math.IsNaN(f) && math.Abs(f) <= MaxOffsetMinutes
}

// LoadTimeDiffRules reads the rule table at path and returns its rules sorted by start.
func LoadTimeDiffRules(p *Parser, path string) ([]models.TimeDiffRule, error) {
	records, err := p.Parse(path, TimeDiffColumns)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &models.ExpectedError{Kind: models.NoRuleFile, Msg: "rule file not found: " + path, Err: err}
		}
		return nil, err
	}

	rules := make([]models.TimeDiffRule, 0, len(records))
	for _, r := range records {
		rules = append(rules, models.TimeDiffRule{
			Start:         r["start"].(time.Time),
			End:           r["end"].(time.Time),
			OffsetMinutes: int(r["diff"].(float64)),
		})
	}

	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Start.Before(rules[j].Start)
	})

	return rules, nil
}

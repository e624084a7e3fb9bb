package rules

import (
	"time"

	"github.com/fedragon/media-timediff/internal/models"
)

// Resolver finds the offset in effect at a given time.
//
// Rule i covers [rule[i].Start, rule[i+1].Start], both ends included, and the last rule
// never ends. A time sitting on a shared boundary belongs to the earlier rule.
// Rules must already be sorted by Start.
type Resolver struct {
	rules []models.TimeDiffRule
}

func NewResolver(sorted []models.TimeDiffRule) *Resolver {
	rules := make([]models.TimeDiffRule, len(sorted))
	copy(rules, sorted)

	return &Resolver{rules: rules}
}

func (r *Resolver) Resolve(t time.Time) (int, bool) {
	for i, rule := range r.rules {
		if t.Before(rule.Start) {
			continue
		}
		if i+1 < len(r.rules) && t.After(r.rules[i+1].Start) {
			continue
		}
		return rule.OffsetMinutes, true
	}

	return 0, false
}

func (r *Resolver) Len() int {
	return len(r.rules)
}

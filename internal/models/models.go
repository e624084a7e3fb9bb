package models

import "time"

// TimeDiffRule maps the stay starting at Start to a local-time offset.
// End is kept for reference only: a rule stays in effect until the next rule's Start.
type TimeDiffRule struct {
	Start         time.Time
	End           time.Time
	OffsetMinutes int
}

type Media struct {
	Path          string
	Original      time.Time
	Corrected     time.Time
	OffsetMinutes int
	Matched       bool
	Err           error `json:"-"`
}

// Correction is what the journal remembers about one processed file.
type Correction struct {
	Path          string     `json:"path"`
	DonePath      string     `json:"done_path"`
	Original      time.Time  `json:"original"`
	Corrected     time.Time  `json:"corrected"`
	OffsetMinutes int        `json:"offset_minutes"`
	PrevModTime   time.Time  `json:"prev_mod_time"`
	PrevBirthTime *time.Time `json:"prev_birth_time,omitempty"`
	Hash          string     `json:"hash"`
	ProcessedAt   time.Time  `json:"processed_at"`
}

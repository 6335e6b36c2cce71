package pitcher

import (
	"math"
	"strings"
	"time"
)

// Source identifies the origin that produced a pitcher fact.
type Source string

const (
	SourceOfficialAPI       Source = "official-api"
	SourceESPN              Source = "espn"
	SourceBaseballReference Source = "baseball-reference"
	SourceHardcodedTable    Source = "hardcoded-table"
	SourceDefault           Source = "default"
)

// AllSources lists every known source from most to least trusted.
var AllSources = []Source{
	SourceOfficialAPI,
	SourceESPN,
	SourceBaseballReference,
	SourceHardcodedTable,
	SourceDefault,
}

func (s Source) Valid() bool {
	for _, known := range AllSources {
		if s == known {
			return true
		}
	}
	return false
}

// Confidence is a coarse trust weight in [0,1]. It is used for display and
// debugging only; scoring treats every ERA as a plain number.
func (s Source) Confidence() float64 {
	switch s {
	case SourceOfficialAPI:
		return 1
	case SourceESPN, SourceBaseballReference:
		return 0.8
	case SourceHardcodedTable:
		return 0.4
	default:
		return 0
	}
}

// Method records how a source located the pitcher.
type Method string

const (
	MethodRosterLookup  Method = "roster-lookup"
	MethodSearch        Method = "search"
	MethodTeamStatsPage Method = "team-stats-page"
	MethodStatsPage     Method = "stats-page"
	MethodNameLookup    Method = "name-lookup"
	MethodNone          Method = "none"
)

// Outcome is the result of one step of a fallback chain.
type Outcome string

const (
	OutcomeHit     Outcome = "hit"
	OutcomeCached  Outcome = "cached"
	OutcomeMiss    Outcome = "miss"
	OutcomeSkipped Outcome = "skipped"
)

// Attempt is one entry of the provenance trail attached to a reconciled fact.
type Attempt struct {
	Source   Source
	Outcome  Outcome
	Detail   string
	Duration time.Duration
}

const (
	DefaultERA  = 4.50
	DefaultWHIP = 1.30
)

// Fact is one pitcher's season line as reported by a single source.
type Fact struct {
	Name       string
	Team       string
	ERA        float64
	WHIP       *float64
	Strikeouts *int
	Innings    *float64
	Source     Source
	Method     Method
	URL        string
	PlayerID   string
	FetchedAt  time.Time
	Attempts   []Attempt
	// Cached is set by fetchers that answered from cache. It is not stored.
	Cached bool `json:"-"`
}

// DefaultFact is the neutral value returned when every source fails.
func DefaultFact(team, name string) Fact {
	whip := DefaultWHIP
	strikeouts := 0
	innings := 0.0
	return Fact{
		Name:       strings.TrimSpace(name),
		Team:       strings.TrimSpace(team),
		ERA:        DefaultERA,
		WHIP:       &whip,
		Strikeouts: &strikeouts,
		Innings:    &innings,
		Source:     SourceDefault,
		Method:     MethodNone,
	}
}

func (f Fact) IsDefault() bool {
	return f.Source == SourceDefault
}

// HasUsableERA reports whether the ERA can be fed to the scoring rules.
func (f Fact) HasUsableERA() bool {
	return !math.IsNaN(f.ERA) && !math.IsInf(f.ERA, 0) && f.ERA >= 0
}

func (f Fact) Confidence() float64 {
	return f.Source.Confidence()
}

// WithProvenance returns a copy of f carrying the given reconciliation trail.
func (f Fact) WithProvenance(attempts []Attempt) Fact {
	out := f
	out.Attempts = append([]Attempt(nil), attempts...)
	return out
}

// Query asks a fetcher for one pitcher's fact.
type Query struct {
	Team         string
	Name         string
	ForceRefresh bool
}

func (q Query) Normalize() Query {
	q.Team = strings.TrimSpace(q.Team)
	q.Name = strings.Join(strings.Fields(q.Name), " ")
	return q
}

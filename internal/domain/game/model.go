package game

import (
	"time"

	"github.com/riskibarqy/mlb-predictions/internal/domain/pitcher"
)

const (
	StatusPreview = "Preview"
	StatusLive    = "Live"
	StatusFinal   = "Final"
)

// ScheduleSource records where a day's game list came from.
type ScheduleSource string

const (
	ScheduleSourceOfficialAPI ScheduleSource = "official-api"
	ScheduleSourceSample      ScheduleSource = "sample"
)

const DateLayout = "2006-01-02"

// ProbablePitcher is an announced starter with the reconciled fact attached.
type ProbablePitcher struct {
	Name string
	Fact pitcher.Fact
}

// TeamStats is a team's season pitching line.
type TeamStats struct {
	TeamERA    float64
	TeamWHIP   float64
	Strikeouts int
	Walks      int
	BullpenERA float64
	// FirstInning is estimated from season totals, not play-by-play.
	FirstInning FirstInningEstimate
	Source      string
}

type FirstInningEstimate struct {
	RunsPerGame  float64
	ScorelessPct float64
}

type TeamSide struct {
	Name            string
	ProbablePitcher *ProbablePitcher
	Stats           *TeamStats
}

// Weather is the current observation in the home team's city.
type Weather struct {
	Temperature         float64
	Condition           string
	Description         string
	WindSpeed           float64
	Humidity            int
	PrecipitationChance float64
	Source              string
}

// Game is one scheduled matchup.
type Game struct {
	ID        int64
	Date      string
	DayOfWeek string
	Status    string
	Venue     string
	GameTime  string
	Home      TeamSide
	Away      TeamSide
	Weather   *Weather
}

// Schedule is the resolved game list for one date.
type Schedule struct {
	Date       string
	Games      []Game
	Source     ScheduleSource
	ResolvedAt time.Time
}

// ScheduledGame is a schedule row before any pitcher resolution.
type ScheduledGame struct {
	ID              int64
	Status          string
	Venue           string
	GameTime        string
	HomeTeam        string
	AwayTeam        string
	HomePitcherName string
	AwayPitcherName string
}

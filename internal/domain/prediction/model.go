package prediction

import (
	"time"

	"github.com/riskibarqy/mlb-predictions/internal/domain/game"
)

// Proposition is one betting-style outcome the engine scores.
type Proposition string

const (
	UnderOneRunFirstInning       Proposition = "under_1_run_first_inning"
	OverTwoPointFiveFirstThree   Proposition = "over_2.5_runs_first_3_innings"
	OverThreePointFiveFirstThree Proposition = "over_3.5_runs_first_3_innings"
)

// AllPropositions is the fixed response order.
var AllPropositions = []Proposition{
	UnderOneRunFirstInning,
	OverTwoPointFiveFirstThree,
	OverThreePointFiveFirstThree,
}

// pathAliases are the short names the front end uses in URLs.
var pathAliases = map[string]Proposition{
	"under_1_run_1st":       UnderOneRunFirstInning,
	"over_2.5_runs_first_3": OverTwoPointFiveFirstThree,
	"over_3.5_runs_first_3": OverThreePointFiveFirstThree,
}

type Rating string

const (
	RatingBet  Rating = "Bet"
	RatingLean Rating = "Lean"
	RatingPass Rating = "Pass"
)

// Factor is one named entry of a prediction's breakdown. Placeholder factors
// carry a neutral score and are not backed by data.
type Factor struct {
	Key         string
	Name        string
	Description string
	Weight      float64
	Score       float64
	Placeholder bool
}

// Prediction is one proposition's result for one game.
type Prediction struct {
	GameID      int64
	Proposition Proposition
	Home        game.TeamSide
	Away        game.TeamSide
	Venue       string
	GameTime    string
	Probability float64
	Rating      Rating
	Factors     []Factor
}

type Metadata struct {
	Date           string
	Timestamp      time.Time
	GameCount      int
	DataSource     string
	ScheduleSource game.ScheduleSource
}

// Set holds every proposition's ranked predictions for one date.
type Set struct {
	Predictions map[Proposition][]Prediction
	Metadata    Metadata
}

// GamePredictions groups the three propositions for one game.
type GamePredictions struct {
	Game        game.Game
	Predictions map[Proposition]Prediction
	Metadata    Metadata
}

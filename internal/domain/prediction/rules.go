package prediction

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/riskibarqy/mlb-predictions/internal/domain/game"
	"github.com/riskibarqy/mlb-predictions/internal/domain/pitcher"
)

var (
	ErrUnknownProposition = errors.New("unknown proposition")
	ErrInvalidRatingBands = errors.New("invalid rating bands")
)

const (
	neutralScore    = 50.0
	probabilityBase = 30.0
	probabilitySpan = 0.4

	eraWeight  = 0.60
	whipWeight = 0.25
	k9Weight   = 0.15
)

// ParseProposition accepts a canonical key or one of its URL aliases.
func ParseProposition(raw string) (Proposition, error) {
	value := strings.TrimSpace(raw)
	for _, item := range AllPropositions {
		if string(item) == value {
			return item, nil
		}
	}
	if alias, ok := pathAliases[value]; ok {
		return alias, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownProposition, raw)
}

// Direction is +1 when better pitching favors the proposition.
func (p Proposition) Direction() float64 {
	if p == UnderOneRunFirstInning {
		return 1
	}
	return -1
}

// thresholdFactor makes 2.5 runs easier to clear than 3.5.
func (p Proposition) thresholdFactor() float64 {
	switch p {
	case OverTwoPointFiveFirstThree:
		return 1.1
	case OverThreePointFiveFirstThree:
		return 0.9
	default:
		return 1
	}
}

// RatingBands are the probability cutoffs for ratings. Bet must be above Lean.
type RatingBands struct {
	Bet  float64
	Lean float64
}

func DefaultRatingBands() RatingBands {
	return RatingBands{Bet: 60, Lean: 52}
}

func (b RatingBands) Validate() error {
	if b.Lean < 0 || b.Bet > 100 {
		return fmt.Errorf("%w: thresholds must be within [0,100]", ErrInvalidRatingBands)
	}
	if b.Bet <= b.Lean {
		return fmt.Errorf("%w: bet=%v must be greater than lean=%v", ErrInvalidRatingBands, b.Bet, b.Lean)
	}
	return nil
}

func (b RatingBands) Rate(probability float64) Rating {
	switch {
	case probability >= b.Bet:
		return RatingBet
	case probability >= b.Lean:
		return RatingLean
	default:
		return RatingPass
	}
}

// PitcherLine is the subset of a fact the scoring rules read. A nil ERA
// means the pitcher is unknown.
type PitcherLine struct {
	ERA        *float64
	WHIP       *float64
	Strikeouts *int
	Innings    *float64
}

// LineFromFact treats default-sourced facts as unknown so they score neutral.
func LineFromFact(fact *pitcher.Fact) PitcherLine {
	if fact == nil || fact.IsDefault() || !fact.HasUsableERA() {
		return PitcherLine{}
	}
	era := fact.ERA
	return PitcherLine{
		ERA:        &era,
		WHIP:       fact.WHIP,
		Strikeouts: fact.Strikeouts,
		Innings:    fact.Innings,
	}
}

func lineFromSide(side game.TeamSide) PitcherLine {
	if side.ProbablePitcher == nil {
		return PitcherLine{}
	}
	return LineFromFact(&side.ProbablePitcher.Fact)
}

// PerformanceScore maps a pitcher line to 0..100, higher meaning better
// run prevention.
func PerformanceScore(line PitcherLine) float64 {
	if line.ERA == nil || math.IsNaN(*line.ERA) {
		return neutralScore
	}
	eraScore := clamp(100-*line.ERA*10, 0, 100)

	if line.WHIP == nil || line.Strikeouts == nil || line.Innings == nil || *line.Innings <= 0 {
		return eraScore
	}
	whipScore := clamp(100-*line.WHIP*50, 0, 100)
	k9 := float64(*line.Strikeouts) / *line.Innings * 9
	k9Score := clamp(k9/15*100, 0, 100)

	return eraWeight*eraScore + whipWeight*whipScore + k9Weight*k9Score
}

// Probability converts the averaged pitcher score into a percentage for the
// proposition. The result is always within [0,100].
func Probability(prop Proposition, pitcherScore float64) float64 {
	var p float64
	if prop.Direction() > 0 {
		p = probabilityBase + pitcherScore*probabilitySpan
	} else {
		p = probabilityBase + (100-pitcherScore)*probabilitySpan*prop.thresholdFactor()
	}
	if math.IsNaN(p) {
		p = probabilityBase + neutralScore*probabilitySpan
	}
	return round1(clamp(p, 0, 100))
}

// Score builds the prediction for one proposition of one game.
func Score(g game.Game, prop Proposition, bands RatingBands) Prediction {
	homeScore := PerformanceScore(lineFromSide(g.Home))
	awayScore := PerformanceScore(lineFromSide(g.Away))
	avg := (homeScore + awayScore) / 2

	probability := Probability(prop, avg)
	return Prediction{
		GameID:      g.ID,
		Proposition: prop,
		Home:        g.Home,
		Away:        g.Away,
		Venue:       g.Venue,
		GameTime:    g.GameTime,
		Probability: probability,
		Rating:      bands.Rate(probability),
		Factors:     FactorBreakdown(prop, g, avg),
	}
}

// ScoreAll scores every proposition for every game and ranks each list by
// probability, highest first.
func ScoreAll(games []game.Game, bands RatingBands) map[Proposition][]Prediction {
	out := make(map[Proposition][]Prediction, len(AllPropositions))
	for _, prop := range AllPropositions {
		items := make([]Prediction, 0, len(games))
		for _, g := range games {
			items = append(items, Score(g, prop, bands))
		}
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Probability > items[j].Probability
		})
		out[prop] = items
	}
	return out
}

type factorDef struct {
	key         string
	name        string
	description string
	weight      float64
}

var factorDefs = []factorDef{
	{"pitcher_performance", "Pitcher Performance", "", 0.25},
	{"bullpen_performance", "Bullpen Performance", "Analysis of bullpen effectiveness and recent workload", 0.15},
	{"ballpark_factors", "Ballpark Factors", "Impact of ballpark dimensions and conditions on scoring", 0.10},
	{"batter_vs_pitcher", "Batter vs. Pitcher Matchups", "Historical performance of batters against specific pitchers", 0.15},
	{"defensive_metrics", "Defensive Metrics", "Team defensive efficiency and fielding metrics", 0.10},
	{"team_momentum", "Team Momentum", "Recent team performance and winning/losing streaks", 0.05},
	{"umpire_impact", "Umpire Impact", "Umpire tendencies for strike zone and pace of play", 0.05},
	{"handedness_matchups", "Handedness Matchups", "Pitcher vs. batter handedness advantages", 0.05},
	{"base_running", "Base Running", "Team base running efficiency and stolen base success", 0.05},
	{"travel_schedule", "Travel Schedule", "Impact of travel fatigue and time zone changes", 0.025},
	{"injury_impact", "Injury Impact", "Key player injuries and their impact on team performance", 0.025},
	{"weather_conditions", "Weather Conditions", "Temperature, wind, and humidity effects on ball flight", 0.025},
}

// Impact is the factor's signed contribution, rounded to three places.
func (f Factor) Impact() float64 {
	return math.Round(f.Score*f.Weight*1000) / 1000
}

// FactorBreakdown returns the fixed ordered factor list. Only pitcher
// performance is computed; every other factor is a neutral placeholder.
func FactorBreakdown(prop Proposition, g game.Game, pitcherScore float64) []Factor {
	direction := prop.Direction()
	out := make([]Factor, 0, len(factorDefs))
	for _, def := range factorDefs {
		item := Factor{
			Key:         def.key,
			Name:        def.name,
			Description: def.description,
			Weight:      def.weight,
		}
		if def.key == "pitcher_performance" {
			item.Score = round1(pitcherScore * direction)
			item.Description = fmt.Sprintf("Home: %s (ERA: %s), Away: %s (ERA: %s)",
				pitcherName(g.Home), pitcherERA(g.Home), pitcherName(g.Away), pitcherERA(g.Away))
		} else {
			item.Score = neutralScore * direction
			item.Placeholder = true
		}
		out = append(out, item)
	}
	return out
}

func pitcherName(side game.TeamSide) string {
	if side.ProbablePitcher == nil || strings.TrimSpace(side.ProbablePitcher.Name) == "" {
		return "TBD"
	}
	return side.ProbablePitcher.Name
}

func pitcherERA(side game.TeamSide) string {
	line := lineFromSide(side)
	if line.ERA == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", *line.ERA)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

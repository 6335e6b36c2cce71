package game

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrScheduleUnavailable = errors.New("schedule unavailable")
	ErrInvalidDate         = errors.New("invalid date")
	ErrTeamNotFound        = errors.New("team not found")
)

// DefaultTeamStats is used when a team's pitching line cannot be fetched.
func DefaultTeamStats() TeamStats {
	return TeamStats{
		TeamERA:     4.0,
		TeamWHIP:    1.3,
		Strikeouts:  500,
		Walks:       200,
		BullpenERA:  4.5,
		FirstInning: DefaultFirstInning(),
		Source:      "default",
	}
}

func DefaultFirstInning() FirstInningEstimate {
	return FirstInningEstimate{RunsPerGame: 0.5, ScorelessPct: 0.5}
}

// FirstInningRunsShare is the share of a team's runs credited to the first
// inning.
const FirstInningRunsShare = 0.12

// EstimateFirstInning derives first-inning tendencies from season totals.
// Runs per first inning is 12% of runs per game; the scoreless share starts
// at 70% for a 4.00 staff ERA and moves 5 points per run of ERA, clamped to
// [0, 1]. Without games played the default runs figure is kept.
func EstimateFirstInning(runs, gamesPlayed int, teamERA float64) FirstInningEstimate {
	out := DefaultFirstInning()
	if gamesPlayed > 0 && runs >= 0 {
		out.RunsPerGame = float64(runs) / float64(gamesPlayed) * FirstInningRunsShare
	}
	out.ScorelessPct = min(1, max(0, 0.7-(teamERA-4.0)*0.05))
	return out
}

// BullpenERAFromTeam estimates relief ERA from the staff ERA.
func BullpenERAFromTeam(teamERA float64) float64 {
	return teamERA + 0.5
}

// DefaultWeather is used when the weather source is disabled or failing.
func DefaultWeather() Weather {
	return Weather{
		Temperature:         70.0,
		Condition:           "Clear",
		Description:         "clear sky",
		WindSpeed:           5.0,
		Humidity:            50,
		PrecipitationChance: 0.0,
		Source:              "default",
	}
}

func ParseDate(raw string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	parsed, err := time.ParseInLocation(DateLayout, strings.TrimSpace(raw), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}
	return parsed, nil
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FindGame returns the game with the given id.
func (s Schedule) FindGame(id int64) (Game, bool) {
	for _, item := range s.Games {
		if item.ID == id {
			return item, true
		}
	}
	return Game{}, false
}

// Icon maps a weather condition to the glyph shown next to it.
func (w Weather) Icon() string {
	condition := strings.ToLower(w.Condition)
	switch {
	case strings.Contains(condition, "rain"), strings.Contains(condition, "drizzle"):
		return "🌧️"
	case strings.Contains(condition, "snow"):
		return "❄️"
	case strings.Contains(condition, "cloud"):
		return "⛅"
	case strings.Contains(condition, "clear"):
		return "☀️"
	case strings.Contains(condition, "thunder"), strings.Contains(condition, "storm"):
		return "⛈️"
	case strings.Contains(condition, "fog"), strings.Contains(condition, "mist"):
		return "🌫️"
	default:
		return "🌤️"
	}
}

package httpapi

import (
	"time"

	"github.com/riskibarqy/mlb-predictions/internal/domain/game"
	"github.com/riskibarqy/mlb-predictions/internal/domain/pitcher"
	"github.com/riskibarqy/mlb-predictions/internal/domain/prediction"
	"github.com/riskibarqy/mlb-predictions/internal/usecase"
)

type pitcherStatsDTO struct {
	ERA        float64  `json:"era"`
	WHIP       *float64 `json:"whip,omitempty"`
	Strikeouts *int     `json:"strikeouts,omitempty"`
	Innings    *float64 `json:"innings_pitched,omitempty"`
}

type attemptDTO struct {
	Source     string `json:"source"`
	Outcome    string `json:"outcome"`
	Detail     string `json:"detail,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

type probablePitcherDTO struct {
	Name       string          `json:"name"`
	Stats      pitcherStatsDTO `json:"stats"`
	Source     string          `json:"source"`
	Method     string          `json:"method"`
	Confidence float64         `json:"confidence"`
	URL        string          `json:"url,omitempty"`
	Attempts   []attemptDTO    `json:"attempts,omitempty"`
}

type teamStatsDTO struct {
	TeamERA     float64        `json:"team_era"`
	TeamWHIP    float64        `json:"team_whip"`
	Strikeouts  int            `json:"strikeouts"`
	Walks       int            `json:"walks"`
	BullpenERA  float64        `json:"bullpen_era"`
	FirstInning firstInningDTO `json:"first_inning"`
	Source      string         `json:"source,omitempty"`
}

type firstInningDTO struct {
	RunsPerGame  float64 `json:"runs_per_first_inning"`
	ScorelessPct float64 `json:"scoreless_pct"`
}

type teamSideDTO struct {
	Name            string              `json:"name"`
	ProbablePitcher *probablePitcherDTO `json:"probable_pitcher"`
	Stats           *teamStatsDTO       `json:"stats,omitempty"`
}

type factorDTO struct {
	Key         string  `json:"key"`
	Factor      string  `json:"factor"`
	Weight      float64 `json:"weight"`
	Score       float64 `json:"score"`
	Impact      float64 `json:"impact"`
	Description string  `json:"description"`
	Placeholder bool    `json:"placeholder"`
}

type predictionDTO struct {
	GameID      int64       `json:"game_id"`
	HomeTeam    teamSideDTO `json:"home_team"`
	AwayTeam    teamSideDTO `json:"away_team"`
	Venue       string      `json:"venue"`
	GameTime    string      `json:"game_time"`
	Probability float64     `json:"probability"`
	Rating      string      `json:"rating"`
	Factors     []factorDTO `json:"factors"`
}

type metadataDTO struct {
	Date           string  `json:"date"`
	Timestamp      float64 `json:"timestamp"`
	GameCount      int     `json:"game_count"`
	DataSource     string  `json:"data_source"`
	ScheduleSource string  `json:"schedule_source,omitempty"`
}

type predictionsByTypeDTO struct {
	Predictions []predictionDTO `json:"predictions"`
	Metadata    metadataDTO     `json:"metadata"`
}

type weatherDTO struct {
	Temperature         float64 `json:"temperature"`
	Condition           string  `json:"condition"`
	Description         string  `json:"description"`
	WindSpeed           float64 `json:"wind_speed"`
	Humidity            int     `json:"humidity"`
	PrecipitationChance float64 `json:"precipitation_chance"`
	Icon                string  `json:"icon"`
	Source              string  `json:"source"`
}

type gameDTO struct {
	GameID    int64       `json:"game_id"`
	Date      string      `json:"date"`
	DayOfWeek string      `json:"day_of_week"`
	Status    string      `json:"status"`
	Venue     string      `json:"venue"`
	GameTime  string      `json:"game_time"`
	HomeTeam  teamSideDTO `json:"home_team"`
	AwayTeam  teamSideDTO `json:"away_team"`
	Weather   *weatherDTO `json:"weather,omitempty"`
}

type gamePredictionsDTO struct {
	Game        gameDTO                  `json:"game"`
	Predictions map[string]predictionDTO `json:"predictions"`
	Metadata    metadataDTO              `json:"metadata"`
}

type dateOptionDTO struct {
	Date    string `json:"date"`
	Display string `json:"display"`
	IsToday bool   `json:"is_today"`
}

type statusDTO struct {
	Status          string `json:"status"`
	CurrentTime     string `json:"current_time"`
	LastRefreshTime string `json:"last_refresh_time"`
	Version         string `json:"version"`
}

type refreshDTO struct {
	Success bool `json:"success"`
}

func pitcherToDTO(p *game.ProbablePitcher) *probablePitcherDTO {
	if p == nil {
		return nil
	}
	fact := p.Fact
	out := &probablePitcherDTO{
		Name: p.Name,
		Stats: pitcherStatsDTO{
			ERA:        fact.ERA,
			WHIP:       fact.WHIP,
			Strikeouts: fact.Strikeouts,
			Innings:    fact.Innings,
		},
		Source:     string(fact.Source),
		Method:     string(fact.Method),
		Confidence: fact.Confidence(),
		URL:        fact.URL,
	}
	if out.Source == "" {
		out.Source = string(pitcher.SourceDefault)
	}
	for _, attempt := range fact.Attempts {
		out.Attempts = append(out.Attempts, attemptDTO{
			Source:     string(attempt.Source),
			Outcome:    string(attempt.Outcome),
			Detail:     attempt.Detail,
			DurationMS: attempt.Duration.Milliseconds(),
		})
	}
	return out
}

func teamSideToDTO(side game.TeamSide) teamSideDTO {
	out := teamSideDTO{
		Name:            side.Name,
		ProbablePitcher: pitcherToDTO(side.ProbablePitcher),
	}
	if side.Stats != nil {
		out.Stats = &teamStatsDTO{
			TeamERA:    side.Stats.TeamERA,
			TeamWHIP:   side.Stats.TeamWHIP,
			Strikeouts: side.Stats.Strikeouts,
			Walks:      side.Stats.Walks,
			BullpenERA: side.Stats.BullpenERA,
			FirstInning: firstInningDTO{
				RunsPerGame:  side.Stats.FirstInning.RunsPerGame,
				ScorelessPct: side.Stats.FirstInning.ScorelessPct,
			},
			Source: side.Stats.Source,
		}
	}
	return out
}

func predictionToDTO(p prediction.Prediction) predictionDTO {
	factors := make([]factorDTO, 0, len(p.Factors))
	for _, item := range p.Factors {
		factors = append(factors, factorDTO{
			Key:         item.Key,
			Factor:      item.Name,
			Weight:      item.Weight,
			Score:       item.Score,
			Impact:      item.Impact(),
			Description: item.Description,
			Placeholder: item.Placeholder,
		})
	}
	return predictionDTO{
		GameID:      p.GameID,
		HomeTeam:    teamSideToDTO(p.Home),
		AwayTeam:    teamSideToDTO(p.Away),
		Venue:       p.Venue,
		GameTime:    p.GameTime,
		Probability: p.Probability,
		Rating:      string(p.Rating),
		Factors:     factors,
	}
}

func predictionsToDTO(items []prediction.Prediction) []predictionDTO {
	out := make([]predictionDTO, 0, len(items))
	for _, item := range items {
		out = append(out, predictionToDTO(item))
	}
	return out
}

func metadataToDTO(m prediction.Metadata) metadataDTO {
	return metadataDTO{
		Date:           m.Date,
		Timestamp:      unixSeconds(m.Timestamp),
		GameCount:      m.GameCount,
		DataSource:     m.DataSource,
		ScheduleSource: string(m.ScheduleSource),
	}
}

// setToDTO renders the proposition keys and "metadata" side by side at the
// top level.
func setToDTO(set prediction.Set) map[string]any {
	out := make(map[string]any, len(prediction.AllPropositions)+1)
	for _, prop := range prediction.AllPropositions {
		out[string(prop)] = predictionsToDTO(set.Predictions[prop])
	}
	out["metadata"] = metadataToDTO(set.Metadata)
	return out
}

func gameToDTO(g game.Game) gameDTO {
	out := gameDTO{
		GameID:    g.ID,
		Date:      g.Date,
		DayOfWeek: g.DayOfWeek,
		Status:    g.Status,
		Venue:     g.Venue,
		GameTime:  g.GameTime,
		HomeTeam:  teamSideToDTO(g.Home),
		AwayTeam:  teamSideToDTO(g.Away),
	}
	if g.Weather != nil {
		out.Weather = &weatherDTO{
			Temperature:         g.Weather.Temperature,
			Condition:           g.Weather.Condition,
			Description:         g.Weather.Description,
			WindSpeed:           g.Weather.WindSpeed,
			Humidity:            g.Weather.Humidity,
			PrecipitationChance: g.Weather.PrecipitationChance,
			Icon:                g.Weather.Icon(),
			Source:              g.Weather.Source,
		}
	}
	return out
}

func gamePredictionsToDTO(gp prediction.GamePredictions) gamePredictionsDTO {
	out := gamePredictionsDTO{
		Game:        gameToDTO(gp.Game),
		Predictions: make(map[string]predictionDTO, len(gp.Predictions)),
		Metadata:    metadataToDTO(gp.Metadata),
	}
	for prop, item := range gp.Predictions {
		out.Predictions[string(prop)] = predictionToDTO(item)
	}
	return out
}

func datesToDTO(options []usecase.DateOption) []dateOptionDTO {
	out := make([]dateOptionDTO, 0, len(options))
	for _, option := range options {
		out = append(out, dateOptionDTO{Date: option.Date, Display: option.Display, IsToday: option.IsToday})
	}
	return out
}

func statusToDTO(s usecase.Status) statusDTO {
	return statusDTO{
		Status:          s.Status,
		CurrentTime:     s.CurrentTime,
		LastRefreshTime: s.LastRefreshTime,
		Version:         s.Version,
	}
}

func unixSeconds(t time.Time) float64 {
	if t.IsZero() {
		return 0
	}
	return float64(t.UnixMilli()) / 1000
}

package mlbstats

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/mlb-predictions/internal/domain/game"
)

// FetchSchedule returns the day's games with their probable starters. An
// empty slice means the API answered but listed no games.
func (c *Client) FetchSchedule(ctx context.Context, date time.Time) ([]game.ScheduledGame, error) {
	query := url.Values{}
	query.Set("sportId", "1")
	query.Set("date", date.Format(game.DateLayout))
	query.Set("hydrate", "team,probablePitcher,venue")

	var envelope scheduleEnvelope
	if err := c.doJSON(ctx, "/schedule", query, &envelope); err != nil {
		return nil, fmt.Errorf("fetch schedule date=%s: %w", date.Format(game.DateLayout), err)
	}
	if len(envelope.Dates) == 0 {
		return []game.ScheduledGame{}, nil
	}

	items := envelope.Dates[0].Games
	out := make([]game.ScheduledGame, 0, len(items))
	for _, item := range items {
		out = append(out, game.ScheduledGame{
			ID:              item.GamePk,
			Status:          item.Status.AbstractGameState,
			Venue:           item.Venue.Name,
			GameTime:        c.formatGameTime(item.GameDate),
			HomeTeam:        item.Teams.Home.Team.Name,
			AwayTeam:        item.Teams.Away.Team.Name,
			HomePitcherName: probableName(item.Teams.Home),
			AwayPitcherName: probableName(item.Teams.Away),
		})
	}
	return out, nil
}

// FetchTeamStats returns the club's season pitching line. Bullpen ERA is an
// estimate derived from the staff ERA.
func (c *Client) FetchTeamStats(ctx context.Context, teamName string, season int) (game.TeamStats, error) {
	team, ok := game.LookupTeam(teamName)
	if !ok {
		return game.TeamStats{}, fmt.Errorf("%w: unknown team %q", game.ErrTeamNotFound, teamName)
	}
	if season <= 0 {
		season = c.now().In(c.location).Year()
	}

	query := url.Values{}
	query.Set("stats", "season")
	query.Set("season", strconv.Itoa(season))
	query.Set("group", "pitching")

	var stats statsEnvelope
	if err := c.doJSON(ctx, fmt.Sprintf("/teams/%d/stats", team.MLBID), query, &stats); err != nil {
		return game.TeamStats{}, fmt.Errorf("fetch team stats team_id=%d: %w", team.MLBID, err)
	}
	line, ok := stats.firstSplit()
	if !ok {
		return game.TeamStats{}, fmt.Errorf("%w: no team stats for %s", game.ErrTeamNotFound, team.Name)
	}

	era, err := strconv.ParseFloat(line.ERA.String(), 64)
	if err != nil {
		return game.TeamStats{}, fmt.Errorf("parse team era %q: %w", line.ERA, err)
	}
	out := game.DefaultTeamStats()
	out.TeamERA = era
	out.BullpenERA = game.BullpenERAFromTeam(era)
	out.Source = "official-api"
	if whip, err := strconv.ParseFloat(line.WHIP.String(), 64); err == nil {
		out.TeamWHIP = whip
	}
	if strikeouts, err := strconv.Atoi(line.StrikeOuts.String()); err == nil {
		out.Strikeouts = strikeouts
	}
	walks := line.BaseOnBalls
	if walks == "" {
		walks = line.Walks
	}
	if parsed, err := strconv.Atoi(walks.String()); err == nil {
		out.Walks = parsed
	}
	runs, gamesPlayed := c.fetchRunsScored(ctx, team, season)
	out.FirstInning = game.EstimateFirstInning(runs, gamesPlayed, era)
	return out, nil
}

// fetchRunsScored reads the club's batting totals. A failure only costs the
// first-inning runs estimate, so it is logged and reported as zero games.
func (c *Client) fetchRunsScored(ctx context.Context, team game.Team, season int) (runs, gamesPlayed int) {
	query := url.Values{}
	query.Set("stats", "season")
	query.Set("season", strconv.Itoa(season))
	query.Set("group", "hitting")

	var stats statsEnvelope
	if err := c.doJSON(ctx, fmt.Sprintf("/teams/%d/stats", team.MLBID), query, &stats); err != nil {
		c.logger.DebugContext(ctx, "team batting totals unavailable", "team_id", team.MLBID, "error", err)
		return 0, 0
	}
	line, ok := stats.firstSplit()
	if !ok {
		return 0, 0
	}
	runs, runsErr := strconv.Atoi(line.Runs.String())
	gamesPlayed, gamesErr := strconv.Atoi(line.GamesPlayed.String())
	if runsErr != nil || gamesErr != nil {
		return 0, 0
	}
	return runs, gamesPlayed
}

func (c *Client) formatGameTime(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "TBD"
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return "TBD"
	}
	return parsed.In(c.location).Format("15:04")
}

func probableName(side scheduleTeam) string {
	if side.ProbablePitcher == nil || strings.TrimSpace(side.ProbablePitcher.FullName) == "" {
		return "TBD"
	}
	return strings.TrimSpace(side.ProbablePitcher.FullName)
}

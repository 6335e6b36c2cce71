package mlbstats

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/riskibarqy/mlb-predictions/internal/domain/game"
	"github.com/riskibarqy/mlb-predictions/internal/domain/pitcher"
	"github.com/riskibarqy/mlb-predictions/internal/platform/textnorm"
)

const pitcherPositionCode = "1"

func (c *Client) Source() pitcher.Source {
	return pitcher.SourceOfficialAPI
}

// LookupPitcher finds the pitcher on the team's roster and falls back to the
// player search when the team is unknown or the roster has no match.
func (c *Client) LookupPitcher(ctx context.Context, team, name string) (pitcher.Fact, error) {
	name = strings.TrimSpace(name)
	if !pitcher.IsAnnounced(name) {
		return pitcher.Fact{}, fmt.Errorf("%w: pitcher not announced", pitcher.ErrNotFound)
	}

	method := pitcher.MethodRosterLookup
	playerID, fullName, err := c.findOnRoster(ctx, team, name)
	if err != nil {
		return pitcher.Fact{}, err
	}
	if playerID == 0 {
		method = pitcher.MethodSearch
		playerID, fullName, err = c.searchPlayer(ctx, name)
		if err != nil {
			return pitcher.Fact{}, err
		}
	}
	if playerID == 0 {
		return pitcher.Fact{}, fmt.Errorf("%w: %q not found in roster or search", pitcher.ErrNotFound, name)
	}

	fact, err := c.fetchPitchingLine(ctx, playerID)
	if err != nil {
		return pitcher.Fact{}, err
	}
	fact.Name = firstNonEmpty(fullName, name)
	fact.Team = team
	fact.Method = method
	return fact, nil
}

func (c *Client) findOnRoster(ctx context.Context, teamName, name string) (int64, string, error) {
	team, ok := game.LookupTeam(teamName)
	if !ok {
		c.logger.DebugContext(ctx, "team not in registry, skipping roster lookup", "team", teamName)
		return 0, "", nil
	}

	var roster rosterEnvelope
	path := fmt.Sprintf("/teams/%d/roster", team.MLBID)
	if err := c.doJSON(ctx, path, nil, &roster); err != nil {
		if isNotFound(err) {
			return 0, "", nil
		}
		return 0, "", fmt.Errorf("fetch roster team_id=%d: %w", team.MLBID, err)
	}

	var partial *rosterEntry
	for i := range roster.Roster {
		entry := &roster.Roster[i]
		if entry.Position.Code != "P" {
			continue
		}
		if textnorm.Equal(entry.Person.FullName, name) {
			return entry.Person.ID, entry.Person.FullName, nil
		}
		if partial == nil && textnorm.MatchName(entry.Person.FullName, name) {
			partial = entry
		}
	}
	if partial != nil {
		return partial.Person.ID, partial.Person.FullName, nil
	}
	return 0, "", nil
}

func (c *Client) searchPlayer(ctx context.Context, name string) (int64, string, error) {
	var found peopleEnvelope
	query := url.Values{}
	query.Set("search", name)
	if err := c.doJSON(ctx, "/players", query, &found); err != nil {
		if isNotFound(err) {
			return 0, "", nil
		}
		return 0, "", fmt.Errorf("search players name=%q: %w", name, err)
	}
	if len(found.People) == 0 {
		return 0, "", nil
	}

	var firstPitcher *person
	for i := range found.People {
		candidate := &found.People[i]
		if candidate.PrimaryPosition.Code != pitcherPositionCode {
			continue
		}
		if textnorm.MatchName(candidate.FullName, name) {
			return candidate.ID, candidate.FullName, nil
		}
		if firstPitcher == nil {
			firstPitcher = candidate
		}
	}
	if firstPitcher != nil {
		return firstPitcher.ID, firstPitcher.FullName, nil
	}
	first := found.People[0]
	return first.ID, first.FullName, nil
}

func (c *Client) fetchPitchingLine(ctx context.Context, playerID int64) (pitcher.Fact, error) {
	query := url.Values{}
	query.Set("stats", "season")
	query.Set("group", "pitching")
	query.Set("season", strconv.Itoa(c.now().In(c.location).Year()))

	var stats statsEnvelope
	path := fmt.Sprintf("/people/%d/stats", playerID)
	if err := c.doJSON(ctx, path, query, &stats); err != nil {
		if isNotFound(err) {
			return pitcher.Fact{}, fmt.Errorf("%w: no stats for player_id=%d", pitcher.ErrNotFound, playerID)
		}
		return pitcher.Fact{}, fmt.Errorf("fetch stats player_id=%d: %w", playerID, err)
	}

	line, ok := stats.firstSplit()
	if !ok {
		return pitcher.Fact{}, fmt.Errorf("%w: empty stats splits for player_id=%d", pitcher.ErrNotFound, playerID)
	}

	era, err := pitcher.ParseStat(line.ERA.String())
	if err != nil {
		if errors.Is(err, pitcher.ErrUnparsableStat) {
			return pitcher.Fact{}, fmt.Errorf("%w: era %v", pitcher.ErrNotFound, err)
		}
		return pitcher.Fact{}, err
	}

	fact := pitcher.Fact{
		ERA:       era,
		Source:    pitcher.SourceOfficialAPI,
		PlayerID:  strconv.FormatInt(playerID, 10),
		URL:       c.baseURL + path,
		FetchedAt: c.now().UTC(),
	}
	if whip, err := pitcher.ParseStat(line.WHIP.String()); err == nil {
		fact.WHIP = pitcher.Float(whip)
	}
	if strikeouts, err := pitcher.ParseCount(line.StrikeOuts.String()); err == nil {
		fact.Strikeouts = pitcher.Int(strikeouts)
	}
	if innings, err := pitcher.ParseInnings(line.InningsPitched.String()); err == nil {
		fact.Innings = pitcher.Float(innings)
	}
	return fact, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

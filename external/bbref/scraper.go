// Package bbref reads pitcher season lines from Baseball-Reference team and
// player pages.
package bbref

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/mlb-predictions/internal/domain/game"
	"github.com/riskibarqy/mlb-predictions/internal/domain/pitcher"
	"github.com/riskibarqy/mlb-predictions/internal/platform/htmlx"
	"github.com/riskibarqy/mlb-predictions/internal/platform/logging"
	"github.com/riskibarqy/mlb-predictions/internal/platform/textnorm"
	"github.com/riskibarqy/mlb-predictions/internal/platform/webfetch"
	"github.com/riskibarqy/mlb-predictions/internal/usecase"
	"golang.org/x/net/html"
)

const defaultBaseURL = "https://www.baseball-reference.com"

// The site renamed its data-stat keys; both spellings are accepted.
var (
	playerKeys  = []string{"player", "name_display"}
	eraKeys     = []string{"earned_run_avg", "p_earned_run_avg"}
	whipKeys    = []string{"whip", "p_whip"}
	strikeKeys  = []string{"SO", "p_so"}
	inningsKeys = []string{"IP", "p_ip"}
	seasonKeys  = []string{"year_ID", "year_id"}
)

type PageFetcher interface {
	Get(ctx context.Context, rawURL string) (webfetch.Page, error)
}

type Config struct {
	BaseURL string
	// Season selects the team page. Zero means the current year.
	Season  int
	Fetcher PageFetcher
	Logger  *logging.Logger
	Now     func() time.Time
}

type Scraper struct {
	baseURL *url.URL
	season  int
	fetcher PageFetcher
	logger  *logging.Logger
	now     func() time.Time
}

func NewScraper(cfg Config) (*Scraper, error) {
	raw := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if raw == "" {
		raw = defaultBaseURL
	}
	base, err := url.Parse(raw)
	if err != nil || base.Host == "" {
		return nil, fmt.Errorf("parse bbref base url %q: invalid", raw)
	}
	if cfg.Fetcher == nil {
		return nil, fmt.Errorf("bbref scraper requires a page fetcher")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Scraper{baseURL: base, season: cfg.Season, fetcher: cfg.Fetcher, logger: logger, now: now}, nil
}

func (s *Scraper) Source() pitcher.Source {
	return pitcher.SourceBaseballReference
}

// LookupPitcher finds the pitcher in the team's pitching table and reads the
// season row from the linked player page.
func (s *Scraper) LookupPitcher(ctx context.Context, teamName, name string) (pitcher.Fact, error) {
	name = strings.TrimSpace(name)
	if !pitcher.IsAnnounced(name) {
		return pitcher.Fact{}, fmt.Errorf("%w: pitcher not announced", pitcher.ErrNotFound)
	}
	team, ok := game.LookupTeam(teamName)
	if !ok {
		return pitcher.Fact{}, fmt.Errorf("%w: unknown team %q", pitcher.ErrNotFound, teamName)
	}

	season := s.season
	if season <= 0 {
		season = s.now().Year()
	}

	teamURL := s.resolve(fmt.Sprintf("/teams/%s/%d.shtml", team.BBRefAbbr, season))
	doc, err := s.document(ctx, teamURL)
	if err != nil {
		return pitcher.Fact{}, err
	}
	table := findTable(doc, "team_pitching")
	if table == nil {
		return pitcher.Fact{}, fmt.Errorf("%w: no team_pitching table at %s", pitcher.ErrNotFound, teamURL)
	}

	displayName, href := findPlayerLink(table, name)
	if href == "" {
		return pitcher.Fact{}, fmt.Errorf("%w: %q not in %s pitching table", pitcher.ErrNotFound, name, team.BBRefAbbr)
	}

	playerURL := s.resolve(href)
	playerDoc, err := s.document(ctx, playerURL)
	if err != nil {
		return pitcher.Fact{}, err
	}
	stats := findTable(playerDoc, "pitching_standard")
	if stats == nil {
		return pitcher.Fact{}, fmt.Errorf("%w: no pitching_standard table at %s", pitcher.ErrNotFound, playerURL)
	}
	row := seasonRow(stats, season)
	if row == nil {
		return pitcher.Fact{}, fmt.Errorf("%w: no %d season row at %s", pitcher.ErrNotFound, season, playerURL)
	}

	era, err := pitcher.ParseStat(cellText(row, eraKeys))
	if err != nil {
		return pitcher.Fact{}, fmt.Errorf("%w: %v", pitcher.ErrNotFound, err)
	}
	s.logger.DebugContext(ctx, "bbref season row parsed", "pitcher", displayName, "team", team.BBRefAbbr, "season", season)

	fact := pitcher.Fact{
		Name:      firstNonEmpty(displayName, name),
		Team:      teamName,
		ERA:       era,
		Source:    pitcher.SourceBaseballReference,
		Method:    pitcher.MethodTeamStatsPage,
		URL:       playerURL,
		PlayerID:  playerIDFromHref(href),
		FetchedAt: s.now().UTC(),
	}
	if whip, err := pitcher.ParseStat(cellText(row, whipKeys)); err == nil {
		fact.WHIP = pitcher.Float(whip)
	}
	if strikeouts, err := pitcher.ParseCount(cellText(row, strikeKeys)); err == nil {
		fact.Strikeouts = pitcher.Int(strikeouts)
	}
	if innings, err := pitcher.ParseInnings(cellText(row, inningsKeys)); err == nil {
		fact.Innings = pitcher.Float(innings)
	}
	return fact, nil
}

func (s *Scraper) document(ctx context.Context, target string) (*html.Node, error) {
	page, err := s.fetcher.Get(ctx, target)
	if err != nil {
		switch {
		case errors.Is(err, webfetch.ErrCircuitOpen):
			return nil, fmt.Errorf("%w: baseball-reference is temporarily unavailable", usecase.ErrDependencyUnavailable)
		case errors.Is(err, webfetch.ErrNotFound), errors.Is(err, webfetch.ErrDisallowed):
			return nil, fmt.Errorf("%w: %v", pitcher.ErrNotFound, err)
		}
		return nil, err
	}
	doc, err := htmlx.Parse(string(page.Body))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", target, err)
	}
	return doc, nil
}

func (s *Scraper) resolve(href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	return s.baseURL.ResolveReference(ref).String()
}

// findTable looks for the table by id in the live DOM and then inside HTML
// comments, where the site defers most secondary tables.
func findTable(doc *html.Node, id string) *html.Node {
	if table := htmlx.FindFirst(doc, htmlx.And(htmlx.Tag("table"), htmlx.ID(id))); table != nil {
		return table
	}
	for _, root := range htmlx.Commented(doc, `id="`+id+`"`) {
		if table := htmlx.FindFirst(root, htmlx.And(htmlx.Tag("table"), htmlx.ID(id))); table != nil {
			return table
		}
	}
	return nil
}

func findPlayerLink(table *html.Node, name string) (string, string) {
	var partialName, partialHref string
	for _, row := range htmlx.Rows(table) {
		cell := statCell(row, playerKeys)
		anchor := htmlx.FindFirst(cell, htmlx.Tag("a"))
		if anchor == nil {
			continue
		}
		rowName := htmlx.Text(anchor)
		href := htmlx.Attr(anchor, "href")
		if textnorm.Equal(rowName, name) {
			return rowName, href
		}
		if partialHref == "" && textnorm.MatchName(rowName, name) {
			partialName, partialHref = rowName, href
		}
	}
	return partialName, partialHref
}

// seasonRow returns the first row with an ERA whose year cell names the
// season. Prior seasons and career totals never stand in for it.
func seasonRow(table *html.Node, season int) *html.Node {
	want := strconv.Itoa(season)
	for _, row := range htmlx.Rows(table) {
		if statCell(row, eraKeys) == nil {
			continue
		}
		year := strings.TrimSpace(cellText(row, seasonKeys))
		rest, ok := strings.CutPrefix(year, want)
		if !ok || (rest != "" && rest[0] >= '0' && rest[0] <= '9') {
			continue
		}
		return row
	}
	return nil
}

func statCell(row *html.Node, keys []string) *html.Node {
	for _, cell := range htmlx.Cells(row) {
		stat := htmlx.Attr(cell, "data-stat")
		for _, key := range keys {
			if stat == key {
				return cell
			}
		}
	}
	return nil
}

func cellText(row *html.Node, keys []string) string {
	return htmlx.Text(statCell(row, keys))
}

// playerIDFromHref turns "/players/c/colege01.shtml" into "colege01".
func playerIDFromHref(href string) string {
	base := href
	if idx := strings.LastIndex(base, "/"); idx >= 0 {
		base = base[idx+1:]
	}
	return strings.TrimSuffix(base, ".shtml")
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

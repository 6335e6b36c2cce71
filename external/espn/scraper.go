// Package espn scrapes pitcher season lines from ESPN's public pages.
package espn

import (
	"context"
	"errors"
	"fmt"
	"net/url"
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

const defaultBaseURL = "https://www.espn.com/mlb"

// PageFetcher is the subset of webfetch.Client the scraper needs.
type PageFetcher interface {
	Get(ctx context.Context, rawURL string) (webfetch.Page, error)
}

type Config struct {
	BaseURL string
	Fetcher PageFetcher
	Logger  *logging.Logger
	Now     func() time.Time
}

type Scraper struct {
	baseURL *url.URL
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
		return nil, fmt.Errorf("parse espn base url %q: invalid", raw)
	}
	if cfg.Fetcher == nil {
		return nil, fmt.Errorf("espn scraper requires a page fetcher")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Scraper{baseURL: base, fetcher: cfg.Fetcher, logger: logger, now: now}, nil
}

func (s *Scraper) Source() pitcher.Source {
	return pitcher.SourceESPN
}

type lookupMethod struct {
	method pitcher.Method
	run    func(ctx context.Context, team game.Team, hasTeam bool, name string) (pitcher.Fact, error)
}

// LookupPitcher tries the roster page, the team stats page, the league
// stats page and the player search, in that order.
func (s *Scraper) LookupPitcher(ctx context.Context, teamName, name string) (pitcher.Fact, error) {
	name = strings.TrimSpace(name)
	if !pitcher.IsAnnounced(name) {
		return pitcher.Fact{}, fmt.Errorf("%w: pitcher not announced", pitcher.ErrNotFound)
	}
	team, hasTeam := game.LookupTeam(teamName)

	methods := []lookupMethod{
		{method: pitcher.MethodRosterLookup, run: s.viaRoster},
		{method: pitcher.MethodTeamStatsPage, run: s.viaTeamStats},
		{method: pitcher.MethodStatsPage, run: s.viaLeagueStats},
		{method: pitcher.MethodSearch, run: s.viaSearch},
	}

	var failures []error
	for _, m := range methods {
		if err := ctx.Err(); err != nil {
			return pitcher.Fact{}, err
		}
		fact, err := m.run(ctx, team, hasTeam, name)
		if err == nil {
			fact.Name = firstNonEmpty(fact.Name, name)
			fact.Team = teamName
			fact.Method = m.method
			fact.Source = pitcher.SourceESPN
			fact.FetchedAt = s.now().UTC()
			return fact, nil
		}
		if errors.Is(err, webfetch.ErrCircuitOpen) {
			return pitcher.Fact{}, fmt.Errorf("%w: espn is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
		if !errors.Is(err, pitcher.ErrNotFound) {
			failures = append(failures, fmt.Errorf("%s: %w", m.method, err))
		}
		s.logger.DebugContext(ctx, "espn lookup method missed", "method", m.method, "pitcher", name, "error", err)
	}

	if len(failures) > 0 {
		return pitcher.Fact{}, errors.Join(failures...)
	}
	return pitcher.Fact{}, fmt.Errorf("%w: %q not found on espn", pitcher.ErrNotFound, name)
}

func (s *Scraper) viaRoster(ctx context.Context, team game.Team, hasTeam bool, name string) (pitcher.Fact, error) {
	if !hasTeam {
		return pitcher.Fact{}, fmt.Errorf("%w: team unknown", pitcher.ErrNotFound)
	}
	doc, _, err := s.document(ctx, s.path("team", "roster", "_", "name", team.ESPNID))
	if err != nil {
		return pitcher.Fact{}, err
	}
	for _, player := range parseRoster(doc) {
		if !isPitcherPosition(player.Position) || !textnorm.MatchName(player.Name, name) {
			continue
		}
		return s.fromPlayerPage(ctx, player)
	}
	return pitcher.Fact{}, fmt.Errorf("%w: not on roster", pitcher.ErrNotFound)
}

func (s *Scraper) viaTeamStats(ctx context.Context, team game.Team, hasTeam bool, name string) (pitcher.Fact, error) {
	if !hasTeam {
		return pitcher.Fact{}, fmt.Errorf("%w: team unknown", pitcher.ErrNotFound)
	}
	return s.fromStatsPage(ctx, s.path("team", "stats", "_", "name", team.ESPNID, "view", "pitching"), name)
}

func (s *Scraper) viaLeagueStats(ctx context.Context, _ game.Team, _ bool, name string) (pitcher.Fact, error) {
	return s.fromStatsPage(ctx, s.path("stats", "player", "_", "view", "pitching"), name)
}

func (s *Scraper) viaSearch(ctx context.Context, _ game.Team, _ bool, name string) (pitcher.Fact, error) {
	target := s.path("players", "search") + "?search=" + textnorm.SearchQuery(name)
	doc, _, err := s.document(ctx, target)
	if err != nil {
		return pitcher.Fact{}, err
	}
	results := parseSearchResults(doc)
	for _, result := range results {
		if textnorm.MatchName(result.Name, name) {
			return s.fromPlayerPage(ctx, result)
		}
	}
	return pitcher.Fact{}, fmt.Errorf("%w: %d search results, none matching", pitcher.ErrNotFound, len(results))
}

func (s *Scraper) fromStatsPage(ctx context.Context, target, name string) (pitcher.Fact, error) {
	doc, pageURL, err := s.document(ctx, target)
	if err != nil {
		return pitcher.Fact{}, err
	}
	line, link, ok := findInStatsTable(doc, name)
	if !ok {
		return pitcher.Fact{}, fmt.Errorf("%w: not in stats table", pitcher.ErrNotFound)
	}
	fact := factFromLine(line)
	fact.Name = link.Name
	fact.URL = firstNonEmpty(s.resolve(link.Href), pageURL)
	fact.PlayerID = playerIDFromHref(link.Href)
	return fact, nil
}

func (s *Scraper) fromPlayerPage(ctx context.Context, player playerLink) (pitcher.Fact, error) {
	if strings.TrimSpace(player.Href) == "" {
		return pitcher.Fact{}, fmt.Errorf("%w: no player link for %q", pitcher.ErrNotFound, player.Name)
	}
	doc, pageURL, err := s.document(ctx, s.resolve(player.Href))
	if err != nil {
		return pitcher.Fact{}, err
	}
	line, ok := extractPlayerStats(doc)
	if !ok {
		return pitcher.Fact{}, fmt.Errorf("%w: no era on player page", pitcher.ErrNotFound)
	}
	s.logger.DebugContext(ctx, "espn player page parsed", "pitcher", player.Name, "strategy", line.Strategy)

	fact := factFromLine(line)
	fact.Name = player.Name
	fact.URL = pageURL
	fact.PlayerID = playerIDFromHref(player.Href)
	return fact, nil
}

// document fetches and parses a page. A 404 or a robots.txt denial is
// reported as ErrNotFound so the next method is tried.
func (s *Scraper) document(ctx context.Context, target string) (*html.Node, string, error) {
	page, err := s.fetcher.Get(ctx, target)
	if err != nil {
		if errors.Is(err, webfetch.ErrNotFound) || errors.Is(err, webfetch.ErrDisallowed) {
			return nil, "", fmt.Errorf("%w: %v", pitcher.ErrNotFound, err)
		}
		return nil, "", err
	}
	doc, err := htmlx.Parse(string(page.Body))
	if err != nil {
		return nil, "", fmt.Errorf("parse %s: %w", target, err)
	}
	return doc, firstNonEmpty(page.URL, target), nil
}

func (s *Scraper) path(segments ...string) string {
	out := *s.baseURL
	out.Path = strings.TrimRight(out.Path, "/") + "/" + strings.Join(segments, "/")
	out.RawQuery = ""
	return out.String()
}

func (s *Scraper) resolve(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return s.baseURL.ResolveReference(ref).String()
}

func factFromLine(line statLine) pitcher.Fact {
	return pitcher.Fact{
		ERA:        line.ERA,
		WHIP:       line.WHIP,
		Strikeouts: line.Strikeouts,
		Innings:    line.Innings,
	}
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

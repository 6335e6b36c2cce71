package bbref

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/riskibarqy/mlb-predictions/internal/domain/pitcher"
	"github.com/riskibarqy/mlb-predictions/internal/platform/htmlx"
	"github.com/riskibarqy/mlb-predictions/internal/platform/webfetch"
	"github.com/riskibarqy/mlb-predictions/internal/usecase"
)

const testBase = "https://bbref.test"

type fakeFetcher struct {
	pages map[string]string
	err   error
	calls int
}

func (f *fakeFetcher) Get(_ context.Context, rawURL string) (webfetch.Page, error) {
	f.calls++
	if f.err != nil {
		return webfetch.Page{}, f.err
	}
	body, ok := f.pages[rawURL]
	if !ok {
		return webfetch.Page{}, fmt.Errorf("%w: %s", webfetch.ErrNotFound, rawURL)
	}
	return webfetch.Page{URL: rawURL, StatusCode: 200, Body: []byte(body)}, nil
}

func newTestScraper(t *testing.T, fetcher *fakeFetcher) *Scraper {
	t.Helper()
	scraper, err := NewScraper(Config{
		BaseURL: testBase,
		Season:  2025,
		Fetcher: fetcher,
		Now:     func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("new scraper: %v", err)
	}
	return scraper
}

const teamPageCommented = `<html><body>
<div id="all_team_pitching"><!--
<table id="team_pitching"><thead><tr><th data-stat="player">Name</th></tr></thead>
<tbody>
<tr><td data-stat="player"><a href="/players/w/wheelza01.shtml">Zack Wheeler</a></td></tr>
<tr><td data-stat="player"><a href="/players/n/nolaaa01.shtml">Aaron Nola</a></td></tr>
</tbody></table>
--></div></body></html>`

const playerPage = `<html><body><table id="pitching_standard">
<thead><tr><th data-stat="year_ID">Year</th><th data-stat="earned_run_avg">ERA</th></tr></thead>
<tbody>
<tr><th data-stat="year_ID">2024</th><td data-stat="earned_run_avg">2.57</td><td data-stat="whip">0.96</td><td data-stat="SO">224</td><td data-stat="IP">200.0</td></tr>
<tr><th data-stat="year_ID">2025</th><td data-stat="earned_run_avg">3.07</td><td data-stat="whip">1.02</td><td data-stat="SO">82</td><td data-stat="IP">73.1</td></tr>
</tbody></table></body></html>`

func TestLookupPitcher_CommentedTeamTable(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{pages: map[string]string{
		testBase + "/teams/PHI/2025.shtml":      teamPageCommented,
		testBase + "/players/w/wheelza01.shtml": playerPage,
	}}

	fact, err := newTestScraper(t, fetcher).LookupPitcher(context.Background(), "Philadelphia Phillies", "Zack Wheeler")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fact.ERA != 3.07 || fact.Source != pitcher.SourceBaseballReference || fact.Method != pitcher.MethodTeamStatsPage {
		t.Fatalf("unexpected fact: %+v", fact)
	}
	if fact.PlayerID != "wheelza01" || fact.URL != testBase+"/players/w/wheelza01.shtml" {
		t.Fatalf("unexpected identity: %+v", fact)
	}
	if fact.WHIP == nil || *fact.WHIP != 1.02 || fact.Strikeouts == nil || *fact.Strikeouts != 82 {
		t.Fatalf("unexpected secondary stats: %+v", fact)
	}
}

func TestLookupPitcher_NewDataStatKeys(t *testing.T) {
	t.Parallel()

	teamPage := `<table id="team_pitching"><tbody>
<tr><td data-stat="name_display"><a href="/players/s/salech01.shtml">Chris Sale</a></td></tr>
</tbody></table>`
	player := `<table id="pitching_standard"><tbody>
<tr><th data-stat="year_id">2025</th><td data-stat="p_earned_run_avg">3.84</td><td data-stat="p_ip">70.1</td></tr>
</tbody></table>`
	fetcher := &fakeFetcher{pages: map[string]string{
		testBase + "/teams/ATL/2025.shtml":     teamPage,
		testBase + "/players/s/salech01.shtml": player,
	}}

	fact, err := newTestScraper(t, fetcher).LookupPitcher(context.Background(), "Atlanta Braves", "Chris Sale")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fact.ERA != 3.84 || fact.Innings == nil {
		t.Fatalf("unexpected fact: %+v", fact)
	}
}

func TestLookupPitcher_MissingSeasonRowIsNotFound(t *testing.T) {
	t.Parallel()

	player := `<table id="pitching_standard"><tbody>
<tr><th data-stat="year_ID">2023</th><td data-stat="earned_run_avg">3.12</td></tr>
<tr><th data-stat="year_ID">2024</th><td data-stat="earned_run_avg">2.57</td></tr>
</tbody><tfoot>
<tr><th data-stat="year_ID">10 Yrs</th><td data-stat="earned_run_avg">3.15</td></tr>
</tfoot></table>`
	fetcher := &fakeFetcher{pages: map[string]string{
		testBase + "/teams/PHI/2025.shtml":      teamPageCommented,
		testBase + "/players/w/wheelza01.shtml": player,
	}}

	_, err := newTestScraper(t, fetcher).LookupPitcher(context.Background(), "Philadelphia Phillies", "Zack Wheeler")
	if !errors.Is(err, pitcher.ErrNotFound) {
		t.Fatalf("expected ErrNotFound without a 2025 row, got %v", err)
	}
}

func TestSeasonRow_MatchesYearOnly(t *testing.T) {
	t.Parallel()

	doc, err := htmlx.Parse(`<table id="pitching_standard"><tbody>
<tr><th data-stat="year_ID">20250</th><td data-stat="earned_run_avg">9.99</td></tr>
<tr><th data-stat="year_ID">2025</th><td data-stat="SO">12</td></tr>
<tr><th data-stat="year_ID">2025*</th><td data-stat="earned_run_avg">3.07</td></tr>
</tbody></table>`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	row := seasonRow(findTable(doc, "pitching_standard"), 2025)
	if row == nil || cellText(row, eraKeys) != "3.07" {
		t.Fatalf("expected the starred 2025 row, got %v", row)
	}
	if seasonRow(findTable(doc, "pitching_standard"), 2024) != nil {
		t.Fatalf("expected no 2024 row")
	}
}

func TestLookupPitcher_UsesBBRefAbbreviation(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{pages: map[string]string{}}
	_, err := newTestScraper(t, fetcher).LookupPitcher(context.Background(), "San Diego Padres", "Yu Darvish")
	if !errors.Is(err, pitcher.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing page, got %v", err)
	}

	fetcher.pages[testBase+"/teams/SDP/2025.shtml"] = `<table id="team_pitching"><tbody></tbody></table>`
	_, err = newTestScraper(t, fetcher).LookupPitcher(context.Background(), "San Diego Padres", "Yu Darvish")
	if !errors.Is(err, pitcher.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing row, got %v", err)
	}
}

func TestLookupPitcher_UnknownTeamSkipsFetch(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{}
	_, err := newTestScraper(t, fetcher).LookupPitcher(context.Background(), "Nowhere Nine", "Someone")
	if !errors.Is(err, pitcher.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if fetcher.calls != 0 {
		t.Fatalf("expected no fetches, got %d", fetcher.calls)
	}
}

func TestLookupPitcher_ErrorMapping(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{err: webfetch.ErrCircuitOpen}
	_, err := newTestScraper(t, fetcher).LookupPitcher(context.Background(), "Boston Red Sox", "Chris Sale")
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}

	fetcher = &fakeFetcher{err: fmt.Errorf("%w: timeout", webfetch.ErrTransient)}
	_, err = newTestScraper(t, fetcher).LookupPitcher(context.Background(), "Boston Red Sox", "Chris Sale")
	if err == nil || errors.Is(err, pitcher.ErrNotFound) || !errors.Is(err, webfetch.ErrTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
}

func TestPlayerIDFromHref(t *testing.T) {
	t.Parallel()

	if got := playerIDFromHref("/players/c/colege01.shtml"); got != "colege01" {
		t.Fatalf("unexpected id %q", got)
	}
}

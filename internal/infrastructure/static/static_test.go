package static

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/mlb-predictions/internal/domain/pitcher"
)

func TestPitcherTable_Lookup(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2025, 4, 16, 0, 0, 0, 0, time.UTC)
	table := NewPitcherTable(nil, func() time.Time { return fixed })

	cases := []struct {
		name    string
		query   string
		wantERA float64
	}{
		{name: "exact", query: "Gerrit Cole", wantERA: 2.63},
		{name: "case and accents", query: "jose berrios", wantERA: 3.65},
		{name: "query contains entry", query: "Nick Pivetta Jr", wantERA: 1.69},
		{name: "entry contains query", query: "Kershaw", wantERA: 3.21},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			fact, err := table.LookupPitcher(context.Background(), "Any Team", tc.query)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if fact.ERA != tc.wantERA {
				t.Fatalf("era = %v, want %v", fact.ERA, tc.wantERA)
			}
			if fact.Source != pitcher.SourceHardcodedTable || fact.Method != pitcher.MethodNameLookup {
				t.Fatalf("unexpected provenance: %+v", fact)
			}
			if fact.Name != tc.query || !fact.FetchedAt.Equal(fixed) {
				t.Fatalf("unexpected stamping: %+v", fact)
			}
		})
	}
}

func TestPitcherTable_DetailedEntry(t *testing.T) {
	t.Parallel()

	fact, err := NewPitcherTable(nil, nil).LookupPitcher(context.Background(), "New York Yankees", "Gerrit Cole")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fact.WHIP == nil || *fact.WHIP != 0.98 || fact.Strikeouts == nil || *fact.Strikeouts != 87 {
		t.Fatalf("unexpected detail: %+v", fact)
	}
	if fact.Innings == nil || *fact.Innings < 75.33 || *fact.Innings > 75.34 {
		t.Fatalf("unexpected innings: %v", fact.Innings)
	}
}

func TestPitcherTable_Misses(t *testing.T) {
	t.Parallel()

	table := NewPitcherTable([]Entry{{Name: "Only Pitcher", ERA: 3}}, nil)
	for _, name := range []string{"", "TBD", "Somebody Else"} {
		if _, err := table.LookupPitcher(context.Background(), "Team", name); !errors.Is(err, pitcher.ErrNotFound) {
			t.Fatalf("lookup %q: expected ErrNotFound, got %v", name, err)
		}
	}
	if table.Len() != 1 {
		t.Fatalf("unexpected table size %d", table.Len())
	}
}

func TestDefaultEntries_UniqueNames(t *testing.T) {
	t.Parallel()

	seen := map[string]bool{}
	for _, entry := range DefaultEntries() {
		if seen[entry.Name] {
			t.Fatalf("duplicate entry %q", entry.Name)
		}
		seen[entry.Name] = true
	}
}

func TestSampleSchedule(t *testing.T) {
	t.Parallel()

	games, err := SampleSchedule{}.FetchSchedule(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(games) != 6 || games[0].ID != 718001 || games[5].ID != 718006 {
		t.Fatalf("unexpected sample games: %+v", games)
	}
	if games[0].HomePitcherName != "Gerrit Cole" || games[0].AwayPitcherName != "Nick Pivetta" || games[0].GameTime != "19:05" {
		t.Fatalf("unexpected first game: %+v", games[0])
	}

	games[0].HomeTeam = "mutated"
	again, _ := SampleSchedule{}.FetchSchedule(context.Background(), time.Now())
	if again[0].HomeTeam != "New York Yankees" {
		t.Fatalf("sample schedule leaked a mutable slice")
	}
}

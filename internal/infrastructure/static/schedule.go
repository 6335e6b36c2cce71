package static

import (
	"context"
	"time"

	"github.com/riskibarqy/mlb-predictions/internal/domain/game"
)

var sampleGames = []game.ScheduledGame{
	{ID: 718001, Status: game.StatusPreview, HomeTeam: "New York Yankees", AwayTeam: "Boston Red Sox", Venue: "Yankee Stadium", GameTime: "19:05", HomePitcherName: "Gerrit Cole", AwayPitcherName: "Nick Pivetta"},
	{ID: 718002, Status: game.StatusPreview, HomeTeam: "Los Angeles Dodgers", AwayTeam: "San Francisco Giants", Venue: "Dodger Stadium", GameTime: "22:10", HomePitcherName: "Tyler Glasnow", AwayPitcherName: "Logan Webb"},
	{ID: 718003, Status: game.StatusPreview, HomeTeam: "Chicago Cubs", AwayTeam: "St. Louis Cardinals", Venue: "Wrigley Field", GameTime: "14:20", HomePitcherName: "Justin Steele", AwayPitcherName: "Sonny Gray"},
	{ID: 718004, Status: game.StatusPreview, HomeTeam: "Philadelphia Phillies", AwayTeam: "Atlanta Braves", Venue: "Citizens Bank Park", GameTime: "18:40", HomePitcherName: "Zack Wheeler", AwayPitcherName: "Max Fried"},
	{ID: 718005, Status: game.StatusPreview, HomeTeam: "Houston Astros", AwayTeam: "Seattle Mariners", Venue: "Minute Maid Park", GameTime: "20:10", HomePitcherName: "Framber Valdez", AwayPitcherName: "Luis Castillo"},
	{ID: 718006, Status: game.StatusPreview, HomeTeam: "San Diego Padres", AwayTeam: "Los Angeles Angels", Venue: "Petco Park", GameTime: "21:40", HomePitcherName: "Yu Darvish", AwayPitcherName: "Reid Detmers"},
}

// SampleSchedule is the fixed slate served when the official schedule is
// unreachable or empty. The same games are returned for every date.
type SampleSchedule struct{}

func (SampleSchedule) FetchSchedule(_ context.Context, _ time.Time) ([]game.ScheduledGame, error) {
	return append([]game.ScheduledGame(nil), sampleGames...), nil
}

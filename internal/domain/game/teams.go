package game

import "github.com/riskibarqy/mlb-predictions/internal/platform/textnorm"

// Team carries the identifiers each upstream source uses for one club.
type Team struct {
	Name      string
	Abbr      string
	MLBID     int
	BBRefAbbr string
	ESPNID    string
	City      string
	HomeVenue string
}

var teams = []Team{
	{Name: "Arizona Diamondbacks", Abbr: "ARI", MLBID: 109, BBRefAbbr: "ARI", ESPNID: "ari", City: "Phoenix,AZ", HomeVenue: "Chase Field"},
	{Name: "Atlanta Braves", Abbr: "ATL", MLBID: 144, BBRefAbbr: "ATL", ESPNID: "atl", City: "Atlanta,GA", HomeVenue: "Truist Park"},
	{Name: "Baltimore Orioles", Abbr: "BAL", MLBID: 110, BBRefAbbr: "BAL", ESPNID: "bal", City: "Baltimore,MD", HomeVenue: "Oriole Park at Camden Yards"},
	{Name: "Boston Red Sox", Abbr: "BOS", MLBID: 111, BBRefAbbr: "BOS", ESPNID: "bos", City: "Boston,MA", HomeVenue: "Fenway Park"},
	{Name: "Chicago Cubs", Abbr: "CHC", MLBID: 112, BBRefAbbr: "CHC", ESPNID: "chc", City: "Chicago,IL", HomeVenue: "Wrigley Field"},
	{Name: "Chicago White Sox", Abbr: "CWS", MLBID: 145, BBRefAbbr: "CHW", ESPNID: "chw", City: "Chicago,IL", HomeVenue: "Rate Field"},
	{Name: "Cincinnati Reds", Abbr: "CIN", MLBID: 113, BBRefAbbr: "CIN", ESPNID: "cin", City: "Cincinnati,OH", HomeVenue: "Great American Ball Park"},
	{Name: "Cleveland Guardians", Abbr: "CLE", MLBID: 114, BBRefAbbr: "CLE", ESPNID: "cle", City: "Cleveland,OH", HomeVenue: "Progressive Field"},
	{Name: "Colorado Rockies", Abbr: "COL", MLBID: 115, BBRefAbbr: "COL", ESPNID: "col", City: "Denver,CO", HomeVenue: "Coors Field"},
	{Name: "Detroit Tigers", Abbr: "DET", MLBID: 116, BBRefAbbr: "DET", ESPNID: "det", City: "Detroit,MI", HomeVenue: "Comerica Park"},
	{Name: "Houston Astros", Abbr: "HOU", MLBID: 117, BBRefAbbr: "HOU", ESPNID: "hou", City: "Houston,TX", HomeVenue: "Minute Maid Park"},
	{Name: "Kansas City Royals", Abbr: "KC", MLBID: 118, BBRefAbbr: "KCR", ESPNID: "kc", City: "Kansas City,MO", HomeVenue: "Kauffman Stadium"},
	{Name: "Los Angeles Angels", Abbr: "LAA", MLBID: 108, BBRefAbbr: "LAA", ESPNID: "laa", City: "Anaheim,CA", HomeVenue: "Angel Stadium"},
	{Name: "Los Angeles Dodgers", Abbr: "LAD", MLBID: 119, BBRefAbbr: "LAD", ESPNID: "lad", City: "Los Angeles,CA", HomeVenue: "Dodger Stadium"},
	{Name: "Miami Marlins", Abbr: "MIA", MLBID: 146, BBRefAbbr: "MIA", ESPNID: "mia", City: "Miami,FL", HomeVenue: "loanDepot park"},
	{Name: "Milwaukee Brewers", Abbr: "MIL", MLBID: 158, BBRefAbbr: "MIL", ESPNID: "mil", City: "Milwaukee,WI", HomeVenue: "American Family Field"},
	{Name: "Minnesota Twins", Abbr: "MIN", MLBID: 142, BBRefAbbr: "MIN", ESPNID: "min", City: "Minneapolis,MN", HomeVenue: "Target Field"},
	{Name: "New York Mets", Abbr: "NYM", MLBID: 121, BBRefAbbr: "NYM", ESPNID: "nym", City: "New York,NY", HomeVenue: "Citi Field"},
	{Name: "New York Yankees", Abbr: "NYY", MLBID: 147, BBRefAbbr: "NYY", ESPNID: "nyy", City: "New York,NY", HomeVenue: "Yankee Stadium"},
	{Name: "Oakland Athletics", Abbr: "OAK", MLBID: 133, BBRefAbbr: "OAK", ESPNID: "oak", City: "Oakland,CA", HomeVenue: "Oakland Coliseum"},
	{Name: "Philadelphia Phillies", Abbr: "PHI", MLBID: 143, BBRefAbbr: "PHI", ESPNID: "phi", City: "Philadelphia,PA", HomeVenue: "Citizens Bank Park"},
	{Name: "Pittsburgh Pirates", Abbr: "PIT", MLBID: 134, BBRefAbbr: "PIT", ESPNID: "pit", City: "Pittsburgh,PA", HomeVenue: "PNC Park"},
	{Name: "San Diego Padres", Abbr: "SD", MLBID: 135, BBRefAbbr: "SDP", ESPNID: "sd", City: "San Diego,CA", HomeVenue: "Petco Park"},
	{Name: "San Francisco Giants", Abbr: "SF", MLBID: 137, BBRefAbbr: "SFG", ESPNID: "sf", City: "San Francisco,CA", HomeVenue: "Oracle Park"},
	{Name: "Seattle Mariners", Abbr: "SEA", MLBID: 136, BBRefAbbr: "SEA", ESPNID: "sea", City: "Seattle,WA", HomeVenue: "T-Mobile Park"},
	{Name: "St. Louis Cardinals", Abbr: "STL", MLBID: 138, BBRefAbbr: "STL", ESPNID: "stl", City: "St. Louis,MO", HomeVenue: "Busch Stadium"},
	{Name: "Tampa Bay Rays", Abbr: "TB", MLBID: 139, BBRefAbbr: "TBR", ESPNID: "tb", City: "St. Petersburg,FL", HomeVenue: "Tropicana Field"},
	{Name: "Texas Rangers", Abbr: "TEX", MLBID: 140, BBRefAbbr: "TEX", ESPNID: "tex", City: "Arlington,TX", HomeVenue: "Globe Life Field"},
	{Name: "Toronto Blue Jays", Abbr: "TOR", MLBID: 141, BBRefAbbr: "TOR", ESPNID: "tor", City: "Toronto,ON", HomeVenue: "Rogers Centre"},
	{Name: "Washington Nationals", Abbr: "WSH", MLBID: 120, BBRefAbbr: "WSN", ESPNID: "wsh", City: "Washington,DC", HomeVenue: "Nationals Park"},
}

// Teams returns a copy of the club registry.
func Teams() []Team {
	return append([]Team(nil), teams...)
}

// LookupTeam resolves a full name, nickname or abbreviation. Exact matches
// win over substring matches in either direction.
func LookupTeam(name string) (Team, bool) {
	folded := textnorm.Fold(name)
	if folded == "" {
		return Team{}, false
	}
	for _, item := range teams {
		if textnorm.Fold(item.Name) == folded || textnorm.Fold(item.Abbr) == folded {
			return item, true
		}
	}
	if len(folded) < 4 {
		return Team{}, false
	}
	for _, item := range teams {
		if textnorm.MatchName(item.Name, name) {
			return item, true
		}
	}
	return Team{}, false
}

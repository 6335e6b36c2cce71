package mlbstats

import (
	"bytes"
	"strconv"

	sonic "github.com/bytedance/sonic"
)

// flexValue accepts both JSON strings and numbers. The stats API renders
// rate stats as strings ("3.45", "-.--") and counts as numbers.
type flexValue string

func (v *flexValue) UnmarshalJSON(raw []byte) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		*v = ""
		return nil
	}
	if raw[0] == '"' {
		var s string
		if err := sonic.Unmarshal(raw, &s); err != nil {
			return err
		}
		*v = flexValue(s)
		return nil
	}
	if _, err := strconv.ParseFloat(string(raw), 64); err != nil {
		return err
	}
	*v = flexValue(raw)
	return nil
}

func (v flexValue) String() string {
	return string(v)
}

type scheduleEnvelope struct {
	Dates []scheduleDate `json:"dates"`
}

type scheduleDate struct {
	Date  string         `json:"date"`
	Games []scheduleGame `json:"games"`
}

type scheduleGame struct {
	GamePk   int64  `json:"gamePk"`
	GameDate string `json:"gameDate"`
	Status   struct {
		AbstractGameState string `json:"abstractGameState"`
	} `json:"status"`
	Teams struct {
		Home scheduleTeam `json:"home"`
		Away scheduleTeam `json:"away"`
	} `json:"teams"`
	Venue struct {
		Name string `json:"name"`
	} `json:"venue"`
}

type scheduleTeam struct {
	Team struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"team"`
	ProbablePitcher *struct {
		ID       int64  `json:"id"`
		FullName string `json:"fullName"`
	} `json:"probablePitcher"`
}

type rosterEnvelope struct {
	Roster []rosterEntry `json:"roster"`
}

type rosterEntry struct {
	Person struct {
		ID       int64  `json:"id"`
		FullName string `json:"fullName"`
	} `json:"person"`
	Position struct {
		Code string `json:"code"`
		Type string `json:"type"`
	} `json:"position"`
}

type peopleEnvelope struct {
	People []person `json:"people"`
}

type person struct {
	ID              int64  `json:"id"`
	FullName        string `json:"fullName"`
	PrimaryPosition struct {
		Code string `json:"code"`
	} `json:"primaryPosition"`
}

type statsEnvelope struct {
	Stats []statsGroup `json:"stats"`
}

type statsGroup struct {
	Splits []statsSplit `json:"splits"`
}

type statsSplit struct {
	Season string       `json:"season"`
	Stat   pitchingLine `json:"stat"`
}

type pitchingLine struct {
	ERA            flexValue `json:"era"`
	WHIP           flexValue `json:"whip"`
	StrikeOuts     flexValue `json:"strikeOuts"`
	BaseOnBalls    flexValue `json:"baseOnBalls"`
	Walks          flexValue `json:"walks"`
	InningsPitched flexValue `json:"inningsPitched"`
	Runs           flexValue `json:"runs"`
	GamesPlayed    flexValue `json:"gamesPlayed"`
}

// firstSplit returns the first split of the first stats group.
func (e statsEnvelope) firstSplit() (pitchingLine, bool) {
	for _, group := range e.Stats {
		if len(group.Splits) > 0 {
			return group.Splits[0].Stat, true
		}
	}
	return pitchingLine{}, false
}

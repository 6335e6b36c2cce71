package espn

import (
	"regexp"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/mlb-predictions/internal/domain/pitcher"
	"github.com/riskibarqy/mlb-predictions/internal/platform/htmlx"
	"github.com/riskibarqy/mlb-predictions/internal/platform/textnorm"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const playerInfoMarker = "window.espn.playerInfo"

var (
	eraTextPattern  = regexp.MustCompile(`ERA[:\s]+([0-9.]+)`)
	playerIDPattern = regexp.MustCompile(`/id/(\d+)`)
)

type strategy string

const (
	strategyStatBlock  strategy = "stat-block"
	strategyStatsTable strategy = "stats-table"
	strategyTextRegex  strategy = "text-regex"
	strategyScriptJSON strategy = "script-json"
)

// statLine is what a player page yields. Only ERA is required.
type statLine struct {
	ERA        float64
	WHIP       *float64
	Strikeouts *int
	Innings    *float64
	Strategy   strategy
}

// extractPlayerStats tries the page layouts ESPN has used over time, most
// structured first.
func extractPlayerStats(doc *html.Node) (statLine, bool) {
	for _, extract := range []func(*html.Node) (statLine, bool){
		fromStatBlocks,
		fromStatsTable,
		fromFreeText,
		fromPlayerInfoScript,
	} {
		if line, ok := extract(doc); ok {
			return line, true
		}
	}
	return statLine{}, false
}

func fromStatBlocks(doc *html.Node) (statLine, bool) {
	line := statLine{Strategy: strategyStatBlock}
	found := false
	for _, block := range htmlx.FindAll(doc, htmlx.Class("PlayerStats__stat-item")) {
		label := htmlx.Text(htmlx.FindFirst(block, htmlx.Class("PlayerStats__stat-label")))
		value := htmlx.Text(htmlx.FindFirst(block, htmlx.Class("PlayerStats__stat-value")))
		if label == "" || value == "" {
			continue
		}
		switch strings.ToUpper(label) {
		case "ERA":
			if era, err := pitcher.ParseStat(value); err == nil && !found {
				line.ERA = era
				found = true
			}
		default:
			applySecondary(&line, label, value)
		}
	}
	return line, found
}

func fromStatsTable(doc *html.Node) (statLine, bool) {
	for _, table := range htmlx.FindAll(doc, htmlx.Tag("table")) {
		headers := headerLabels(table)
		eraIndex := indexOf(headers, "ERA")
		if eraIndex < 0 {
			continue
		}
		rows := dataRows(table)
		if len(rows) == 0 {
			continue
		}
		cells := htmlx.Cells(rows[0])
		if eraIndex >= len(cells) {
			continue
		}
		era, err := pitcher.ParseStat(htmlx.Text(cells[eraIndex]))
		if err != nil {
			continue
		}
		line := statLine{ERA: era, Strategy: strategyStatsTable}
		for i, header := range headers {
			if i < len(cells) && i != eraIndex {
				applySecondary(&line, header, htmlx.Text(cells[i]))
			}
		}
		return line, true
	}
	return statLine{}, false
}

func fromFreeText(doc *html.Node) (statLine, bool) {
	var line statLine
	found := false
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found {
			return
		}
		if n.Type == html.ElementNode && (n.DataAtom == atom.Script || n.DataAtom == atom.Style) {
			return
		}
		if n.Type == html.TextNode && strings.Contains(n.Data, "ERA") {
			if match := eraTextPattern.FindStringSubmatch(n.Data); match != nil {
				if era, err := pitcher.ParseStat(strings.TrimRight(match[1], ".")); err == nil {
					line = statLine{ERA: era, Strategy: strategyTextRegex}
					found = true
					return
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return line, found
}

type playerInfo struct {
	Stats struct {
		Baseball map[string]map[string]any `json:"baseball"`
	} `json:"stats"`
}

func fromPlayerInfoScript(doc *html.Node) (statLine, bool) {
	for _, script := range htmlx.FindAll(doc, htmlx.Tag("script")) {
		body := htmlx.RawText(script)
		idx := strings.Index(body, playerInfoMarker)
		if idx < 0 {
			continue
		}
		payload := balancedObject(body[idx+len(playerInfoMarker):])
		if payload == "" {
			continue
		}
		var info playerInfo
		if err := sonic.UnmarshalString(payload, &info); err != nil {
			continue
		}
		for _, group := range info.Stats.Baseball {
			raw, ok := group["era"]
			if !ok {
				continue
			}
			if era, err := pitcher.ParseStat(anyToString(raw)); err == nil {
				return statLine{ERA: era, Strategy: strategyScriptJSON}, true
			}
		}
	}
	return statLine{}, false
}

// balancedObject returns the first complete {...} value in s, honoring
// braces inside JSON strings.
func balancedObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

func applySecondary(line *statLine, label, value string) {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "WHIP":
		if whip, err := pitcher.ParseStat(value); err == nil {
			line.WHIP = pitcher.Float(whip)
		}
	case "K", "SO":
		if strikeouts, err := pitcher.ParseCount(value); err == nil {
			line.Strikeouts = pitcher.Int(strikeouts)
		}
	case "IP":
		if innings, err := pitcher.ParseInnings(value); err == nil {
			line.Innings = pitcher.Float(innings)
		}
	}
}

type playerLink struct {
	Name     string
	Position string
	Href     string
}

// parseRoster reads a team roster page: the second cell holds the linked
// name, the third the position.
func parseRoster(doc *html.Node) []playerLink {
	var out []playerLink
	for _, tr := range htmlx.FindAll(doc, htmlx.Tag("tr")) {
		cells := htmlx.Cells(tr)
		if len(cells) < 3 || cells[1].DataAtom != atom.Td {
			continue
		}
		anchor := htmlx.FindFirst(cells[1], htmlx.Tag("a"))
		name := htmlx.Text(cells[1])
		if anchor != nil {
			name = htmlx.Text(anchor)
		}
		out = append(out, playerLink{
			Name:     name,
			Position: strings.ToUpper(htmlx.Text(cells[2])),
			Href:     htmlx.Attr(anchor, "href"),
		})
	}
	return out
}

func isPitcherPosition(position string) bool {
	switch position {
	case "P", "SP", "RP":
		return true
	}
	return false
}

// findInStatsTable scans every table with an ERA column for a row whose
// linked name matches.
func findInStatsTable(doc *html.Node, name string) (statLine, playerLink, bool) {
	for _, table := range htmlx.FindAll(doc, htmlx.Tag("table")) {
		headers := headerLabels(table)
		eraIndex := indexOf(headers, "ERA")
		if eraIndex < 0 {
			continue
		}
		for _, tr := range dataRows(table) {
			cells := htmlx.Cells(tr)
			if len(cells) <= eraIndex {
				continue
			}
			anchor := htmlx.FindFirst(cells[0], htmlx.Tag("a"))
			if anchor == nil {
				continue
			}
			rowName := htmlx.Text(anchor)
			if !textnorm.MatchName(rowName, name) {
				continue
			}
			era, err := pitcher.ParseStat(htmlx.Text(cells[eraIndex]))
			if err != nil {
				continue
			}
			line := statLine{ERA: era, Strategy: strategyStatsTable}
			for i, header := range headers {
				if i < len(cells) && i != eraIndex {
					applySecondary(&line, header, htmlx.Text(cells[i]))
				}
			}
			return line, playerLink{Name: rowName, Href: htmlx.Attr(anchor, "href")}, true
		}
	}
	return statLine{}, playerLink{}, false
}

// parseSearchResults collects player links. Results whose position is
// known and is not a pitcher are dropped.
func parseSearchResults(doc *html.Node) []playerLink {
	var out []playerLink
	for _, anchor := range htmlx.FindAll(doc, htmlx.Tag("a")) {
		href := htmlx.Attr(anchor, "href")
		name := htmlx.Text(anchor)
		if !strings.Contains(href, "/player/_/id/") || name == "" {
			continue
		}
		position := ""
		if parent := anchor.Parent; parent != nil {
			if sibling := nextElement(parent); sibling != nil {
				text := htmlx.Text(sibling)
				if strings.Contains(text, "P,") || strings.HasSuffix(text, ", P") || text == "P" {
					position = "P"
				} else if text != "" {
					position = text
				}
			}
		}
		if position != "" && position != "P" {
			continue
		}
		out = append(out, playerLink{Name: name, Position: position, Href: href})
	}
	return out
}

func nextElement(n *html.Node) *html.Node {
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode {
			return s
		}
	}
	return nil
}

func headerLabels(table *html.Node) []string {
	scope := htmlx.FindFirst(table, htmlx.Tag("thead"))
	if scope == nil {
		scope = table
	}
	tr := htmlx.FindFirst(scope, htmlx.Tag("tr"))
	cells := htmlx.Cells(tr)
	out := make([]string, 0, len(cells))
	for _, cell := range cells {
		out = append(out, htmlx.Text(cell))
	}
	return out
}

// dataRows drops header rows that the parser moved into an implicit tbody.
func dataRows(table *html.Node) []*html.Node {
	var out []*html.Node
	for _, tr := range htmlx.Rows(table) {
		if htmlx.FindFirst(tr, htmlx.Tag("td")) != nil {
			out = append(out, tr)
		}
	}
	return out
}

func indexOf(labels []string, want string) int {
	for i, label := range labels {
		if strings.EqualFold(label, want) {
			return i
		}
	}
	return -1
}

func playerIDFromHref(href string) string {
	if match := playerIDPattern.FindStringSubmatch(href); match != nil {
		return match[1]
	}
	return ""
}

func anyToString(v any) string {
	switch value := v.(type) {
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	default:
		return ""
	}
}

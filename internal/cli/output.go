package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/riskibarqy/mlb-predictions/internal/domain/game"
	"github.com/riskibarqy/mlb-predictions/internal/domain/pitcher"
	"github.com/riskibarqy/mlb-predictions/internal/domain/prediction"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func pitcherLabel(side game.TeamSide) string {
	if side.ProbablePitcher == nil {
		return "TBD"
	}
	return fmt.Sprintf("%s (%.2f)", side.ProbablePitcher.Name, side.ProbablePitcher.Fact.ERA)
}

func formatGames(w io.Writer, schedule game.Schedule) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "GAME\tTIME\tAWAY\tHOME\tVENUE\n")
	for _, g := range schedule.Games {
		fmt.Fprintf(tw, "%d\t%s\t%s %s\t%s %s\t%s\n",
			g.ID, g.GameTime,
			g.Away.Name, pitcherLabel(g.Away),
			g.Home.Name, pitcherLabel(g.Home),
			g.Venue,
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d games on %s (schedule: %s)\n", len(schedule.Games), schedule.Date, schedule.Source)
	return err
}

func formatPredictions(w io.Writer, prop prediction.Proposition, items []prediction.Prediction) error {
	if _, err := fmt.Fprintf(w, "%s\n", prop); err != nil {
		return err
	}
	tw := newTable(w)
	fmt.Fprintf(tw, "GAME\tMATCHUP\tPROB\tRATING\n")
	for _, item := range items {
		fmt.Fprintf(tw, "%d\t%s @ %s\t%.1f\t%s\n", item.GameID, item.Away.Name, item.Home.Name, item.Probability, item.Rating)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w)
	return err
}

func formatFact(w io.Writer, fact pitcher.Fact) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "Pitcher\t%s\n", fact.Name)
	fmt.Fprintf(tw, "ERA\t%.2f\n", fact.ERA)
	if fact.WHIP != nil {
		fmt.Fprintf(tw, "WHIP\t%.2f\n", *fact.WHIP)
	}
	if fact.Strikeouts != nil {
		fmt.Fprintf(tw, "Strikeouts\t%d\n", *fact.Strikeouts)
	}
	fmt.Fprintf(tw, "Source\t%s\n", fact.Source)
	fmt.Fprintf(tw, "Method\t%s\n", fact.Method)
	if fact.URL != "" {
		fmt.Fprintf(tw, "URL\t%s\n", fact.URL)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(fact.Attempts) == 0 {
		return nil
	}

	trail := make([]string, 0, len(fact.Attempts))
	for _, attempt := range fact.Attempts {
		trail = append(trail, fmt.Sprintf("%s=%s", attempt.Source, attempt.Outcome))
	}
	_, err := fmt.Fprintf(w, "Attempts  %s\n", strings.Join(trail, ", "))
	return err
}

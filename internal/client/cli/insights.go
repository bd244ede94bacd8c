package cli

import (
	"context"
	"sort"

	"github.com/dmitrijs2005/moodjournal/internal/client/models"
)

// Insight prints the AI insight of an entry, or its processing status.
func (a *App) Insight(ctx context.Context, args []string) error {
	id, err := a.idArg(args, "insight <id>")
	if err != nil {
		return err
	}
	ins, err := a.insightService.ForEntry(ctx, id)
	if err != nil {
		return err
	}
	a.renderInsightStatus(ins.Status(), ins.Text(), ins.ErrorMessage)
	return nil
}

// Regenerate asks the server to produce a fresh insight for an entry.
func (a *App) Regenerate(ctx context.Context, args []string) error {
	id, err := a.idArg(args, "regenerate <id>")
	if err != nil {
		return err
	}
	ins, err := a.insightService.Regenerate(ctx, id)
	if err != nil {
		return err
	}
	a.renderInsightStatus(ins.Status(), ins.Text(), ins.ErrorMessage)
	return nil
}

// Weekly prints the server's summary of the last week.
func (a *App) Weekly(ctx context.Context) error {
	ws, err := a.insightService.Weekly(ctx)
	if err != nil {
		return err
	}
	if ws.EntriesCount == 0 {
		a.println("No entries in the last week yet.")
		return nil
	}
	a.printf("Weekly summary (%s, %d entries)\n", ws.Period, ws.EntriesCount)
	a.println(ws.Summary)
	return nil
}

// Stats prints the mood distribution and trend the server computed.
func (a *App) Stats(ctx context.Context) error {
	st, err := a.insightService.Stats(ctx)
	if err != nil {
		return err
	}

	a.printf("Entries:       %d (%s)\n", st.TotalEntries, st.Period)
	a.printf("Average mood:  %.1f\n", st.AverageMood)
	if st.RecentTrend != "" {
		a.printf("Recent trend:  %s\n", st.RecentTrend)
	}

	seen := make(map[string]bool, len(st.MoodDistribution))
	for _, e := range models.Emotions() {
		n, ok := st.MoodDistribution[string(e)]
		if !ok {
			continue
		}
		seen[string(e)] = true
		a.printf("  %s %-8s %d\n", e.Emoji(), e.Title(), n)
	}

	var rest []string
	for name := range st.MoodDistribution {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		a.printf("  %-10s %d\n", name, st.MoodDistribution[name])
	}
	return nil
}

// Package report formats the end-of-run summary: per-season counts of
// teams, players, records and fetch failures. Observational only, like
// the run log.
package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pprasanth/eplharvest/internal/models"
)

// Summary renders the run statistics in the requested format
// ("text" or "json").
func Summary(stats *models.RunStats, format string) (string, error) {
	switch format {
	case "json":
		return generateJSON(stats)
	case "text", "":
		return generateText(stats), nil
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

func generateJSON(stats *models.RunStats) (string, error) {
	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal summary: %w", err)
	}
	return string(data), nil
}

func generateText(stats *models.RunStats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Harvest summary (%s)\n", stats.Variant)
	fmt.Fprintf(&b, "Started:  %s\n", stats.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Finished: %s\n\n", stats.FinishedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "%-10s %8s %8s %8s %8s\n", "season", "teams", "players", "records", "failed")

	for _, s := range stats.Seasons {
		if s.Skipped {
			fmt.Fprintf(&b, "%-10s %8s\n", s.Season.Label(), "skipped")
			continue
		}
		fmt.Fprintf(&b, "%-10s %8d %8d %8d %8d\n",
			s.Season.Label(), s.TeamsSeen, s.PlayersSeen, s.RecordsKept, s.FetchFailures)
	}

	fmt.Fprintf(&b, "\nTotal records committed: %d\n", stats.TotalRecords())
	return b.String()
}

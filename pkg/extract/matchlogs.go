package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pprasanth/eplharvest/internal/models"
	"github.com/pprasanth/eplharvest/pkg/fetch"
)

// matchlogTablePolicy identifies the match-by-match table by its
// date-bearing column.
var matchlogTablePolicy = []ColumnPredicate{
	Contains("date"),
	Contains("datum"),
}

// Matchlogs extracts every row of a player's per-season matchlog. The
// page is already season-scoped by its URL, so no date filtering
// applies.
type Matchlogs struct {
	fetcher *fetch.Fetcher
	baseURL string
	log     *logrus.Logger
}

// NewMatchlogs returns the matchlog-variant extractor.
func NewMatchlogs(fetcher *fetch.Fetcher, baseURL string, log *logrus.Logger) *Matchlogs {
	return &Matchlogs{fetcher: fetcher, baseURL: strings.TrimRight(baseURL, "/"), log: log}
}

// Name identifies the variant in logs and summaries.
func (e *Matchlogs) Name() string { return "matchlogs" }

// Extract fetches the player's matchlog for the season and keeps every
// row. A player without an identifier or slug is skipped before any
// network call.
func (e *Matchlogs) Extract(ctx context.Context, season models.Season, team models.Team, player models.Player) []models.Record {
	if player.ID == "" || player.Slug == "" {
		e.log.WithField("player", player.Name).Info("skipping player without id or slug")
		return nil
	}

	pageURL := fmt.Sprintf("%s/%s/leistungsdatendetails/spieler/%s/saison/%d",
		e.baseURL, player.Slug, player.ID, season.StartYear)
	res := e.fetcher.Fetch(ctx, pageURL)
	if !res.OK() {
		return nil
	}

	table, cols := SelectTable(res.Doc, matchlogTablePolicy)
	if table == nil {
		e.log.WithField("url", pageURL).Info("no date-bearing table on page")
		return nil
	}

	// One line per page listing the resolved columns makes upstream
	// layout drift visible in the run log.
	e.log.WithField("url", pageURL).WithField("columns", strings.Join(cols, ",")).
		Info("resolved matchlog columns")

	var records []models.Record
	for _, cells := range tableRows(table) {
		rec := models.NewRecord()
		for i, col := range cols {
			if i >= len(cells) {
				break
			}
			rec.Set(col, cells[i])
		}
		rec.Stamp(season, team, player, pageURL)
		records = append(records, rec)
	}

	e.log.WithField("player", player.Name).WithField("season", season.Label()).
		WithField("records", len(records)).Info("processed player matchlog")
	return records
}

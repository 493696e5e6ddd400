// Package extract turns a single player's detail pages into flat,
// provenance-stamped records. Two variants exist: injury histories and
// per-season matchlogs.
package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/araddon/dateparse"
	"github.com/sirupsen/logrus"

	"github.com/pprasanth/eplharvest/internal/models"
	"github.com/pprasanth/eplharvest/pkg/fetch"
)

// injuryTablePolicy ranks the header predicates that identify the
// injury-history table, most specific first.
var injuryTablePolicy = []ColumnPredicate{
	Contains("injury"),
	Contains("verletzung"),
}

// injuryDateColumns lists, in preference order, the normalized column
// names that can carry the injury start date.
var injuryDateColumns = []string{"from", "injured_since", "von", "date_of_injury"}

// Injuries extracts a player's injury rows, keeping only those whose
// start date falls inside the season's July–June window.
type Injuries struct {
	fetcher *fetch.Fetcher
	baseURL string
	log     *logrus.Logger
}

// NewInjuries returns the injury-variant extractor.
func NewInjuries(fetcher *fetch.Fetcher, baseURL string, log *logrus.Logger) *Injuries {
	return &Injuries{fetcher: fetcher, baseURL: strings.TrimRight(baseURL, "/"), log: log}
}

// Name identifies the variant in logs and summaries.
func (e *Injuries) Name() string { return "injuries" }

// Extract fetches and filters the player's injury history. A player
// without an identifier or slug is skipped before any network call.
func (e *Injuries) Extract(ctx context.Context, season models.Season, team models.Team, player models.Player) []models.Record {
	if player.ID == "" || player.Slug == "" {
		e.log.WithField("player", player.Name).Info("skipping player without id or slug")
		return nil
	}

	pageURL := fmt.Sprintf("%s/%s/verletzungen/spieler/%s", e.baseURL, player.Slug, player.ID)
	res := e.fetcher.Fetch(ctx, pageURL)
	if !res.OK() {
		return nil
	}

	table, cols := SelectTable(res.Doc, injuryTablePolicy)
	if table == nil {
		e.log.WithField("url", pageURL).Info("no injury table on page")
		return nil
	}

	dateCol := pickColumn(cols, injuryDateColumns)
	if dateCol < 0 {
		e.log.WithField("url", pageURL).Warn("injury table has no start-date column")
		return nil
	}

	var records []models.Record
	for _, cells := range tableRows(table) {
		if dateCol >= len(cells) {
			continue
		}
		start, err := dateparse.ParseAny(cells[dateCol])
		if err != nil {
			// Unparseable or missing start date: discard the row.
			continue
		}
		if !season.Contains(start.UTC()) {
			continue
		}
		rec := models.NewRecord()
		for i, col := range cols {
			if i >= len(cells) {
				break
			}
			val := cells[i]
			if i == dateCol {
				val = start.UTC().Format("2006-01-02")
			}
			rec.Set(col, val)
		}
		rec.Stamp(season, team, player, pageURL)
		records = append(records, rec)
	}

	e.log.WithField("player", player.Name).WithField("season", season.Label()).
		WithField("records", len(records)).Info("processed player injuries")
	return records
}

// pickColumn returns the index of the first preferred column present
// in cols, or -1.
func pickColumn(cols []string, preferred []string) int {
	for _, want := range preferred {
		for i, col := range cols {
			if col == want {
				return i
			}
		}
	}
	return -1
}

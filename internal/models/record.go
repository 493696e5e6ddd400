package models

import (
	"strconv"
	"time"
)

// Provenance column names stamped onto every record. The dataset file
// always carries these even when the source layout varies.
const (
	ColSeason      = "season"
	ColSeasonLabel = "season_label"
	ColClubID      = "club_id"
	ColClub        = "club"
	ColPlayerID    = "player_id"
	ColPlayerName  = "player_name"
	ColSourceURL   = "source_url"
)

// ProvenanceColumns lists the mandatory columns in header order.
var ProvenanceColumns = []string{
	ColSeason, ColSeasonLabel, ColClubID, ColClub,
	ColPlayerID, ColPlayerName, ColSourceURL,
}

// Record is one flat extracted row. Fields maps column name to cell
// value; Columns preserves the order cells were extracted in so the
// dataset header stays stable for human inspection.
type Record struct {
	Columns []string          `json:"columns"`
	Fields  map[string]string `json:"fields"`
}

// NewRecord returns an empty record ready for Set calls.
func NewRecord() Record {
	return Record{Fields: make(map[string]string)}
}

// Set stores a field value, recording first-seen column order.
func (r *Record) Set(col, val string) {
	if _, ok := r.Fields[col]; !ok {
		r.Columns = append(r.Columns, col)
	}
	r.Fields[col] = val
}

// Get returns the value for col, or "" when absent.
func (r Record) Get(col string) string {
	return r.Fields[col]
}

// Stamp writes the provenance fields identifying which
// (season, team, player) produced this record.
func (r *Record) Stamp(season Season, team Team, player Player, sourceURL string) {
	r.Set(ColSeason, strconv.Itoa(season.StartYear))
	r.Set(ColSeasonLabel, season.Label())
	r.Set(ColClubID, team.ID)
	r.Set(ColClub, team.Name)
	r.Set(ColPlayerID, player.ID)
	r.Set(ColPlayerName, player.Name)
	r.Set(ColSourceURL, sourceURL)
}

// Batch holds everything harvested for one season before it is handed
// to the dataset for a single commit.
type Batch struct {
	Season  Season   `json:"season"`
	Records []Record `json:"records"`
}

// SeasonStats aggregates the per-level counts logged for one season.
type SeasonStats struct {
	Season        Season `json:"season"`
	Skipped       bool   `json:"skipped"`
	TeamsSeen     int    `json:"teams_seen"`
	PlayersSeen   int    `json:"players_seen"`
	RecordsKept   int    `json:"records_kept"`
	FetchFailures int    `json:"fetch_failures"`
}

// RunStats summarizes a full run across all configured seasons.
type RunStats struct {
	Variant    string        `json:"variant"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Seasons    []SeasonStats `json:"seasons"`
}

// TotalRecords returns the number of records committed in this run.
func (rs *RunStats) TotalRecords() int {
	total := 0
	for _, s := range rs.Seasons {
		total += s.RecordsKept
	}
	return total
}

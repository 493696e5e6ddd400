// Package crawl sequences the season → team → player traversal: it
// asks the locator for children at each level, the extractor for
// records per player, and hands each finished season batch to the
// dataset for a single commit.
package crawl

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pprasanth/eplharvest/internal/models"
	"github.com/pprasanth/eplharvest/pkg/dataset"
)

// Locator resolves parent→children navigation.
type Locator interface {
	Teams(ctx context.Context, season models.Season) []models.Team
	Players(ctx context.Context, season models.Season, team models.Team) []models.Player
}

// Extractor produces records for a single player in context.
type Extractor interface {
	Name() string
	Extract(ctx context.Context, season models.Season, team models.Team, player models.Player) []models.Record
}

// Options configures a Driver.
type Options struct {
	StartYear int
	EndYear   int
	// OutputPath is the dataset destination, rewritten per season.
	OutputPath string
	// TeamDelay paces between sibling teams; SeasonDelay between
	// seasons. Per-request pacing lives in the fetch wrapper.
	TeamDelay   time.Duration
	SeasonDelay time.Duration
	Logger      *logrus.Logger
	// FetchFailures reports the fetch wrapper's running failure count;
	// the driver snapshots it around each season for the summary.
	FetchFailures func() int

	// sleep is replaced in tests.
	sleep func(time.Duration)
}

// Driver runs one pipeline instance over the configured season range.
type Driver struct {
	opts      Options
	locator   Locator
	extractor Extractor
	log       *logrus.Logger
	sleep     func(time.Duration)
}

// New builds a Driver. Logger must be set.
func New(opts Options, locator Locator, extractor Extractor) *Driver {
	sleep := opts.sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	return &Driver{
		opts:      opts,
		locator:   locator,
		extractor: extractor,
		log:       opts.Logger,
		sleep:     sleep,
	}
}

// Run processes every configured season not already present in the
// persisted dataset, in ascending order. Failures inside a season
// degrade to logged empty results; Run only fails on persistence or
// load errors.
func (d *Driver) Run(ctx context.Context) (*models.RunStats, error) {
	stats := &models.RunStats{
		Variant:   d.extractor.Name(),
		StartedAt: time.Now(),
	}

	ds, err := dataset.Load(d.opts.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	completed := ds.CompletedSeasons()

	for year := d.opts.StartYear; year <= d.opts.EndYear; year++ {
		season := models.Season{StartYear: year}

		if completed[year] {
			d.log.WithField("season", season.Label()).Info("season already harvested, skipping")
			stats.Seasons = append(stats.Seasons, models.SeasonStats{Season: season, Skipped: true})
			continue
		}
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		before := 0
		if d.opts.FetchFailures != nil {
			before = d.opts.FetchFailures()
		}
		ss := d.harvestSeason(ctx, season)
		if d.opts.FetchFailures != nil {
			ss.stats.FetchFailures = d.opts.FetchFailures() - before
		}
		stats.Seasons = append(stats.Seasons, ss.stats)

		if len(ss.batch.Records) > 0 {
			if err := ds.Commit(d.opts.OutputPath, ss.batch); err != nil {
				return stats, fmt.Errorf("commit season %s: %w", season.Label(), err)
			}
			d.log.WithField("season", season.Label()).
				WithField("records", len(ss.batch.Records)).Info("season committed")
		} else {
			d.log.WithField("season", season.Label()).Info("zero records for season")
		}

		if year < d.opts.EndYear {
			d.sleep(d.opts.SeasonDelay)
		}
	}

	// Downstream consumers rely on the file existing even when no
	// season ever yielded data.
	if _, err := os.Stat(d.opts.OutputPath); os.IsNotExist(err) {
		if err := ds.Write(d.opts.OutputPath); err != nil {
			return stats, fmt.Errorf("write empty dataset: %w", err)
		}
	}

	stats.FinishedAt = time.Now()
	d.log.WithField("variant", stats.Variant).
		WithField("total_records", stats.TotalRecords()).Info("run complete")
	return stats, nil
}

type seasonResult struct {
	batch models.Batch
	stats models.SeasonStats
}

// harvestSeason walks one season's teams and players, aggregating the
// season batch. A team or player yielding nothing is logged and passed
// over; nothing here aborts the season.
func (d *Driver) harvestSeason(ctx context.Context, season models.Season) seasonResult {
	res := seasonResult{
		batch: models.Batch{Season: season},
		stats: models.SeasonStats{Season: season},
	}

	teams := d.locator.Teams(ctx, season)
	res.stats.TeamsSeen = len(teams)
	if len(teams) == 0 {
		d.log.WithField("season", season.Label()).Warn("no teams for season")
		return res
	}

	for i, team := range teams {
		players := d.locator.Players(ctx, season, team)
		res.stats.PlayersSeen += len(players)

		teamRecords := 0
		for _, player := range players {
			records := d.extractor.Extract(ctx, season, team, player)
			res.batch.Records = append(res.batch.Records, records...)
			teamRecords += len(records)
		}

		d.log.WithField("season", season.Label()).WithField("club", team.Name).
			WithField("players", len(players)).WithField("records", teamRecords).
			Info("club processed")

		if i < len(teams)-1 {
			d.sleep(d.opts.TeamDelay)
		}
	}

	res.stats.RecordsKept = len(res.batch.Records)
	return res
}

package report

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pprasanth/eplharvest/internal/models"
)

func sampleStats() *models.RunStats {
	return &models.RunStats{
		Variant:    "injuries",
		StartedAt:  time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
		FinishedAt: time.Date(2024, 6, 1, 14, 30, 0, 0, time.UTC),
		Seasons: []models.SeasonStats{
			{Season: models.Season{StartYear: 2019}, Skipped: true},
			{Season: models.Season{StartYear: 2020}, TeamsSeen: 20, PlayersSeen: 540, RecordsKept: 812, FetchFailures: 7},
		},
	}
}

func TestSummaryText(t *testing.T) {
	out, err := Summary(sampleStats(), "text")
	require.NoError(t, err)
	assert.Contains(t, out, "2019/20")
	assert.Contains(t, out, "skipped")
	assert.Contains(t, out, "812")
	assert.Contains(t, out, "Total records committed: 812")
}

func TestSummaryJSON(t *testing.T) {
	out, err := Summary(sampleStats(), "json")
	require.NoError(t, err)

	var decoded models.RunStats
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "injuries", decoded.Variant)
	require.Len(t, decoded.Seasons, 2)
	assert.Equal(t, 812, decoded.Seasons[1].RecordsKept)
}

func TestSummaryUnknownFormat(t *testing.T) {
	_, err := Summary(sampleStats(), "yaml")
	assert.Error(t, err)
}

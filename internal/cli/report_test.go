package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diskpanel/internal/config"
	"diskpanel/internal/models"
)

func sampleConfig() *config.Config {
	return &config.Config{
		DataSource: config.DataSourceConfig{Mode: config.ModeSample, Timeout: time.Second},
	}
}

func TestRunReportText(t *testing.T) {
	var out bytes.Buffer
	err := runReport(context.Background(), sampleConfig(), reportOptions{format: formatText}, &out)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Total Used Space: 2150.00 GB")
	assert.Contains(t, out.String(), "Total Free Space: 1350.00 GB")
	assert.Contains(t, out.String(), "Usage (%)")
}

func TestRunReportSortedDescending(t *testing.T) {
	var out bytes.Buffer
	err := runReport(context.Background(), sampleConfig(), reportOptions{sortKey: "used", desc: true, format: formatText}, &out)
	require.NoError(t, err)

	text := out.String()
	table := text[strings.Index(text, "Used (GB) v"):]
	assert.Less(t, strings.Index(table, "E:"), strings.Index(table, "C:"))
}

func TestRunReportJSON(t *testing.T) {
	var out bytes.Buffer
	err := runReport(context.Background(), sampleConfig(), reportOptions{sortKey: "percent", format: formatJSON}, &out)
	require.NoError(t, err)

	var report struct {
		Snapshot models.VolumeSnapshot `json:"snapshot"`
		Sort     models.SortState      `json:"sort"`
		Table    models.VolumeTable    `json:"table"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))

	assert.True(t, report.Snapshot.Fallback)
	assert.Equal(t, 2150.0, report.Snapshot.Totals.TotalUsedGB)
	assert.Equal(t, models.SortState{ActiveKey: models.SortByPercent, Ascending: true}, report.Sort)
	require.Len(t, report.Table.Rows, 3)
}

func TestRunReportRejectsBadOptions(t *testing.T) {
	var out bytes.Buffer

	err := runReport(context.Background(), sampleConfig(), reportOptions{format: "yaml"}, &out)
	assert.ErrorContains(t, err, "unknown format")

	err = runReport(context.Background(), sampleConfig(), reportOptions{sortKey: "size", format: formatText}, &out)
	var invalid models.InvalidSortKeyError
	assert.ErrorAs(t, err, &invalid)

	err = runReport(context.Background(), sampleConfig(), reportOptions{desc: true, format: formatText}, &out)
	assert.ErrorContains(t, err, "--desc requires --sort")
}

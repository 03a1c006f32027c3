package views

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diskpanel/internal/models"
	"diskpanel/internal/services"
)

func TestTextSurfaceFlush(t *testing.T) {
	surface := NewTextSurface()
	failures := services.NewFanout(nil, services.DefaultRenderers(surface, NewTextCharter(surface))...).Present(fallbackSnapshot())
	require.Empty(t, failures)

	var buf bytes.Buffer
	require.NoError(t, surface.Flush(&buf, models.SortState{}))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "Total Used Space: 2150.00 GB\nTotal Free Space: 1350.00 GB\n"))
	assert.Contains(t, out, `C: (C:\)`)
	assert.Contains(t, out, "Usage:  70% [##############------]")
	assert.Contains(t, out, "Total Disk Space: 3500.00 GB")
	assert.Contains(t, out, "Disk Usage by Partition")
	assert.Contains(t, out, "Total (GB)")
	assert.Contains(t, out, "1000.00")

	assert.Less(t, strings.Index(out, "Disk Usage by Partition"), strings.Index(out, "Usage (%)"), "table comes last")
}

func TestTextSurfaceFlushMarksSortColumn(t *testing.T) {
	surface := NewTextSurface()
	require.NoError(t, surface.SetTable(models.PointTable, models.NewVolumeTable(services.FallbackVolumes())))

	var buf bytes.Buffer
	require.NoError(t, surface.Flush(&buf, models.SortState{ActiveKey: models.SortByUsed, Ascending: false}))

	assert.Contains(t, buf.String(), "Used (GB) v")
	assert.NotContains(t, buf.String(), "Total (GB) ^")
}

func TestTextSurfaceFlushWithoutTable(t *testing.T) {
	surface := NewTextSurface()
	require.NoError(t, surface.SetText(models.PointTotalUsed, "Total Used Space: 0.00 GB"))

	var buf bytes.Buffer
	require.NoError(t, surface.Flush(&buf, models.SortState{}))
	assert.Equal(t, "Total Used Space: 0.00 GB\n", buf.String())
}

func TestTextCharterRejectsWrongPoint(t *testing.T) {
	surface := NewTextSurface()
	err := NewTextCharter(surface).Draw(models.PointPartitions, models.ChartSpec{})

	var unsupported UnsupportedPointError
	assert.ErrorAs(t, err, &unsupported)
}

func TestRenderTextChart(t *testing.T) {
	spec := services.ComparisonChartSpec(services.FallbackVolumes())

	out := RenderTextChart(spec, 12)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	require.Len(t, lines, 7)
	assert.Equal(t, "Disk Usage by Partition", lines[0])
	assert.Contains(t, lines[5], strings.Repeat("#", 12)+" 1200.00")
	assert.Contains(t, lines[1], strings.Repeat("#", 4)+" 350.00")
}

func TestRenderTextChartZeroValues(t *testing.T) {
	spec := services.AggregateChartSpec(models.SummaryTotals{})

	out := RenderTextChart(spec, 0)
	assert.Contains(t, out, "Total Disk Space: 0.00 GB")
	assert.NotContains(t, out, "#")
}

func TestUsageBar(t *testing.T) {
	assert.Equal(t, "[----]", usageBar(0, 4))
	assert.Equal(t, "[##--]", usageBar(50, 4))
	assert.Equal(t, "[####]", usageBar(150, 4))
}

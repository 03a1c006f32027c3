package services

import (
	"fmt"

	"diskpanel/internal/logging"
	"diskpanel/internal/models"
)

// Surface is the document-like target renderers write into. Each method
// addresses a named insertion point.
type Surface interface {
	SetText(point models.InsertionPoint, text string) error
	AppendCard(point models.InsertionPoint, card models.VolumeCard) error
	SetTable(point models.InsertionPoint, table *models.VolumeTable) error
}

// Charter is the external charting capability
type Charter interface {
	Draw(point models.InsertionPoint, spec models.ChartSpec) error
}

// Renderer draws one widget from a snapshot
type Renderer interface {
	Name() string
	Render(snap *models.VolumeSnapshot) error
}

// RendererFailure records a renderer that returned an error or panicked
type RendererFailure struct {
	Renderer string
	Err      error
}

func (f RendererFailure) Error() string {
	return fmt.Sprintf("renderer %s: %v", f.Renderer, f.Err)
}

func (f RendererFailure) Unwrap() error {
	return f.Err
}

// Fanout drives every renderer with the same snapshot. A failing renderer is
// logged and skipped; the remaining renderers still run.
type Fanout struct {
	renderers []Renderer
	metrics   *PipelineMetrics
}

func NewFanout(metrics *PipelineMetrics, renderers ...Renderer) *Fanout {
	return &Fanout{renderers: renderers, metrics: metrics}
}

// Present runs all renderers and returns the ones that failed
func (f *Fanout) Present(snap *models.VolumeSnapshot) []RendererFailure {
	var failures []RendererFailure

	for _, r := range f.renderers {
		if err := renderSafely(r, snap); err != nil {
			failure := RendererFailure{Renderer: r.Name(), Err: err}
			logging.With("fanout").Error().
				Str("renderer", r.Name()).
				Str("snapshot", snap.ID).
				Err(err).
				Msg("Renderer failed")
			f.metrics.recordRendererFailure(r.Name())
			failures = append(failures, failure)
		}
	}

	return failures
}

func renderSafely(r Renderer, snap *models.VolumeSnapshot) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return r.Render(snap)
}

// DefaultRenderers returns the five dashboard widgets wired to surface and charter
func DefaultRenderers(surface Surface, charter Charter) []Renderer {
	return []Renderer{
		SummaryRenderer{Surface: surface},
		CardRenderer{Surface: surface},
		AggregateChartRenderer{Charter: charter},
		ComparisonChartRenderer{Charter: charter},
		TableRenderer{Surface: surface},
	}
}

// SummaryRenderer writes the total used and free lines
type SummaryRenderer struct {
	Surface Surface
}

func (SummaryRenderer) Name() string { return "summary" }

func (r SummaryRenderer) Render(snap *models.VolumeSnapshot) error {
	if err := r.Surface.SetText(models.PointTotalUsed, fmt.Sprintf("Total Used Space: %.2f GB", snap.Totals.TotalUsedGB)); err != nil {
		return err
	}
	return r.Surface.SetText(models.PointTotalFree, fmt.Sprintf("Total Free Space: %.2f GB", snap.Totals.TotalFreeGB))
}

// CardRenderer emits one card per volume
type CardRenderer struct {
	Surface Surface
}

func (CardRenderer) Name() string { return "cards" }

func (r CardRenderer) Render(snap *models.VolumeSnapshot) error {
	for _, rec := range snap.Records {
		if err := r.Surface.AppendCard(models.PointPartitions, models.NewVolumeCard(rec)); err != nil {
			return fmt.Errorf("card %s: %w", rec.Device, err)
		}
	}
	return nil
}

// AggregateChartRenderer draws the used/free pie chart
type AggregateChartRenderer struct {
	Charter Charter
}

func (AggregateChartRenderer) Name() string { return "aggregate-chart" }

func (r AggregateChartRenderer) Render(snap *models.VolumeSnapshot) error {
	return r.Charter.Draw(models.PointPieChart, AggregateChartSpec(snap.Totals))
}

// ComparisonChartRenderer draws the per-volume used/free bar chart
type ComparisonChartRenderer struct {
	Charter Charter
}

func (ComparisonChartRenderer) Name() string { return "comparison-chart" }

func (r ComparisonChartRenderer) Render(snap *models.VolumeSnapshot) error {
	return r.Charter.Draw(models.PointBarChart, ComparisonChartSpec(snap.Records))
}

// TableRenderer builds the sortable volume table
type TableRenderer struct {
	Surface Surface
}

func (TableRenderer) Name() string { return "table" }

func (r TableRenderer) Render(snap *models.VolumeSnapshot) error {
	return r.Surface.SetTable(models.PointTable, models.NewVolumeTable(snap.Records))
}

const (
	usedColor       = "#ff9999"
	usedBorderColor = "#ff8888"
	freeColor       = "#66b3ff"
	freeBorderColor = "#55a2ff"
)

// AggregateChartSpec describes the pie chart of total used vs free space
func AggregateChartSpec(totals models.SummaryTotals) models.ChartSpec {
	return models.ChartSpec{
		Type: "pie",
		Data: models.ChartData{
			Labels: []string{
				fmt.Sprintf("Total Used Space (%.2f GB)", totals.TotalUsedGB),
				fmt.Sprintf("Total Free Space (%.2f GB)", totals.TotalFreeGB),
			},
			Datasets: []models.ChartDataset{{
				Data:            []float64{totals.TotalUsedGB, totals.TotalFreeGB},
				BackgroundColor: models.Colors{usedColor, freeColor},
				BorderColor:     models.Colors{usedBorderColor, freeBorderColor},
				BorderWidth:     1,
			}},
		},
		Options: models.ChartOptions{
			Responsive: true,
			Plugins: models.ChartPlugins{
				Legend: models.ChartLegend{Position: "bottom"},
				Title: models.ChartTitle{
					Display: true,
					Text:    fmt.Sprintf("Total Disk Space: %.2f GB", totals.GrandTotalGB()),
				},
			},
		},
	}
}

// ComparisonChartSpec describes the bar chart with one category per device
func ComparisonChartSpec(records []models.VolumeRecord) models.ChartSpec {
	devices := make([]string, len(records))
	used := make([]float64, len(records))
	free := make([]float64, len(records))
	for i, r := range records {
		devices[i] = r.Device
		used[i] = r.UsedGB
		free[i] = r.FreeGB
	}

	axis := func(title string) models.ChartScale {
		return models.ChartScale{Title: models.ChartTitle{Display: true, Text: title}}
	}

	return models.ChartSpec{
		Type: "bar",
		Data: models.ChartData{
			Labels: devices,
			Datasets: []models.ChartDataset{
				{
					Label:           "Used Space (GB)",
					Data:            used,
					BackgroundColor: models.Colors{usedColor},
					BorderColor:     models.Colors{usedBorderColor},
					BorderWidth:     1,
				},
				{
					Label:           "Free Space (GB)",
					Data:            free,
					BackgroundColor: models.Colors{freeColor},
					BorderColor:     models.Colors{freeBorderColor},
					BorderWidth:     1,
				},
			},
		},
		Options: models.ChartOptions{
			Responsive: true,
			Scales: map[string]models.ChartScale{
				"x": axis("Disk Partitions"),
				"y": axis("Space (GB)"),
			},
			Plugins: models.ChartPlugins{
				Legend: models.ChartLegend{Position: "bottom"},
				Title:  models.ChartTitle{Display: true, Text: "Disk Usage by Partition"},
			},
		},
	}
}

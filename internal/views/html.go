package views

import (
	"encoding/json"
	"html/template"
	"time"

	"diskpanel/internal/models"
)

// HTMLSurface collects widget output for the dashboard template
type HTMLSurface struct {
	texts  map[models.InsertionPoint]string
	cards  []models.VolumeCard
	table  *models.VolumeTable
	charts map[models.InsertionPoint]template.JS
}

func NewHTMLSurface() *HTMLSurface {
	return &HTMLSurface{
		texts:  make(map[models.InsertionPoint]string),
		charts: make(map[models.InsertionPoint]template.JS),
	}
}

func (s *HTMLSurface) SetText(point models.InsertionPoint, text string) error {
	if err := checkPoint(point, "text", models.PointTotalUsed, models.PointTotalFree); err != nil {
		return err
	}
	s.texts[point] = text
	return nil
}

func (s *HTMLSurface) AppendCard(point models.InsertionPoint, card models.VolumeCard) error {
	if err := checkPoint(point, "cards", models.PointPartitions); err != nil {
		return err
	}
	s.cards = append(s.cards, card)
	return nil
}

func (s *HTMLSurface) SetTable(point models.InsertionPoint, table *models.VolumeTable) error {
	if err := checkPoint(point, "a table", models.PointTable); err != nil {
		return err
	}
	s.table = table
	return nil
}

func (s *HTMLSurface) setChart(point models.InsertionPoint, spec models.ChartSpec) error {
	if err := checkPoint(point, "a chart", models.PointPieChart, models.PointBarChart); err != nil {
		return err
	}
	data, err := json.Marshal(spec)
	if err != nil {
		return err
	}
	s.charts[point] = template.JS(data)
	return nil
}

// Text returns what was written to a text slot
func (s *HTMLSurface) Text(point models.InsertionPoint) string {
	return s.texts[point]
}

// Cards returns the cards in insertion order
func (s *HTMLSurface) Cards() []models.VolumeCard {
	return s.cards
}

// Table returns the rendered table, nil if the table renderer did not run
func (s *HTMLSurface) Table() *models.VolumeTable {
	return s.table
}

// Chart returns the Chart.js config written to a chart slot
func (s *HTMLSurface) Chart(point models.InsertionPoint) template.JS {
	return s.charts[point]
}

// ChartJSCharter hands chart specs to Chart.js by embedding them in the page
type ChartJSCharter struct {
	Surface *HTMLSurface
}

func NewChartJSCharter(surface *HTMLSurface) ChartJSCharter {
	return ChartJSCharter{Surface: surface}
}

func (c ChartJSCharter) Draw(point models.InsertionPoint, spec models.ChartSpec) error {
	return c.Surface.setChart(point, spec)
}

// DashboardPage is the data the dashboard template renders
type DashboardPage struct {
	SnapshotID string
	Source     string
	Fallback   bool
	TakenAt    time.Time
	Token      string
	TotalUsed  string
	TotalFree  string
	Cards      []models.VolumeCard
	Table      *models.VolumeTable
	PieChart   template.JS
	BarChart   template.JS
}

// Page assembles the template data for a rendered snapshot
func (s *HTMLSurface) Page(snap *models.VolumeSnapshot, token string) DashboardPage {
	return DashboardPage{
		SnapshotID: snap.ID,
		Source:     snap.Source,
		Fallback:   snap.Fallback,
		TakenAt:    snap.TakenAt,
		Token:      token,
		TotalUsed:  s.texts[models.PointTotalUsed],
		TotalFree:  s.texts[models.PointTotalFree],
		Cards:      s.cards,
		Table:      s.table,
		PieChart:   s.charts[models.PointPieChart],
		BarChart:   s.charts[models.PointBarChart],
	}
}

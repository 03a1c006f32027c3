package views

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/olekukonko/tablewriter"

	"diskpanel/internal/models"
)

const defaultBarWidth = 40

// TextSurface collects widget output and prints it as a terminal report
type TextSurface struct {
	texts  map[models.InsertionPoint]string
	cards  []models.VolumeCard
	table  *models.VolumeTable
	charts map[models.InsertionPoint]string
}

func NewTextSurface() *TextSurface {
	return &TextSurface{
		texts:  make(map[models.InsertionPoint]string),
		charts: make(map[models.InsertionPoint]string),
	}
}

func (s *TextSurface) SetText(point models.InsertionPoint, text string) error {
	if err := checkPoint(point, "text", models.PointTotalUsed, models.PointTotalFree); err != nil {
		return err
	}
	s.texts[point] = text
	return nil
}

func (s *TextSurface) AppendCard(point models.InsertionPoint, card models.VolumeCard) error {
	if err := checkPoint(point, "cards", models.PointPartitions); err != nil {
		return err
	}
	s.cards = append(s.cards, card)
	return nil
}

func (s *TextSurface) SetTable(point models.InsertionPoint, table *models.VolumeTable) error {
	if err := checkPoint(point, "a table", models.PointTable); err != nil {
		return err
	}
	s.table = table
	return nil
}

// Table returns the rendered table so it can be sorted before Flush
func (s *TextSurface) Table() *models.VolumeTable {
	return s.table
}

// Flush writes all sections: totals, cards, charts, then the table
func (s *TextSurface) Flush(w io.Writer, state models.SortState) error {
	var b strings.Builder

	for _, point := range []models.InsertionPoint{models.PointTotalUsed, models.PointTotalFree} {
		if text, ok := s.texts[point]; ok {
			b.WriteString(text)
			b.WriteByte('\n')
		}
	}

	for _, c := range s.cards {
		fmt.Fprintf(&b, "\n%s (%s)\n", c.Device, c.Mountpoint)
		fmt.Fprintf(&b, "  Total: %s GB  Used: %s GB  Free: %s GB\n", c.Total, c.Used, c.Free)
		fmt.Fprintf(&b, "  Usage: %3d%% %s\n", c.Percent, usageBar(c.Percent, 20))
	}

	for _, point := range []models.InsertionPoint{models.PointPieChart, models.PointBarChart} {
		if chart, ok := s.charts[point]; ok {
			b.WriteByte('\n')
			b.WriteString(chart)
		}
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}

	if s.table == nil {
		return nil
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}
	return writeTable(w, s.table, state)
}

func writeTable(w io.Writer, t *models.VolumeTable, state models.SortState) error {
	header := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		header[i] = col.Title
		if state.ActiveKey == col.Key {
			if state.Ascending {
				header[i] += " ^"
			} else {
				header[i] += " v"
			}
		}
	}

	tw := tablewriter.NewWriter(w)
	tw.SetAutoFormatHeaders(false)
	tw.SetHeader(header)
	tw.SetAlignment(tablewriter.ALIGN_RIGHT)
	for _, row := range t.Rows {
		tw.Append(row.Cells)
	}
	tw.Render()
	return nil
}

func usageBar(percent, width int) string {
	filled := int(math.Round(float64(percent) / 100 * float64(width)))
	filled = max(0, min(width, filled))
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}

// TextCharter draws chart specs as horizontal ASCII bars
type TextCharter struct {
	Surface *TextSurface
	Width   int
}

func NewTextCharter(surface *TextSurface) TextCharter {
	return TextCharter{Surface: surface, Width: defaultBarWidth}
}

func (c TextCharter) Draw(point models.InsertionPoint, spec models.ChartSpec) error {
	if err := checkPoint(point, "a chart", models.PointPieChart, models.PointBarChart); err != nil {
		return err
	}
	c.Surface.charts[point] = RenderTextChart(spec, c.Width)
	return nil
}

// RenderTextChart lays out one bar per label and dataset, scaled to the
// largest value in the chart
func RenderTextChart(spec models.ChartSpec, width int) string {
	if width <= 0 {
		width = defaultBarWidth
	}

	var peak float64
	for _, ds := range spec.Data.Datasets {
		for _, v := range ds.Data {
			peak = math.Max(peak, v)
		}
	}

	labelWidth := 0
	for _, l := range spec.Data.Labels {
		labelWidth = max(labelWidth, len(l))
	}

	var b strings.Builder
	if spec.Options.Plugins.Title.Display {
		b.WriteString(spec.Options.Plugins.Title.Text)
		b.WriteByte('\n')
	}

	for i, label := range spec.Data.Labels {
		for _, ds := range spec.Data.Datasets {
			if i >= len(ds.Data) {
				continue
			}
			v := ds.Data[i]
			n := 0
			if peak > 0 {
				n = int(math.Round(v / peak * float64(width)))
			}
			name := label
			if ds.Label != "" {
				name = label + " " + ds.Label
			}
			fmt.Fprintf(&b, "  %-*s %s %.2f\n", labelWidth+len(ds.Label)+1, name, strings.Repeat("#", n), v)
		}
	}

	return b.String()
}

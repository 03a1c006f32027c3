package services

import (
	"cmp"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"diskpanel/internal/models"
)

// TableSortController orders the rows of a rendered volume table. It only
// changes row order; the records themselves are never rebuilt.
// A controller is not safe for concurrent use.
type TableSortController struct {
	table    *models.VolumeTable
	state    models.SortState
	collator *collate.Collator
}

// NewTableSortController attaches a controller to table, starting unsorted
func NewTableSortController(table *models.VolumeTable) *TableSortController {
	return &TableSortController{
		table:    table,
		collator: collate.New(language.Und),
	}
}

// State returns the current sort state
func (c *TableSortController) State() models.SortState {
	return c.state
}

// Table returns the controlled table
func (c *TableSortController) Table() *models.VolumeTable {
	return c.table
}

// Select handles a click on a column header. Clicking the active column
// flips direction; a new column starts ascending.
func (c *TableSortController) Select(key models.SortKey) (models.SortState, error) {
	if _, err := models.ParseSortKey(string(key)); err != nil {
		return c.state, err
	}

	if c.state.ActiveKey == key {
		c.state.Ascending = !c.state.Ascending
	} else {
		c.state = models.SortState{ActiveKey: key, Ascending: true}
	}

	c.apply()
	return c.state, nil
}

func (c *TableSortController) apply() {
	rows := c.table.Rows
	compare := c.comparator(c.state.ActiveKey)
	asc := c.state.Ascending

	sort.SliceStable(rows, func(i, j int) bool {
		if asc {
			return compare(rows[i].Record, rows[j].Record) < 0
		}
		return compare(rows[i].Record, rows[j].Record) > 0
	})
}

func (c *TableSortController) comparator(key models.SortKey) func(a, b models.VolumeRecord) int {
	switch key {
	case models.SortByTotal:
		return func(a, b models.VolumeRecord) int { return cmp.Compare(a.TotalGB, b.TotalGB) }
	case models.SortByUsed:
		return func(a, b models.VolumeRecord) int { return cmp.Compare(a.UsedGB, b.UsedGB) }
	case models.SortByFree:
		return func(a, b models.VolumeRecord) int { return cmp.Compare(a.FreeGB, b.FreeGB) }
	case models.SortByPercent:
		return func(a, b models.VolumeRecord) int { return cmp.Compare(a.PercentUsed, b.PercentUsed) }
	default:
		return func(a, b models.VolumeRecord) int { return c.collator.CompareString(a.Device, b.Device) }
	}
}

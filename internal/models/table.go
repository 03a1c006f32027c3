package models

import (
	"fmt"
	"strconv"
)

// SortKey names a sortable column of the volume table
type SortKey string

const (
	SortByDevice  SortKey = "device"
	SortByTotal   SortKey = "total"
	SortByUsed    SortKey = "used"
	SortByFree    SortKey = "free"
	SortByPercent SortKey = "percent"
)

// InvalidSortKeyError is returned when a requested column does not exist
type InvalidSortKeyError struct {
	Key string
}

func (e InvalidSortKeyError) Error() string {
	return fmt.Sprintf("invalid sort key: %q", e.Key)
}

// ParseSortKey validates a column name coming from a request
func ParseSortKey(s string) (SortKey, error) {
	switch key := SortKey(s); key {
	case SortByDevice, SortByTotal, SortByUsed, SortByFree, SortByPercent:
		return key, nil
	default:
		return "", InvalidSortKeyError{Key: s}
	}
}

// SortState is the client-side ordering of the table. The zero value means
// the rows are still in source order.
type SortState struct {
	ActiveKey SortKey `json:"active_key,omitempty"`
	Ascending bool    `json:"ascending"`
}

// Sorted reports whether a column has been selected yet
func (s SortState) Sorted() bool {
	return s.ActiveKey != ""
}

// TableColumn describes one header cell
type TableColumn struct {
	Key   SortKey `json:"key"`
	Title string  `json:"title"`
}

// VolumeColumns is the fixed column layout of the volume table
var VolumeColumns = []TableColumn{
	{Key: SortByDevice, Title: "Device"},
	{Key: SortByTotal, Title: "Total (GB)"},
	{Key: SortByUsed, Title: "Used (GB)"},
	{Key: SortByFree, Title: "Free (GB)"},
	{Key: SortByPercent, Title: "Usage (%)"},
}

// TableRow keeps the typed record next to its formatted cells so sorting
// never has to parse display text back into numbers.
type TableRow struct {
	Record VolumeRecord `json:"-"`
	Cells  []string     `json:"cells"`
}

// VolumeTable is the tabular surface: a header plus rows in display order
type VolumeTable struct {
	Columns []TableColumn `json:"columns"`
	Rows    []TableRow    `json:"rows"`
}

// NewVolumeTable builds a table in source order
func NewVolumeTable(records []VolumeRecord) *VolumeTable {
	rows := make([]TableRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, TableRow{
			Record: r,
			Cells: []string{
				r.Device,
				FormatGB(r.TotalGB),
				FormatGB(r.UsedGB),
				FormatGB(r.FreeGB),
				strconv.Itoa(r.PercentUsed),
			},
		})
	}

	columns := make([]TableColumn, len(VolumeColumns))
	copy(columns, VolumeColumns)

	return &VolumeTable{Columns: columns, Rows: rows}
}

// Devices returns the device column in current display order
func (t *VolumeTable) Devices() []string {
	devices := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		devices[i] = row.Record.Device
	}
	return devices
}

// FormatGB renders a capacity with two decimals
func FormatGB(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

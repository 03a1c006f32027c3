package models

import "strconv"

// VolumeCard is the per-volume card shown in the partitions panel
type VolumeCard struct {
	Device     string `json:"device"`
	Mountpoint string `json:"mountpoint"`
	Total      string `json:"total"`
	Used       string `json:"used"`
	Free       string `json:"free"`
	Percent    int    `json:"percent"`
	FillWidth  string `json:"fill_width"` // CSS width of the usage bar, e.g. "70%"
}

// NewVolumeCard formats a record for display
func NewVolumeCard(r VolumeRecord) VolumeCard {
	return VolumeCard{
		Device:     r.Device,
		Mountpoint: r.Mountpoint,
		Total:      FormatGB(r.TotalGB),
		Used:       FormatGB(r.UsedGB),
		Free:       FormatGB(r.FreeGB),
		Percent:    r.PercentUsed,
		FillWidth:  strconv.Itoa(r.PercentUsed) + "%",
	}
}

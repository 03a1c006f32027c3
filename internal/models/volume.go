package models

import (
	"math"
	"time"
)

// BytesPerGB is the divisor used to turn raw byte counts into gigabytes
const BytesPerGB = 1024 * 1024 * 1024

// VolumeRecord represents the capacity accounting of one storage volume.
// Records are built with NewVolumeRecord or VolumeFromBytes so that UsedGB and
// PercentUsed always agree with TotalGB and FreeGB.
type VolumeRecord struct {
	Device      string  `json:"device"`
	Mountpoint  string  `json:"mountpoint"`
	TotalGB     float64 `json:"total_gb"`
	UsedGB      float64 `json:"used_gb"`
	FreeGB      float64 `json:"free_gb"`
	PercentUsed int     `json:"percent_used"`
}

// NewVolumeRecord builds a record from capacities already expressed in GB.
// It reports false when totalGB is not positive or freeGB falls outside [0, totalGB].
func NewVolumeRecord(device string, totalGB, freeGB float64) (VolumeRecord, bool) {
	if math.IsNaN(totalGB) || math.IsNaN(freeGB) || math.IsInf(totalGB, 0) ||
		totalGB <= 0 || freeGB < 0 || freeGB > totalGB {
		return VolumeRecord{}, false
	}

	usedGB := totalGB - freeGB
	return VolumeRecord{
		Device:      device,
		Mountpoint:  MountpointFor(device),
		TotalGB:     totalGB,
		UsedGB:      usedGB,
		FreeGB:      freeGB,
		PercentUsed: PercentOf(usedGB, totalGB),
	}, true
}

// VolumeFromBytes builds a record from raw byte counts
func VolumeFromBytes(device string, freeBytes, totalBytes int64) (VolumeRecord, bool) {
	if totalBytes <= 0 || freeBytes < 0 || freeBytes > totalBytes {
		return VolumeRecord{}, false
	}

	usedBytes := totalBytes - freeBytes
	return VolumeRecord{
		Device:      device,
		Mountpoint:  MountpointFor(device),
		TotalGB:     float64(totalBytes) / BytesPerGB,
		UsedGB:      float64(usedBytes) / BytesPerGB,
		FreeGB:      float64(freeBytes) / BytesPerGB,
		PercentUsed: PercentOf(float64(usedBytes), float64(totalBytes)),
	}, true
}

// PercentOf returns round(100 * used / total), or 0 for a non-positive total
func PercentOf(used, total float64) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(used / total * 100))
}

// MountpointFor derives the mountpoint shown for a device. Drive letters
// ("C:") get a trailing backslash, anything else is already a path.
func MountpointFor(device string) string {
	if len(device) == 2 && device[1] == ':' {
		return device + `\`
	}
	return device
}

// SummaryTotals holds the sums across the current record set
type SummaryTotals struct {
	TotalUsedGB float64 `json:"total_used_gb"`
	TotalFreeGB float64 `json:"total_free_gb"`
}

// GrandTotalGB is the combined capacity of all volumes
func (t SummaryTotals) GrandTotalGB() float64 {
	return t.TotalUsedGB + t.TotalFreeGB
}

// VolumeSnapshot is the immutable result of one pipeline run. Every renderer
// and every sort session for a page works off the same snapshot; nothing may
// modify Records after the snapshot is built.
type VolumeSnapshot struct {
	ID       string         `json:"id"`
	Records  []VolumeRecord `json:"records"`
	Totals   SummaryTotals  `json:"totals"`
	Source   string         `json:"source"`
	Fallback bool           `json:"fallback"`
	TakenAt  time.Time      `json:"taken_at"`
}

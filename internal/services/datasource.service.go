package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"diskpanel/internal/logging"
	"diskpanel/internal/models"
)

// SourceSample names the built-in fallback data set
const SourceSample = "sample"

// ErrCapabilityUnavailable means no volume query mechanism exists in this
// environment. It is recovered by serving the fallback data set.
var ErrCapabilityUnavailable = errors.New("volume query capability unavailable")

// DataSourceError reports a query capability that exists but failed. The
// refresh is abandoned; no fallback data is substituted.
type DataSourceError struct {
	Source string
	Err    error
}

func (e *DataSourceError) Error() string {
	return fmt.Sprintf("volume query %q failed: %v", e.Source, e.Err)
}

func (e *DataSourceError) Unwrap() error {
	return e.Err
}

// FetchResult is the outcome of one volume fetch
type FetchResult struct {
	Records  []models.VolumeRecord
	Source   string
	Fallback bool
	Skipped  int // malformed rows dropped by the parser
}

// DataSource produces volume records from a query capability, or from the
// fallback set when no capability is present.
type DataSource struct {
	capability QueryCapability
	timeout    time.Duration
	metrics    *PipelineMetrics
}

// NewDataSource creates a data source. capability may be nil, which always
// yields the fallback set. A zero timeout leaves the caller's context as is.
func NewDataSource(capability QueryCapability, timeout time.Duration, metrics *PipelineMetrics) *DataSource {
	return &DataSource{
		capability: capability,
		timeout:    timeout,
		metrics:    metrics,
	}
}

// FetchVolumes runs the query capability once and parses its output
func (d *DataSource) FetchVolumes(ctx context.Context) (*FetchResult, error) {
	logger := logging.With("datasource")

	if d.capability == nil || !d.capability.Available() {
		return d.fallback(ErrCapabilityUnavailable), nil
	}

	name := d.capability.Name()
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	start := time.Now()
	output, err := d.capability.Query(ctx)
	if errors.Is(err, ErrCapabilityUnavailable) {
		return d.fallback(err), nil
	}
	if err == nil && strings.TrimSpace(output) == "" {
		err = errors.New("empty query output")
	}
	if err != nil {
		d.metrics.recordFetch(name, err)
		return nil, &DataSourceError{Source: name, Err: err}
	}

	records, skipped := ParseVolumeCSV(output)
	d.metrics.recordFetch(name, nil)
	d.metrics.recordSkippedRows(skipped)

	logger.Debug().
		Str("source", name).
		Int("volumes", len(records)).
		Int("skipped", skipped).
		Dur("elapsed", time.Since(start)).
		Msg("Volume query completed")

	return &FetchResult{
		Records: records,
		Source:  name,
		Skipped: skipped,
	}, nil
}

func (d *DataSource) fallback(reason error) *FetchResult {
	logging.With("datasource").Debug().Err(reason).Msg("Serving sample volumes")
	d.metrics.recordFetch(SourceSample, nil)
	return &FetchResult{
		Records:  FallbackVolumes(),
		Source:   SourceSample,
		Fallback: true,
	}
}

// ParseVolumeCSV parses query output in the [node, DeviceID, FreeSpace, Size]
// layout. The first line is a header. Rows with fewer than four fields,
// non-integer sizes or no capacity are dropped and counted in skipped;
// blank lines are ignored without counting.
func ParseVolumeCSV(output string) (records []models.VolumeRecord, skipped int) {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	records = make([]models.VolumeRecord, 0, len(lines))

	for i, line := range lines {
		if i == 0 {
			continue
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		record, ok := parseVolumeRow(line)
		if !ok {
			logging.Debug().Str("row", line).Msg("Skipping malformed volume row")
			skipped++
			continue
		}
		records = append(records, record)
	}

	return records, skipped
}

func parseVolumeRow(line string) (models.VolumeRecord, bool) {
	parts := strings.Split(line, ",")
	if len(parts) < 4 {
		return models.VolumeRecord{}, false
	}

	free, err := strconv.ParseInt(strings.TrimSpace(parts[2]), 10, 64)
	if err != nil {
		return models.VolumeRecord{}, false
	}
	total, err := strconv.ParseInt(strings.TrimSpace(parts[3]), 10, 64)
	if err != nil {
		return models.VolumeRecord{}, false
	}

	return models.VolumeFromBytes(strings.TrimSpace(parts[1]), free, total)
}

// FallbackVolumes returns the sample set shown when volumes cannot be queried
func FallbackVolumes() []models.VolumeRecord {
	samples := []struct {
		device      string
		total, free float64
	}{
		{"C:", 500, 150},
		{"D:", 1000, 400},
		{"E:", 2000, 800},
	}

	records := make([]models.VolumeRecord, 0, len(samples))
	for _, s := range samples {
		if r, ok := models.NewVolumeRecord(s.device, s.total, s.free); ok {
			records = append(records, r)
		}
	}
	return records
}

package services

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v3/disk"

	"diskpanel/internal/config"
	"diskpanel/internal/logging"
)

// QueryCapability is a privileged mechanism that lists volumes as CSV text
// with the columns [node, DeviceID, FreeSpace, Size] and a header row.
type QueryCapability interface {
	Name() string
	Available() bool
	Query(ctx context.Context) (string, error)
}

// NewCapability selects the query capability for a data source mode. The
// sample mode has no capability and returns nil.
func NewCapability(mode string) (QueryCapability, error) {
	switch mode {
	case config.ModeWMIC:
		return NewWMICCapability(), nil
	case config.ModePartitions:
		return NewPartitionCapability(), nil
	case config.ModeSample:
		return nil, nil
	case config.ModeAuto, "":
		if wmic := NewWMICCapability(); wmic.Available() {
			return wmic, nil
		}
		return NewPartitionCapability(), nil
	default:
		return nil, fmt.Errorf("unknown data source mode %q", mode)
	}
}

// WMICCapability queries logical disks through the Windows wmic tool
type WMICCapability struct {
	goos     string
	lookPath func(file string) (string, error)
	run      func(ctx context.Context, name string, args ...string) ([]byte, error)
}

func NewWMICCapability() *WMICCapability {
	return &WMICCapability{
		goos:     runtime.GOOS,
		lookPath: exec.LookPath,
		run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return exec.CommandContext(ctx, name, args...).Output()
		},
	}
}

func (w *WMICCapability) Name() string { return config.ModeWMIC }

// Available reports whether wmic can be run on this host
func (w *WMICCapability) Available() bool {
	if w.goos != "windows" {
		return false
	}
	_, err := w.lookPath("wmic")
	return err == nil
}

func (w *WMICCapability) Query(ctx context.Context) (string, error) {
	out, err := w.run(ctx, "wmic", "logicaldisk", "get", "DeviceID,FreeSpace,Size", "/format:csv")
	if err != nil {
		return "", fmt.Errorf("wmic logicaldisk: %w", err)
	}
	return string(out), nil
}

// gopsutil reports this message for platforms it has no implementation for.
// Its sentinel lives in gopsutil's internal/common and cannot be imported, so
// the message text is compared.
const notImplementedMessage = "not implemented yet"

// PartitionCapability lists mounted partitions with gopsutil and renders them
// in the same CSV layout as wmic, using the mountpoint as the device ID.
type PartitionCapability struct {
	goos       string
	partitions func(ctx context.Context, all bool) ([]disk.PartitionStat, error)
	usage      func(ctx context.Context, path string) (*disk.UsageStat, error)
	hostname   func() (string, error)
}

func NewPartitionCapability() *PartitionCapability {
	return &PartitionCapability{
		goos:       runtime.GOOS,
		partitions: disk.PartitionsWithContext,
		usage:      disk.UsageWithContext,
		hostname:   os.Hostname,
	}
}

func (p *PartitionCapability) Name() string { return config.ModePartitions }

// Available reports whether gopsutil supports partition listing here
func (p *PartitionCapability) Available() bool {
	switch p.goos {
	case "linux", "darwin", "windows", "freebsd", "openbsd", "netbsd", "solaris", "aix":
		return true
	default:
		return false
	}
}

func (p *PartitionCapability) Query(ctx context.Context) (string, error) {
	logger := logging.With("partitions")

	partitions, err := p.partitions(ctx, false)
	if err != nil {
		if err.Error() == notImplementedMessage {
			return "", ErrCapabilityUnavailable
		}
		return "", fmt.Errorf("list partitions: %w", err)
	}

	node, err := p.hostname()
	if err != nil {
		node = "localhost"
	}

	var b strings.Builder
	b.WriteString("Node,DeviceID,FreeSpace,Size\n")

	seen := make(map[string]bool, len(partitions))
	for _, partition := range partitions {
		mount := partition.Mountpoint
		if seen[mount] {
			continue
		}
		seen[mount] = true

		if strings.ContainsAny(mount, ",\n") {
			logger.Debug().Str("mountpoint", mount).Msg("Mountpoint cannot be expressed as a CSV field")
			continue
		}

		usage, err := p.usage(ctx, mount)
		if err != nil {
			logger.Warn().Str("mountpoint", mount).Err(err).Msg("Could not get disk usage")
			continue
		}

		b.WriteString(node)
		b.WriteByte(',')
		b.WriteString(mount)
		b.WriteByte(',')
		b.WriteString(strconv.FormatUint(usage.Free, 10))
		b.WriteByte(',')
		b.WriteString(strconv.FormatUint(usage.Total, 10))
		b.WriteByte('\n')
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	return b.String(), nil
}

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"diskpanel/internal/config"
	"diskpanel/internal/logging"
	"diskpanel/internal/models"
	"diskpanel/internal/services"
	"diskpanel/internal/views"
)

const (
	formatText = "text"
	formatJSON = "json"
)

type reportOptions struct {
	sortKey string
	desc    bool
	format  string
}

var reportOpts reportOptions

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print volume usage to the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return runReport(cmd.Context(), cfg, reportOpts, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVarP(&reportOpts.sortKey, "sort", "s", "", "Sort the table by device, total, used, free or percent")
	reportCmd.Flags().BoolVar(&reportOpts.desc, "desc", false, "Sort descending")
	reportCmd.Flags().StringVarP(&reportOpts.format, "format", "f", formatText, "Output format (text or json)")
}

// snapshotReport is the JSON form of a report
type snapshotReport struct {
	Snapshot *models.VolumeSnapshot `json:"snapshot"`
	Sort     models.SortState       `json:"sort"`
	Table    *models.VolumeTable    `json:"table"`
}

func runReport(ctx context.Context, cfg *config.Config, opts reportOptions, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if opts.format != formatText && opts.format != formatJSON {
		return fmt.Errorf("unknown format %q (want text or json)", opts.format)
	}

	capability, err := services.NewCapability(cfg.DataSource.Mode)
	if err != nil {
		return err
	}

	source := services.NewDataSource(capability, cfg.DataSource.Timeout, nil)
	snap, err := services.NewPipeline(source, nil).Refresh(ctx)
	if err != nil {
		return err
	}
	if snap.Fallback {
		logging.With("report").Warn().Msg("Volume query unavailable, showing sample data")
	}

	surface := views.NewTextSurface()
	failures := services.NewFanout(nil, services.DefaultRenderers(surface, views.NewTextCharter(surface))...).Present(snap)
	for _, f := range failures {
		logging.With("report").Warn().Err(f).Msg("Widget not rendered")
	}

	table := surface.Table()
	if table == nil {
		table = models.NewVolumeTable(snap.Records)
	}

	state, err := applySort(table, opts)
	if err != nil {
		return err
	}

	if opts.format == formatJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(snapshotReport{Snapshot: snap, Sort: state, Table: table})
	}

	return surface.Flush(out, state)
}

// applySort drives the sort controller the way header clicks would: once
// for ascending, twice for descending.
func applySort(table *models.VolumeTable, opts reportOptions) (models.SortState, error) {
	controller := services.NewTableSortController(table)
	if opts.sortKey == "" {
		if opts.desc {
			return controller.State(), fmt.Errorf("--desc requires --sort")
		}
		return controller.State(), nil
	}

	key, err := models.ParseSortKey(opts.sortKey)
	if err != nil {
		return controller.State(), err
	}

	state, err := controller.Select(key)
	if err != nil {
		return state, err
	}
	if opts.desc {
		state, err = controller.Select(key)
	}
	return state, err
}

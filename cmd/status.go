package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/eic-hr/eic/internal/clock"
	"github.com/eic-hr/eic/internal/dedup"
	"github.com/eic-hr/eic/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show store and index statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		clk, err := clock.New(cfg.Timezone)
		if err != nil {
			return err
		}

		index, err := dedup.LoadIndex(cfg.Data.IndexFile)
		if err != nil {
			return eris.Wrap(err, "load dedup index")
		}

		month := clock.Month(clk.Today())
		recs, err := store.New(cfg.Data.ItemsDir).LoadMonth(month)
		if err != nil {
			return eris.Wrap(err, "load month")
		}

		high, trend, err := store.New(cfg.Data.ItemsDir).ItemsForDate(clk.Today())
		if err != nil {
			return eris.Wrap(err, "load today")
		}

		out := map[string]interface{}{
			"date":          clk.Today(),
			"known_urls":    index.Len(),
			"index_file":    cfg.Data.IndexFile,
			"items_dir":     cfg.Data.ItemsDir,
			"month":         month,
			"month_records": len(recs),
			"today_high":    len(high),
			"today_trend":   len(trend),
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ahmethakanbesel/scraper-sdk/pkg/integration"
	"github.com/ahmethakanbesel/scraper-sdk/pkg/job"
	"github.com/ahmethakanbesel/scraper-sdk/pkg/scraper"
	"github.com/ahmethakanbesel/scraper-sdk/pkg/tender"
)

// importWork submits the tenders exported to <dir>/<origin>.json. It lets
// output of an external scraper be replayed under a tracked job.
func importWork(dir string) scraper.Work {
	return func(ctx context.Context, in integration.Integration, api scraper.API) (job.Stats, error) {
		items, err := readTenders(filepath.Join(dir, in.Origin+".json"))
		if err != nil {
			return job.Stats{}, err
		}
		stats, err := api.Tenders().SubmitInChunks(ctx, items, in.Origin)
		if err != nil {
			return job.Stats{}, err
		}
		return jobStats(stats), nil
	}
}

func jobStats(st tender.Stats) job.Stats {
	return job.Stats{NewRecords: st.New, UpdatedRecords: st.Updated}
}

func (a *app) runCmd() *cobra.Command {
	var (
		dir     string
		workers int
	)
	cmd := &cobra.Command{
		Use:   "run <origin>...",
		Short: "Import exported tenders for each origin inside a backend job",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, origins []string) error {
			reg := scraper.NewRegistry()
			for _, origin := range origins {
				if _, err := os.Stat(filepath.Join(dir, origin+".json")); err != nil {
					return fmt.Errorf("origin %s: %w", origin, err)
				}
				reg.Register(origin, importWork(dir))
			}

			outcomes := scraper.NewPool(a.client(), reg, workers, a.log).Run(cmd.Context(), origins...)
			renderOutcomes(cmd.OutOrStdout(), outcomes)

			failed := 0
			for _, o := range outcomes {
				if o.Err != nil {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d runs failed", failed, len(outcomes))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", ".", "directory holding <origin>.json exports")
	cmd.Flags().IntVar(&workers, "workers", 2, "origins processed concurrently")
	return cmd
}

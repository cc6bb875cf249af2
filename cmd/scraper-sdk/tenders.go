package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ahmethakanbesel/scraper-sdk/pkg/tender"
)

// readTenders loads a JSON array of tenders from path.
func readTenders(path string) ([]tender.Item, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tenders: %w", err)
	}
	var items []tender.Item
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return items, nil
}

func (a *app) tendersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tenders",
		Aliases: []string{"tender"},
		Short:   "Submit scraped tenders",
	}

	var (
		origin    string
		file      string
		chunkSize int
		pause     time.Duration
	)

	submit := &cobra.Command{
		Use:   "submit",
		Short: "Submit tenders from a JSON file in chunks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			items, err := readTenders(file)
			if err != nil {
				return err
			}
			stats, err := a.client().Tenders().SubmitInChunks(cmd.Context(), items, origin,
				tender.WithChunkSize(chunkSize), tender.WithPause(pause))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d tenders submitted: %d new, %d updated\n", len(items), stats.New, stats.Updated)
			return nil
		},
	}
	submit.Flags().IntVar(&chunkSize, "chunk-size", tender.DefaultChunkSize, "tenders per request")
	submit.Flags().DurationVar(&pause, "pause", tender.DefaultPause, "wait between chunks")

	archive := &cobra.Command{
		Use:   "archive",
		Short: "Mark the tenders in a JSON file as archived",
		RunE: func(cmd *cobra.Command, _ []string) error {
			items, err := readTenders(file)
			if err != nil {
				return err
			}
			ack, err := a.client().Tenders().SubmitArchived(cmd.Context(), items, origin)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ack.Message)
			return nil
		},
	}

	for _, c := range []*cobra.Command{submit, archive} {
		c.Flags().StringVar(&origin, "origin", "", "website origin the tenders belong to")
		c.Flags().StringVarP(&file, "file", "f", "", "JSON file holding an array of tenders")
		_ = c.MarkFlagRequired("origin")
		_ = c.MarkFlagRequired("file")
	}

	cmd.AddCommand(submit, archive)
	return cmd
}

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ahmethakanbesel/scraper-sdk/pkg/document"
	"github.com/ahmethakanbesel/scraper-sdk/pkg/storage"
)

func (a *app) documentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "documents",
		Aliases: []string{"docs"},
		Short:   "Upload tender documents to the blob store",
	}

	var (
		origin   string
		number   string
		parallel int
	)
	upload := &cobra.Command{
		Use:   "upload <file-or-url>...",
		Short: "Upload local files or download URLs and print their public URLs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bucket, err := storage.New(cmd.Context(), a.cfg.Storage)
			if err != nil {
				return err
			}
			up := document.NewUploader(bucket, document.WithLogger(a.log))

			sources := make([]document.Source, len(args))
			for i, arg := range args {
				src := document.Source{TenderNumber: number, Origin: origin}
				if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
					src.DownloadURL = arg
				} else {
					src.FilePath = arg
				}
				sources[i] = src
			}

			results, err := up.UploadAll(cmd.Context(), sources, parallel)
			if err != nil {
				return err
			}
			for i, r := range results {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", args[i], r.URL)
			}
			return nil
		},
	}
	upload.Flags().StringVar(&origin, "origin", "", "website origin the documents belong to")
	upload.Flags().StringVar(&number, "tender", "", "tender number the documents belong to")
	upload.Flags().IntVar(&parallel, "parallel", 4, "concurrent uploads")
	_ = upload.MarkFlagRequired("origin")
	_ = upload.MarkFlagRequired("tender")

	cmd.AddCommand(upload)
	return cmd
}

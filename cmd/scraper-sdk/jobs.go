package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ahmethakanbesel/scraper-sdk/pkg/job"
)

func parseJobID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid job id %q", s)
	}
	return id, nil
}

func (a *app) jobsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "jobs",
		Aliases: []string{"job"},
		Short:   "Inspect and manage scraping jobs",
	}

	var f job.Filter
	var status string
	list := &cobra.Command{
		Use:   "list",
		Short: "List recent jobs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f.Status = job.Status(status)
			jobs, err := a.client().Jobs().List(cmd.Context(), f)
			if err != nil {
				return err
			}
			renderJobs(cmd.OutOrStdout(), jobs)
			return nil
		},
	}
	list.Flags().StringVar(&f.Origin, "origin", "", "only jobs of this website origin")
	list.Flags().StringVar(&status, "status", "", "only jobs in this status")

	byID := func(use, short string, fn func(c *cobra.Command, id int64) ([]job.Job, error)) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <id>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(c *cobra.Command, args []string) error {
				id, err := parseJobID(args[0])
				if err != nil {
					return err
				}
				jobs, err := fn(c, id)
				if err != nil {
					return err
				}
				if jobs != nil {
					renderJobs(c.OutOrStdout(), jobs)
				}
				return nil
			},
		}
	}

	cmd.AddCommand(
		list,
		byID("get", "Show one job", func(c *cobra.Command, id int64) ([]job.Job, error) {
			j, err := a.client().Jobs().Get(c.Context(), id)
			if err != nil {
				return nil, err
			}
			return []job.Job{*j}, nil
		}),
		byID("cancel", "Cancel a pending or running job", func(c *cobra.Command, id int64) ([]job.Job, error) {
			j, err := a.client().Jobs().Cancel(c.Context(), id)
			if err != nil {
				return nil, err
			}
			return []job.Job{*j}, nil
		}),
		byID("delete", "Delete a job", func(c *cobra.Command, id int64) ([]job.Job, error) {
			ack, err := a.client().Jobs().Delete(c.Context(), id)
			if err != nil {
				return nil, err
			}
			fmt.Fprintln(c.OutOrStdout(), ack.Message)
			return nil, nil
		}),
	)
	return cmd
}

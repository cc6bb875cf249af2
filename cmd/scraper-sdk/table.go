package main

import (
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ahmethakanbesel/scraper-sdk/pkg/integration"
	"github.com/ahmethakanbesel/scraper-sdk/pkg/job"
	"github.com/ahmethakanbesel/scraper-sdk/pkg/scraper"
)

func newTable(w io.Writer, header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(header)
	return t
}

func renderIntegrations(w io.Writer, list []integration.Integration) {
	t := newTable(w, table.Row{"ID", "Origin", "Name", "Active", "Updated"})
	for _, in := range list {
		t.AppendRow(table.Row{in.ID, in.Origin, in.DisplayName(), in.IsActive, formatTime(&in.UpdatedAt)})
	}
	t.Render()
}

func renderJobs(w io.Writer, jobs []job.Job) {
	t := newTable(w, table.Row{"ID", "Origin", "Status", "Started", "Finished", "Duration", "New", "Updated", "Archived"})
	for _, j := range jobs {
		origin := ""
		if j.Integration != nil {
			origin = j.Integration.Origin
		}
		t.AppendRow(table.Row{
			j.ID, origin, j.Status,
			formatTime(j.StartedAt), formatTime(j.FinishedAt), formatDuration(j.Duration),
			j.NewRecords, j.UpdatedRecords, j.ArchivedRecords,
		})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 7, Align: text.AlignRight},
		{Number: 8, Align: text.AlignRight},
		{Number: 9, Align: text.AlignRight},
	})
	t.Render()
}

func renderOutcomes(w io.Writer, outcomes []scraper.Outcome) {
	t := newTable(w, table.Row{"Origin", "Job", "Result", "New", "Updated", "Archived", "Duration"})
	for _, o := range outcomes {
		if o.Err != nil {
			t.AppendRow(table.Row{o.Origin, "", scraper.Classify(o.Err) + ": " + o.Err.Error()})
			continue
		}
		r := o.Result
		t.AppendRow(table.Row{
			o.Origin, r.JobID, "completed",
			r.Stats.NewRecords, r.Stats.UpdatedRecords, r.Stats.ArchivedRecords,
			formatDuration(&r.Duration),
		})
	}
	t.Render()
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Local().Format(time.DateTime)
}

func formatDuration(secs *int64) string {
	if secs == nil {
		return "-"
	}
	return (time.Duration(*secs) * time.Second).String()
}

package docs

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

func formatKB(size int64) string {
	return fmt.Sprintf("%d KB", size/1024)
}

func (u *Updater) printSuccess(src Source, size int64, converted, unchanged bool) {
	note := ""
	if converted {
		note = " (from HTML)"
	}
	if unchanged {
		note += " (unchanged)"
	}
	fmt.Fprintf(u.out, "  %-25s %5d KB  <- %s%s\n", src.Name, size/1024, src.URL, note)
}

func (u *Updater) printFailure(src Source, err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(u.out, "  %-25s %s   %v\n", src.Name, red("FAILED"), err)
}

func (u *Updater) printStatuses(statuses []Status) {
	t := table.NewWriter()
	t.SetOutputMirror(u.out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"File", "Status", "Last Fetch", "URL"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft},
		{Number: 2, Align: text.AlignLeft},
		{Number: 3, Align: text.AlignLeft},
		{Number: 4, Align: text.AlignLeft, WidthMax: 80},
	})

	for _, s := range statuses {
		status := "missing"
		if s.Size >= 0 {
			status = formatKB(s.Size)
		}
		lastFetch := "-"
		if s.LastFetch != nil {
			lastFetch = s.LastFetch.FetchedAt.Local().Format("2006-01-02 15:04")
		}
		t.AppendRow(table.Row{s.Source.Name, status, lastFetch, s.Source.URL})
	}
	t.Render()

	fmt.Fprintf(u.out, "\nTotal: %d sources\n", len(statuses))
	fmt.Fprintln(u.out, "Add a source under \"sources\" in the config file.")
}

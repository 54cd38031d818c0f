package commands

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"github.com/gookit/color"
	"github.com/klabast/wb-services/termin-kalender/internal/app"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

// ListEvents handles the list subcommand: dumps stored events as a table.
func ListEvents(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	file := fs.String("file", app.EventsFile, "Path to events file")
	date := fs.String("date", "", "Only events on this date (YYYY-MM-DD)")
	month := fs.String("month", "", "Only events in this month (YYYY-MM)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: termin-kalender list [OPTIONS]\n\n")
		fmt.Fprintf(os.Stderr, "Prints the stored events as a table.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	doc, err := app.LoadDocument(*file)
	if err != nil {
		log.Fatalf("Error loading events: %v", err)
	}

	rows := collectRows(doc, *date, *month)
	if len(rows) == 0 {
		color.Yellow.Println("No events found.")
		return
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Date", "Title", "Description", "Created", "ID"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for _, row := range rows {
		table.Append(row)
	}
	table.Render()

	color.Green.Printf("%d event(s)\n", len(rows))
}

// collectRows flattens the document into sorted table rows, honouring
// the optional date/month filters
func collectRows(doc app.Document, date, month string) [][]string {
	months := lo.Keys(doc)
	sort.Strings(months)

	var rows [][]string
	for _, m := range months {
		if month != "" && m != month {
			continue
		}
		dates := lo.Keys(doc[m])
		sort.Strings(dates)

		for _, d := range dates {
			if date != "" && d != date {
				continue
			}
			for _, e := range doc[m][d] {
				created := e.Timestamp
				if t, err := time.Parse(time.RFC3339, e.Timestamp); err == nil {
					created = t.Format("2006-01-02 15:04")
				}
				rows = append(rows, []string{d, e.Title, e.Description, created, e.ID})
			}
		}
	}
	return rows
}

package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/user/nessus-rider/pkg/ghostwriter"
	"github.com/user/nessus-rider/pkg/nessus"
)

var severityNames = map[int]string{
	1: "Info",
	2: "Low",
	3: "Medium",
	4: "High",
	5: "Critical",
}

// SeverityName maps a Ghostwriter severity id to its label.
func SeverityName(id int) string {
	if name, ok := severityNames[id]; ok {
		return name
	}
	return strconv.Itoa(id)
}

// PrintSummary renders the ranked findings about to be submitted.
func PrintSummary(w io.Writer, findings []ghostwriter.Finding) error {
	table := tablewriter.NewWriter(w)
	table.Header("#", "CVSS", "Severity", "Title")
	for _, f := range findings {
		row := []string{
			strconv.Itoa(f.Position),
			strconv.FormatFloat(f.CVSSScore, 'f', 1, 64),
			SeverityName(f.SeverityID),
			f.Title,
		}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d findings\n", len(findings))
	return err
}

// PrintScans renders the scans visible to the Nessus API key.
func PrintScans(w io.Writer, scans []nessus.Scan) error {
	table := tablewriter.NewWriter(w)
	table.Header("ID", "Name", "Status", "Modified")
	for _, s := range scans {
		modified := ""
		if s.LastModificationDate > 0 {
			modified = time.Unix(s.LastModificationDate, 0).UTC().Format(time.DateTime)
		}
		if err := table.Append([]string{strconv.Itoa(s.ID), s.Name, s.Status, modified}); err != nil {
			return err
		}
	}
	return table.Render()
}

package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/psantana5/vidgen/pkg/models"
)

// Snapshot is the JSON form of the tracked jobs and their latest records
type Snapshot struct {
	JobIDs   []string                       `json:"job_ids"`
	Statuses map[string]models.StatusRecord `json:"statuses"`
}

// WriteJSON prints an indented snapshot
func WriteJSON(w io.Writer, snap Snapshot) error {
	if snap.JobIDs == nil {
		snap.JobIDs = []string{}
	}
	if snap.Statuses == nil {
		snap.Statuses = map[string]models.StatusRecord{}
	}
	output, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(output))
	return err
}

// WriteTable prints one row per card
func WriteTable(w io.Writer, cards []Card) error {
	table := tablewriter.NewWriter(w)
	table.Header("Job ID", "Status", "Detail", "Download")

	for _, c := range cards {
		detail := c.Message
		download := "-"
		switch {
		case c.ShowVideo:
			detail = c.VideoSrc
			download = c.DownloadURL
		case c.ShowError:
			detail = "Error: " + c.ErrorText
		}
		if err := table.Append(c.JobID, c.StatusLabel, detail, download); err != nil {
			return fmt.Errorf("failed to append row: %w", err)
		}
	}

	return table.Render()
}

// WriteCard prints a field/value table for a single job
func WriteCard(w io.Writer, c Card) error {
	table := tablewriter.NewWriter(w)
	table.Header("Field", "Value")

	rows := [][]string{
		{"Job ID", c.JobID},
		{"Status", c.StatusLabel},
	}
	switch {
	case c.ShowVideo:
		rows = append(rows, []string{"Video", c.VideoSrc}, []string{"Download", c.DownloadURL})
	case c.ShowError:
		rows = append(rows, []string{"Error", c.ErrorText})
	default:
		rows = append(rows, []string{"Message", c.Message})
	}

	for _, row := range rows {
		if err := table.Append(row[0], row[1]); err != nil {
			return fmt.Errorf("failed to append row: %w", err)
		}
	}
	return table.Render()
}

// Package observability renders run summaries for the CLI.
package observability

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/jonathan/note-harvester/internal/db"
	"github.com/jonathan/note-harvester/internal/types"
)

const (
	// boxWidth is the width of boxed text output
	boxWidth = 60
	// titleWidth bounds the title column of item tables
	titleWidth = 40
)

// Printer writes human-readable reports
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

func (p *Printer) newTable(title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(p.out)
	t.SetStyle(table.StyleRounded)
	t.SetTitle(title)
	return t
}

// PrintBox prints a bordered box with a title and content. Long lines are
// cut to the box width.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		if text.RuneWidthWithoutEscSequences(line) > boxWidth-4 {
			line = text.Trim(line, boxWidth-7) + "..."
		}
		fmt.Fprintf(p.out, "│ %s │\n", pad(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintManifest lists the records of an acquisition run.
func (p *Printer) PrintManifest(m *types.Manifest) {
	t := p.newTable("ACQUIRED NOTES")
	t.AppendHeader(table.Row{"ID", "Title", "Images", "Text", "URL"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: titleWidth},
		{Number: 3, Align: text.AlignRight},
	})

	images, withText := 0, 0
	if m != nil {
		for _, rec := range m.Items {
			images += len(rec.Images)
			hasText := "no"
			if rec.TextFile != "" {
				hasText = "yes"
				withText++
			}
			t.AppendRow(table.Row{rec.ID, rec.Title, len(rec.Images), hasText, rec.URL})
		}
	}

	t.AppendFooter(table.Row{"Total", m.Len(), images, withText, ""})
	t.Render()
}

// PrintCurationReport lists what curation kept and deleted.
func (p *Printer) PrintCurationReport(r *types.CurationReport) {
	if r == nil {
		return
	}

	t := p.newTable(fmt.Sprintf("CURATION %s → %s", r.SourceDir, r.TargetDir))
	t.AppendHeader(table.Row{"Item", "Kept", "Removed", "Text", "Result"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMax: titleWidth},
		{Number: 5, WidthMax: titleWidth},
	})

	for _, item := range r.Items {
		result := "kept"
		if item.Deleted {
			result = "deleted: " + item.Reason
		} else if item.DeleteFailed {
			result = "delete failed: " + item.Reason
		}
		t.AppendRow(table.Row{item.Name, len(item.KeptImages), len(item.RemovedImages), item.TextLength, result})
	}

	t.AppendFooter(table.Row{"Total", r.Kept, r.ImagesRemoved, "", fmt.Sprintf("%d deleted, %d failed", r.Deleted, r.Failed)})
	t.Render()
}

// PrintRun lists a stored run and its items.
func (p *Printer) PrintRun(run *db.Run, items []db.RunItem) {
	if run == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Run:      %s\n", run.ID))
	sb.WriteString(fmt.Sprintf("Keywords: %s\n", strings.Join(run.Keywords, ", ")))
	sb.WriteString(fmt.Sprintf("Output:   %s\n", run.OutputDir))
	sb.WriteString(fmt.Sprintf("Status:   %s\n", run.Status))
	sb.WriteString(fmt.Sprintf("Started:  %s", run.CreatedAt.Format("2006-01-02 15:04:05")))
	if run.CompletedAt != nil {
		sb.WriteString(fmt.Sprintf("\nFinished: %s", run.CompletedAt.Format("2006-01-02 15:04:05")))
	}
	p.PrintBox("STORED RUN", sb.String())

	t := p.newTable("")
	t.AppendHeader(table.Row{"ID", "Keyword", "Title", "Images", "Folder"})
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 3, WidthMax: titleWidth}})
	for _, item := range items {
		t.AppendRow(table.Row{item.Record.ID, item.Keyword, item.Record.Title, len(item.Record.Images), itemFolder(item.Record)})
	}
	t.AppendFooter(table.Row{"Total", len(items), "", "", ""})
	t.Render()
}

// PrintSummary shows a written summary.
func (p *Printer) PrintSummary(notes int, model, path, summary string) {
	header := fmt.Sprintf("SUMMARY of %d notes (%s)", notes, model)
	p.PrintBox(header, summary+"\n\nWritten to "+path)
}

// itemFolder returns the folder name of a record's assets.
func itemFolder(rec types.ItemRecord) string {
	switch {
	case rec.TextFile != "":
		return filepath.Base(filepath.Dir(rec.TextFile))
	case len(rec.Images) > 0:
		return filepath.Base(filepath.Dir(rec.Images[0].Path))
	default:
		return ""
	}
}

// pad right-pads s with spaces to width display columns.
func pad(s string, width int) string {
	return text.Pad(s, width, ' ')
}

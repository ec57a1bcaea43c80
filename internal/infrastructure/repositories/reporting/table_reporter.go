package reporting

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/autokeeper/internal/domain/entities"
)

const publishedLayout = "2006-01-02"

// reportRow is one line of the report, also the JSON shape.
type reportRow struct {
	Ecosystem string   `json:"ecosystem"`
	Package   string   `json:"package"`
	Current   []string `json:"current"`
	Target    string   `json:"target"`
	Change    string   `json:"change"`
	Published string   `json:"published,omitempty"`
	Source    string   `json:"source"`
	Files     []string `json:"files"`
}

type jsonReport struct {
	Repository string      `json:"repository"`
	Updates    []reportRow `json:"updates"`
}

// TableReporter renders available updates as a table, CSV, markdown or JSON,
// to stdout or to the configured report file.
type TableReporter struct {
	stdout io.Writer
}

func NewTableReporter() *TableReporter {
	return &TableReporter{stdout: os.Stdout}
}

// NewTableReporterTo writes reports without a report file to w.
func NewTableReporterTo(w io.Writer) *TableReporter {
	return &TableReporter{stdout: w}
}

func (it *TableReporter) Report(name string, updates []entities.PackageUpdateSet, user entities.UserSettings) error {
	rows := make([]reportRow, 0, len(updates))
	for _, update := range updates {
		rows = append(rows, toRow(update))
	}

	var rendered string
	switch user.ReportFormat {
	case entities.ReportFormatJSON:
		data, err := json.MarshalIndent(jsonReport{Repository: name, Updates: rows}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		rendered = string(data)
	case entities.ReportFormatCSV:
		rendered = newTable(rows).RenderCSV()
	case entities.ReportFormatMarkdown:
		rendered = fmt.Sprintf("## %s\n\n%s", name, newTable(rows).RenderMarkdown())
	default:
		t := newTable(rows)
		t.SetTitle("Available updates in %s", name)
		t.SetStyle(table.StyleRounded)
		rendered = t.Render()
	}

	return it.write(user.ReportFile, rendered+"\n")
}

func (it *TableReporter) write(path, content string) error {
	if path == "" {
		_, err := io.WriteString(it.stdout, content)
		return err
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644) //nolint:gosec,mnd // report output
	if err != nil {
		return fmt.Errorf("failed to open report file %q: %w", path, err)
	}
	defer file.Close()

	if _, err = file.WriteString(content); err != nil {
		return fmt.Errorf("failed to write report file %q: %w", path, err)
	}
	logger.Infof("[report] Wrote %d update(s) to %s", strings.Count(content, "\n"), path)
	return nil
}

func newTable(rows []reportRow) table.Writer {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Ecosystem", "Package", "Current", "Target", "Change", "Published", "Source", "Files"})
	for _, row := range rows {
		t.AppendRow(table.Row{
			row.Ecosystem,
			row.Package,
			strings.Join(row.Current, ", "),
			row.Target,
			row.Change,
			row.Published,
			row.Source,
			strings.Join(row.Files, ", "),
		})
	}
	return t
}

func toRow(update entities.PackageUpdateSet) reportRow {
	row := reportRow{
		Ecosystem: update.Ecosystem(),
		Package:   update.SelectedID(),
		Current:   update.CurrentVersions(),
		Target:    update.SelectedVersion(),
		Change:    string(update.HighestChange()),
		Source:    update.Source(),
	}
	if !update.Published().IsZero() {
		row.Published = update.Published().UTC().Format(publishedLayout)
	}

	seen := make(map[string]bool)
	for _, pip := range update.CurrentPackages() {
		if !seen[pip.Path.RelativePath] {
			seen[pip.Path.RelativePath] = true
			row.Files = append(row.Files, pip.Path.RelativePath)
		}
	}
	return row
}

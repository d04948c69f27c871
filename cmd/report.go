package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/nao1215/markdown"

	"github.com/vqhuy-dev/webaudit-cli/internal/audit"
	"github.com/vqhuy-dev/webaudit-cli/internal/checker"
)

// renderReport prints the aggregated report as one section per
// executed checker.
func renderReport(out io.Writer, report *audit.Report) {
	headline := report.Summary
	switch report.Summary {
	case audit.SummaryAllOK:
		headline = colorSuccess(report.Summary)
	case audit.SummaryIssues:
		headline = colorWarn(report.Summary)
	case audit.SummaryFailures:
		headline = colorError(report.Summary)
	}
	fmt.Fprintf(out, "%s — %s\n", colorInfo("Audit report for "+report.Target), headline)
	fmt.Fprintf(out, "Completed at %s\n\n", report.CompletedAt.Format(time.RFC3339))

	for i, result := range report.Results {
		label := result.CheckID
		if i < len(report.Items) {
			label = report.Items[i].Label
		}
		fmt.Fprintf(out, "%s %s\n", statusGlyph(string(result.Status)), label)
		for _, line := range result.Details {
			fmt.Fprintf(out, "    %s\n", line)
		}
		fmt.Fprintln(out)
	}
}

func writeJSONReport(path string, report *audit.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// writeMarkdownReport writes the report via the fluent markdown
// builder: a summary table followed by one section per check.
func writeMarkdownReport(path string, report *audit.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	md := markdown.NewMarkdown(f)

	md.H1("Site Audit Report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Target", "`" + report.Target + "`"},
			{"Summary", report.Summary},
			{"Started", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Completed", report.CompletedAt.Format("2006-01-02 15:04:05 MST")},
		},
	})
	md.PlainText("")

	for i, result := range report.Results {
		label := result.CheckID
		if i < len(report.Items) {
			label = report.Items[i].Label
		}
		md.H2(fmt.Sprintf("%s — %s", label, string(result.Status)))
		if len(result.Details) > 0 {
			md.BulletList(result.Details...)
		}
		if result.Error != "" {
			md.PlainText("Error: " + result.Error)
		}
		md.PlainText("")
	}

	return md.Build()
}

// writePDFReport writes a compact PDF rendition of the report.
func writePDFReport(path string, report *audit.Report) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, fmt.Sprintf("Site Audit Report: %s", report.Target), "", 1, "C", false, 0, "")
	pdf.Ln(3)

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, "Summary: "+report.Summary, "", 1, "", false, 0, "")
	pdf.CellFormat(0, 6, "Completed: "+report.CompletedAt.Format(time.RFC3339), "", 1, "", false, 0, "")
	pdf.Ln(4)

	for i, result := range report.Results {
		label := result.CheckID
		if i < len(report.Items) {
			label = report.Items[i].Label
		}
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 8, fmt.Sprintf("%s [%s]", label, statusLabel(result.Status)), "", 1, "", false, 0, "")
		pdf.SetFont("Arial", "", 9)
		for _, line := range result.Details {
			pdf.MultiCell(0, 5, "- "+line, "", "", false)
		}
		pdf.Ln(2)
	}

	return pdf.OutputFileAndClose(path)
}

func statusLabel(s checker.Status) string {
	switch s {
	case checker.StatusSuccess:
		return "OK"
	case checker.StatusWarning:
		return "WARN"
	default:
		return "FAIL"
	}
}

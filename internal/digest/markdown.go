// Package digest renders a run report as a Markdown summary suitable for
// chat delivery.
package digest

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"AINewsCollector/internal/domain"
)

// Markdown renders the report: headline counts, then per-category and
// per-source tables, then any source failures. Table columns are padded
// by display width so CJK source names stay aligned.
func Markdown(report domain.RunReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "*AI News Collection Run* `%s`\n", report.RunID)
	fmt.Fprintf(&b, "Started %s, took %s\n\n", report.StartedAt.Format("2006-01-02 15:04"), report.Duration.Round(time.Second))

	fmt.Fprintf(&b, "Fetched %d, accepted %d new", report.TotalFetched, report.Accepted)
	if report.SoftDuplicates > 0 {
		fmt.Fprintf(&b, " (%d flagged as possible duplicates)", report.SoftDuplicates)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Skipped: %d already seen, %d invalid, %d filtered\n", report.HardDuplicates, report.Rejected, report.FilteredOut)

	if len(report.CategoryCounts) > 0 {
		b.WriteString("\n*By category*\n```\n")
		writeCountTable(&b, categoryRows(report.CategoryCounts))
		b.WriteString("```\n")
	}

	if len(report.SourceCounts) > 0 {
		b.WriteString("\n*By source*\n```\n")
		writeCountTable(&b, sortedRows(report.SourceCounts))
		b.WriteString("```\n")
	}

	if len(report.SourceErrors) > 0 {
		b.WriteString("\n*Source failures*\n")
		for _, failure := range report.SourceErrors {
			fmt.Fprintf(&b, "- %s: %s\n", failure.SourceID, failure.Error)
		}
	}

	return b.String()
}

type countRow struct {
	label string
	count int
}

func categoryRows(counts map[domain.Category]int) []countRow {
	rows := make([]countRow, 0, len(counts))
	for _, cat := range domain.Categories() {
		if n, ok := counts[cat]; ok && n > 0 {
			rows = append(rows, countRow{label: string(cat), count: n})
		}
	}
	return rows
}

func sortedRows(counts map[string]int) []countRow {
	rows := make([]countRow, 0, len(counts))
	for label, n := range counts {
		rows = append(rows, countRow{label: label, count: n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].count != rows[j].count {
			return rows[i].count > rows[j].count
		}
		return rows[i].label < rows[j].label
	})
	return rows
}

func writeCountTable(b *strings.Builder, rows []countRow) {
	width := 0
	for _, row := range rows {
		if w := runewidth.StringWidth(row.label); w > width {
			width = w
		}
	}
	for _, row := range rows {
		fmt.Fprintf(b, "%s  %d\n", runewidth.FillRight(row.label, width), row.count)
	}
}

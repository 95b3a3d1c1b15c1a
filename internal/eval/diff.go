package eval

import (
	"fmt"
	"os"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// volatilePrefixes start report lines that differ between two runs over
// the same data.
var volatilePrefixes = []string{
	reportTimeLabel,
	reportRunIDLabel,
	`"run_id":`,
	`"executed_at":`,
	"run_id:",
	"executed_at:",
}

// ReportDiff is the line diff of two reports.
type ReportDiff struct {
	Equal   bool
	Added   int
	Removed int
	// Text is the rendered diff, colored with the generator's colors.
	Text string
}

// DiffGenerator compares rendered reports line by line.
type DiffGenerator struct {
	dmp    *diffmatchpatch.DiffMatchPatch
	colors Colors
}

// NewDiffGenerator creates a generator using TermColors.
func NewDiffGenerator() *DiffGenerator {
	return &DiffGenerator{
		dmp:    diffmatchpatch.New(),
		colors: TermColors,
	}
}

// WithColors returns a copy of d rendering with c.
func (d *DiffGenerator) WithColors(c Colors) *DiffGenerator {
	return &DiffGenerator{dmp: d.dmp, colors: c}
}

// CompareFiles reads two reports and compares them.
func (d *DiffGenerator) CompareFiles(pathA, pathB string) (ReportDiff, error) {
	a, err := os.ReadFile(pathA)
	if err != nil {
		return ReportDiff{}, fmt.Errorf("failed to read report: %w", err)
	}
	b, err := os.ReadFile(pathB)
	if err != nil {
		return ReportDiff{}, fmt.Errorf("failed to read report: %w", err)
	}
	return d.CompareReports(string(a), string(b)), nil
}

// CompareReports diffs two reports, ignoring run IDs and timestamps.
func (d *DiffGenerator) CompareReports(a, b string) ReportDiff {
	a, b = stripVolatile(a), stripVolatile(b)
	if a == b {
		return ReportDiff{Equal: true, Text: "No changes"}
	}

	charsA, charsB, lines := d.dmp.DiffLinesToChars(a, b)
	diffs := d.dmp.DiffMain(charsA, charsB, false)
	diffs = d.dmp.DiffCharsToLines(diffs, lines)

	var (
		result ReportDiff
		body   strings.Builder
	)
	for _, diff := range diffs {
		for _, line := range splitLines(diff.Text) {
			switch diff.Type {
			case diffmatchpatch.DiffInsert:
				result.Added++
				body.WriteString(d.colors.Colorize("+ "+line, d.colors.Green) + "\n")
			case diffmatchpatch.DiffDelete:
				result.Removed++
				body.WriteString(d.colors.Colorize("- "+line, d.colors.Red) + "\n")
			case diffmatchpatch.DiffEqual:
				body.WriteString("  " + line + "\n")
			}
		}
	}

	result.Text = fmt.Sprintf("%s %s, %s\n\n%s",
		d.colors.Colorize("Changes:", d.colors.Bold),
		d.colors.Colorize(fmt.Sprintf("+%d lines", result.Added), d.colors.Green),
		d.colors.Colorize(fmt.Sprintf("-%d lines", result.Removed), d.colors.Red),
		body.String())
	return result
}

func stripVolatile(report string) string {
	lines := strings.Split(strings.ReplaceAll(report, "\r\n", "\n"), "\n")
	kept := lines[:0]
	for _, line := range lines {
		if isVolatile(strings.TrimSpace(line)) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

func isVolatile(line string) bool {
	for _, p := range volatilePrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}

package eval

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zhang-3000/meituan/internal/score"
)

const timestampLayout = "20060102_150405"

// Report lines that change between runs over the same data.
const (
	reportTimeLabel  = "评测时间: "
	reportRunIDLabel = "运行ID: "
)

// Reporter handles evaluation result reporting
type Reporter struct {
	verbose bool
	out     io.Writer
}

// NewReporter creates a reporter printing to stdout.
func NewReporter(verbose bool) *Reporter {
	return &Reporter{verbose: verbose, out: os.Stdout}
}

// SetOutput redirects console output.
func (r *Reporter) SetOutput(w io.Writer) {
	r.out = w
}

// Report prints the per-segment table and the global line.
func (r *Reporter) Report(result *Result) {
	fmt.Fprintln(r.out, "\n📊 Evaluation Results")
	fmt.Fprintln(r.out, strings.Repeat("=", 80))

	w := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Segment\tRecords\tPrecision\tRecall\tF1\tClassification")
	fmt.Fprintln(w, "-------\t-------\t---------\t------\t--\t--------------")

	for _, s := range result.Segments {
		writeRow(w, s.Segment, s.Records, s.Counters)
	}
	writeRow(w, "TOTAL", result.Tracked, result.Total)
	w.Flush()

	fmt.Fprintf(r.out, "\nOracle calls: %d", result.OracleCalls)
	if result.Restored > 0 {
		fmt.Fprintf(r.out, " (%d restored from journal over %d rows)", result.RestoredCalls, result.Restored)
	}
	fmt.Fprintln(r.out)

	if r.verbose {
		fmt.Fprintf(r.out, "Run ID: %s\n", result.RunID)
		fmt.Fprintf(r.out, "Input: %s\n", result.Input)
		fmt.Fprintf(r.out, "Rows: %d, tracked: %d\n", result.Rows, result.Tracked)
		fmt.Fprintf(r.out, "Logged consultations: %d\n", result.LoggedConsultations)
		fmt.Fprintf(r.out, "Duration: %s\n", result.Duration.Round(time.Millisecond))
	}
}

func writeRow(w io.Writer, name string, records int, c score.Counters) {
	fmt.Fprintf(w, "%s\t%d\t%.4f (%d/%d)\t%.4f (%d/%d)\t%.4f\t%.4f (%d/%d)\n",
		name, records,
		c.Precision(), c.PrecisionHits, c.PrecisionTotal,
		c.Recall(), c.RecallHits, c.RecallTotal,
		c.F1(),
		c.ClassificationAccuracy(), c.ClassHits, c.ClassTotal,
	)
}

// RenderText renders the plain-text report.
func RenderText(result *Result) string {
	var b strings.Builder
	rule := strings.Repeat("=", 80) + "\n"

	b.WriteString(rule)
	b.WriteString("FAB属性评测报告\n")
	b.WriteString(rule + "\n")

	b.WriteString(reportTimeLabel + result.ExecutedAt.Format("2006-01-02 15:04:05") + "\n")
	b.WriteString(reportRunIDLabel + result.RunID + "\n")
	fmt.Fprintf(&b, "总记录数: %d\n", result.Rows)
	fmt.Fprintf(&b, "LLM调用总次数: %d\n\n", result.OracleCalls)

	b.WriteString(rule)
	b.WriteString("【按行业统计】\n")
	b.WriteString(rule + "\n")

	for _, s := range result.Segments {
		fmt.Fprintf(&b, "%s (共 %d 条记录)\n\n", s.Segment, s.Records)
		fmt.Fprintf(&b, "  精确率: %.4f  (%d/%d)\n", s.Precision(), s.PrecisionHits, s.PrecisionTotal)
		fmt.Fprintf(&b, "  召回率: %.4f  (%d/%d)\n", s.Recall(), s.RecallHits, s.RecallTotal)
		fmt.Fprintf(&b, "  F1分数: %.4f\n", s.F1())
		fmt.Fprintf(&b, "  分类准确率: %.4f  (%d/%d)\n\n", s.ClassificationAccuracy(), s.ClassHits, s.ClassTotal)
	}

	t := result.Total
	b.WriteString(rule)
	b.WriteString("【总体统计】\n")
	b.WriteString(rule + "\n")

	fmt.Fprintf(&b, "【精确率 (Precision)】\n  数值: %.4f\n  详情: %d / %d\n\n", t.Precision(), t.PrecisionHits, t.PrecisionTotal)
	fmt.Fprintf(&b, "【召回率 (Recall)】\n  数值: %.4f\n  详情: %d / %d\n\n", t.Recall(), t.RecallHits, t.RecallTotal)
	fmt.Fprintf(&b, "【F1 分数】\n  数值: %.4f\n\n", t.F1())
	fmt.Fprintf(&b, "【主客观属性分类准确率】\n  数值: %.4f\n  详情: %d / %d\n\n", t.ClassificationAccuracy(), t.ClassHits, t.ClassTotal)
	fmt.Fprintf(&b, "【LLM调用统计】\n  总调用次数: %d\n\n", result.OracleCalls)
	b.WriteString(rule)

	return b.String()
}

// SaveText writes the plain-text report.
func (r *Reporter) SaveText(result *Result, outputPath string) error {
	return writeFile(outputPath, []byte(RenderText(result)))
}

// SegmentSummary is the serialized form of one segment.
type SegmentSummary struct {
	Segment                string         `json:"segment" yaml:"segment"`
	Records                int            `json:"records" yaml:"records"`
	Precision              float64        `json:"precision" yaml:"precision"`
	Recall                 float64        `json:"recall" yaml:"recall"`
	F1                     float64        `json:"f1" yaml:"f1"`
	ClassificationAccuracy float64        `json:"classification_accuracy" yaml:"classification_accuracy"`
	Counters               score.Counters `json:"counters" yaml:"counters"`
}

// Summary is the machine-readable run summary.
type Summary struct {
	RunID               string           `json:"run_id" yaml:"run_id"`
	Input               string           `json:"input" yaml:"input"`
	ExecutedAt          time.Time        `json:"executed_at" yaml:"executed_at"`
	Rows                int              `json:"rows" yaml:"rows"`
	Tracked             int              `json:"tracked" yaml:"tracked"`
	OracleCalls         int              `json:"oracle_calls" yaml:"oracle_calls"`
	Restored            int              `json:"restored_rows" yaml:"restored_rows"`
	LoggedConsultations int              `json:"logged_consultations" yaml:"logged_consultations"`
	Segments            []SegmentSummary `json:"segments" yaml:"segments"`
	Total               SegmentSummary   `json:"total" yaml:"total"`
}

func summarizeCounters(name string, records int, c score.Counters) SegmentSummary {
	return SegmentSummary{
		Segment:                name,
		Records:                records,
		Precision:              c.Precision(),
		Recall:                 c.Recall(),
		F1:                     c.F1(),
		ClassificationAccuracy: c.ClassificationAccuracy(),
		Counters:               c,
	}
}

// Summarize builds the Summary of result.
func Summarize(result *Result) Summary {
	s := Summary{
		RunID:               result.RunID,
		Input:               result.Input,
		ExecutedAt:          result.ExecutedAt,
		Rows:                result.Rows,
		Tracked:             result.Tracked,
		OracleCalls:         result.OracleCalls,
		Restored:            result.Restored,
		LoggedConsultations: result.LoggedConsultations,
		Segments:            make([]SegmentSummary, 0, len(result.Segments)),
		Total:               summarizeCounters("total", result.Tracked, result.Total),
	}
	for _, seg := range result.Segments {
		s.Segments = append(s.Segments, summarizeCounters(seg.Segment, seg.Records, seg.Counters))
	}
	return s
}

// SaveJSON saves the summary as JSON
func (r *Reporter) SaveJSON(result *Result, outputPath string) error {
	data, err := json.MarshalIndent(Summarize(result), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	return writeFile(outputPath, data)
}

// SaveYAML saves the summary as YAML.
func (r *Reporter) SaveYAML(result *Result, outputPath string) error {
	data, err := yaml.Marshal(Summarize(result))
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	return writeFile(outputPath, data)
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// OutputPaths returns the table and report paths for a run started at at.
func OutputPaths(dir, prefix, format string, at time.Time) (table, report string) {
	base := filepath.Join(dir, fmt.Sprintf("%s_%s", prefix, at.Format(timestampLayout)))
	return base + "." + format, base + ".txt"
}

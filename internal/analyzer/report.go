package analyzer

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"smellcheck/internal/config"
	"smellcheck/internal/models"

	"github.com/fatih/color"
)

// ReportGenerator handles formatting and displaying analysis results
type ReportGenerator struct {
	format string
	config *config.Config
}

// NewReportGenerator creates a new report generator
func NewReportGenerator(format string) *ReportGenerator {
	return &ReportGenerator{
		format: format,
		config: config.DefaultConfig(),
	}
}

func NewReportGeneratorWithConfig(cfg *config.Config) *ReportGenerator {
	return &ReportGenerator{
		format: cfg.Output.Format,
		config: cfg,
	}
}

// Generate creates a formatted report from analysis results
func (r *ReportGenerator) Generate(result *models.AnalysisResult) string {
	switch r.format {
	case "json":
		return r.generateJSON(result)
	default:
		return r.generateConsole(result)
	}
}

// generateJSON creates a JSON report
func (r *ReportGenerator) generateJSON(result *models.AnalysisResult) string {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Sprintf("Error generating JSON report: %v", err)
	}
	return string(data)
}

// generateConsole creates a colorized console report
func (r *ReportGenerator) generateConsole(result *models.AnalysisResult) string {
	var report strings.Builder

	useColors := true
	verbose := false
	if r.config != nil {
		useColors = r.config.Output.Colors
		verbose = r.config.Output.Verbose
	}

	// color.NoColor is process-global; render through explicit printers.
	paint := func(attr color.Attribute, format string, a ...any) string {
		if !useColors {
			return fmt.Sprintf(format, a...)
		}
		c := color.New(attr)
		c.EnableColor()
		return c.Sprintf(format, a...)
	}

	report.WriteString(paint(color.FgCyan, "SmellCheck Analysis Report\n"))
	report.WriteString(paint(color.FgWhite, "=======================================\n\n"))

	if verbose && r.config != nil {
		r.writeConfigInfo(&report, paint)
	}

	report.WriteString(paint(color.FgWhite, "Summary:\n"))
	report.WriteString(fmt.Sprintf("   Files analyzed: %d\n", len(result.Files)))
	report.WriteString(fmt.Sprintf("   Warnings found: %d\n\n", result.TotalWarnings))

	r.writeQualityScore(&report, result, paint)

	if len(result.Warnings) == 0 {
		report.WriteString(paint(color.FgGreen, "No smells detected! Great job!\n\n"))
	} else {
		r.writeSmellSummary(&report, result, paint)
		report.WriteString("\n")
		r.writeWarningsBySource(&report, result, paint)
	}

	report.WriteString(paint(color.FgWhite, "Analysis completed in %s\n", result.AnalysisDuration))
	return report.String()
}

type painter func(attr color.Attribute, format string, a ...any) string

// writeQualityScore writes the quality score with color coding
func (r *ReportGenerator) writeQualityScore(report *strings.Builder, result *models.AnalysisResult, paint painter) {
	excellent, good, fair := 90, 75, 50
	if r.config != nil {
		excellent = r.config.Analysis.ScoreThresholds.Excellent
		good = r.config.Analysis.ScoreThresholds.Good
		fair = r.config.Analysis.ScoreThresholds.Fair
	}

	score := result.QualityScore
	var attr color.Attribute
	switch {
	case score >= excellent:
		attr = color.FgGreen
	case score >= good:
		attr = color.FgYellow
	case score >= fair:
		attr = color.FgHiYellow
	default:
		attr = color.FgRed
	}
	report.WriteString(fmt.Sprintf("Quality Score: %s/100\n\n", paint(attr, "%d", score)))
}

func severityColor(severity string) color.Attribute {
	switch severity {
	case "CRITICAL", "HIGH":
		return color.FgRed
	case "MEDIUM":
		return color.FgYellow
	default:
		return color.FgBlue
	}
}

func (r *ReportGenerator) writeConfigInfo(report *strings.Builder, paint painter) {
	report.WriteString(paint(color.FgWhite, "Configuration:\n"))
	report.WriteString(fmt.Sprintf("   max_allowed_calls: %s\n",
		paint(color.FgCyan, "%d", r.config.Smells.DuplicateMethodCall.MaxAllowedCalls)))
	report.WriteString(fmt.Sprintf("   max_instance_variables: %s\n",
		paint(color.FgCyan, "%d", r.config.Smells.TooManyInstanceVariables.MaxInstanceVariables)))
	report.WriteString(fmt.Sprintf("   Score thresholds: %s\n\n",
		paint(color.FgCyan, "%d/%d/%d",
			r.config.Analysis.ScoreThresholds.Excellent,
			r.config.Analysis.ScoreThresholds.Good,
			r.config.Analysis.ScoreThresholds.Fair)))
}

func (r *ReportGenerator) writeSmellSummary(report *strings.Builder, result *models.AnalysisResult, paint painter) {
	report.WriteString(paint(color.FgWhite, "Warnings by Severity:\n"))
	for _, severity := range []string{"CRITICAL", "HIGH", "MEDIUM", "LOW"} {
		if count := result.WarningsBySeverity[severity]; count > 0 {
			report.WriteString(fmt.Sprintf("   %s: %s\n", severity, paint(severityColor(severity), "%d", count)))
		}
	}

	report.WriteString(paint(color.FgWhite, "Warnings by Smell:\n"))
	smells := make([]string, 0, len(result.WarningsBySmell))
	for smell := range result.WarningsBySmell {
		smells = append(smells, smell)
	}
	sort.Strings(smells)
	for _, smell := range smells {
		report.WriteString(fmt.Sprintf("   %s: %d\n", smell, result.WarningsBySmell[smell]))
	}
}

// writeWarningsBySource lists warnings grouped by file, one per line in the
// form "[lines]: context (SmellType) message".
func (r *ReportGenerator) writeWarningsBySource(report *strings.Builder, result *models.AnalysisResult, paint painter) {
	bySource := make(map[string][]models.Warning)
	var sources []string
	for _, w := range result.Warnings {
		if _, ok := bySource[w.Source]; !ok {
			sources = append(sources, w.Source)
		}
		bySource[w.Source] = append(bySource[w.Source], w)
	}

	for _, source := range sources {
		warnings := bySource[source]
		report.WriteString(paint(color.FgCyan, "%s -- %d warnings:\n", source, len(warnings)))
		for _, w := range warnings {
			report.WriteString(fmt.Sprintf("  %s %s %s %s\n",
				formatLines(w.Lines),
				paint(color.FgWhite, "%s", w.Context),
				paint(severityColor(w.Severity.String()), "(%s)", w.SmellType),
				w.Message))
		}
		report.WriteString("\n")
	}
}

func formatLines(lines []int) string {
	parts := make([]string, len(lines))
	for i, line := range lines {
		parts[i] = fmt.Sprint(line)
	}
	return "[" + strings.Join(parts, ", ") + "]:"
}

package detectors_test

import (
	"testing"

	"smellcheck/internal/analyzer"
	"smellcheck/internal/ast"
	"smellcheck/internal/config"
	"smellcheck/internal/models"
)

func examine(t *testing.T, src string, cfg *config.Config) *models.Report {
	t.Helper()
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	report := models.NewReport()
	if err := analyzer.NewAnalyzerWithConfig(cfg).Examine(ast.MustParse(src), "string", report); err != nil {
		t.Fatalf("Examine() error = %v", err)
	}
	return report
}

func intPtr(n int) *int { return &n }

func assertExactly(t *testing.T, report *models.Report, ms ...models.Match) {
	t.Helper()
	if !report.Exactly(ms...) {
		t.Errorf("warnings %+v do not match %+v", report.Warnings(), ms)
	}
}

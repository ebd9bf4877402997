package detectors

import (
	"fmt"

	"smellcheck/internal/config"
	"smellcheck/internal/context"
	"smellcheck/internal/models"
)

// DuplicateMethodCallDetector finds identical calls repeated within one method
type DuplicateMethodCallDetector struct{}

func NewDuplicateMethodCallDetector() *DuplicateMethodCallDetector {
	return &DuplicateMethodCallDetector{}
}

func (d *DuplicateMethodCallDetector) Name() string {
	return string(models.SmellDuplicateMethodCall)
}

func (d *DuplicateMethodCallDetector) Contexts() []context.Kind {
	return []context.Kind{context.KindMethod, context.KindSingletonMethod}
}

type callGroup struct {
	signature string
	lines     []int
}

// Examine groups the method's calls by signature and reports every group
// occurring more often than max_allowed_calls.
func (d *DuplicateMethodCallDetector) Examine(ctx *context.Context, cfg config.SmellConfig) []models.Warning {
	maxAllowed := cfg.MaxAllowedCalls
	if maxAllowed < 1 {
		maxAllowed = config.DefaultMaxAllowedCalls
	}

	groups := d.collectCalls(ctx)

	var warnings []models.Warning
	for _, group := range groups {
		count := len(group.lines)
		if count <= maxAllowed || cfg.AllowsCall(group.signature) {
			continue
		}
		warnings = append(warnings, models.Warning{
			SmellType: models.SmellDuplicateMethodCall,
			Severity:  models.SmellDuplicateMethodCall.Severity(),
			Context:   ctx.Name(),
			Lines:     group.lines,
			Message:   fmt.Sprintf("calls %s %d times", group.signature, count),
			Parameters: map[string]any{
				"name":  group.signature,
				"count": count,
			},
		})
	}
	return warnings
}

// collectCalls returns the call groups in order of first occurrence.
// Object creation is never a duplicate.
func (d *DuplicateMethodCallDetector) collectCalls(ctx *context.Context) []*callGroup {
	index := make(map[string]*callGroup)
	var groups []*callGroup
	for _, call := range ctx.Calls() {
		if call.Method == "new" {
			continue
		}
		group, ok := index[call.Signature]
		if !ok {
			group = &callGroup{signature: call.Signature}
			index[call.Signature] = group
			groups = append(groups, group)
		}
		group.lines = append(group.lines, call.Line)
	}
	return groups
}

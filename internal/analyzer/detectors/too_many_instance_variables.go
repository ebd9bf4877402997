package detectors

import (
	"fmt"

	"smellcheck/internal/config"
	"smellcheck/internal/context"
	"smellcheck/internal/models"
)

// TooManyInstanceVariablesDetector finds classes holding too much state
type TooManyInstanceVariablesDetector struct{}

func NewTooManyInstanceVariablesDetector() *TooManyInstanceVariablesDetector {
	return &TooManyInstanceVariablesDetector{}
}

func (d *TooManyInstanceVariablesDetector) Name() string {
	return string(models.SmellTooManyInstanceVariables)
}

func (d *TooManyInstanceVariablesDetector) Contexts() []context.Kind {
	return []context.Kind{context.KindClass, context.KindModule}
}

// Examine counts distinct ivar names of the class itself. Nested classes
// keep their own ivars, and memoized-only names are not state the class
// has to carry.
func (d *TooManyInstanceVariablesDetector) Examine(ctx *context.Context, cfg config.SmellConfig) []models.Warning {
	count := 0
	for _, iv := range ctx.InstanceVariables() {
		if iv.Read || iv.Written {
			count++
		}
	}

	if count <= cfg.MaxInstanceVariables {
		return nil
	}

	return []models.Warning{{
		SmellType: models.SmellTooManyInstanceVariables,
		Severity:  models.SmellTooManyInstanceVariables.Severity(),
		Context:   ctx.Name(),
		Lines:     []int{ctx.Line()},
		Message:   fmt.Sprintf("has at least %d instance variables", count),
		Parameters: map[string]any{
			"count": count,
		},
	}}
}

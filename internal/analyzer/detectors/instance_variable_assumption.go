package detectors

import (
	"fmt"

	"smellcheck/internal/config"
	"smellcheck/internal/context"
	"smellcheck/internal/models"
)

// InstanceVariableAssumptionDetector finds instance variables a class reads
// but never sets
type InstanceVariableAssumptionDetector struct{}

func NewInstanceVariableAssumptionDetector() *InstanceVariableAssumptionDetector {
	return &InstanceVariableAssumptionDetector{}
}

func (d *InstanceVariableAssumptionDetector) Name() string {
	return string(models.SmellInstanceVariableAssumption)
}

func (d *InstanceVariableAssumptionDetector) Contexts() []context.Kind {
	return []context.Kind{context.KindClass, context.KindModule}
}

// Examine emits one warning per ivar that is read somewhere in the class
// and neither written nor lazily initialized anywhere in it.
func (d *InstanceVariableAssumptionDetector) Examine(ctx *context.Context, _ config.SmellConfig) []models.Warning {
	var warnings []models.Warning
	for _, iv := range ctx.InstanceVariables() {
		if !iv.Read || iv.Written || iv.WrittenLazily {
			continue
		}
		warnings = append(warnings, models.Warning{
			SmellType: models.SmellInstanceVariableAssumption,
			Severity:  models.SmellInstanceVariableAssumption.Severity(),
			Context:   ctx.Name(),
			Lines:     []int{ctx.Line()},
			Message:   fmt.Sprintf("assumes too much for instance variable %s", iv.Name),
			Parameters: map[string]any{
				"assumption": iv.Name,
			},
		})
	}
	return warnings
}

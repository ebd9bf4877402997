package detectors

import (
	"fmt"
	"slices"

	"smellcheck/internal/config"
	"smellcheck/internal/context"
	"smellcheck/internal/models"
)

// FeatureEnvyDetector finds methods that use another object more than self
type FeatureEnvyDetector struct{}

func NewFeatureEnvyDetector() *FeatureEnvyDetector {
	return &FeatureEnvyDetector{}
}

func (d *FeatureEnvyDetector) Name() string {
	return string(models.SmellFeatureEnvy)
}

func (d *FeatureEnvyDetector) Contexts() []context.Kind {
	return []context.Kind{context.KindMethod, context.KindSingletonMethod}
}

// Examine reports the receivers tied at the highest affinity when that
// affinity is strictly greater than self's. Methods that never touch self
// are left alone: moving them elsewhere is a different refactoring.
func (d *FeatureEnvyDetector) Examine(ctx *context.Context, _ config.SmellConfig) []models.Warning {
	self := ctx.SelfAffinity()
	if self == 0 {
		return nil
	}

	refs := ctx.Refs()
	receivers, best := refs.MostPopular()
	if best <= self {
		return nil
	}

	warnings := make([]models.Warning, 0, len(receivers))
	for _, name := range receivers {
		lines := refs.Lines(name)
		warnings = append(warnings, models.Warning{
			SmellType: models.SmellFeatureEnvy,
			Severity:  models.SmellFeatureEnvy.Severity(),
			Context:   ctx.Name(),
			Lines:     []int{slices.Min(lines), slices.Max(lines)},
			Message:   fmt.Sprintf("refers to %s more than self (maybe move it to another class?)", name),
			Parameters: map[string]any{
				"name": name,
			},
		})
	}
	return warnings
}

package analyzer

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"smellcheck/internal/analyzer/detectors"
	"smellcheck/internal/ast"
	"smellcheck/internal/config"
	"smellcheck/internal/context"
	"smellcheck/internal/models"
)

type Analyzer struct {
	config    *config.Config
	logger    *zap.Logger
	detectors []Detector
	registry  map[context.Kind][]Detector
}

// Detector inspects one completed context. Implementations must not keep
// or mutate the context.
type Detector interface {
	Name() string
	Contexts() []context.Kind
	Examine(ctx *context.Context, cfg config.SmellConfig) []models.Warning
}

func NewAnalyzer() *Analyzer {
	return NewAnalyzerWithConfig(config.DefaultConfig())
}

func NewAnalyzerWithConfig(cfg *config.Config) *Analyzer {
	analyzer := &Analyzer{
		config:   cfg,
		logger:   zap.NewNop(),
		registry: make(map[context.Kind][]Detector),
	}

	analyzer.Register(detectors.NewDuplicateMethodCallDetector())
	analyzer.Register(detectors.NewFeatureEnvyDetector())
	analyzer.Register(detectors.NewInstanceVariableAssumptionDetector())
	analyzer.Register(detectors.NewTooManyInstanceVariablesDetector())

	return analyzer
}

// SetLogger replaces the default no-op logger.
func (a *Analyzer) SetLogger(logger *zap.Logger) {
	if logger != nil {
		a.logger = logger
	}
}

// Register adds a detector for every context kind it declares.
func (a *Analyzer) Register(d Detector) {
	a.detectors = append(a.detectors, d)
	for _, kind := range d.Contexts() {
		a.registry[kind] = append(a.registry[kind], d)
	}
}

// AnalyzeFiles examines every file, in parallel up to max_workers. Files
// that cannot be read or parsed are logged and skipped.
func (a *Analyzer) AnalyzeFiles(filenames []string) (*models.AnalysisResult, error) {
	startTime := time.Now()
	result := models.NewAnalysisResult()

	reports := make([]*models.Report, len(filenames))
	var g errgroup.Group
	g.SetLimit(max(a.config.Analysis.MaxWorkers, 1))
	for i, filename := range filenames {
		g.Go(func() error {
			report := models.NewReport()
			if err := a.AnalyzeFile(filename, report); err != nil {
				a.logger.Warn("skipping file", zap.String("file", filename), zap.Error(err))
				return nil
			}
			reports[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, report := range reports {
		if report == nil {
			continue
		}
		result.Files = append(result.Files, filenames[i])
		for _, warning := range report.Warnings() {
			result.AddWarning(warning)
		}
	}

	result.AnalysisDuration = time.Since(startTime).String()
	result.CalculateScore()
	a.logger.Debug("analysis finished",
		zap.Int("files", len(result.Files)),
		zap.Int("warnings", result.TotalWarnings),
		zap.String("duration", result.AnalysisDuration))
	return result, nil
}

// AnalyzeFile parses one serialized tree and examines it into report.
func (a *Analyzer) AnalyzeFile(filename string, report *models.Report) error {
	if limit := a.config.Files.MaxFileSize; limit > 0 {
		info, err := os.Stat(filename)
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", filename, err)
		}
		if info.Size() > int64(limit)*1024 {
			return fmt.Errorf("%s exceeds max file size of %d KB", filename, limit)
		}
	}

	root, err := ast.ParseFile(filename)
	if err != nil {
		return err
	}
	a.logger.Debug("examining file", zap.String("file", filename))
	return a.Examine(root, filename, report)
}

// Examine walks root and adds every detected smell to report. A
// structurally malformed tree is rejected before the walk starts.
func (a *Analyzer) Examine(root *ast.Node, source string, report *models.Report) error {
	if err := ast.Validate(root); err != nil {
		return fmt.Errorf("cannot examine %s: %w", source, err)
	}

	w := &treeWalker{
		analyzer: a,
		source:   source,
		report:   report,
	}
	w.walk(root, context.NewRoot())
	return nil
}

// GetDetectorCount returns the number of active detectors
func (a *Analyzer) GetDetectorCount() int {
	return len(a.detectors)
}

// GetDetectorNames returns the names of all active detectors
func (a *Analyzer) GetDetectorNames() []string {
	names := make([]string, len(a.detectors))
	for i, detector := range a.detectors {
		names[i] = detector.Name()
	}
	return names
}

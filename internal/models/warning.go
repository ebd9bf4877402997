package models

type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

type SmellType string

const (
	SmellDuplicateMethodCall        SmellType = "DuplicateMethodCall"
	SmellFeatureEnvy                SmellType = "FeatureEnvy"
	SmellInstanceVariableAssumption SmellType = "InstanceVariableAssumption"
	SmellTooManyInstanceVariables   SmellType = "TooManyInstanceVariables"
)

// Severity returns the default severity reported for a smell type.
func (t SmellType) Severity() Severity {
	switch t {
	case SmellFeatureEnvy, SmellTooManyInstanceVariables:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// Warning is one detected smell.
type Warning struct {
	SmellType  SmellType      `json:"smell_type"`
	Severity   Severity       `json:"severity"`
	Source     string         `json:"source"`
	Context    string         `json:"context"`
	Lines      []int          `json:"lines"`
	Message    string         `json:"message"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

type AnalysisResult struct {
	Files              []string       `json:"files_analyzed"`
	TotalWarnings      int            `json:"total_warnings"`
	WarningsBySeverity map[string]int `json:"warnings_by_severity"`
	WarningsBySmell    map[string]int `json:"warnings_by_smell"`
	Warnings           []Warning      `json:"warnings"`
	QualityScore       int            `json:"quality_score"` // 0-100 scale
	AnalysisDuration   string         `json:"analysis_duration"`
}

func NewAnalysisResult() *AnalysisResult {
	return &AnalysisResult{
		Files:              make([]string, 0),
		Warnings:           make([]Warning, 0),
		WarningsBySeverity: make(map[string]int),
		WarningsBySmell:    make(map[string]int),
	}
}

func (ar *AnalysisResult) AddWarning(w Warning) {
	ar.Warnings = append(ar.Warnings, w)
	ar.TotalWarnings++
	ar.WarningsBySeverity[w.Severity.String()]++
	ar.WarningsBySmell[string(w.SmellType)]++
}

func (ar *AnalysisResult) CalculateScore() {
	if ar.TotalWarnings == 0 {
		ar.QualityScore = 100
		return
	}

	penalty := 0
	for _, w := range ar.Warnings {
		basePenalty := 0
		switch w.Severity {
		case SeverityLow:
			basePenalty = 3
		case SeverityMedium:
			basePenalty = 8
		case SeverityHigh:
			basePenalty = 20
		case SeverityCritical:
			basePenalty = 40
		}

		// Design smells weigh more than local repetition
		switch w.SmellType {
		case SmellFeatureEnvy, SmellTooManyInstanceVariables:
			basePenalty = int(float64(basePenalty) * 1.5)
		}

		penalty += basePenalty
	}

	ar.QualityScore = max(100-penalty, 0)
}

package models

import "testing"

func TestMatch(t *testing.T) {
	t.Parallel()

	w := Warning{
		SmellType:  SmellDuplicateMethodCall,
		Context:    "Dummy#meth",
		Lines:      []int{2, 3},
		Message:    "calls @a.b 2 times",
		Source:     "dummy.sexp",
		Parameters: map[string]any{"name": "@a.b", "count": 2},
	}

	tests := []struct {
		name  string
		match Match
		want  bool
	}{
		{"empty matches all", Match{}, true},
		{"smell", Match{SmellType: SmellDuplicateMethodCall}, true},
		{"other smell", Match{SmellType: SmellFeatureEnvy}, false},
		{"context and lines", Match{Context: "Dummy#meth", Lines: []int{2, 3}}, true},
		{"lines differ", Match{Lines: []int{2}}, false},
		{"parameters", Match{Parameters: map[string]any{"count": 2}}, true},
		{"parameter value differs", Match{Parameters: map[string]any{"count": 3}}, false},
		{"missing parameter", Match{Parameters: map[string]any{"assumption": "@a"}}, false},
		{"source", Match{Source: "other.sexp"}, false},
	}

	for _, tt := range tests {
		if got := tt.match.Matches(w); got != tt.want {
			t.Errorf("%s: Matches() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestReportExactly(t *testing.T) {
	t.Parallel()

	report := NewReport()
	report.Add(Warning{SmellType: SmellFeatureEnvy, Context: "A#m"})
	report.Add(Warning{SmellType: SmellDuplicateMethodCall, Context: "A#m"})

	if report.Len() != 2 {
		t.Fatalf("Len() = %d", report.Len())
	}
	if !report.Exactly(Match{SmellType: SmellFeatureEnvy}, Match{SmellType: SmellDuplicateMethodCall}) {
		t.Error("Exactly() rejected a complete description")
	}
	if report.Exactly(Match{SmellType: SmellFeatureEnvy}) {
		t.Error("Exactly() ignored an unmatched warning")
	}
	if report.Exactly(Match{SmellType: SmellFeatureEnvy}, Match{SmellType: SmellDuplicateMethodCall}, Match{Context: "B#m"}) {
		t.Error("Exactly() ignored an unmatched matcher")
	}
	if !NewReport().Exactly() {
		t.Error("empty report should match no matchers")
	}

	warnings := report.Warnings()
	warnings[0].Context = "changed"
	if report.Warnings()[0].Context != "A#m" {
		t.Error("Warnings() exposed internal storage")
	}
}

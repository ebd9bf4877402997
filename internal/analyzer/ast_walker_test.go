package analyzer

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"smellcheck/internal/ast"
	"smellcheck/internal/config"
	"smellcheck/internal/context"
	"smellcheck/internal/models"
)

type visit struct {
	kind       context.Kind
	name       string
	statements int
}

// recorder captures every completed context it is shown.
type recorder struct {
	visits []visit
}

func (r *recorder) Name() string { return "Recorder" }

func (r *recorder) Contexts() []context.Kind {
	return []context.Kind{
		context.KindModule, context.KindClass, context.KindMethod, context.KindSingletonMethod,
		context.KindBlock, context.KindConditional, context.KindYieldCall,
	}
}

func (r *recorder) Examine(ctx *context.Context, _ config.SmellConfig) []models.Warning {
	r.visits = append(r.visits, visit{ctx.Kind(), ctx.Name(), ctx.StatementCount()})
	return nil
}

func record(t *testing.T, src string) []visit {
	t.Helper()
	a := NewAnalyzer()
	rec := &recorder{}
	a.Register(rec)
	if err := a.Examine(ast.MustParse(src), "string", models.NewReport()); err != nil {
		t.Fatalf("Examine() error = %v", err)
	}
	return rec.visits
}

func TestWalkerVisitsContextsInnermostFirst(t *testing.T) {
	t.Parallel()

	visits := record(t, `(module:1 Shop
		(class:2 Cart nil
			(defn:3 each_item (args)
				(iter:4 (call (ivar @items) each) (dasgn_curr item)
					(if:5 (lvar item) (yield:6 (lvar item)) (nil))))
			(defs:7 (self) build (args) (nil))))`)

	want := []visit{
		{context.KindYieldCall, "Shop::Cart#each_item", 0},
		{context.KindConditional, "Shop::Cart#each_item", 0},
		{context.KindBlock, "Shop::Cart#each_item", 0},
		{context.KindMethod, "Shop::Cart#each_item", 1},
		{context.KindSingletonMethod, "Shop::Cart.build", 0},
		{context.KindClass, "Shop::Cart", 0},
		{context.KindModule, "Shop", 0},
	}
	if !slices.Equal(visits, want) {
		t.Errorf("visits = %+v\nwant     %+v", visits, want)
	}
}

func TestWalkerCountsStatements(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want int
	}{
		{"flat body", "(defn foo (args) (call nil a) (call nil b) (nil))", 2},
		{"wrapped body", "(defn foo (scope (block (args) (call nil a) (call nil b))))", 2},
		{"empty body", "(defn foo (args) (nil))", 0},
		{"block statements stay in the block", "(defn foo (args) (iter (call (lvar x) each) (args) (block (call nil a) (call nil b) (call nil c))))", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			visits := record(t, tt.src)
			last := visits[len(visits)-1]
			if last.kind != context.KindMethod || last.statements != tt.want {
				t.Errorf("method visit = %+v, want %d statements", last, tt.want)
			}
		})
	}
}

func TestStructLikeClassBodyIsSkipped(t *testing.T) {
	t.Parallel()

	visits := record(t, "(class:1 Point (call (const Struct) new (arglist (lit x))) (defn:2 norm (args) (nil)))")
	want := []visit{{context.KindClass, "Point", 0}}
	if !slices.Equal(visits, want) {
		t.Errorf("visits = %+v, want %+v", visits, want)
	}
}

func TestExamineRejectsMalformedTrees(t *testing.T) {
	t.Parallel()

	report := models.NewReport()
	src := "(class:1 Dummy nil (defn:2 ok (args) (ivar @a)) (defn:3))"
	err := NewAnalyzer().Examine(ast.MustParse(src), "broken.sexp", report)
	if !errors.Is(err, ast.ErrMalformed) {
		t.Fatalf("Examine() error = %v, want ErrMalformed", err)
	}
	if report.Len() != 0 {
		t.Errorf("malformed tree produced %d warnings", report.Len())
	}
}

func TestUnknownNodesAreTraversed(t *testing.T) {
	t.Parallel()

	report := models.NewReport()
	src := "(class:1 Dummy nil (defn:2 m (args) (rescue (resbody nil (ivar:3 @a)))))"
	if err := NewAnalyzer().Examine(ast.MustParse(src), "string", report); err != nil {
		t.Fatal(err)
	}
	if !report.Exactly(models.Match{SmellType: models.SmellInstanceVariableAssumption, Context: "Dummy"}) {
		t.Errorf("warnings = %+v", report.Warnings())
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestAnalyzeFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	assuming := writeFile(t, dir, "assuming.sexp", "(class:1 Dummy nil (defn:2 meth (args) (ivar:3 @a)))")
	unparsable := writeFile(t, dir, "unparsable.sexp", "(class Dummy nil")
	malformed := writeFile(t, dir, "malformed.sexp", "(class:1 Dummy)")
	huge := writeFile(t, dir, "huge.sexp", "; "+strings.Repeat("x", 4096)+"\n(self)")
	clean := writeFile(t, dir, "clean.sexp", "(class:1 Clean nil (defn:2 initialize (args) (iasgn @a (lit 1))))")
	missing := filepath.Join(dir, "missing.sexp")

	cfg := config.DefaultConfig()
	cfg.Files.MaxFileSize = 2
	cfg.Analysis.MaxWorkers = 2
	result, err := NewAnalyzerWithConfig(cfg).AnalyzeFiles([]string{assuming, unparsable, malformed, huge, missing, clean})
	if err != nil {
		t.Fatalf("AnalyzeFiles() error = %v", err)
	}

	if want := []string{assuming, clean}; !slices.Equal(result.Files, want) {
		t.Errorf("Files = %v, want %v", result.Files, want)
	}
	if result.TotalWarnings != 1 {
		t.Fatalf("TotalWarnings = %d, want 1: %+v", result.TotalWarnings, result.Warnings)
	}
	w := result.Warnings[0]
	if w.Source != assuming || w.SmellType != models.SmellInstanceVariableAssumption {
		t.Errorf("warning = %+v", w)
	}
	if result.QualityScore != 97 {
		t.Errorf("QualityScore = %d, want 97", result.QualityScore)
	}
}

func TestDetectorNames(t *testing.T) {
	t.Parallel()

	a := NewAnalyzer()
	want := []string{"DuplicateMethodCall", "FeatureEnvy", "InstanceVariableAssumption", "TooManyInstanceVariables"}
	if a.GetDetectorCount() != len(want) || !slices.Equal(a.GetDetectorNames(), want) {
		t.Errorf("detectors = %v", a.GetDetectorNames())
	}
}

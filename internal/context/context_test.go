package context

import (
	"slices"
	"testing"

	"smellcheck/internal/ast"
)

func TestNames(t *testing.T) {
	t.Parallel()

	root := NewRoot()
	module := NewModule(root, ast.MustParse("(module:1 Shop)"))
	class := NewClass(module, ast.MustParse("(class:2 Cart nil)"))
	method := NewMethod(class, ast.MustParse("(defn:3 total (args))"))
	block := NewBlock(method, ast.MustParse("(iter:4 (call (lvar items) each) (args))"))
	cond := NewConditional(block, ast.MustParse("(if:5 (lvar x) (nil) (nil))"))

	tests := []struct {
		ctx  *Context
		name string
		kind Kind
		line int
	}{
		{module, "Shop", KindModule, 1},
		{class, "Shop::Cart", KindClass, 2},
		{method, "Shop::Cart#total", KindMethod, 3},
		{block, "Shop::Cart#total", KindBlock, 4},
		{cond, "Shop::Cart#total", KindConditional, 5},
		{NewSingletonMethod(class, ast.MustParse("(defs:6 (self) build (args))")), "Shop::Cart.build", KindSingletonMethod, 6},
		{NewSingletonMethod(class, ast.MustParse("(defs:7 (const Other) build (args))")), "Other.build", KindSingletonMethod, 7},
		{NewClass(root, ast.MustParse("(class (colon2 (const A) B) nil)")), "A::B", KindClass, 0},
		{NewMethod(root, ast.MustParse("(defn top (args))")), "top", KindMethod, 0},
	}

	for _, tt := range tests {
		if tt.ctx.Name() != tt.name || tt.ctx.Kind() != tt.kind || tt.ctx.Line() != tt.line {
			t.Errorf("got %s %q line %d, want %s %q line %d",
				tt.ctx.Kind(), tt.ctx.Name(), tt.ctx.Line(), tt.kind, tt.name, tt.line)
		}
	}

	want := []string{"Shop::Cart#total", "Shop::Cart", "Shop"}
	if got := cond.Names(); !slices.Equal(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
	if cond.Outer() != block || block.Outer() != method {
		t.Error("outer links do not follow nesting")
	}
}

func TestStructLikeClasses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		src  string
		want bool
	}{
		{"(class Point (const Struct))", true},
		{"(class Point (call (const Struct) new (arglist (lit x) (lit y))))", true},
		{"(class Point (iter (call (const Struct) new (arglist (lit x))) (args) (nil)))", true},
		{"(class Point (const Base))", false},
		{"(class Point (call (const Factory) new))", false},
		{"(class Point nil)", false},
	}

	for _, tt := range tests {
		if got := NewClass(NewRoot(), ast.MustParse(tt.src)).IsStructLike(); got != tt.want {
			t.Errorf("IsStructLike(%s) = %v, want %v", tt.src, got, tt.want)
		}
	}
}

func TestFactsRollUpThroughTransparentScopes(t *testing.T) {
	t.Parallel()

	root := NewRoot()
	class := NewClass(root, ast.MustParse("(class:1 Cart nil)"))
	method := NewMethod(class, ast.MustParse("(defn:2 total (args))"))
	block := NewBlock(method, ast.MustParse("(iter:3 (call (lvar items) each) (args))"))
	yield := NewYieldCall(block, ast.MustParse("(yield:4)"))

	method.RecordCall("a.b", "b", 2)
	yield.RecordCall("c.d", "d", 4)
	block.RecordReference("item", 3)
	yield.RecordUseOfSelf()
	block.RecordDependsOnSelf()

	if got := len(method.Calls()); got != 2 {
		t.Fatalf("method has %d calls, want 2", got)
	}
	if calls := method.Calls(); calls[0].Signature != "a.b" || calls[1].Signature != "c.d" {
		t.Errorf("calls out of textual order: %+v", calls)
	}
	if got := len(block.Calls()); got != 1 {
		t.Errorf("block has %d calls, want 1", got)
	}
	if got := len(class.Calls()); got != 0 {
		t.Errorf("class has %d calls, want 0", got)
	}
	if method.Refs().Count("item") != 1 || class.Refs().Count("item") != 0 {
		t.Error("references must stop at the method")
	}
	if method.SelfUsageCount() != 1 || method.DependsOnSelfCount() != 1 || method.SelfAffinity() != 2 {
		t.Errorf("method self affinity = %d+%d, want 1+1", method.SelfUsageCount(), method.DependsOnSelfCount())
	}
	if class.SelfAffinity() != 0 {
		t.Errorf("class self affinity = %d, want 0", class.SelfAffinity())
	}
}

func TestInstanceVariablesRollUpToClass(t *testing.T) {
	t.Parallel()

	root := NewRoot()
	module := NewModule(root, ast.MustParse("(module:1 Shop)"))
	class := NewClass(module, ast.MustParse("(class:2 Cart nil)"))
	method := NewMethod(class, ast.MustParse("(defn:3 total (args))"))
	block := NewBlock(method, ast.MustParse("(iter:4 (call (lvar items) each) (args))"))
	singleton := NewSingletonMethod(class, ast.MustParse("(defs:8 (self) cache (args))"))

	block.RecordInstanceVariableRead("@items", 5)
	method.RecordInstanceVariableWrite("@total", 6, false)
	method.RecordInstanceVariableWrite("@memo", 7, true)
	singleton.RecordInstanceVariableWrite("@registry", 9, false)

	ivars := class.InstanceVariables()
	var names []string
	for _, iv := range ivars {
		names = append(names, iv.Name)
	}
	if want := []string{"@items", "@total", "@memo"}; !slices.Equal(names, want) {
		t.Fatalf("class ivars = %v, want %v", names, want)
	}
	if !ivars[0].Read || ivars[0].Written || !slices.Equal(ivars[0].Lines, []int{5}) {
		t.Errorf("@items = %+v", ivars[0])
	}
	if !ivars[1].Written || ivars[1].Read {
		t.Errorf("@total = %+v", ivars[1])
	}
	if !ivars[2].WrittenLazily || ivars[2].Written {
		t.Errorf("@memo = %+v", ivars[2])
	}
	if got := len(module.InstanceVariables()); got != 0 {
		t.Errorf("module saw %d ivars of its class", got)
	}
	if got := len(singleton.InstanceVariables()); got != 1 {
		t.Errorf("singleton method has %d ivars, want 1", got)
	}
}

func TestParametersAndLocals(t *testing.T) {
	t.Parallel()

	method := NewMethod(NewRoot(), ast.MustParse("(defn run (args))"))
	method.RecordParameter("a")
	method.RecordParameter("a")
	method.RecordParameter("")
	method.RecordLocalVariable("tmp")
	method.CountStatements(2)
	method.CountStatements(1)

	if got := method.Parameters(); !slices.Equal(got, []string{"a"}) {
		t.Errorf("Parameters() = %v", got)
	}
	if !method.HasParameter("a") || method.HasParameter("tmp") {
		t.Error("HasParameter mismatch")
	}
	if !method.HasLocalVariable("tmp") || method.HasLocalVariable("a") {
		t.Error("HasLocalVariable mismatch")
	}
	if method.StatementCount() != 3 {
		t.Errorf("StatementCount() = %d, want 3", method.StatementCount())
	}
}

func TestClassBodyInstanceVariablesStayOutOfClass(t *testing.T) {
	t.Parallel()

	root := NewRoot()
	class := NewClass(root, ast.MustParse("(class:1 Config nil)"))
	block := NewBlock(class, ast.MustParse("(iter:3 (call (const Hooks) each) (args))"))
	method := NewMethod(class, ast.MustParse("(defn:5 value (args))"))

	class.RecordInstanceVariableWrite("@defaults", 2, false)
	block.RecordInstanceVariableRead("@hooks", 4)
	method.RecordInstanceVariableRead("@value", 6)

	var names []string
	for _, iv := range class.InstanceVariables() {
		names = append(names, iv.Name)
	}
	if want := []string{"@value"}; !slices.Equal(names, want) {
		t.Errorf("class ivars = %v, want %v", names, want)
	}
	if got := len(block.InstanceVariables()); got != 1 {
		t.Errorf("block has %d ivars, want 1", got)
	}
}

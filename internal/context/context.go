package context

import (
	"smellcheck/internal/ast"
)

// Kind classifies the scope a Context was opened for.
type Kind int

const (
	KindRoot Kind = iota
	KindModule
	KindClass
	KindMethod
	KindSingletonMethod
	KindBlock
	KindConditional
	KindYieldCall
)

func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindModule:
		return "module"
	case KindClass:
		return "class"
	case KindMethod:
		return "method"
	case KindSingletonMethod:
		return "singleton_method"
	case KindBlock:
		return "block"
	case KindConditional:
		return "conditional"
	case KindYieldCall:
		return "yield_call"
	default:
		return "unknown"
	}
}

// Call is one recorded call site.
type Call struct {
	Signature string
	Method    string
	Line      int
}

// InstanceVariable holds the facts recorded for one ivar name.
type InstanceVariable struct {
	Name          string
	Read          bool
	Written       bool
	WrittenLazily bool
	Lines         []int
}

// Context records the facts of one lexical scope while it is walked.
// outer is a non-owning back reference used for naming and roll-up only.
type Context struct {
	kind  Kind
	name  string
	line  int
	node  *ast.Node
	outer *Context

	calls      []Call
	parameters []string
	locals     []string
	ivars      map[string]*InstanceVariable
	ivarOrder  []string
	refs       *ObjectRefs

	selfUsage     int
	dependsOnSelf int
	statements    int
	structLike    bool
}

func newContext(kind Kind, outer *Context, n *ast.Node, name string) *Context {
	c := &Context{
		kind:  kind,
		name:  name,
		node:  n,
		outer: outer,
		ivars: make(map[string]*InstanceVariable),
		refs:  NewObjectRefs(),
	}
	if n != nil {
		c.line = n.Line
	}
	return c
}

// NewRoot creates the sentinel context every walk starts from.
func NewRoot() *Context {
	return newContext(KindRoot, nil, nil, "")
}

// NewModule opens a module scope nested in outer.
func NewModule(outer *Context, n *ast.Node) *Context {
	return newContext(KindModule, outer, n, nest(outer.namespace(), "::", ast.Format(n.Child(0))))
}

// NewClass opens a class scope nested in outer. Classes built from a
// Struct template are flagged so their body is not walked.
func NewClass(outer *Context, n *ast.Node) *Context {
	c := newContext(KindClass, outer, n, nest(outer.namespace(), "::", ast.Format(n.Child(0))))
	c.structLike = isStructTemplate(n.Child(1))
	return c
}

// NewMethod opens an instance method scope.
func NewMethod(outer *Context, n *ast.Node) *Context {
	return newContext(KindMethod, outer, n, nest(outer.namespace(), "#", n.NameAt(0)))
}

// NewSingletonMethod opens a scope for "def receiver.name".
func NewSingletonMethod(outer *Context, n *ast.Node) *Context {
	qualifier := outer.namespace()
	if recv := n.NodeAt(0); recv != nil && recv.Type != ast.Self {
		qualifier = ast.Format(recv)
	}
	return newContext(KindSingletonMethod, outer, n, nest(qualifier, ".", n.NameAt(1)))
}

// NewBlock opens a block scope; it shares the name of its outer scope.
func NewBlock(outer *Context, n *ast.Node) *Context {
	return newContext(KindBlock, outer, n, outer.name)
}

// NewConditional opens a scope for an if expression.
func NewConditional(outer *Context, n *ast.Node) *Context {
	return newContext(KindConditional, outer, n, outer.name)
}

// NewYieldCall opens a scope for a yield expression.
func NewYieldCall(outer *Context, n *ast.Node) *Context {
	return newContext(KindYieldCall, outer, n, outer.name)
}

func nest(prefix, sep, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + sep + name
}

// namespace is the qualified name of the nearest enclosing module or class.
func (c *Context) namespace() string {
	for ctx := c; ctx != nil; ctx = ctx.outer {
		if ctx.kind == KindModule || ctx.kind == KindClass {
			return ctx.name
		}
	}
	return ""
}

func isStructTemplate(super ast.Element) bool {
	n, ok := super.(*ast.Node)
	if !ok || n == nil {
		return false
	}
	switch n.Type {
	case ast.Const:
		return n.NameAt(0) == "Struct"
	case ast.Call:
		recv := n.NodeAt(0)
		return n.NameAt(1) == "new" && recv != nil && recv.Type == ast.Const && recv.NameAt(0) == "Struct"
	case ast.Iter:
		return isStructTemplate(n.Child(0))
	}
	return false
}

func (c *Context) Kind() Kind          { return c.kind }
func (c *Context) Name() string        { return c.name }
func (c *Context) Line() int           { return c.line }
func (c *Context) Node() *ast.Node     { return c.node }
func (c *Context) Outer() *Context     { return c.outer }
func (c *Context) IsStructLike() bool  { return c.structLike }
func (c *Context) StatementCount() int { return c.statements }
func (c *Context) Refs() *ObjectRefs   { return c.refs }

// SelfUsageCount counts implicit-receiver calls.
func (c *Context) SelfUsageCount() int { return c.selfUsage }

// DependsOnSelfCount counts explicit self, implicit-receiver calls and ivar access.
func (c *Context) DependsOnSelfCount() int { return c.dependsOnSelf }

// SelfAffinity is the number of usages bound to self.
func (c *Context) SelfAffinity() int { return c.selfUsage + c.dependsOnSelf }

// Calls returns the recorded call sites in textual order.
func (c *Context) Calls() []Call {
	return append([]Call(nil), c.calls...)
}

func (c *Context) Parameters() []string {
	return append([]string(nil), c.parameters...)
}

func (c *Context) LocalVariables() []string {
	return append([]string(nil), c.locals...)
}

func (c *Context) HasParameter(name string) bool {
	return contains(c.parameters, name)
}

func (c *Context) HasLocalVariable(name string) bool {
	return contains(c.locals, name)
}

// InstanceVariables returns the recorded ivars in order of first appearance.
func (c *Context) InstanceVariables() []InstanceVariable {
	out := make([]InstanceVariable, 0, len(c.ivarOrder))
	for _, name := range c.ivarOrder {
		iv := *c.ivars[name]
		iv.Lines = append([]int(nil), iv.Lines...)
		out = append(out, iv)
	}
	return out
}

// Names lists the qualified names from c outwards, innermost first,
// skipping duplicates contributed by transparent scopes.
func (c *Context) Names() []string {
	var names []string
	for ctx := c; ctx != nil; ctx = ctx.outer {
		if ctx.name == "" || (len(names) > 0 && names[len(names)-1] == ctx.name) {
			continue
		}
		names = append(names, ctx.name)
	}
	return names
}

// transparent scopes forward their facts to the enclosing scope.
func (c *Context) transparent() bool {
	switch c.kind {
	case KindBlock, KindConditional, KindYieldCall:
		return true
	}
	return false
}

// rollUp applies fn to c and to each enclosing scope reached through
// transparent scopes, stopping at the first non-transparent one.
func (c *Context) rollUp(fn func(*Context)) {
	for ctx := c; ctx != nil; ctx = ctx.outer {
		fn(ctx)
		if !ctx.transparent() {
			return
		}
	}
}

// RecordCall records a call signature seen at line.
func (c *Context) RecordCall(signature, method string, line int) {
	call := Call{Signature: signature, Method: method, Line: line}
	c.rollUp(func(ctx *Context) { ctx.calls = append(ctx.calls, call) })
}

// RecordReference records a usage bound to a local variable or parameter.
func (c *Context) RecordReference(name string, line int) {
	c.rollUp(func(ctx *Context) { ctx.refs.Record(name, line) })
}

// RecordUseOfSelf records an implicit-receiver call.
func (c *Context) RecordUseOfSelf() {
	c.rollUp(func(ctx *Context) { ctx.selfUsage++ })
}

// RecordDependsOnSelf records explicit self, an implicit-receiver call with
// arguments, or ivar access.
func (c *Context) RecordDependsOnSelf() {
	c.rollUp(func(ctx *Context) { ctx.dependsOnSelf++ })
}

func (c *Context) RecordParameter(name string) {
	if name != "" && !contains(c.parameters, name) {
		c.parameters = append(c.parameters, name)
	}
}

func (c *Context) RecordLocalVariable(name string) {
	if name != "" && !contains(c.locals, name) {
		c.locals = append(c.locals, name)
	}
}

// CountStatements adds n statements to this scope's body count.
func (c *Context) CountStatements(n int) {
	c.statements += n
}

// RecordInstanceVariableRead marks name as read.
func (c *Context) RecordInstanceVariableRead(name string, line int) {
	c.recordInstanceVariable(name, line, func(iv *InstanceVariable) { iv.Read = true })
}

// RecordInstanceVariableWrite marks name as written, or as written lazily
// for conditional assignments such as "@x ||= v".
func (c *Context) RecordInstanceVariableWrite(name string, line int, lazy bool) {
	c.recordInstanceVariable(name, line, func(iv *InstanceVariable) {
		if lazy {
			iv.WrittenLazily = true
		} else {
			iv.Written = true
		}
	})
}

// recordInstanceVariable updates c and the scopes above it. A class or
// module only sees ivars used inside its instance methods: ivars of the
// class body itself and of singleton methods belong to the class object.
func (c *Context) recordInstanceVariable(name string, line int, mark func(*InstanceVariable)) {
	inMethod := false
	for ctx := c; ctx != nil; ctx = ctx.outer {
		switch ctx.kind {
		case KindClass, KindModule, KindRoot:
			if inMethod {
				ctx.markInstanceVariable(name, line, mark)
			}
			return
		}
		ctx.markInstanceVariable(name, line, mark)
		switch ctx.kind {
		case KindMethod:
			inMethod = true
		case KindSingletonMethod:
			return
		}
	}
}

func (c *Context) markInstanceVariable(name string, line int, mark func(*InstanceVariable)) {
	iv, ok := c.ivars[name]
	if !ok {
		iv = &InstanceVariable{Name: name}
		c.ivars[name] = iv
		c.ivarOrder = append(c.ivarOrder, name)
	}
	mark(iv)
	iv.Lines = append(iv.Lines, line)
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

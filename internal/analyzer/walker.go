package analyzer

import (
	"strings"

	"go.uber.org/zap"

	"smellcheck/internal/ast"
	"smellcheck/internal/context"
	"smellcheck/internal/models"
)

// treeWalker dispatches on node categories. The current context is passed
// down explicitly, so leaving a scope needs no cleanup.
type treeWalker struct {
	analyzer *Analyzer
	source   string
	report   *models.Report
}

func (w *treeWalker) walk(e ast.Element, ctx *context.Context) {
	n, ok := e.(*ast.Node)
	if !ok || n == nil {
		return
	}

	switch n.Type {
	case ast.Module:
		w.enter(context.NewModule(ctx, n), n.Children[1:])
	case ast.Class:
		class := context.NewClass(ctx, n)
		body := n.Children[2:]
		if class.IsStructLike() {
			body = nil
		}
		w.enter(class, body)
	case ast.Defn:
		w.enterMethod(context.NewMethod(ctx, n), n.Children[1:])
	case ast.Defs:
		w.enterMethod(context.NewSingletonMethod(ctx, n), n.Children[2:])
	case ast.Iter:
		w.walkIter(n, ctx)
	case ast.If:
		w.enter(context.NewConditional(ctx, n), n.Children)
	case ast.Yield:
		w.enter(context.NewYieldCall(ctx, n), n.Children)

	case ast.Args:
		w.recordParameters(n, ctx)
	case ast.DasgnCurr:
		ctx.RecordParameter(n.NameAt(0))
		w.walkChildren(n, ctx)
	case ast.Block:
		ctx.CountStatements(ast.CountStatements(n.Children))
		w.walkChildren(n, ctx)
	case ast.Call, ast.Attrasgn:
		w.recordCall(n, ctx)
		w.walkChildren(n, ctx)
	case ast.Fcall:
		ctx.RecordUseOfSelf()
		if len(ast.Arguments(n.Child(1))) > 0 {
			ctx.RecordCall(ast.Format(n), n.NameAt(0), n.Line)
		}
		w.walkChildren(n, ctx)
	case ast.Vcall:
		// A bare identifier looks like a local; never a duplicate candidate.
		ctx.RecordUseOfSelf()
	case ast.OpAsgn1:
		w.recordReceiver(n.Child(0), "[]", n.Line, ctx)
		ctx.RecordCall(ast.Format(n), "[]", n.Line)
		w.walkChildren(n, ctx)
	case ast.OpAsgn:
		w.walkCompoundAssignment(n, ctx)
	case ast.OpAsgnOr, ast.OpAsgnAnd:
		w.walkConditionalAssignment(n, ctx)
	case ast.Match2:
		ctx.RecordCall(ast.Format(n), "=~", n.Line)
		w.walkChildren(n, ctx)
	case ast.Match3:
		w.recordReceiver(n.Child(1), "=~", n.Line, ctx)
		ctx.RecordCall(ast.Format(n), "=~", n.Line)
		w.walkChildren(n, ctx)
	case ast.Masgn:
		w.walkMultipleAssignment(n, ctx)

	case ast.Ivar:
		ctx.RecordInstanceVariableRead(n.NameAt(0), n.Line)
		ctx.RecordDependsOnSelf()
	case ast.Iasgn:
		ctx.RecordInstanceVariableWrite(n.NameAt(0), n.Line, false)
		ctx.RecordDependsOnSelf()
		w.walkChildren(n, ctx)
	case ast.Lasgn:
		ctx.RecordLocalVariable(n.NameAt(0))
		w.walkChildren(n, ctx)
	case ast.Self, ast.Zsuper:
		ctx.RecordDependsOnSelf()
	case ast.Super:
		ctx.RecordDependsOnSelf()
		w.walkChildren(n, ctx)

	default:
		w.walkChildren(n, ctx)
	}
}

// walkChildren recurses into every child node, skipping atoms.
func (w *treeWalker) walkChildren(n *ast.Node, ctx *context.Context) {
	for _, child := range n.Nodes() {
		w.walk(child, ctx)
	}
}

// enter walks body inside scope, then runs the detectors registered for
// the scope's kind against the completed context.
func (w *treeWalker) enter(scope *context.Context, body []ast.Element) {
	for _, e := range body {
		w.walk(e, scope)
	}
	w.checkSmells(scope)
}

func (w *treeWalker) enterMethod(method *context.Context, body []ast.Element) {
	wrapped := len(body) == 1 && (ast.Is(body[0], ast.Scope) || ast.Is(body[0], ast.Block))
	if !wrapped {
		method.CountStatements(ast.CountStatements(body))
	}
	w.enter(method, body)
}

func (w *treeWalker) checkSmells(ctx *context.Context) {
	found := 0
	for _, detector := range w.analyzer.registry[ctx.Kind()] {
		cfg := w.analyzer.config.ForContext(detector.Name(), ctx.Names())
		if !cfg.Enabled {
			continue
		}
		for _, warning := range detector.Examine(ctx, cfg) {
			warning.Source = w.source
			w.report.Add(warning)
			found++
		}
	}
	if found > 0 {
		w.analyzer.logger.Debug("smells found",
			zap.String("source", w.source),
			zap.String("context", ctx.Name()),
			zap.Stringer("kind", ctx.Kind()),
			zap.Int("warnings", found))
	}
}

// walkIter processes the invocation in the enclosing scope, records the
// whole "call { body }" expression there, and walks the block in its own scope.
func (w *treeWalker) walkIter(n *ast.Node, ctx *context.Context) {
	call := n.NodeAt(0)
	w.walk(call, ctx)
	ctx.RecordCall(ast.Format(n), methodName(call), n.Line)
	w.enter(context.NewBlock(ctx, n), n.Children[1:])
}

func (w *treeWalker) recordCall(n *ast.Node, ctx *context.Context) {
	recv := n.Child(0)
	method := n.NameAt(1)
	if ast.IsNilSlot(recv) {
		ctx.RecordDependsOnSelf()
		if len(ast.Arguments(n.Child(2))) == 0 {
			return
		}
	} else {
		w.recordReceiver(recv, method, n.Line, ctx)
	}
	ctx.RecordCall(ast.Format(n), method, n.Line)
}

// recordReceiver binds a call to a local variable or parameter receiver.
// Instance variables, self and globals are not envy candidates.
func (w *treeWalker) recordReceiver(recv ast.Element, method string, line int, ctx *context.Context) {
	n, ok := recv.(*ast.Node)
	if !ok || n == nil || method == "new" {
		return
	}
	switch n.Type {
	case ast.Lvar, ast.Dvar, ast.Lasgn:
		ctx.RecordReference(n.NameAt(0), line)
	}
}

func (w *treeWalker) recordParameters(n *ast.Node, ctx *context.Context) {
	for _, child := range n.Children {
		switch v := child.(type) {
		case ast.Atom:
			ctx.RecordParameter(strings.TrimLeft(v.Value, "*&"))
		case *ast.Node:
			if v.Type == ast.Lasgn || v.Type == ast.DasgnCurr {
				ctx.RecordParameter(v.NameAt(0))
				w.walkChildren(v, ctx)
				continue
			}
			w.walk(v, ctx)
		}
	}
}

// walkCompoundAssignment handles "x op= value". Accumulating into a local
// is a usage of that local.
func (w *treeWalker) walkCompoundAssignment(n *ast.Node, ctx *context.Context) {
	target := n.NodeAt(0)
	if target != nil {
		name := target.NameAt(0)
		switch target.Type {
		case ast.Lvar, ast.Lasgn, ast.Dvar, ast.DasgnCurr:
			ctx.RecordLocalVariable(name)
			ctx.RecordReference(name, n.Line)
		case ast.Ivar, ast.Iasgn:
			ctx.RecordInstanceVariableRead(name, n.Line)
			ctx.RecordInstanceVariableWrite(name, n.Line, false)
			ctx.RecordDependsOnSelf()
		default:
			w.walk(target, ctx)
		}
	}
	for _, value := range n.Children[min(1, len(n.Children)):] {
		w.walk(value, ctx)
	}
}

// walkConditionalAssignment handles "x ||= value" and "x &&= value". The
// guard read is not a read: the assignment is a lazy initialization.
func (w *treeWalker) walkConditionalAssignment(n *ast.Node, ctx *context.Context) {
	asgn := n.NodeAt(1)
	if asgn == nil {
		w.walkChildren(n, ctx)
		return
	}
	switch asgn.Type {
	case ast.Iasgn:
		ctx.RecordInstanceVariableWrite(asgn.NameAt(0), n.Line, true)
		ctx.RecordDependsOnSelf()
	case ast.Lasgn:
		ctx.RecordLocalVariable(asgn.NameAt(0))
	default:
		w.walkChildren(n, ctx)
		return
	}
	w.walkChildren(asgn, ctx)
}

// walkMultipleAssignment walks "a.b, c = x, y". Attribute writers on the
// left are separate targets of one statement, so they are not recorded as
// calls; their receivers and arguments still are walked.
func (w *treeWalker) walkMultipleAssignment(n *ast.Node, ctx *context.Context) {
	if lhs := n.NodeAt(0); lhs != nil {
		for _, target := range lhs.Nodes() {
			if target.Type == ast.Attrasgn {
				w.walkChildren(target, ctx)
				continue
			}
			w.walk(target, ctx)
		}
	}
	for _, value := range n.Children[min(1, len(n.Children)):] {
		w.walk(value, ctx)
	}
}

func methodName(call *ast.Node) string {
	if call == nil {
		return ""
	}
	switch call.Type {
	case ast.Call, ast.Attrasgn:
		return call.NameAt(1)
	case ast.Fcall, ast.Vcall:
		return call.NameAt(0)
	}
	return ""
}

package ast

import (
	"strconv"
	"strings"
)

var binaryOperators = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "%": true, "**": true,
	"==": true, "!=": true, "===": true, "=~": true, "!~": true, "<=>": true,
	"<": true, "<=": true, ">": true, ">=": true,
	"<<": true, ">>": true, "&": true, "|": true, "^": true,
}

// IsBinaryOperator reports whether name is a binary operator method.
func IsBinaryOperator(name string) bool {
	return binaryOperators[name]
}

// Format renders an element as compact Ruby-like source text. The result is
// stable for equal trees and is used as the call signature key.
func Format(e Element) string {
	var b strings.Builder
	format(&b, e)
	return b.String()
}

func format(b *strings.Builder, e Element) {
	switch v := e.(type) {
	case nil:
		b.WriteString("nil")
	case Atom:
		formatAtom(b, v)
	case parenthesized:
		b.WriteString("(")
		formatNode(b, v.Node)
		b.WriteString(")")
	case *Node:
		if v == nil {
			b.WriteString("nil")
			return
		}
		formatNode(b, v)
	}
}

func formatAtom(b *strings.Builder, a Atom) {
	switch a.Kind {
	case AtomNil:
		b.WriteString("nil")
	case AtomString:
		b.WriteString(strconv.Quote(a.Value))
	case AtomRegexp:
		b.WriteString("/" + a.Value + "/")
	default:
		b.WriteString(a.Value)
	}
}

func formatNode(b *strings.Builder, n *Node) {
	switch n.Type {
	case Self, Nil, True, False, Zsuper:
		if n.Type == Zsuper {
			b.WriteString("super")
			return
		}
		b.WriteString(string(n.Type))
	case Ivar, Lvar, Dvar, Gvar, Const, Vcall:
		b.WriteString(n.NameAt(0))
	case Lit:
		if a, ok := n.Child(0).(Atom); ok && a.Kind == AtomSymbol {
			b.WriteString(":" + a.Value)
			return
		}
		format(b, n.Child(0))
	case Str:
		format(b, n.Child(0))
	case Colon2:
		format(b, n.Child(0))
		b.WriteString("::")
		format(b, n.Child(1))
	case Call, Attrasgn:
		formatCall(b, n.Child(0), n.NameAt(1), argsOf(n.Child(2)))
	case Fcall:
		formatCall(b, nil, n.NameAt(0), argsOf(n.Child(1)))
	case Iter:
		formatIter(b, n)
	case OpAsgn1:
		format(b, operand(n.Child(0)))
		b.WriteString("[")
		formatList(b, argsOf(n.Child(1)))
		b.WriteString("] " + n.NameAt(2) + "= ")
		format(b, n.Child(3))
	case OpAsgn:
		b.WriteString(assignTarget(n.Child(0)) + " " + n.NameAt(1) + "= ")
		format(b, n.Child(2))
	case OpAsgnOr, OpAsgnAnd:
		op := "||="
		if n.Type == OpAsgnAnd {
			op = "&&="
		}
		b.WriteString(assignTarget(n.Child(0)) + " " + op + " ")
		if asgn, ok := n.Child(1).(*Node); ok && asgn != nil {
			format(b, asgn.Child(1))
		}
	case Match2:
		format(b, n.Child(0))
		b.WriteString(" =~ ")
		format(b, operand(n.Child(1)))
	case Match3:
		format(b, operand(n.Child(1)))
		b.WriteString(" =~ ")
		format(b, n.Child(0))
	case Iasgn, Lasgn, DasgnCurr:
		b.WriteString(n.NameAt(0))
		if len(n.Children) > 1 {
			b.WriteString(" = ")
			format(b, n.Child(1))
		}
	case Masgn:
		formatList(b, argsOf(n.Child(0)))
		b.WriteString(" = ")
		if rhs, ok := n.Child(1).(*Node); ok && rhs != nil && rhs.Type == Array {
			formatList(b, rhs.Children)
		} else {
			format(b, n.Child(1))
		}
	case Array:
		b.WriteString("[")
		formatList(b, n.Children)
		b.WriteString("]")
	case Arglist, Args:
		formatList(b, n.Children)
	case Block, Scope:
		for i, child := range n.Children {
			if i > 0 {
				b.WriteString("; ")
			}
			format(b, child)
		}
	case If:
		b.WriteString("if ")
		format(b, n.Child(0))
		b.WriteString(" then ")
		format(b, n.Child(1))
		if len(n.Children) > 2 && !isNil(n.Child(2)) && !Is(n.Child(2), Nil) {
			b.WriteString(" else ")
			format(b, n.Child(2))
		}
		b.WriteString(" end")
	case Yield, Super, Return:
		b.WriteString(string(n.Type))
		if len(n.Children) > 0 {
			b.WriteString("(")
			formatList(b, flattenArgs(n.Children))
			b.WriteString(")")
		}
	case Not:
		b.WriteString("!")
		format(b, operand(n.Child(0)))
	case And, Or:
		op := " && "
		if n.Type == Or {
			op = " || "
		}
		format(b, operand(n.Child(0)))
		b.WriteString(op)
		format(b, operand(n.Child(1)))
	default:
		b.WriteString("(" + string(n.Type))
		for _, child := range n.Children {
			b.WriteString(" ")
			format(b, child)
		}
		b.WriteString(")")
	}
}

func formatCall(b *strings.Builder, recv Element, name string, args []Element) {
	hasRecv := !isNil(recv)
	switch {
	case hasRecv && IsBinaryOperator(name) && len(args) == 1:
		format(b, operand(recv))
		b.WriteString(" " + name + " ")
		format(b, operand(args[0]))
	case hasRecv && (name == "-@" || name == "+@" || name == "!" || name == "~") && len(args) == 0:
		b.WriteString(strings.TrimSuffix(name, "@"))
		format(b, operand(recv))
	case hasRecv && name == "[]":
		format(b, operand(recv))
		b.WriteString("[")
		formatList(b, args)
		b.WriteString("]")
	case hasRecv && name == "[]=" && len(args) > 0:
		format(b, recv)
		b.WriteString("[")
		formatList(b, args[:len(args)-1])
		b.WriteString("] = ")
		format(b, args[len(args)-1])
	case hasRecv && isWriter(name) && len(args) == 1:
		format(b, recv)
		b.WriteString("." + strings.TrimSuffix(name, "=") + " = ")
		format(b, args[0])
	default:
		if hasRecv {
			format(b, operand(recv))
			b.WriteString(".")
		}
		b.WriteString(name)
		if len(args) > 0 {
			b.WriteString("(")
			formatList(b, args)
			b.WriteString(")")
		}
	}
}

func formatIter(b *strings.Builder, n *Node) {
	format(b, n.Child(0))
	b.WriteString(" {")
	if params, ok := n.Child(1).(*Node); ok && params != nil {
		b.WriteString(" |" + strings.TrimSpace(paramList(params)) + "|")
	}
	body := n.Children[min(2, len(n.Children)):]
	if len(body) > 0 {
		b.WriteString(" ")
		for i, stmt := range body {
			if i > 0 {
				b.WriteString("; ")
			}
			format(b, stmt)
		}
	}
	b.WriteString(" }")
}

func paramList(params *Node) string {
	switch params.Type {
	case DasgnCurr, Lasgn:
		return params.NameAt(0)
	case Masgn:
		return paramList(params.NodeAt(0))
	}
	names := make([]string, 0, len(params.Children))
	for _, child := range params.Children {
		switch v := child.(type) {
		case Atom:
			names = append(names, v.Value)
		case *Node:
			names = append(names, paramList(v))
		}
	}
	return strings.Join(names, ", ")
}

func formatList(b *strings.Builder, elems []Element) {
	for i, e := range elems {
		if i > 0 {
			b.WriteString(", ")
		}
		format(b, e)
	}
}

// operand wraps operator expressions in parentheses when nested.
func operand(e Element) Element {
	if n, ok := e.(*Node); ok && n != nil && isOperatorCall(n) {
		return parenthesized{n}
	}
	return e
}

type parenthesized struct{ *Node }

func isOperatorCall(n *Node) bool {
	switch n.Type {
	case Call:
		return !isNil(n.Child(0)) && IsBinaryOperator(n.NameAt(1)) && len(argsOf(n.Child(2))) == 1
	case And, Or, Match2, Match3:
		return true
	}
	return false
}

func isWriter(name string) bool {
	if !strings.HasSuffix(name, "=") || len(name) < 2 {
		return false
	}
	switch name {
	case "==", "!=", "<=", ">=", "===", "[]=":
		return false
	}
	return true
}

func isNil(e Element) bool {
	switch v := e.(type) {
	case nil:
		return true
	case Atom:
		return v.Kind == AtomNil
	case *Node:
		return v == nil
	}
	return false
}

// IsNilSlot reports whether e stands for an absent optional child.
func IsNilSlot(e Element) bool {
	return isNil(e)
}

func argsOf(e Element) []Element {
	n, ok := e.(*Node)
	if !ok || n == nil {
		return nil
	}
	if n.Type == Arglist || n.Type == Array {
		return n.Children
	}
	return []Element{n}
}

// Arguments returns the argument elements of an arglist or array slot.
func Arguments(e Element) []Element {
	return argsOf(e)
}

func flattenArgs(children []Element) []Element {
	if len(children) == 1 && (Is(children[0], Arglist) || Is(children[0], Array)) {
		return argsOf(children[0])
	}
	return children
}

func assignTarget(e Element) string {
	n, ok := e.(*Node)
	if !ok || n == nil {
		return Format(e)
	}
	switch n.Type {
	case Lasgn, Iasgn, DasgnCurr, Lvar, Ivar, Dvar, Gvar:
		return n.NameAt(0)
	}
	return Format(n)
}

package ast

import (
	"errors"
	"fmt"
)

// ErrMalformed is wrapped by every MalformedError.
var ErrMalformed = errors.New("malformed syntax tree")

// MalformedError identifies the first structurally invalid node.
type MalformedError struct {
	Type Type
	Line int
	Msg  string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("%v: %s node at line %d: %s", ErrMalformed, e.Type, e.Line, e.Msg)
}

func (e *MalformedError) Unwrap() error { return ErrMalformed }

// Validate checks that every scope-entry node carries its mandatory slots.
// It runs before traversal so that a walk never produces partial output.
func Validate(root *Node) error {
	if root == nil {
		return &MalformedError{Msg: "missing root node"}
	}
	return validate(root)
}

func validate(n *Node) error {
	malformed := func(msg string) error {
		return &MalformedError{Type: n.Type, Line: n.Line, Msg: msg}
	}

	switch n.Type {
	case Module:
		if len(n.Children) < 1 || !isName(n.Child(0)) {
			return malformed("missing module name")
		}
	case Class:
		if len(n.Children) < 2 {
			return malformed("missing class name or superclass slot")
		}
		if !isName(n.Child(0)) {
			return malformed("invalid class name")
		}
	case Defn:
		if len(n.Children) < 2 || n.NameAt(0) == "" {
			return malformed("missing method name or body")
		}
	case Defs:
		if len(n.Children) < 3 || n.NodeAt(0) == nil || n.NameAt(1) == "" {
			return malformed("missing receiver, method name or body")
		}
	case Iter:
		if len(n.Children) < 2 || n.NodeAt(0) == nil {
			return malformed("missing block call or parameter slot")
		}
	case Call, Attrasgn:
		if len(n.Children) < 2 || n.NameAt(1) == "" {
			return malformed("missing method name")
		}
	case Fcall, Vcall:
		if n.NameAt(0) == "" {
			return malformed("missing method name")
		}
	}

	for _, child := range n.Nodes() {
		if err := validate(child); err != nil {
			return err
		}
	}
	return nil
}

func isName(e Element) bool {
	switch v := e.(type) {
	case Atom:
		return v.Kind == AtomSymbol && v.Value != ""
	case *Node:
		return v != nil && (v.Type == Const || v.Type == Colon2)
	}
	return false
}

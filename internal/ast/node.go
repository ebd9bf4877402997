package ast

// Type is the category tag of a syntax node
type Type string

const (
	Module    Type = "module"
	Class     Type = "class"
	Defn      Type = "defn"
	Defs      Type = "defs"
	Iter      Type = "iter"
	If        Type = "if"
	Yield     Type = "yield"
	Call      Type = "call"
	Fcall     Type = "fcall"
	Vcall     Type = "vcall"
	Attrasgn  Type = "attrasgn"
	OpAsgn1   Type = "op_asgn1"
	OpAsgn    Type = "op_asgn"
	OpAsgnOr  Type = "op_asgn_or"
	OpAsgnAnd Type = "op_asgn_and"
	Match2    Type = "match2"
	Match3    Type = "match3"
	Masgn     Type = "masgn"
	Ivar      Type = "ivar"
	Iasgn     Type = "iasgn"
	Lvar      Type = "lvar"
	Lasgn     Type = "lasgn"
	Dvar      Type = "dvar"
	DasgnCurr Type = "dasgn_curr"
	Gvar      Type = "gvar"
	Self      Type = "self"
	Nil       Type = "nil"
	True      Type = "true"
	False     Type = "false"
	Lit       Type = "lit"
	Str       Type = "str"
	Const     Type = "const"
	Colon2    Type = "colon2"
	Array     Type = "array"
	Arglist   Type = "arglist"
	Args      Type = "args"
	Block     Type = "block"
	Scope     Type = "scope"
	Super     Type = "super"
	Zsuper    Type = "zsuper"
	Return    Type = "return"
	Not       Type = "not"
	And       Type = "and"
	Or        Type = "or"
)

// Element is either a *Node or an Atom
type Element interface {
	element()
}

// Node is an immutable syntax fragment produced by the upstream parser.
type Node struct {
	Type     Type
	Line     int // 0 when unknown
	Children []Element
}

func (*Node) element() {}

// AtomKind classifies terminal values.
type AtomKind int

const (
	AtomSymbol AtomKind = iota
	AtomInteger
	AtomFloat
	AtomString
	AtomRegexp
	AtomNil
)

// Atom is a terminal value: identifier, literal or symbol.
type Atom struct {
	Kind  AtomKind
	Value string
}

func (Atom) element() {}

// Sym builds a symbol atom.
func Sym(name string) Atom {
	return Atom{Kind: AtomSymbol, Value: name}
}

// NilAtom is the atom used for an absent slot.
var NilAtom = Atom{Kind: AtomNil}

// New builds a node; convenient for tests and adapters.
func New(typ Type, line int, children ...Element) *Node {
	return &Node{Type: typ, Line: line, Children: children}
}

// Child returns the i-th child, or nil when the slot is absent.
func (n *Node) Child(i int) Element {
	if n == nil || i < 0 || i >= len(n.Children) {
		return nil
	}
	return n.Children[i]
}

// NodeAt returns the i-th child when it is a node.
func (n *Node) NodeAt(i int) *Node {
	if child, ok := n.Child(i).(*Node); ok {
		return child
	}
	return nil
}

// NameAt returns the symbol text of the i-th child when it is a non-nil atom.
func (n *Node) NameAt(i int) string {
	if atom, ok := n.Child(i).(Atom); ok && atom.Kind != AtomNil {
		return atom.Value
	}
	return ""
}

// Is reports whether e is a node of the given type.
func Is(e Element, typ Type) bool {
	n, ok := e.(*Node)
	return ok && n != nil && n.Type == typ
}

// Nodes returns the children of n that are nodes, skipping atoms.
func (n *Node) Nodes() []*Node {
	nodes := make([]*Node, 0, len(n.Children))
	for _, child := range n.Children {
		if sub, ok := child.(*Node); ok && sub != nil {
			nodes = append(nodes, sub)
		}
	}
	return nodes
}

// CountStatements returns the number of statements in a body, ignoring a
// leading parameter-list marker and a trailing nil filler.
func CountStatements(stmts []Element) int {
	count := len(stmts)
	if count > 0 && Is(stmts[0], Args) {
		count--
	}
	if count > 0 && Is(stmts[len(stmts)-1], Nil) {
		count--
	}
	return count
}

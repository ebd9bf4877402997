package ast

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
)

// FileExtension is the extension of serialized syntax trees.
const FileExtension = ".sexp"

// SyntaxError reports a malformed S-expression document.
type SyntaxError struct {
	Filename string
	Line     int
	Column   int
	Msg      string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.Filename, e.Line, e.Column, e.Msg)
}

// ParseFile reads a serialized syntax tree from disk.
func ParseFile(filename string) (*Node, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	return Parse(filename, string(data))
}

// Parse reads every top-level node of src. A single top-level node is
// returned as is; several are wrapped in a block.
func Parse(filename, src string) (*Node, error) {
	r := &reader{filename: filename, src: []rune(src), line: 1, col: 1}
	var roots []Element
	for {
		r.skipSpace()
		if r.eof() {
			break
		}
		if r.peek() != '(' {
			return nil, r.errorf("expected '(' at top level, found %q", r.peek())
		}
		n, err := r.node(0)
		if err != nil {
			return nil, err
		}
		roots = append(roots, n)
	}
	switch len(roots) {
	case 0:
		return New(Block, 0), nil
	case 1:
		return roots[0].(*Node), nil
	default:
		return New(Block, 0, roots...), nil
	}
}

// MustParse is Parse for trusted input; it panics on error.
func MustParse(src string) *Node {
	n, err := Parse("string", src)
	if err != nil {
		panic(err)
	}
	return n
}

type reader struct {
	filename  string
	src       []rune
	pos       int
	line, col int
}

func (r *reader) eof() bool  { return r.pos >= len(r.src) }
func (r *reader) peek() rune { return r.src[r.pos] }

func (r *reader) next() rune {
	ch := r.src[r.pos]
	r.pos++
	if ch == '\n' {
		r.line++
		r.col = 1
	} else {
		r.col++
	}
	return ch
}

func (r *reader) errorf(format string, args ...any) error {
	return &SyntaxError{Filename: r.filename, Line: r.line, Column: r.col, Msg: fmt.Sprintf(format, args...)}
}

func (r *reader) skipSpace() {
	for !r.eof() {
		switch ch := r.peek(); {
		case ch == ';':
			for !r.eof() && r.peek() != '\n' {
				r.next()
			}
		case unicode.IsSpace(ch):
			r.next()
		default:
			return
		}
	}
}

// node reads "(type[:line] children...)". Lines are inherited from the
// nearest annotated ancestor.
func (r *reader) node(inherited int) (*Node, error) {
	r.next() // '('
	r.skipSpace()
	if r.eof() || r.peek() == '(' || r.peek() == ')' {
		return nil, r.errorf("expected node type")
	}
	head := r.word()
	n := &Node{Type: Type(head), Line: inherited}
	if i := strings.LastIndexByte(head, ':'); i > 0 {
		line, err := strconv.Atoi(head[i+1:])
		if err != nil {
			return nil, r.errorf("invalid line annotation %q", head)
		}
		n.Type = Type(head[:i])
		n.Line = line
	}

	for {
		r.skipSpace()
		if r.eof() {
			return nil, r.errorf("unterminated node %q", n.Type)
		}
		switch ch := r.peek(); ch {
		case ')':
			r.next()
			return n, nil
		case '(':
			child, err := r.node(n.Line)
			if err != nil {
				return nil, err
			}
			n.Children = append(n.Children, child)
		case '"':
			s, err := r.quoted()
			if err != nil {
				return nil, err
			}
			n.Children = append(n.Children, Atom{Kind: AtomString, Value: s})
		default:
			atom, err := r.atom()
			if err != nil {
				return nil, err
			}
			n.Children = append(n.Children, atom)
		}
	}
}

func (r *reader) word() string {
	start := r.pos
	for !r.eof() {
		ch := r.peek()
		if unicode.IsSpace(ch) || ch == '(' || ch == ')' || ch == '"' || ch == ';' {
			break
		}
		r.next()
	}
	return string(r.src[start:r.pos])
}

func (r *reader) quoted() (string, error) {
	start := r.pos
	r.next()
	for !r.eof() {
		switch r.next() {
		case '\\':
			if !r.eof() {
				r.next()
			}
		case '"':
			s, err := strconv.Unquote(string(r.src[start:r.pos]))
			if err != nil {
				return "", r.errorf("invalid string literal: %v", err)
			}
			return s, nil
		}
	}
	return "", r.errorf("unterminated string literal")
}

func (r *reader) atom() (Atom, error) {
	if r.peek() == '/' && r.pos+1 < len(r.src) && !unicode.IsSpace(r.src[r.pos+1]) && r.src[r.pos+1] != ')' {
		return r.regexp()
	}
	text := r.word()
	if text == "nil" {
		return NilAtom, nil
	}
	if _, err := strconv.ParseInt(text, 10, 64); err == nil {
		return Atom{Kind: AtomInteger, Value: text}, nil
	}
	if strings.ContainsAny(text, "0123456789") {
		if _, err := strconv.ParseFloat(text, 64); err == nil {
			return Atom{Kind: AtomFloat, Value: text}, nil
		}
	}
	return Sym(text), nil
}

func (r *reader) regexp() (Atom, error) {
	r.next() // opening '/'
	var b strings.Builder
	for !r.eof() {
		ch := r.next()
		switch ch {
		case '\\':
			b.WriteRune(ch)
			if !r.eof() {
				b.WriteRune(r.next())
			}
		case '/':
			return Atom{Kind: AtomRegexp, Value: b.String()}, nil
		default:
			b.WriteRune(ch)
		}
	}
	return Atom{}, r.errorf("unterminated regexp literal")
}

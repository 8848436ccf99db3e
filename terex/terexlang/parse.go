package terexlang

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/npillmayer/xterex"
)

// --- Grammar ---------------------------------------------------------------

// Program    ::=  Expr*
// Expr       ::=  '\'' Expr           // quoted data
// Expr       ::=  ident               // a, set!, <=
// Expr       ::=  string              // "abc"
// Expr       ::=  number              // 123.45
// Expr       ::=  '(' Expr* ')'
//
// The identifiers nil and t denote the constants nil and true.
// Comments starting with ';' will be filtered by the scanner.

// NodeKind is the category of a node of an s-expression tree.
type NodeKind int8

// Kinds of nodes
const (
	NilNode NodeKind = iota
	TrueNode
	NumNode
	StringNode
	SymbolNode
	ListNode
	QuoteNode
)

func (k NodeKind) String() string {
	switch k {
	case NilNode:
		return "nil"
	case TrueNode:
		return "t"
	case NumNode:
		return "number"
	case StringNode:
		return "string"
	case SymbolNode:
		return "symbol"
	case ListNode:
		return "list"
	case QuoteNode:
		return "quote"
	}
	return "?"
}

// Node is a node of an s-expression tree, as produced by Parse.
type Node struct {
	Kind  NodeKind
	Num   float64     // value of a number
	Text  string      // contents of a string or name of a symbol
	Items []*Node     // elements of a list; the quoted expression for quotes
	Line  int         // 1-based source line
	Span  xterex.Span // byte offsets in the source text
}

// Head returns the name of the leading symbol of a list node, or "".
func (n *Node) Head() string {
	if n == nil || n.Kind != ListNode || len(n.Items) == 0 || n.Items[0].Kind != SymbolNode {
		return ""
	}
	return n.Items[0].Text
}

// String renders a node in TeREx syntax.
func (n *Node) String() string {
	if n == nil {
		return "nil"
	}
	switch n.Kind {
	case NilNode:
		return "nil"
	case TrueNode:
		return "t"
	case NumNode:
		return strconv.FormatFloat(n.Num, 'g', -1, 64)
	case StringNode:
		return strconv.Quote(n.Text)
	case SymbolNode:
		return n.Text
	case QuoteNode:
		return "'" + n.Items[0].String()
	}
	var b strings.Builder
	b.WriteByte('(')
	for i, item := range n.Items {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(item.String())
	}
	b.WriteByte(')')
	return b.String()
}

// --- Errors ----------------------------------------------------------------

// Error identifiers for syntax errors.
const (
	ErrUnrecognizedInput = "UnrecognizedInput"
	ErrUnexpectedEnd     = "UnexpectedEnd"
	ErrUnexpectedClose   = "UnexpectedClose"
)

// SyntaxError is returned by Parse for source text which is not a sequence
// of well-formed s-expressions.
type SyntaxError struct {
	ID      string
	Message string
	Line    int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: %s (line %d)", e.ID, e.Message, e.Line)
}

// --- Reader ----------------------------------------------------------------

type reader struct {
	tokens []LispToken
	pos    int
}

// Parse parses an input string, given in TeREx language format. It returns the
// top-level expressions, or a *SyntaxError in case of failure. Empty input
// (or input consisting of comments only) yields no expressions and no error.
//
func Parse(input string) ([]*Node, error) {
	tokens, err := tokenize(input)
	if err != nil {
		return nil, err
	}
	r := &reader{tokens: tokens}
	var exprs []*Node
	for r.peek().TokType() != EOF {
		node, err := r.read()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, node)
	}
	tracer().Debugf("parsed %d top-level expressions", len(exprs))
	return exprs, nil
}

func tokenize(input string) ([]LispToken, error) {
	lexer, err := SharedLexer()
	if err != nil {
		return nil, err
	}
	scan, err := lexer.Scanner(input)
	if err != nil {
		return nil, err
	}
	var scanErr error
	scan.SetErrorHandler(func(e error) {
		if scanErr == nil {
			scanErr = e
		}
	})
	var tokens []LispToken
	for {
		token := scan.NextToken()
		tokens = append(tokens, token)
		if token.TokType() == EOF {
			break
		}
	}
	if scanErr != nil {
		line := 0
		if se, ok := scanErr.(*ScanError); ok {
			line = se.Line
		}
		return tokens, &SyntaxError{ID: ErrUnrecognizedInput, Message: scanErr.Error(), Line: line}
	}
	return tokens, nil
}

func (r *reader) peek() LispToken {
	return r.tokens[r.pos]
}

func (r *reader) next() LispToken {
	t := r.tokens[r.pos]
	if t.TokType() != EOF {
		r.pos++
	}
	return t
}

func (r *reader) lastLine() int {
	for i := r.pos; i >= 0; i-- {
		if i < len(r.tokens) && r.tokens[i].Line() > 0 {
			return r.tokens[i].Line()
		}
	}
	return 1
}

func (r *reader) read() (*Node, error) {
	tok := r.next()
	node := &Node{Line: tok.Line(), Span: tok.Span()}
	switch tok.TokType() {
	case EOF:
		return nil, &SyntaxError{ID: ErrUnexpectedEnd, Message: "unexpected end of input", Line: r.lastLine()}
	case RParen:
		return nil, &SyntaxError{ID: ErrUnexpectedClose, Message: "unexpected ')'", Line: tok.Line()}
	case Quote:
		quoted, err := r.read()
		if err != nil {
			return nil, err
		}
		node.Kind = QuoteNode
		node.Items = []*Node{quoted}
		node.Span = node.Span.Extend(quoted.Span)
	case LParen:
		node.Kind = ListNode
		for r.peek().TokType() != RParen {
			if r.peek().TokType() == EOF {
				return nil, &SyntaxError{ID: ErrUnexpectedEnd, Message: "missing ')'", Line: r.lastLine()}
			}
			item, err := r.read()
			if err != nil {
				return nil, err
			}
			node.Items = append(node.Items, item)
		}
		closing := r.next()
		node.Span = node.Span.Extend(closing.Span())
	case Num:
		if next := r.peek(); next.TokType() == Ident && next.Span().From() == tok.Span().To() {
			return nil, &SyntaxError{ID: ErrUnrecognizedInput,
				Message: fmt.Sprintf("malformed number %q", tok.Lexeme()+next.Lexeme()), Line: tok.Line()}
		}
		f, err := strconv.ParseFloat(tok.Lexeme(), 64)
		if err != nil {
			return nil, &SyntaxError{ID: ErrUnrecognizedInput, Message: err.Error(), Line: tok.Line()}
		}
		node.Kind = NumNode
		node.Num = f
	case String:
		node.Kind = StringNode
		node.Text = tok.Value().(string)
	case Ident:
		switch tok.Lexeme() {
		case "nil":
			node.Kind = NilNode
		case "t":
			node.Kind = TrueNode
		default:
			node.Kind = SymbolNode
			node.Text = tok.Lexeme()
		}
	default:
		return nil, &SyntaxError{ID: ErrUnrecognizedInput,
			Message: fmt.Sprintf("unexpected token %q", tok.Lexeme()), Line: tok.Line()}
	}
	return node, nil
}

// --- Completeness ----------------------------------------------------------

// Completeness classifies interactive input.
type Completeness int8

// Completeness states, as used by the is_complete request of the messaging protocol.
const (
	Complete Completeness = iota
	Incomplete
	Invalid
)

func (c Completeness) String() string {
	switch c {
	case Complete:
		return "complete"
	case Incomplete:
		return "incomplete"
	}
	return "invalid"
}

// CheckComplete tells whether input could be run as is. Input with unclosed lists
// or an unterminated string is incomplete, a stray ')' or unrecognized input
// makes it invalid.
func CheckComplete(input string) Completeness {
	lexer, err := SharedLexer()
	if err != nil {
		return Invalid
	}
	scan, err := lexer.Scanner(input)
	if err != nil {
		return Invalid
	}
	state := Complete
	scan.SetErrorHandler(func(e error) {
		if se, ok := e.(*ScanError); ok && se.Open && state == Complete {
			state = Incomplete
			return
		}
		state = Invalid
	})
	depth := 0
	for {
		token := scan.NextToken()
		if token.TokType() == EOF || state == Invalid {
			break
		}
		switch token.TokType() {
		case LParen:
			depth++
		case RParen:
			depth--
			if depth < 0 {
				return Invalid
			}
		}
	}
	if state != Complete {
		return state
	}
	if depth > 0 {
		return Incomplete
	}
	return Complete
}

package terexlang

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"fmt"
	"strings"
	"sync"

	"github.com/npillmayer/xterex"
	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

// Token categories produced by the TeREx scanner. Literal one-char tokens use
// their rune value as category.
const (
	EOF    xterex.TokType = -1
	Ident  xterex.TokType = -2
	Num    xterex.TokType = -3
	String xterex.TokType = -4
	LParen xterex.TokType = '('
	RParen xterex.TokType = ')'
	Quote  xterex.TokType = '\''
)

// The tokens representing literal one-char lexemes
var literals = []string{"'", "(", ")"}

// Operators are scanned as identifiers
var ops = []string{"<=", ">=", "!=", "+", "-", "*", "/", "%", "=", "<", ">"}

// tokenIds will be set in initTokens()
var tokenIds map[string]int // A map from the token names to their token types

var initOnce sync.Once // monitors one-time initialization
func initTokens() {
	initOnce.Do(func() {
		tokenIds = make(map[string]int)
		tokenIds["ID"] = int(Ident)
		tokenIds["NUM"] = int(Num)
		tokenIds["STRING"] = int(String)
		for _, lit := range literals {
			tokenIds[lit] = int(lit[0])
		}
		for _, op := range ops {
			tokenIds[op] = int(Ident)
		}
	})
}

// Lexer creates a new lexmachine lexer for TeREx. Compiling the DFA may fail,
// in which case no lexer is returned.
func Lexer() (*LMAdapter, error) {
	initTokens()
	init := func(lexer *lexmachine.Lexer) {
		lexer.Add([]byte(`;[^\n]*\n?`), skip) // skip comments
		lexer.Add([]byte(`\"([^"\\]|\\[^\n])*\"`), makeToken("STRING"))
		lexer.Add([]byte(`([a-z]|[A-Z]|_)([a-z]|[A-Z]|[0-9]|_|\-)*(!|\?)?`), makeToken("ID"))
		lexer.Add([]byte(`\-?[0-9]+(\.[0-9]+)?((e|E)(\-|\+)?[0-9]+)?`), makeToken("NUM"))
		lexer.Add([]byte(`( |\,|\t|\n|\r)+`), skip)
	}
	return newLMAdapter(init, literals, ops, tokenIds)
}

func makeToken(s string) lexmachine.Action {
	id, ok := tokenIds[s]
	if !ok {
		panic(fmt.Errorf("unknown token: %s", s))
	}
	return tokenAction(id)
}

// --- Tokens ----------------------------------------------------------------

// LispToken is the token type of the TeREx scanner.
type LispToken struct {
	toktype xterex.TokType
	lexeme  string
	span    xterex.Span
	line    int
}

var _ xterex.Token = LispToken{}

func (t LispToken) TokType() xterex.TokType {
	return t.toktype
}

func (t LispToken) Lexeme() string {
	return t.lexeme
}

// Value returns the lexeme without quotes for strings, and the lexeme otherwise.
func (t LispToken) Value() interface{} {
	if t.toktype == String && len(t.lexeme) >= 2 {
		return unescape(t.lexeme[1 : len(t.lexeme)-1])
	}
	return t.lexeme
}

func (t LispToken) Span() xterex.Span {
	return t.span
}

// Line is the 1-based source line the token starts on.
func (t LispToken) Line() int {
	return t.line
}

var escapes = strings.NewReplacer(`\n`, "\n", `\t`, "\t", `\r`, "\r", `\"`, `"`, `\\`, `\`)

func unescape(s string) string {
	return escapes.Replace(s)
}

// --- lexmachine adapter ----------------------------------------------------

// LMAdapter is a lexmachine adapter to use lexmachine as a scanner.
type LMAdapter struct {
	Lexer *lexmachine.Lexer
}

// newLMAdapter creates a new lexmachine adapter. It receives a list of
// literals ('(', ')', …), a list of operators ("+", "<=", …) and a
// map for translating token strings to their values.
//
// newLMAdapter will return an error if compiling the DFA failed.
func newLMAdapter(init func(*lexmachine.Lexer), literals []string, ops []string, tokenIds map[string]int) (*LMAdapter, error) {
	adapter := &LMAdapter{}
	adapter.Lexer = lexmachine.NewLexer()
	init(adapter.Lexer)
	for _, lit := range append(append([]string{}, literals...), ops...) {
		r := "\\" + strings.Join(strings.Split(lit, ""), "\\")
		adapter.Lexer.Add([]byte(r), tokenAction(tokenIds[lit]))
	}
	if err := adapter.Lexer.Compile(); err != nil {
		tracer().Errorf("Error compiling DFA: %v", err)
		return nil, err
	}
	return adapter, nil
}

// Scanner creates a scanner for a given input.
func (lm *LMAdapter) Scanner(input string) (*LMScanner, error) {
	s, err := lm.Lexer.Scanner([]byte(input))
	if err != nil {
		return &LMScanner{}, err
	}
	return &LMScanner{scanner: s, input: input, Error: logError}, nil
}

// LMScanner is a scanner type for lexmachine scanners.
type LMScanner struct {
	scanner *lexmachine.Scanner
	input   string
	Error   func(error)
}

// ScanError is reported to the error handler of a scanner for input no
// token pattern matches.
type ScanError struct {
	Offset int  // byte offset where unmatched input starts
	Line   int  // line where unmatched input starts
	Open   bool // unmatched input starts a string which is never closed
}

func (e *ScanError) Error() string {
	if e.Open {
		return fmt.Sprintf("unterminated string starting at line %d", e.Line)
	}
	return fmt.Sprintf("unrecognized input at line %d", e.Line)
}

// Default error reporting function for scanners
func logError(e error) {
	tracer().Errorf("scanner error: " + e.Error())
}

// SetErrorHandler sets an error handler for the scanner.
func (lms *LMScanner) SetErrorHandler(h func(error)) {
	if h == nil {
		lms.Error = logError
		return
	}
	lms.Error = h
}

// NextToken returns the next token of the input, EOF at the end of input.
// Unmatched input is reported to the error handler and skipped.
func (lms *LMScanner) NextToken() LispToken {
	tok, err, eof := lms.scanner.Next()
	for err != nil {
		if ui, is := err.(*machines.UnconsumedInput); is {
			serr := &ScanError{Offset: ui.StartTC, Line: ui.StartLine}
			if ui.StartTC < len(lms.input) && lms.input[ui.StartTC] == '"' {
				serr.Open = true
			}
			lms.Error(serr)
			lms.scanner.TC = ui.FailTC
		} else {
			lms.Error(err)
		}
		tok, err, eof = lms.scanner.Next()
	}
	if eof {
		end := uint64(len(lms.input))
		return LispToken{toktype: EOF, span: xterex.Span{end, end}}
	}
	token := tok.(*lexmachine.Token)
	tracer().Debugf("token %q (%d)", string(token.Lexeme), token.Type)
	return LispToken{
		toktype: xterex.TokType(token.Type),
		lexeme:  string(token.Lexeme),
		span:    xterex.Span{uint64(token.TC), uint64(token.TC + len(token.Lexeme))},
		line:    token.StartLine,
	}
}

// ---------------------------------------------------------------------------

// skip is a pre-defined action which ignores the scanned match.
func skip(*lexmachine.Scanner, *machines.Match) (interface{}, error) {
	return nil, nil
}

// tokenAction is a pre-defined action which wraps a scanned match into a token.
func tokenAction(id int) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(id, string(m.Bytes), m), nil
	}
}

// --- Shared lexer ----------------------------------------------------------

var sharedLexer *LMAdapter
var sharedLexerErr error
var lexerOnce sync.Once

// SharedLexer returns a process-wide lexer, building its DFA on first use.
// The lexer is read-only after construction and may be shared by any number
// of scanners.
func SharedLexer() (*LMAdapter, error) {
	lexerOnce.Do(func() {
		sharedLexer, sharedLexerErr = Lexer()
	})
	return sharedLexer, sharedLexerErr
}

package terexlang

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestScanner(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "xterex.engine")
	defer teardown()
	//
	lex, err := Lexer()
	if err != nil {
		t.Fatal(err)
	}
	input := "(print 'a \"world\" -1.5) ; comment\n(<= x 2)"
	scan, err := lex.Scanner(input)
	if err != nil {
		t.Fatal(err)
	}
	scan.SetErrorHandler(func(e error) {
		t.Error(e)
	})
	var lexemes []string
	for {
		token := scan.NextToken()
		if token.TokType() == EOF {
			break
		}
		lexemes = append(lexemes, token.Lexeme())
	}
	expected := []string{"(", "print", "'", "a", `"world"`, "-1.5", ")", "(", "<=", "x", "2", ")"}
	if diff := cmp.Diff(expected, lexemes); diff != "" {
		t.Errorf("token mismatch (-want +got):\n%s", diff)
	}
}

func TestTokenLines(t *testing.T) {
	lex, _ := SharedLexer()
	scan, _ := lex.Scanner("a\n\nb")
	if line := scan.NextToken().Line(); line != 1 {
		t.Errorf("expected a on line 1, is %d", line)
	}
	if line := scan.NextToken().Line(); line != 3 {
		t.Errorf("expected b on line 3, is %d", line)
	}
}

func TestParse(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "xterex.engine")
	defer teardown()
	//
	exprs, err := Parse(`(def x 5) 'sym (print "a\tb" nil t) ()`)
	if err != nil {
		t.Fatal(err)
	}
	var rendered []string
	for _, e := range exprs {
		rendered = append(rendered, e.String())
	}
	expected := []string{`(def x 5)`, `'sym`, `(print "a\tb" nil t)`, `()`}
	if diff := cmp.Diff(expected, rendered); diff != "" {
		t.Errorf("AST mismatch (-want +got):\n%s", diff)
	}
	if exprs[0].Head() != "def" {
		t.Errorf("expected head of first expression to be def, is %q", exprs[0].Head())
	}
}

func TestStringsAndNumbers(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "xterex.engine")
	defer teardown()
	//
	exprs, err := Parse(`"say \"hi\"" "a\\n" 1.5e3 -2E-2 7`)
	if err != nil {
		t.Fatal(err)
	}
	if exprs[0].Text != `say "hi"` || exprs[1].Text != `a\n` {
		t.Errorf("unexpected string values %q, %q", exprs[0].Text, exprs[1].Text)
	}
	var nums []float64
	for _, e := range exprs[2:] {
		nums = append(nums, e.Num)
	}
	if diff := cmp.Diff([]float64{1500, -0.02, 7}, nums); diff != "" {
		t.Errorf("numbers mismatch (-want +got):\n%s", diff)
	}
}

func TestParseEmpty(t *testing.T) {
	for _, input := range []string{"", "   ", "; only a comment"} {
		exprs, err := Parse(input)
		if err != nil || len(exprs) != 0 {
			t.Errorf("expected %q to parse to nothing, got %v, %v", input, exprs, err)
		}
	}
}

func TestParseErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "xterex.engine")
	defer teardown()
	//
	cases := []struct {
		input string
		id    string
		line  int
	}{
		{"(print 1", ErrUnexpectedEnd, 1},
		{"(a)\n(b))", ErrUnexpectedClose, 2},
		{"(print 1 # 2)", ErrUnrecognizedInput, 1},
		{"'", ErrUnexpectedEnd, 1},
		{"(print\n 1.5x3)", ErrUnrecognizedInput, 2},
		{"(print 2e)", ErrUnrecognizedInput, 1},
	}
	for _, c := range cases {
		_, err := Parse(c.input)
		var se *SyntaxError
		if !errors.As(err, &se) {
			t.Errorf("%q: expected syntax error, got %v", c.input, err)
			continue
		}
		if se.ID != c.id || se.Line != c.line {
			t.Errorf("%q: expected %s at line %d, got %s at line %d", c.input, c.id, c.line, se.ID, se.Line)
		}
	}
}

func TestCheckComplete(t *testing.T) {
	cases := map[string]Completeness{
		"(print 1)":           Complete,
		"":                    Complete,
		"(defn f (x)\n  (* x": Incomplete,
		`(print "abc`:         Incomplete,
		"(print 1))":          Invalid,
		"(print #)":           Invalid,
	}
	for input, want := range cases {
		if got := CheckComplete(input); got != want {
			t.Errorf("%q: expected %s, got %s", input, want, got)
		}
	}
}

func TestKeywords(t *testing.T) {
	if !IsSpecialForm("defn") {
		t.Errorf("expected defn to be a special form")
	}
	if IsSpecialForm("print") {
		t.Errorf("expected print not to be a special form")
	}
	if kw, ok := LookupKeyword("print"); !ok || kw.Doc == "" {
		t.Errorf("expected print to be documented")
	}
}

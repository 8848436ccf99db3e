package terex

import (
	"errors"
	"fmt"

	"github.com/npillmayer/xterex/runtime"
	"github.com/npillmayer/xterex/terex/terexlang"
)

// Compiler compiles TeREx source text into the program it is bound to.
type Compiler struct {
	program   *Program
	warn      WarningFn
	scopes    *runtime.ScopeTree
	base      int         // size of the program's constant pool when a compile starts
	constants []Value     // constants of the unit under construction
	functions []*Function // functions of the unit under construction
	released  bool
}

// NewCompiler creates a compiler bound to program p. It fails if the scanner
// of the language cannot be built.
func NewCompiler(p *Program) (*Compiler, error) {
	if p == nil {
		return nil, errors.New("compiler needs a program")
	}
	if _, err := terexlang.SharedLexer(); err != nil {
		return nil, fmt.Errorf("cannot build TeREx scanner: %w", err)
	}
	scopes := new(runtime.ScopeTree)
	scopes.PushNewScope("globals")
	return &Compiler{
		program: p,
		scopes:  scopes,
		warn: func(w *Error) {
			tracer().Infof("compiler warning %s", w)
		},
	}, nil
}

// SetWarningFn installs the hook receiving compile-time warnings.
func (c *Compiler) SetWarningFn(fn WarningFn) {
	if fn != nil {
		c.warn = fn
	}
}

// Release unbinds the compiler from its program.
func (c *Compiler) Release() {
	c.program = nil
	c.released = true
}

// Compile compiles source into the compiler's program. On success the program
// holds the new unit as its entry. On failure the returned error is a *Error
// of category CompileError and the program is left untouched.
func (c *Compiler) Compile(source string) error {
	if c.released || c.program.Released() {
		return ErrReleased
	}
	exprs, err := terexlang.Parse(source)
	if err != nil {
		var se *terexlang.SyntaxError
		if errors.As(err, &se) {
			return compileError(se.ID, se.Line, "%s", se.Message)
		}
		return compileError(terexlang.ErrUnrecognizedInput, 0, "%s", err.Error())
	}
	c.begin()
	main := &Function{Name: "global", Line: 1, unit: c.program.units + 1}
	fc := &funcCompiler{c: c, fn: main, scope: c.scopes.Globals()}
	if len(exprs) == 0 {
		fc.emit(OpNil, 0, 1)
	}
	for i, expr := range exprs {
		if err := fc.expr(expr); err != nil {
			c.abort()
			return err
		}
		if i < len(exprs)-1 {
			fc.emit(OpPop, 0, expr.Line)
		}
	}
	fc.emit(OpReturn, 0, fc.lastLine())
	c.commit(main)
	return nil
}

func (c *Compiler) begin() {
	c.base = len(c.program.constants)
	c.constants = c.constants[:0]
	c.functions = c.functions[:0]
}

func (c *Compiler) abort() {
	for c.scopes.Current() != c.scopes.Globals() {
		c.scopes.PopScope()
	}
	c.constants = c.constants[:0]
	c.functions = c.functions[:0]
	tracer().Debugf("compile aborted, program unchanged")
}

func (c *Compiler) commit(main *Function) {
	p := c.program
	p.constants = append(p.constants, c.constants...)
	p.functions = append(p.functions, c.functions...)
	p.functions = append(p.functions, main)
	p.entry = main
	p.units++
	tracer().Debugf("committed unit #%d: %d constants, %d functions", p.units,
		len(c.constants), len(c.functions)+1)
	c.constants = c.constants[:0]
	c.functions = c.functions[:0]
}

func (c *Compiler) constant(v Value) int {
	c.constants = append(c.constants, v)
	return c.base + len(c.constants) - 1
}

// --- Function compiler -----------------------------------------------------

type funcCompiler struct {
	c     *Compiler
	fn    *Function
	scope *runtime.Scope
}

func (fc *funcCompiler) emit(op Opcode, arg int, line int) int {
	fc.fn.Code = append(fc.fn.Code, Instr{Op: op, Arg: arg, Line: line})
	return len(fc.fn.Code) - 1
}

func (fc *funcCompiler) patch(addr int) {
	fc.fn.Code[addr].Arg = len(fc.fn.Code)
}

func (fc *funcCompiler) lastLine() int {
	if n := len(fc.fn.Code); n > 0 {
		return fc.fn.Code[n-1].Line
	}
	return fc.fn.Line
}

func (fc *funcCompiler) expr(n *terexlang.Node) *Error {
	switch n.Kind {
	case terexlang.NilNode:
		fc.emit(OpNil, 0, n.Line)
	case terexlang.TrueNode:
		fc.emit(OpTrue, 0, n.Line)
	case terexlang.NumNode:
		fc.emit(OpConst, fc.c.constant(n.Num), n.Line)
	case terexlang.StringNode:
		fc.emit(OpConst, fc.c.constant(n.Text), n.Line)
	case terexlang.QuoteNode:
		fc.emit(OpConst, fc.c.constant(quote(n.Items[0])), n.Line)
	case terexlang.SymbolNode:
		return fc.variable(n)
	case terexlang.ListNode:
		return fc.list(n)
	}
	return nil
}

func (fc *funcCompiler) sequence(exprs []*terexlang.Node, line int) *Error {
	if len(exprs) == 0 {
		fc.emit(OpNil, 0, line)
		return nil
	}
	for i, e := range exprs {
		if err := fc.expr(e); err != nil {
			return err
		}
		if i < len(exprs)-1 {
			fc.emit(OpPop, 0, e.Line)
		}
	}
	return nil
}

// resolve finds a name. It returns the parameter index for parameters of the
// function under construction, -1 for globals.
func (fc *funcCompiler) resolve(n *terexlang.Node) (int, *Error) {
	tag, sc := fc.scope.ResolveTag(n.Text)
	if tag == nil {
		return -1, nil
	}
	if sc != fc.scope {
		return 0, compileError(ErrCaptureUnsupported, n.Line,
			"'%s' is a parameter of an enclosing function", n.Text)
	}
	return tag.Value.(int), nil
}

func (fc *funcCompiler) variable(n *terexlang.Node) *Error {
	if terexlang.IsSpecialForm(n.Text) {
		return compileError(ErrBadForm, n.Line, "special form '%s' used as a value", n.Text)
	}
	idx, err := fc.resolve(n)
	if err != nil {
		return err
	}
	if idx >= 0 {
		fc.emit(OpGetLocal, idx, n.Line)
		return nil
	}
	fc.emit(OpGetGlobal, fc.c.constant(n.Text), n.Line)
	return nil
}

func (fc *funcCompiler) list(n *terexlang.Node) *Error {
	if len(n.Items) == 0 {
		fc.emit(OpNil, 0, n.Line)
		return nil
	}
	switch n.Head() {
	case "def":
		return fc.def(n)
	case "set!":
		return fc.set(n)
	case "defn":
		return fc.defn(n)
	case "lambda":
		return fc.lambda(n)
	case "if":
		return fc.ifForm(n)
	case "do":
		return fc.sequence(n.Items[1:], n.Line)
	case "while":
		return fc.while(n)
	case "quote":
		if len(n.Items) != 2 {
			return compileError(ErrBadForm, n.Line, "quote expects exactly one argument")
		}
		fc.emit(OpConst, fc.c.constant(quote(n.Items[1])), n.Line)
		return nil
	}
	if err := fc.expr(n.Items[0]); err != nil {
		return err
	}
	for _, arg := range n.Items[1:] {
		if err := fc.expr(arg); err != nil {
			return err
		}
	}
	fc.emit(OpCall, len(n.Items)-1, n.Line)
	return nil
}

func (fc *funcCompiler) bindable(form string, n *terexlang.Node) *Error {
	if n.Kind != terexlang.SymbolNode {
		return compileError(ErrBadForm, n.Line, "%s expects a name, got %s", form, n.String())
	}
	if terexlang.IsSpecialForm(n.Text) {
		return compileError(ErrReservedName, n.Line, "cannot bind special form name '%s'", n.Text)
	}
	return nil
}

func (fc *funcCompiler) defineGlobal(name string, line int) {
	if _, isBuiltin := builtins[name]; isBuiltin {
		fc.c.warn(&Error{ID: WarnShadowsBuiltin, Line: line, Category: Warning,
			Msg: fmt.Sprintf("global '%s' shadows a builtin", name)})
	}
	fc.emit(OpDefGlobal, fc.c.constant(name), line)
}

func (fc *funcCompiler) def(n *terexlang.Node) *Error {
	if len(n.Items) != 3 {
		return compileError(ErrBadForm, n.Line, "def expects a name and a value")
	}
	if err := fc.bindable("def", n.Items[1]); err != nil {
		return err
	}
	if err := fc.expr(n.Items[2]); err != nil {
		return err
	}
	fc.defineGlobal(n.Items[1].Text, n.Line)
	return nil
}

func (fc *funcCompiler) set(n *terexlang.Node) *Error {
	if len(n.Items) != 3 {
		return compileError(ErrBadForm, n.Line, "set! expects a name and a value")
	}
	if err := fc.bindable("set!", n.Items[1]); err != nil {
		return err
	}
	idx, err := fc.resolve(n.Items[1])
	if err != nil {
		return err
	}
	if err := fc.expr(n.Items[2]); err != nil {
		return err
	}
	if idx >= 0 {
		fc.emit(OpSetLocal, idx, n.Line)
	} else {
		fc.emit(OpSetGlobal, fc.c.constant(n.Items[1].Text), n.Line)
	}
	return nil
}

func (fc *funcCompiler) defn(n *terexlang.Node) *Error {
	if len(n.Items) < 4 {
		return compileError(ErrBadForm, n.Line, "defn expects a name, parameters and a body")
	}
	if err := fc.bindable("defn", n.Items[1]); err != nil {
		return err
	}
	name := n.Items[1].Text
	fn, err := fc.function(name, n.Items[2], n.Items[3:], n.Line)
	if err != nil {
		return err
	}
	fc.emit(OpConst, fc.c.constant(fn), n.Line)
	fc.defineGlobal(name, n.Line)
	return nil
}

func (fc *funcCompiler) lambda(n *terexlang.Node) *Error {
	if len(n.Items) < 3 {
		return compileError(ErrBadForm, n.Line, "lambda expects parameters and a body")
	}
	fn, err := fc.function("lambda", n.Items[1], n.Items[2:], n.Line)
	if err != nil {
		return err
	}
	fc.emit(OpConst, fc.c.constant(fn), n.Line)
	return nil
}

func (fc *funcCompiler) function(name string, params *terexlang.Node, body []*terexlang.Node,
	line int) (*Function, *Error) {
	//
	if params.Kind != terexlang.ListNode && params.Kind != terexlang.NilNode {
		return nil, compileError(ErrBadForm, params.Line, "%s expects a parameter list", name)
	}
	fn := &Function{Name: name, Line: line, unit: fc.c.program.units + 1}
	scope := fc.c.scopes.PushNewScope(name)
	for i, p := range params.Items {
		if err := fc.bindable("parameter list", p); err != nil {
			return nil, err
		}
		tag, _ := scope.DefineTag(p.Text)
		tag.Value = i
		fn.Params = append(fn.Params, p.Text)
	}
	inner := &funcCompiler{c: fc.c, fn: fn, scope: scope}
	if err := inner.sequence(body, line); err != nil {
		return nil, err
	}
	inner.emit(OpReturn, 0, inner.lastLine())
	fc.c.scopes.PopScope()
	fc.c.functions = append(fc.c.functions, fn)
	return fn, nil
}

func (fc *funcCompiler) ifForm(n *terexlang.Node) *Error {
	if len(n.Items) != 3 && len(n.Items) != 4 {
		return compileError(ErrBadForm, n.Line, "if expects a condition, a then-branch and an optional else-branch")
	}
	if err := fc.expr(n.Items[1]); err != nil {
		return err
	}
	jelse := fc.emit(OpJumpIfFalse, 0, n.Line)
	if err := fc.expr(n.Items[2]); err != nil {
		return err
	}
	jend := fc.emit(OpJump, 0, n.Line)
	fc.patch(jelse)
	if len(n.Items) == 4 {
		if err := fc.expr(n.Items[3]); err != nil {
			return err
		}
	} else {
		fc.emit(OpNil, 0, n.Line)
	}
	fc.patch(jend)
	return nil
}

func (fc *funcCompiler) while(n *terexlang.Node) *Error {
	if len(n.Items) < 2 {
		return compileError(ErrBadForm, n.Line, "while expects a condition")
	}
	start := len(fc.fn.Code)
	if err := fc.expr(n.Items[1]); err != nil {
		return err
	}
	jend := fc.emit(OpJumpIfFalse, 0, n.Line)
	for _, e := range n.Items[2:] {
		if err := fc.expr(e); err != nil {
			return err
		}
		fc.emit(OpPop, 0, e.Line)
	}
	fc.emit(OpJump, start, n.Line)
	fc.patch(jend)
	fc.emit(OpNil, 0, n.Line)
	return nil
}

// quote converts an s-expression into data.
func quote(n *terexlang.Node) Value {
	switch n.Kind {
	case terexlang.NumNode:
		return n.Num
	case terexlang.StringNode:
		return n.Text
	case terexlang.TrueNode:
		return true
	case terexlang.SymbolNode:
		return Symbol(n.Text)
	case terexlang.QuoteNode:
		return List{Symbol("quote"), quote(n.Items[0])}
	case terexlang.ListNode:
		if len(n.Items) == 0 {
			return nil
		}
		l := make(List, len(n.Items))
		for i, item := range n.Items {
			l[i] = quote(item)
		}
		return l
	}
	return nil
}

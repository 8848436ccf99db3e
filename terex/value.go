package terex

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is a TeREx value. The dynamic types used are
//
//    nil          nil
//    bool         t (true only; comparisons yield t or nil)
//    float64      numbers
//    string       strings
//    Symbol       quoted symbols
//    List         lists
//    *Function    compiled functions
//    *Builtin     builtin functions
//
type Value interface{}

// Symbol is a quoted symbol.
type Symbol string

// List is an immutable list of values.
type List []Value

// Function is a compiled function. The top-level code of a compiled unit is a
// function named "global".
type Function struct {
	Name   string
	Params []string
	Code   []Instr
	Line   int // line of the definition
	unit   int // compiled unit the function belongs to
}

func (f *Function) String() string {
	return fmt.Sprintf("<fn %s/%d>", f.Name, len(f.Params))
}

// Builtin is a function implemented in Go.
type Builtin struct {
	Name    string
	MinArgs int
	MaxArgs int // -1 for variadic
	Fn      func(vm *VM, args []Value) (Value, *Error)
}

func (b *Builtin) String() string {
	return fmt.Sprintf("<builtin %s>", b.Name)
}

// Truthy is a predicate: nil is false, everything else is true.
func Truthy(v Value) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return v != nil
}

// TypeName returns the name of the type of a value, for messages.
func TypeName(v Value) string {
	switch v.(type) {
	case nil:
		return "nil"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	case Symbol:
		return "symbol"
	case List:
		return "list"
	case *Function, *Builtin:
		return "function"
	}
	return fmt.Sprintf("%T", v)
}

// Format renders a value the way print shows it: strings without quotes.
func Format(v Value) string {
	if s, ok := v.(string); ok {
		return s
	}
	return Repr(v)
}

// Repr renders a value in TeREx syntax: strings are quoted.
func Repr(v Value) string {
	switch x := v.(type) {
	case nil:
		return "nil"
	case bool:
		if x {
			return "t"
		}
		return "nil"
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case string:
		return strconv.Quote(x)
	case Symbol:
		return string(x)
	case List:
		var b strings.Builder
		b.WriteByte('(')
		for i, el := range x {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(Repr(el))
		}
		b.WriteByte(')')
		return b.String()
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprintf("%v", v)
}

// Equal compares two values structurally.
func Equal(a, b Value) bool {
	switch x := a.(type) {
	case List:
		y, ok := b.(List)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	}
	return a == b
}

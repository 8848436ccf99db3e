package terex

import (
	"math"
	"strings"
)

// builtins holds the functions implemented in Go. Globals take precedence
// over builtins of the same name.
var builtins map[string]*Builtin

func init() {
	builtins = make(map[string]*Builtin)
	for _, b := range []*Builtin{
		{Name: "print", MinArgs: 0, MaxArgs: -1, Fn: printValues},
		{Name: "warn", MinArgs: 0, MaxArgs: -1, Fn: warnUser},
		{Name: "error", MinArgs: 0, MaxArgs: -1, Fn: raiseError},
		{Name: "list", MinArgs: 0, MaxArgs: -1, Fn: makeList},
		{Name: "len", MinArgs: 1, MaxArgs: 1, Fn: length},
		{Name: "first", MinArgs: 1, MaxArgs: 1, Fn: first},
		{Name: "rest", MinArgs: 1, MaxArgs: 1, Fn: rest},
		{Name: "str", MinArgs: 0, MaxArgs: -1, Fn: concat},
		{Name: "not", MinArgs: 1, MaxArgs: 1, Fn: not},
		{Name: "+", MinArgs: 0, MaxArgs: -1, Fn: arithmetic('+')},
		{Name: "-", MinArgs: 1, MaxArgs: -1, Fn: arithmetic('-')},
		{Name: "*", MinArgs: 0, MaxArgs: -1, Fn: arithmetic('*')},
		{Name: "/", MinArgs: 1, MaxArgs: -1, Fn: arithmetic('/')},
		{Name: "%", MinArgs: 2, MaxArgs: 2, Fn: arithmetic('%')},
		{Name: "=", MinArgs: 2, MaxArgs: 2, Fn: equality(true)},
		{Name: "!=", MinArgs: 2, MaxArgs: 2, Fn: equality(false)},
		{Name: "<", MinArgs: 2, MaxArgs: 2, Fn: comparison(func(c int) bool { return c < 0 })},
		{Name: ">", MinArgs: 2, MaxArgs: 2, Fn: comparison(func(c int) bool { return c > 0 })},
		{Name: "<=", MinArgs: 2, MaxArgs: 2, Fn: comparison(func(c int) bool { return c <= 0 })},
		{Name: ">=", MinArgs: 2, MaxArgs: 2, Fn: comparison(func(c int) bool { return c >= 0 })},
	} {
		builtins[b.Name] = b
	}
}

// IsBuiltin is a predicate: is name a builtin function?
func IsBuiltin(name string) bool {
	_, ok := builtins[name]
	return ok
}

func boolean(b bool) Value {
	if b {
		return true
	}
	return nil
}

func joined(args []Value, sep string) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = Format(a)
	}
	return strings.Join(parts, sep)
}

func printValues(vm *VM, args []Value) (Value, *Error) {
	vm.print(joined(args, " ") + "\n")
	return nil, nil
}

func warnUser(vm *VM, args []Value) (Value, *Error) {
	vm.warn(&Error{ID: WarnUser, Msg: joined(args, " "), Line: vm.line, Category: Warning})
	return nil, nil
}

func raiseError(vm *VM, args []Value) (Value, *Error) {
	return nil, runtimeError(ErrUserError, "%s", joined(args, " "))
}

func makeList(vm *VM, args []Value) (Value, *Error) {
	if len(args) == 0 {
		return nil, nil
	}
	l := make(List, len(args))
	copy(l, args)
	return l, nil
}

func length(vm *VM, args []Value) (Value, *Error) {
	switch x := args[0].(type) {
	case nil:
		return float64(0), nil
	case List:
		return float64(len(x)), nil
	case string:
		return float64(len([]rune(x))), nil
	}
	return nil, runtimeError(ErrTypeMismatch, "len expects a list or a string, got %s", TypeName(args[0]))
}

func first(vm *VM, args []Value) (Value, *Error) {
	switch x := args[0].(type) {
	case nil:
		return nil, nil
	case List:
		if len(x) == 0 {
			return nil, nil
		}
		return x[0], nil
	}
	return nil, runtimeError(ErrTypeMismatch, "first expects a list, got %s", TypeName(args[0]))
}

func rest(vm *VM, args []Value) (Value, *Error) {
	switch x := args[0].(type) {
	case nil:
		return nil, nil
	case List:
		if len(x) <= 1 {
			return nil, nil
		}
		return x[1:], nil
	}
	return nil, runtimeError(ErrTypeMismatch, "rest expects a list, got %s", TypeName(args[0]))
}

func concat(vm *VM, args []Value) (Value, *Error) {
	return joined(args, ""), nil
}

func not(vm *VM, args []Value) (Value, *Error) {
	return boolean(!Truthy(args[0])), nil
}

func numbers(op rune, args []Value) ([]float64, *Error) {
	nums := make([]float64, len(args))
	for i, a := range args {
		n, ok := a.(float64)
		if !ok {
			return nil, runtimeError(ErrTypeMismatch, "%c expects numbers, got %s", op, TypeName(a))
		}
		nums[i] = n
	}
	return nums, nil
}

func arithmetic(op rune) func(*VM, []Value) (Value, *Error) {
	return func(vm *VM, args []Value) (Value, *Error) {
		nums, err := numbers(op, args)
		if err != nil {
			return nil, err
		}
		switch op {
		case '+':
			sum := 0.0
			for _, n := range nums {
				sum += n
			}
			return sum, nil
		case '*':
			prod := 1.0
			for _, n := range nums {
				prod *= n
			}
			return prod, nil
		case '-':
			if len(nums) == 1 {
				return -nums[0], nil
			}
			r := nums[0]
			for _, n := range nums[1:] {
				r -= n
			}
			return r, nil
		case '/':
			if len(nums) == 1 {
				nums = []float64{1, nums[0]}
			}
			r := nums[0]
			for _, n := range nums[1:] {
				if n == 0 {
					return nil, runtimeError(ErrDivideByZero, "division by zero")
				}
				r /= n
			}
			return r, nil
		}
		if nums[1] == 0 {
			return nil, runtimeError(ErrDivideByZero, "remainder of division by zero")
		}
		return math.Mod(nums[0], nums[1]), nil
	}
}

func equality(eq bool) func(*VM, []Value) (Value, *Error) {
	return func(vm *VM, args []Value) (Value, *Error) {
		return boolean(Equal(args[0], args[1]) == eq), nil
	}
}

func comparison(test func(int) bool) func(*VM, []Value) (Value, *Error) {
	return func(vm *VM, args []Value) (Value, *Error) {
		switch a := args[0].(type) {
		case float64:
			if b, ok := args[1].(float64); ok {
				return boolean(test(compareFloats(a, b))), nil
			}
		case string:
			if b, ok := args[1].(string); ok {
				return boolean(test(strings.Compare(a, b))), nil
			}
		}
		return nil, runtimeError(ErrTypeMismatch, "cannot compare %s with %s",
			TypeName(args[0]), TypeName(args[1]))
	}
}

func compareFloats(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

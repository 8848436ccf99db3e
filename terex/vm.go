package terex

import (
	"fmt"
	"os"

	"github.com/emirpasic/gods/stacks/arraystack"
	"github.com/npillmayer/xterex/runtime"
)

// MaxCallDepth is the maximum depth of nested function calls.
const MaxCallDepth = 256

// TraceFrame is an entry of the call stack captured at a runtime error.
type TraceFrame struct {
	Function string
	Line     int
}

type callFrame struct {
	fn *Function
	ip int
}

// VM is the execution context of the engine. Globals live in the global memory
// frame of the VM's runtime environment and persist across runs.
type VM struct {
	rt       *runtime.Runtime
	stack    *arraystack.Stack
	frames   []*callFrame
	program  *Program
	line     int
	print    PrintFn
	warn     WarningFn
	err      *Error
	trace    []TraceFrame
	result   Value
	released bool
}

// NewVM creates a VM with an empty set of globals. Printed text goes to
// stdout until a print function is set.
func NewVM() *VM {
	return &VM{
		rt:    runtime.NewRuntimeEnvironment(),
		stack: arraystack.New(),
		print: func(text string) {
			fmt.Fprint(os.Stdout, text)
		},
		warn: func(w *Error) {
			tracer().Infof("runtime warning %s", w)
		},
	}
}

// SetPrintFn installs the hook receiving printed text.
func (vm *VM) SetPrintFn(fn PrintFn) {
	if fn != nil {
		vm.print = fn
	}
}

// SetWarningFn installs the hook receiving runtime warnings.
func (vm *VM) SetWarningFn(fn WarningFn) {
	if fn != nil {
		vm.warn = fn
	}
}

// Err returns the error record of the most recent run, or nil.
func (vm *VM) Err() *Error {
	return vm.err
}

// Result returns the value of the last expression of the most recent
// successful run.
func (vm *VM) Result() Value {
	return vm.result
}

// Lookup returns the value of a global.
func (vm *VM) Lookup(name string) (Value, bool) {
	if vm.released {
		return nil, false
	}
	tag := vm.rt.Globals().ResolveTag(name)
	if tag == nil {
		return nil, false
	}
	return tag.Value, true
}

// GlobalNames returns the names of all globals in lexical order.
func (vm *VM) GlobalNames() []string {
	if vm.released {
		return nil
	}
	return vm.rt.Globals().Names()
}

// Reset drops all globals.
func (vm *VM) Reset() {
	if vm.released {
		return
	}
	vm.rt.Reset()
	vm.err, vm.trace, vm.result = nil, nil, nil
}

// Release drops the VM's state. Globals may hold functions owned by a
// program, so a VM has to be released before that program.
func (vm *VM) Release() {
	vm.rt = nil
	vm.stack = nil
	vm.frames = nil
	vm.program = nil
	vm.trace = nil
	vm.result = nil
	vm.released = true
}

// StackTrace renders the call stack captured at the most recent runtime error
// through the print function, innermost call first.
func (vm *VM) StackTrace() {
	for _, f := range vm.trace {
		vm.print(fmt.Sprintf("  in %s at line %d\n", f.Function, f.Line))
	}
}

// Trace returns the call stack captured at the most recent runtime error.
func (vm *VM) Trace() []TraceFrame {
	return vm.trace
}

// Run executes the entry unit of program p. A runtime error is returned as a
// *Error of category RuntimeError and is available from Err afterwards.
func (vm *VM) Run(p *Program) error {
	if vm.released || p == nil || p.Released() {
		return ErrReleased
	}
	vm.err, vm.trace, vm.result = nil, nil, nil
	if p.entry == nil {
		return nil
	}
	vm.program = p
	vm.stack.Clear()
	vm.frames = vm.frames[:0]
	vm.frames = append(vm.frames, &callFrame{fn: p.entry})
	tracer().Debugf("running unit #%d", p.units)
	if err := vm.loop(); err != nil {
		vm.fail(err)
		return err
	}
	return nil
}

func (vm *VM) fail(err *Error) {
	err.Category = RuntimeError
	if err.Line == 0 {
		err.Line = vm.line
	}
	vm.trace = make([]TraceFrame, 0, len(vm.frames))
	for i := len(vm.frames) - 1; i >= 0; i-- {
		f := vm.frames[i]
		line := f.fn.Line
		if f.ip > 0 && f.ip <= len(f.fn.Code) {
			line = f.fn.Code[f.ip-1].Line
		}
		vm.trace = append(vm.trace, TraceFrame{Function: f.fn.Name, Line: line})
	}
	vm.err = err
	vm.frames = vm.frames[:0]
	vm.stack.Clear()
	vm.rt.Unwind()
	tracer().Debugf("run failed: %s", err)
}

func (vm *VM) push(v Value) {
	vm.stack.Push(v)
}

func (vm *VM) pop() Value {
	v, _ := vm.stack.Pop()
	return v
}

func (vm *VM) peek() Value {
	v, _ := vm.stack.Peek()
	return v
}

// local returns the tag of parameter i of the function running in frame. Its
// memory frame is always on top of the memory frame stack.
func (vm *VM) local(frame *callFrame, i int) *runtime.Tag {
	return vm.rt.MemFrameStack.Current().SymbolTable.ResolveTag(frame.fn.Params[i])
}

func (vm *VM) name(i int) string {
	return vm.program.constants[i].(string)
}

func (vm *VM) loop() *Error {
	for {
		frame := vm.frames[len(vm.frames)-1]
		if frame.ip >= len(frame.fn.Code) {
			return runtimeError(ErrBadForm, "code of %s ends without return", frame.fn.Name)
		}
		in := frame.fn.Code[frame.ip]
		frame.ip++
		vm.line = in.Line
		switch in.Op {
		case OpConst:
			vm.push(vm.program.constants[in.Arg])
		case OpNil:
			vm.push(nil)
		case OpTrue:
			vm.push(true)
		case OpPop:
			vm.pop()
		case OpGetGlobal:
			name := vm.name(in.Arg)
			if tag := vm.rt.Globals().ResolveTag(name); tag != nil {
				vm.push(tag.Value)
			} else if b, ok := builtins[name]; ok {
				vm.push(b)
			} else {
				return runtimeError(ErrUndefinedVariable, "undefined variable '%s'", name)
			}
		case OpDefGlobal:
			tag, _ := vm.rt.Globals().ResolveOrDefineTag(vm.name(in.Arg))
			tag.Value = vm.peek()
			tag.Line = in.Line
		case OpSetGlobal:
			name := vm.name(in.Arg)
			tag := vm.rt.Globals().ResolveTag(name)
			if tag == nil {
				return runtimeError(ErrUndefinedVariable, "cannot set! undefined variable '%s'", name)
			}
			tag.Value = vm.peek()
		case OpGetLocal:
			vm.push(vm.local(frame, in.Arg).Value)
		case OpSetLocal:
			vm.local(frame, in.Arg).Value = vm.peek()
		case OpJump:
			frame.ip = in.Arg
		case OpJumpIfFalse:
			if !Truthy(vm.pop()) {
				frame.ip = in.Arg
			}
		case OpCall:
			if err := vm.call(in.Arg); err != nil {
				return err
			}
		case OpReturn:
			v := vm.pop()
			vm.frames = vm.frames[:len(vm.frames)-1]
			if len(vm.frames) > 0 { // the entry unit runs on the global frame
				vm.rt.MemFrameStack.PopMemoryFrame()
			}
			if len(vm.frames) == 0 {
				vm.result = v
				return nil
			}
			vm.push(v)
		default:
			return runtimeError(ErrBadForm, "illegal instruction %s", in.Op)
		}
	}
}

func (vm *VM) call(argc int) *Error {
	args := make([]Value, argc)
	for i := argc - 1; i >= 0; i-- {
		args[i] = vm.pop()
	}
	callee := vm.pop()
	switch fn := callee.(type) {
	case *Builtin:
		if argc < fn.MinArgs || (fn.MaxArgs >= 0 && argc > fn.MaxArgs) {
			return runtimeError(ErrArityMismatch, "%s called with %d arguments", fn.Name, argc)
		}
		v, err := fn.Fn(vm, args)
		if err != nil {
			return err
		}
		vm.push(v)
	case *Function:
		if argc != len(fn.Params) {
			return runtimeError(ErrArityMismatch, "%s expects %d arguments, got %d",
				fn.Name, len(fn.Params), argc)
		}
		if len(vm.frames) >= MaxCallDepth {
			return runtimeError(ErrStackOverflow, "call depth exceeds %d", MaxCallDepth)
		}
		mem := vm.rt.MemFrameStack.PushNewMemoryFrame(fn.Name)
		for i, p := range fn.Params {
			tag, _ := mem.SymbolTable.DefineTag(p)
			tag.Value = args[i]
		}
		vm.frames = append(vm.frames, &callFrame{fn: fn})
	default:
		return runtimeError(ErrNotCallable, "%s is not callable", Repr(callee))
	}
	return nil
}

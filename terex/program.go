package terex

import (
	"fmt"
	"io"
)

// Opcode is an instruction code of the VM.
type Opcode uint8

// Instruction set. Arg is a constant index for OpConst and the global
// instructions, a parameter index for the local instructions, a code address
// for jumps and an argument count for OpCall.
const (
	OpConst       Opcode = iota // push constant
	OpNil                       // push nil
	OpTrue                      // push t
	OpPop                       // drop TOS
	OpGetGlobal                 // push global
	OpDefGlobal                 // bind TOS to a global, keep TOS
	OpSetGlobal                 // assign TOS to an existing global, keep TOS
	OpGetLocal                  // push parameter
	OpSetLocal                  // assign TOS to a parameter, keep TOS
	OpJump                      // jump
	OpJumpIfFalse               // pop, jump if nil
	OpCall                      // call function below Arg arguments
	OpReturn                    // return TOS
)

var opnames = [...]string{"CONST", "NIL", "TRUE", "POP", "GETG", "DEFG", "SETG",
	"GETL", "SETL", "JMP", "JMPF", "CALL", "RET"}

func (op Opcode) String() string {
	if int(op) < len(opnames) {
		return opnames[op]
	}
	return fmt.Sprintf("OP(%d)", op)
}

// Instr is a VM instruction.
type Instr struct {
	Op   Opcode
	Arg  int
	Line int // source line the instruction was compiled from
}

// Program is a compiled-unit handle. It is created once per session and
// mutated in place by every successful compile: constants and functions
// accumulate, the entry unit is replaced.
type Program struct {
	constants []Value
	functions []*Function
	entry     *Function
	units     int
	released  bool
}

// NewProgram allocates an empty program.
func NewProgram() *Program {
	return &Program{}
}

// Entry returns the most recently compiled unit, or nil if nothing has been
// compiled yet.
func (p *Program) Entry() *Function {
	return p.entry
}

// Units returns the number of units successfully compiled into p.
func (p *Program) Units() int {
	return p.units
}

// NumConstants returns the size of the constant pool.
func (p *Program) NumConstants() int {
	return len(p.constants)
}

// Release drops the program's code. A released program cannot be compiled
// into or run.
func (p *Program) Release() {
	p.constants = nil
	p.functions = nil
	p.entry = nil
	p.released = true
}

// Released is a predicate.
func (p *Program) Released() bool {
	return p.released
}

// Disassemble writes a listing of the entry unit and every function compiled
// together with it.
func (p *Program) Disassemble(w io.Writer) {
	if p.entry == nil {
		fmt.Fprintln(w, "<empty program>")
		return
	}
	for _, fn := range p.functions {
		if fn.unit != p.units {
			continue
		}
		fmt.Fprintf(w, "%s:\n", fn)
		for addr, in := range fn.Code {
			fmt.Fprintf(w, "  %04d  %-5s %4d   ; line %d", addr, in.Op, in.Arg, in.Line)
			if in.Op == OpConst || in.Op == OpGetGlobal || in.Op == OpDefGlobal || in.Op == OpSetGlobal {
				fmt.Fprintf(w, "  %s", Repr(p.constants[in.Arg]))
			}
			fmt.Fprintln(w)
		}
	}
}

/*
Package terex implements the embedded engine for the TeREx language: a compiled
program, a compiler bound to that program, and a virtual machine.

The three handles are designed for a long-lived interactive session:

■ A Program is created once and mutated in place by every successful compile.
Constants and functions accumulate; the entry unit is replaced by the most
recently compiled one. A failed compile leaves the program untouched.

■ A Compiler is bound to exactly one Program for its lifetime.

■ A VM executes the entry unit of a program. Globals defined by a run persist
into later runs until the VM is reset.

The engine reports back through hooks: text printed by a program goes to the
VM's print function, warnings go to the warning functions of compiler and VM.
After a failed run, StackTrace renders the call stack at the point of failure,
again through the print function.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package terex

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'xterex.engine'.
func tracer() tracing.Trace {
	return tracing.Select("xterex.engine")
}

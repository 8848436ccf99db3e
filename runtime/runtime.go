/*
Package runtime implements the storage side of the TeREx engine: scopes and
symbol tables for the compiler, and memory frames for the virtual machine.

For a thorough discussion of an interpreter's runtime environment, refer to
"Language Implementation Patterns" by Terence Parr.

Symbol Table and Scope Tree

The compiler pushes a scope for every function body it compiles and defines the
function's parameters as tags in it. Resolving a name walks the scope tree upwards;
the scope a tag is found in tells the compiler whether a name is a parameter of the
function under construction or of an enclosing one.

Memory Frames

The VM keeps a stack of memory frames. The bottommost frame holds the globals of a
session and lives as long as the VM does; every function activation pushes a frame
carrying the values of its parameters.


----------------------------------------------------------------------

BSD License

Copyright (c) 2017-21, Norbert Pillmayer

All rights reserved.

Redistribution and use in source and binary forms, with or without
modification, are permitted provided that the following conditions
are met:

1. Redistributions of source code must retain the above copyright
notice, this list of conditions and the following disclaimer.

2. Redistributions in binary form must reproduce the above copyright
notice, this list of conditions and the following disclaimer in the
documentation and/or other materials provided with the distribution.

3. Neither the name of this software or the names of its contributors
may be used to endorse or promote products derived from this software
without specific prior written permission.

THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS
"AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT
LIMITED TO, THE IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR
A PARTICULAR PURPOSE ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT
HOLDER OR CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT
LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR SERVICES; LOSS OF USE,
DATA, OR PROFITS; OR BUSINESS INTERRUPTION) HOWEVER CAUSED AND ON ANY
THEORY OF LIABILITY, WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT
(INCLUDING NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH DAMAGE. */
package runtime

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'xterex.runtime'.
func tracer() tracing.Trace {
	return tracing.Select("xterex.runtime")
}

// Runtime is a type implementing a runtime environment for the VM: a stack of
// memory frames, the bottommost of which holds the globals.
type Runtime struct {
	MemFrameStack *MemoryFrameStack // runtime stack of memory frames
}

// NewRuntimeEnvironment constructs a new runtime environment, initialized with a
// global memory frame. Scopes are a compile time matter and are kept by the
// compiler in a ScopeTree of its own.
//
func NewRuntimeEnvironment() *Runtime {
	rt := &Runtime{}
	rt.MemFrameStack = new(MemoryFrameStack)      // initialize memory frame stack
	rt.MemFrameStack.PushNewMemoryFrame("global") // global memory
	return rt
}

// Globals returns the symbol table of the global memory frame.
func (rt *Runtime) Globals() *SymbolTable {
	return rt.MemFrameStack.Globals().SymbolTable
}

// Unwind pops all memory frames above the global frame. It is called after a
// run has been aborted by an error.
func (rt *Runtime) Unwind() {
	for rt.MemFrameStack.Depth() > 1 {
		rt.MemFrameStack.PopMemoryFrame()
	}
}

// Reset drops every frame and every global.
func (rt *Runtime) Reset() {
	rt.Unwind()
	rt.Globals().Clear()
	tracer().Infof("runtime reset, globals cleared")
}

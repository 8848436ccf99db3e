package runtime

import (
	"fmt"
)

// DynamicMemoryFrame is a memory frame, representing a piece of memory for
// one function activation (or for the globals).
type DynamicMemoryFrame struct {
	Name        string
	SymbolTable *SymbolTable
	Parent      *DynamicMemoryFrame
}

// NewDynamicMemoryFrame creates a new memory frame with an empty symbol table.
func NewDynamicMemoryFrame(nm string) *DynamicMemoryFrame {
	mf := &DynamicMemoryFrame{
		Name:        nm,
		SymbolTable: NewSymbolTable(),
	}
	return mf
}

func (mf *DynamicMemoryFrame) String() string {
	return fmt.Sprintf("<mem %s: %d tags>", mf.Name, mf.SymbolTable.Size())
}

// ---------------------------------------------------------------------------

// MemoryFrameStack is a (call-)stack of memory frames.
type MemoryFrameStack struct {
	memoryFrameBase *DynamicMemoryFrame
	memoryFrameTOS  *DynamicMemoryFrame
	depth           int
}

// Current gets the current memory frame of a stack (TOS).
func (mfst *MemoryFrameStack) Current() *DynamicMemoryFrame {
	if mfst.memoryFrameTOS == nil {
		panic("attempt to access memory frame from empty stack")
	}
	return mfst.memoryFrameTOS
}

// Globals gets the outermost memory frame, containing global symbols.
func (mfst *MemoryFrameStack) Globals() *DynamicMemoryFrame {
	if mfst.memoryFrameBase == nil {
		panic("attempt to access global memory frame from empty stack")
	}
	return mfst.memoryFrameBase
}

// Depth returns the number of frames on the stack, including the global frame.
func (mfst *MemoryFrameStack) Depth() int {
	return mfst.depth
}

// PushNewMemoryFrame pushes a new memory frame as TOS, having the recent TOS as
// its parent. The first frame pushed becomes the global frame.
//
func (mfst *MemoryFrameStack) PushNewMemoryFrame(nm string) *DynamicMemoryFrame {
	mfp := mfst.memoryFrameTOS
	newmf := NewDynamicMemoryFrame(nm)
	newmf.Parent = mfp
	if mfp == nil { // the new frame is the global frame
		mfst.memoryFrameBase = newmf // make new mf anchor
	}
	mfst.memoryFrameTOS = newmf // new frame now TOS
	mfst.depth++
	tracer().P("mem", newmf.Name).Debugf("pushing new memory frame")
	return newmf
}

// PopMemoryFrame pops the top-most memory frame. Returns the popped frame.
// The global frame cannot be popped.
func (mfst *MemoryFrameStack) PopMemoryFrame() *DynamicMemoryFrame {
	if mfst.memoryFrameTOS == nil || mfst.memoryFrameTOS == mfst.memoryFrameBase {
		panic("attempt to pop memory frame from empty call stack")
	}
	mf := mfst.memoryFrameTOS
	tracer().Debugf("popping memory frame [%s]", mf.Name)
	mfst.memoryFrameTOS = mfst.memoryFrameTOS.Parent
	mfst.depth--
	return mf
}

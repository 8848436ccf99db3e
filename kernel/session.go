package kernel

import (
	"errors"
	"fmt"

	"github.com/npillmayer/xterex/terex"
)

// ErrInternal is the id of error records which did not originate from the
// engine's compiler or VM.
const ErrInternal = "InternalError"

// Session owns one engine instance: a program, a compiler bound to it and a
// VM. Program text printed by the VM goes to the session's OutputSink,
// warnings of compiler and VM go to the WarningRelay.
//
// Engine state persists from one request to the next: a program is compiled
// into the same program handle every time and globals live on in the VM.
type Session struct {
	program  *terex.Program
	compiler *terex.Compiler
	vm       *terex.VM
	sink     *OutputSink
	relay    *WarningRelay
	released []string // handles released by Shutdown, in order
	closed   bool
}

// NewSession acquires the engine handles and installs the hooks. An error
// means the engine could not be allocated; a process cannot proceed to accept
// requests after that.
func NewSession(relay *WarningRelay) (*Session, error) {
	if relay == nil {
		relay = NewWarningRelay(nil)
	}
	s := &Session{
		sink:  NewOutputSink(),
		relay: relay,
	}
	if err := s.initialize(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) initialize() error {
	s.program = terex.NewProgram()
	compiler, err := terex.NewCompiler(s.program)
	if err != nil {
		s.program.Release()
		return fmt.Errorf("cannot allocate engine: %w", err)
	}
	s.compiler = compiler
	s.vm = terex.NewVM()
	s.vm.SetPrintFn(s.sink.Append)
	s.vm.SetWarningFn(s.relay.OnWarning)
	s.compiler.SetWarningFn(s.relay.OnWarning)
	tracer().Infof("engine session initialized")
	return nil
}

// Sink returns the session's output sink.
func (s *Session) Sink() *OutputSink {
	return s.sink
}

// Compile compiles source into the session's program. On failure it returns
// the compiler's error record; the VM is left untouched.
func (s *Session) Compile(source string) (bool, *terex.Error) {
	if s.closed {
		return false, closedError(terex.CompileError)
	}
	if err := s.compiler.Compile(source); err != nil {
		return false, engineError(err, terex.CompileError)
	}
	return true, nil
}

// Run executes the most recently compiled unit. On failure it returns the
// VM's error record.
func (s *Session) Run() (bool, *terex.Error) {
	if s.closed {
		return false, closedError(terex.RuntimeError)
	}
	if err := s.vm.Run(s.program); err != nil {
		if rec := s.vm.Err(); rec != nil {
			return false, rec
		}
		return false, engineError(err, terex.RuntimeError)
	}
	return true, nil
}

// RenderTrace asks the VM to render the stack trace of the last failed run
// into the output sink.
func (s *Session) RenderTrace() {
	if !s.closed {
		s.vm.StackTrace()
	}
}

// Reset drops all globals of the VM.
func (s *Session) Reset() {
	if !s.closed {
		s.vm.Reset()
	}
}

// Lookup returns the value of a global.
func (s *Session) Lookup(name string) (terex.Value, bool) {
	if s.closed {
		return nil, false
	}
	return s.vm.Lookup(name)
}

// Globals returns the names of all globals in lexical order.
func (s *Session) Globals() []string {
	if s.closed {
		return nil
	}
	return s.vm.GlobalNames()
}

// Closed is a predicate: has the session been shut down?
func (s *Session) Closed() bool {
	return s.closed
}

// Shutdown releases VM, compiler and program, in that order: globals of the VM
// may hold functions owned by the program. Shutdown may be called more than
// once.
func (s *Session) Shutdown() {
	if s.closed {
		return
	}
	s.closed = true
	s.vm.Release()
	s.released = append(s.released, "vm")
	s.compiler.Release()
	s.released = append(s.released, "compiler")
	s.program.Release()
	s.released = append(s.released, "program")
	tracer().Infof("engine session shut down")
}

func engineError(err error, cat terex.Category) *terex.Error {
	var rec *terex.Error
	if errors.As(err, &rec) {
		return rec
	}
	return &terex.Error{ID: ErrInternal, Msg: err.Error(), Category: cat}
}

func closedError(cat terex.Category) *terex.Error {
	return &terex.Error{ID: ErrInternal, Msg: "engine session has been shut down", Category: cat}
}

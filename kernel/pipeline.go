package kernel

import (
	"fmt"
)

// State is a state of the execution pipeline.
type State int8

// States of the pipeline. A request moves from Idle through Compiling to either
// CompileFailed or Compiled, Running and one of RunSucceeded or RunFailed, and
// back to Idle.
const (
	Idle State = iota
	Compiling
	CompileFailed
	Compiled
	Running
	RunSucceeded
	RunFailed
)

var stateNames = [...]string{"Idle", "Compiling", "CompileFailed", "Compiled",
	"Running", "RunSucceeded", "RunFailed"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", s)
}

// Pipeline drives requests through a session, one at a time.
type Pipeline struct {
	session *Session
	state   State
}

// NewPipeline creates a pipeline for a session.
func NewPipeline(session *Session) *Pipeline {
	return &Pipeline{session: session}
}

// State returns the current state of the pipeline. Between requests this is
// always Idle.
func (p *Pipeline) State() State {
	return p.state
}

func (p *Pipeline) enter(s State) {
	tracer().Debugf("pipeline %s -> %s", p.state, s)
	p.state = s
}

// Execute compiles and runs source and classifies the result. Compile and
// runtime errors are returned as outcomes, never as Go errors.
func (p *Pipeline) Execute(source string) Outcome {
	defer p.enter(Idle)
	p.enter(Compiling)
	if ok, rec := p.session.Compile(source); !ok {
		p.enter(CompileFailed)
		return CompileFailure{ID: rec.ID, Message: rec.Msg}
	}
	p.enter(Compiled)
	sink := p.session.Sink()
	sink.Reset(PhaseRun)
	p.enter(Running)
	if ok, rec := p.session.Run(); !ok {
		p.enter(RunFailed)
		sink.Reset(PhaseTrace)
		p.session.RenderTrace()
		trace := append([]string{FormatError(rec.ID, rec.Msg)}, sink.Lines()...)
		return RuntimeFailure{ID: rec.ID, Message: rec.Msg, Trace: trace}
	}
	p.enter(RunSucceeded)
	return Success{Text: sink.Text()}
}

// FormatError renders the summary line of a runtime failure.
func FormatError(id, message string) string {
	return fmt.Sprintf("Error [%s]: %s", id, message)
}

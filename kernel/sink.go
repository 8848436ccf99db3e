package kernel

import (
	"strings"
)

// Phase is the purpose an OutputSink is currently collecting text for.
type Phase int8

// Phases of an OutputSink.
const (
	PhaseIdle  Phase = iota // nothing is being collected
	PhaseRun                // output of a program run
	PhaseTrace              // stack trace after a failed run
)

func (p Phase) String() string {
	switch p {
	case PhaseRun:
		return "run"
	case PhaseTrace:
		return "trace"
	}
	return "idle"
}

// OutputSink is an append-only accumulator for text printed by the engine.
//
// The sink is used for two purposes and has to be drained in a fixed order:
// Reset(PhaseRun) immediately before a run, then, only if the run failed,
// Reset(PhaseTrace) immediately before the stack trace is rendered. Output of a
// run therefore never leaks into a trace, and nothing of a previous request
// leaks into the next run.
//
// The sink has exactly one writer (the engine's print hook) and one reader (the
// pipeline), which never operate concurrently.
type OutputSink struct {
	buf   strings.Builder
	phase Phase
}

// NewOutputSink creates an empty sink in phase PhaseIdle.
func NewOutputSink() *OutputSink {
	return &OutputSink{}
}

// Reset drains the sink and starts collecting for a phase.
func (s *OutputSink) Reset(phase Phase) {
	s.buf.Reset()
	s.phase = phase
}

// Append adds text to the sink.
func (s *OutputSink) Append(text string) {
	s.buf.WriteString(text)
}

// Phase returns the phase the sink is collecting for.
func (s *OutputSink) Phase() Phase {
	return s.phase
}

// Len returns the number of bytes collected.
func (s *OutputSink) Len() int {
	return s.buf.Len()
}

// Text returns the collected output of a run.
func (s *OutputSink) Text() string {
	if s.phase == PhaseTrace {
		tracer().Errorf("output sink read as run output while collecting a trace")
	}
	return s.buf.String()
}

// Lines returns the collected trace, split on line boundaries. A trailing
// newline does not produce an empty last line.
func (s *OutputSink) Lines() []string {
	if s.phase == PhaseRun {
		tracer().Errorf("output sink read as trace while collecting run output")
	}
	text := strings.TrimSuffix(s.buf.String(), "\n")
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

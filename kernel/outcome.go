package kernel

// Outcome is the result of executing one request. It is one of Success,
// CompileFailure or RuntimeFailure.
type Outcome interface {
	isOutcome()
}

// Success is the outcome of a completed run. Text is everything the run
// printed.
type Success struct {
	Text string
}

// CompileFailure is the outcome of a request rejected by the compiler. No run
// took place.
type CompileFailure struct {
	ID      string
	Message string
}

// RuntimeFailure is the outcome of a run which raised an error. Trace starts
// with a summary line, followed by the rendered call stack.
type RuntimeFailure struct {
	ID      string
	Message string
	Trace   []string
}

func (Success) isOutcome()        {}
func (CompileFailure) isOutcome() {}
func (RuntimeFailure) isOutcome() {}

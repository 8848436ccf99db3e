package kernel

import (
	"errors"

	"github.com/npillmayer/xterex/terex"
)

// Lifecycle errors.
var (
	ErrNotStarted     = errors.New("kernel has not been started")
	ErrAlreadyStarted = errors.New("kernel has already been started")
	ErrShutdown       = errors.New("kernel has been shut down")
)

type lifecycle int8

const (
	created lifecycle = iota
	running
	terminated
)

// ExecuteRequest is an incoming execution request. An ExecutionCount of 0
// lets the kernel assign the next count from its own counter.
type ExecuteRequest struct {
	ExecutionCount int    `json:"execution_count,omitempty"`
	Code           string `json:"code"`
	Silent         bool   `json:"silent,omitempty"`
	StoreHistory   bool   `json:"store_history,omitempty"`
}

// Global is a global variable of the engine, rendered for display.
type Global struct {
	Name  string
	Value string
}

// Kernel is the facade a host drives. Start and Shutdown are called once
// each, in that order, around all other requests. A Kernel is not safe for
// concurrent use; hosts serialize requests.
type Kernel struct {
	publisher Publisher
	session   *Session
	pipeline  *Pipeline
	history   History
	count     int
	state     lifecycle
}

// New creates a kernel publishing stream notifications to pub.
func New(pub Publisher) *Kernel {
	return &Kernel{publisher: pub}
}

// Start creates the engine session. An error is fatal: the engine could not
// be allocated and the host must not accept requests.
func (k *Kernel) Start() error {
	switch k.state {
	case running:
		return ErrAlreadyStarted
	case terminated:
		return ErrShutdown
	}
	session, err := NewSession(NewWarningRelay(k.publisher))
	if err != nil {
		return err
	}
	k.session = session
	k.pipeline = NewPipeline(session)
	k.state = running
	tracer().Infof("kernel started")
	return nil
}

func (k *Kernel) check() error {
	switch k.state {
	case created:
		return ErrNotStarted
	case terminated:
		return ErrShutdown
	}
	return nil
}

// ExecutionCount returns the current value of the kernel's execution counter.
func (k *Kernel) ExecutionCount() int {
	return k.count
}

// Execute runs a request and calls send with its reply, exactly once. Compile
// and runtime errors are reported through the reply. An error is returned only
// if the kernel is not running; send then receives an error reply as well.
func (k *Kernel) Execute(req ExecuteRequest, send func(ExecuteReply)) error {
	if err := k.check(); err != nil {
		send(ExecuteReply{
			Status:         StatusError,
			ExecutionCount: req.ExecutionCount,
			ErrorName:      ErrInternal,
			ErrorValue:     err.Error(),
			Traceback:      []string{FormatError(ErrInternal, err.Error())},
		})
		return err
	}
	count := req.ExecutionCount
	if count <= 0 {
		if !req.Silent && req.StoreHistory {
			k.count++
		}
		count = k.count
	} else if count > k.count {
		k.count = count
	}
	if req.StoreHistory && !req.Silent {
		k.history.Add(count, req.Code)
	}
	tracer().Debugf("execute request #%d", count)
	outcome := k.pipeline.Execute(req.Code)
	send(BuildExecuteReply(count, outcome, req.Silent))
	return nil
}

// Complete answers a completion request.
func (k *Kernel) Complete(code string, cursor int) CompleteReply {
	return Complete(code, cursor)
}

// IsComplete answers an is_complete request.
func (k *Kernel) IsComplete(code string) IsCompleteReply {
	return IsComplete(code)
}

// KernelInfo answers a kernel_info request.
func (k *Kernel) KernelInfo() KernelInfoReply {
	return KernelInfo()
}

// Inspect describes the token under the cursor: a global with its value, or
// a keyword with its documentation.
func (k *Kernel) Inspect(code string, cursor int, detail int) (InspectReply, error) {
	if err := k.check(); err != nil {
		return InspectReply{Status: StatusError}, err
	}
	return inspect(k.session, code, cursor, detail), nil
}

// History returns the last n executed requests.
func (k *Kernel) History(n int, unique bool) []HistoryEntry {
	return k.history.Tail(n, unique)
}

// Globals lists the globals of the engine in lexical order.
func (k *Kernel) Globals() ([]Global, error) {
	if err := k.check(); err != nil {
		return nil, err
	}
	names := k.session.Globals()
	globals := make([]Global, 0, len(names))
	for _, name := range names {
		v, _ := k.session.Lookup(name)
		globals = append(globals, Global{Name: name, Value: terex.Repr(v)})
	}
	return globals, nil
}

// Shutdown ends the kernel. With restart set, the engine's globals are dropped
// and the execution counter restarts, but the session is kept and the kernel
// continues to accept requests.
func (k *Kernel) Shutdown(restart bool) error {
	if err := k.check(); err != nil {
		return err
	}
	if restart {
		k.session.Reset()
		k.count = 0
		tracer().Infof("kernel restarted")
		return nil
	}
	k.session.Shutdown()
	k.state = terminated
	tracer().Infof("kernel shut down")
	return nil
}

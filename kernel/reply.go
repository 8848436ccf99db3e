package kernel

import (
	"fmt"
)

// Reply status values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// MimeTextPlain is the mime type of published results.
const MimeTextPlain = "text/plain"

// PublishedResult is the result payload of a successful execution.
type PublishedResult struct {
	MimeType       string `json:"mime_type"`
	Text           string `json:"text"`
	ExecutionCount int    `json:"execution_count"`
}

// ExecuteReply is the reply to an execute request.
type ExecuteReply struct {
	Status          string           `json:"status"`
	ExecutionCount  int              `json:"execution_count"`
	PublishedResult *PublishedResult `json:"published_result,omitempty"`
	ErrorName       string           `json:"ename,omitempty"`
	ErrorValue      string           `json:"evalue,omitempty"`
	Traceback       []string         `json:"traceback,omitempty"`
}

// BuildExecuteReply maps an outcome to a reply. A silent request does not
// publish its result.
func BuildExecuteReply(count int, outcome Outcome, silent bool) ExecuteReply {
	reply := ExecuteReply{ExecutionCount: count}
	switch o := outcome.(type) {
	case Success:
		reply.Status = StatusOK
		if !silent {
			reply.PublishedResult = &PublishedResult{
				MimeType:       MimeTextPlain,
				Text:           o.Text,
				ExecutionCount: count,
			}
		}
	case CompileFailure:
		reply.Status = StatusError
		reply.ErrorName = o.ID
		reply.ErrorValue = o.Message
		reply.Traceback = []string{FormatCompileError(o.ID, o.Message)}
	case RuntimeFailure:
		reply.Status = StatusError
		reply.ErrorName = o.ID
		reply.ErrorValue = o.Message
		reply.Traceback = append([]string(nil), o.Trace...)
	default:
		panic(fmt.Sprintf("unknown execution outcome %T", outcome))
	}
	return reply
}

// FormatCompileError renders the traceback line of a compile failure.
func FormatCompileError(id, message string) string {
	return fmt.Sprintf("Compilation error [%s]: %s", id, message)
}

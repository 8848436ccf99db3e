/*
Package wire serves the xterex kernel over a byte stream, typically stdin and
stdout of a process. Requests and replies are framed by a Codec: JSON lines or
MessagePack.

Each request carries an id and a message type. Every request is answered by
exactly one reply carrying the request's id as parent id. While an execute
request is being processed, stream messages with the same parent id may
precede its reply.

	→ {"id":"1","msg_type":"execute_request","code":"(warn \"w\") (print 1)"}
	← {"parent_id":"1","msg_type":"stream","content":{"name":"stderr","text":"Warning [UserWarning]: w\n"}}
	← {"parent_id":"1","msg_type":"execute_reply","content":{"status":"ok",…}}

A request which cannot be decoded is answered by an error message, with the
request's id as parent id if the id could be read. Serving goes on with the
next request.

Requests are decoded on one goroutine and executed on another, strictly one
after the other.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package wire

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/xterex/kernel"
	"golang.org/x/sync/errgroup"
)

// tracer traces with key 'xterex.host'.
func tracer() tracing.Trace {
	return tracing.Select("xterex.host")
}

// Message types.
const (
	KernelInfoRequest = "kernel_info_request"
	ExecuteRequest    = "execute_request"
	CompleteRequest   = "complete_request"
	InspectRequest    = "inspect_request"
	IsCompleteRequest = "is_complete_request"
	HistoryRequest    = "history_request"
	ShutdownRequest   = "shutdown_request"
	Stream            = "stream"
	ErrorReply        = "error"
)

// Request is an incoming message. Fields not used by a message type are
// left empty.
type Request struct {
	ID           string `json:"id"`
	Type         string `json:"msg_type"`
	Code         string `json:"code,omitempty"`
	CursorPos    int    `json:"cursor_pos,omitempty"`
	DetailLevel  int    `json:"detail_level,omitempty"`
	Silent       bool   `json:"silent,omitempty"`
	StoreHistory bool   `json:"store_history,omitempty"`
	N            int    `json:"n,omitempty"`
	Unique       bool   `json:"unique,omitempty"`
	Restart      bool   `json:"restart,omitempty"`
}

// Response is an outgoing message.
type Response struct {
	ParentID string      `json:"parent_id"`
	Type     string      `json:"msg_type"`
	Content  interface{} `json:"content"`
}

// StreamContent is the content of a stream message.
type StreamContent struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// HistoryContent is the content of a history reply.
type HistoryContent struct {
	Status  string                `json:"status"`
	History []kernel.HistoryEntry `json:"history"`
}

// ShutdownContent is the content of a shutdown reply.
type ShutdownContent struct {
	Status  string `json:"status"`
	Restart bool   `json:"restart"`
}

// ErrorContent is the content of a reply to a request which could not be
// served.
type ErrorContent struct {
	Status     string `json:"status"`
	ErrorName  string `json:"ename"`
	ErrorValue string `json:"evalue"`
}

// ReplyType returns the message type of the reply to a request type.
func ReplyType(requestType string) string {
	const suffix = "_request"
	if n := len(requestType) - len(suffix); n > 0 && requestType[n:] == suffix {
		return requestType[:n] + "_reply"
	}
	return ErrorReply
}

var errShutdownRequested = errors.New("shutdown requested")

// inbound is a decoded request, or the error of a request which could not be
// decoded.
type inbound struct {
	req Request
	err error
}

// Server serves one kernel over a stream.
type Server struct {
	codec  Codec
	kernel *kernel.Kernel
	enc    Encoder
	parent string // id of the request in progress
	encErr error
}

// NewServer creates a server using codec.
func NewServer(codec Codec) *Server {
	s := &Server{codec: codec}
	s.kernel = kernel.New(kernel.PublisherFunc(s.publish))
	return s
}

func (s *Server) publish(channel, text string) {
	s.send(Stream, StreamContent{Name: channel, Text: text})
}

func (s *Server) send(msgType string, content interface{}) {
	if s.encErr != nil {
		return
	}
	resp := Response{ParentID: s.parent, Type: msgType, Content: content}
	if err := s.enc.Encode(resp); err != nil {
		s.encErr = fmt.Errorf("cannot encode %s: %w", msgType, err)
	}
}

// Serve starts the kernel and serves requests read from r, writing replies to
// w, until r is exhausted, a shutdown request arrives or ctx is cancelled. If
// r is an io.Closer, it is closed when serving ends.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	if err := s.kernel.Start(); err != nil {
		return err
	}
	s.enc = s.codec.NewEncoder(w)
	requests := make(chan inbound)
	g, ctx := errgroup.WithContext(ctx)
	go func() {
		<-ctx.Done()
		if c, ok := r.(io.Closer); ok {
			c.Close()
		}
	}()
	g.Go(func() error {
		defer close(requests)
		dec := s.codec.NewDecoder(r)
		for {
			var in inbound
			if err := dec.Decode(&in.req); err != nil {
				var ferr *FrameError
				if errors.As(err, &ferr) {
					in.err = ferr
				} else if errors.Is(err, io.EOF) || ctx.Err() != nil {
					return nil
				} else {
					return fmt.Errorf("cannot decode request: %w", err)
				}
			}
			select {
			case requests <- in:
			case <-ctx.Done():
				return nil
			}
		}
	})
	g.Go(func() error {
		for {
			select {
			case in, ok := <-requests:
				if !ok {
					return nil
				}
				if in.err != nil {
					if err := s.reject(in); err != nil {
						return err
					}
					continue
				}
				if err := s.dispatch(in.req); err != nil {
					return err
				}
			case <-ctx.Done():
				return nil
			}
		}
	})
	err := g.Wait()
	if !errors.Is(err, errShutdownRequested) {
		s.kernel.Shutdown(false)
	} else {
		err = nil
	}
	tracer().Infof("wire server stopped")
	return err
}

func (s *Server) dispatch(req Request) error {
	s.parent = req.ID
	defer func() { s.parent = "" }()
	tracer().P("id", req.ID).Debugf("%s", req.Type)
	k := s.kernel
	replyType := ReplyType(req.Type)
	switch req.Type {
	case KernelInfoRequest:
		s.send(replyType, k.KernelInfo())
	case ExecuteRequest:
		exec := kernel.ExecuteRequest{Code: req.Code, Silent: req.Silent, StoreHistory: req.StoreHistory}
		k.Execute(exec, func(reply kernel.ExecuteReply) {
			s.send(replyType, reply)
		})
	case CompleteRequest:
		s.send(replyType, k.Complete(req.Code, req.CursorPos))
	case InspectRequest:
		reply, err := k.Inspect(req.Code, req.CursorPos, req.DetailLevel)
		if err != nil {
			s.sendError(err)
			break
		}
		s.send(replyType, reply)
	case IsCompleteRequest:
		s.send(replyType, k.IsComplete(req.Code))
	case HistoryRequest:
		s.send(replyType, HistoryContent{Status: kernel.StatusOK, History: k.History(req.N, req.Unique)})
	case ShutdownRequest:
		if err := k.Shutdown(req.Restart); err != nil {
			s.sendError(err)
			break
		}
		s.send(replyType, ShutdownContent{Status: kernel.StatusOK, Restart: req.Restart})
		if !req.Restart {
			return errShutdownRequested
		}
	default:
		s.sendError(fmt.Errorf("unknown message type %q", req.Type))
	}
	return s.encErr
}

// reject answers a malformed request. Its id is used as parent id if it could
// be decoded.
func (s *Server) reject(in inbound) error {
	s.parent = in.req.ID
	defer func() { s.parent = "" }()
	tracer().Errorf("%v", in.err)
	s.sendError(in.err)
	return s.encErr
}

func (s *Server) sendError(err error) {
	s.send(ErrorReply, ErrorContent{Status: kernel.StatusError, ErrorName: "RequestFailed", ErrorValue: err.Error()})
}

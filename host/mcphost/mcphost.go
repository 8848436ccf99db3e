/*
Package mcphost exposes the xterex kernel to Model Context Protocol clients.
The tools are

	execute   run TeREx code, answering with output, warnings or the error trace
	complete  list keywords completing a prefix
	inspect   describe a global or keyword

MCP clients may call tools concurrently; calls are serialized, as the kernel
executes one request at a time.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package mcphost

import (
	"context"
	"strings"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/xterex/kernel"
)

// tracer traces with key 'xterex.host'.
func tracer() tracing.Trace {
	return tracing.Select("xterex.host")
}

// ExecuteInput is the input of the execute tool.
type ExecuteInput struct {
	Code string `json:"code" jsonschema:"TeREx source text to compile and run"`
}

// ExecuteOutput is the output of the execute tool.
type ExecuteOutput struct {
	Status         string   `json:"status"`
	ExecutionCount int      `json:"execution_count"`
	Output         string   `json:"output,omitempty"`
	Warnings       []string `json:"warnings,omitempty"`
	ErrorName      string   `json:"error_name,omitempty"`
	ErrorValue     string   `json:"error_value,omitempty"`
	Traceback      []string `json:"traceback,omitempty"`
}

// CompleteInput is the input of the complete tool.
type CompleteInput struct {
	Code   string `json:"code" jsonschema:"source text"`
	Cursor int    `json:"cursor" jsonschema:"cursor position in code points"`
}

// InspectInput is the input of the inspect tool.
type InspectInput struct {
	Code   string `json:"code" jsonschema:"source text"`
	Cursor int    `json:"cursor" jsonschema:"cursor position in code points"`
	Detail int    `json:"detail,omitempty" jsonschema:"detail level, 0 or 1"`
}

// Host serves a kernel as MCP tools.
type Host struct {
	mu       sync.Mutex
	kernel   *kernel.Kernel
	warnings []string // warnings of the execute call in progress
	server   *mcp.Server
}

// New creates a host and starts its kernel. name and version identify the
// server to clients.
func New(name, version string) (*Host, error) {
	h := &Host{}
	h.kernel = kernel.New(kernel.PublisherFunc(h.publish))
	if err := h.kernel.Start(); err != nil {
		return nil, err
	}
	h.server = mcp.NewServer(&mcp.Implementation{Name: name, Version: version}, nil)
	mcp.AddTool(h.server, &mcp.Tool{
		Name:        "execute",
		Description: "Compile and run TeREx code in a persistent session. Globals survive between calls.",
	}, h.execute)
	mcp.AddTool(h.server, &mcp.Tool{
		Name:        "complete",
		Description: "Complete the TeREx keyword left of the cursor.",
	}, h.complete)
	mcp.AddTool(h.server, &mcp.Tool{
		Name:        "inspect",
		Description: "Describe the TeREx global or keyword under the cursor.",
	}, h.inspect)
	return h, nil
}

// Server returns the MCP server of the host.
func (h *Host) Server() *mcp.Server {
	return h.server
}

// Run serves the host over stdin and stdout until the client disconnects. The
// kernel is shut down on return.
func (h *Host) Run(ctx context.Context) error {
	defer h.Close()
	tracer().Infof("serving MCP on stdio")
	return h.server.Run(ctx, &mcp.StdioTransport{})
}

// Close shuts down the kernel.
func (h *Host) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.kernel.Shutdown(false)
}

func (h *Host) publish(channel, text string) {
	h.warnings = append(h.warnings, strings.TrimSuffix(text, "\n"))
}

func (h *Host) execute(ctx context.Context, req *mcp.CallToolRequest, in ExecuteInput) (*mcp.CallToolResult, ExecuteOutput, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.warnings = nil
	var reply kernel.ExecuteReply
	err := h.kernel.Execute(kernel.ExecuteRequest{Code: in.Code, StoreHistory: true}, func(r kernel.ExecuteReply) {
		reply = r
	})
	if err != nil {
		return nil, ExecuteOutput{}, err
	}
	out := ExecuteOutput{
		Status:         reply.Status,
		ExecutionCount: reply.ExecutionCount,
		Warnings:       h.warnings,
		ErrorName:      reply.ErrorName,
		ErrorValue:     reply.ErrorValue,
		Traceback:      reply.Traceback,
	}
	text := strings.Join(append(append([]string(nil), h.warnings...), reply.Traceback...), "\n")
	if reply.PublishedResult != nil {
		out.Output = reply.PublishedResult.Text
		text = strings.Join(append(append([]string(nil), h.warnings...), out.Output), "\n")
	}
	result := &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: reply.Status != kernel.StatusOK,
	}
	return result, out, nil
}

func (h *Host) complete(ctx context.Context, req *mcp.CallToolRequest, in CompleteInput) (*mcp.CallToolResult, kernel.CompleteReply, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return nil, h.kernel.Complete(in.Code, in.Cursor), nil
}

func (h *Host) inspect(ctx context.Context, req *mcp.CallToolRequest, in InspectInput) (*mcp.CallToolResult, kernel.InspectReply, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	reply, err := h.kernel.Inspect(in.Code, in.Cursor, in.Detail)
	return nil, reply, err
}

// Package wire frames and decodes the newline-delimited JSON-RPC traffic
// that flows between an MCP client and server over stdio.
package wire

import (
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
)

// Direction indicates which way a message is flowing through the
// interceptor.
type Direction int

const (
	ClientToServer Direction = iota
	ServerToClient
)

func (d Direction) String() string {
	switch d {
	case ClientToServer:
		return "client->server"
	case ServerToClient:
		return "server->client"
	default:
		return "unknown"
	}
}

// Message wraps one line of wire traffic. Raw is always populated, even
// when Decoded is nil because the line didn't parse as JSON-RPC — the
// interceptor forwards such lines verbatim rather than dropping them.
type Message struct {
	Raw       []byte
	Direction Direction
	Decoded   jsonrpc.Message
}

// IsToolCall reports whether this message is a tools/call request.
func (m *Message) IsToolCall() bool {
	req, ok := m.Decoded.(*jsonrpc.Request)
	return ok && req.Method == "tools/call"
}

// Request returns the underlying request, or nil if this message isn't one.
func (m *Message) Request() *jsonrpc.Request {
	req, _ := m.Decoded.(*jsonrpc.Request)
	return req
}

// ToolCallParams is the shape of a tools/call request's params.
type ToolCallParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// ParseToolCall extracts name and arguments from a tools/call request.
// Returns ok=false if this message isn't a tools/call or params don't parse.
func (m *Message) ParseToolCall() (ToolCallParams, bool) {
	req := m.Request()
	if req == nil || req.Method != "tools/call" || req.Params == nil {
		return ToolCallParams{}, false
	}
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return ToolCallParams{}, false
	}
	return params, true
}

// RawID extracts the request's "id" field straight from the raw bytes.
// jsonrpc.ID doesn't round-trip cleanly through interface{}, so denial
// responses are built from the wire bytes rather than the decoded ID.
func (m *Message) RawID() json.RawMessage {
	if m.Raw == nil {
		return nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(m.Raw, &fields); err != nil {
		return nil
	}
	return fields["id"]
}

package wire

import (
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
)

// Decode parses raw into a Message. Lines that aren't valid JSON-RPC are
// not an error here — the caller decides whether to forward them
// verbatim or drop them; Decode just reports the parse failure.
func Decode(raw []byte, dir Direction) (*Message, error) {
	decoded, err := jsonrpc.DecodeMessage(raw)
	if err != nil {
		return &Message{Raw: raw, Direction: dir}, err
	}
	return &Message{Raw: raw, Direction: dir, Decoded: decoded}, nil
}

// Encode serializes a JSON-RPC message back to wire bytes.
func Encode(msg jsonrpc.Message) ([]byte, error) {
	return jsonrpc.EncodeMessage(msg)
}

// DenialCode is the JSON-RPC error code used for governance denials. It
// falls in the range reserved for server-implementation-defined errors
// (-32000 to -32099) rather than any code defined by the JSON-RPC spec
// itself.
const DenialCode = -32000

// DenialData carries the classification behind a denial, surfaced to the
// client under the error's "data" field.
type DenialData struct {
	Service   string `json:"service"`
	Operation string `json:"operation"`
	Reason    string `json:"reason,omitempty"`
}

// EncodeDenial builds the newline-terminated JSON-RPC error response for
// a denied tools/call, without invoking or waiting on the target server.
func EncodeDenial(id []byte, message string, data DenialData) []byte {
	return encodeError(id, DenialCode, message, data)
}

func encodeError(id []byte, code int, message string, data any) []byte {
	var idVal any
	if len(id) > 0 {
		idVal = rawJSON(id)
	}
	resp := map[string]any{
		"jsonrpc": "2.0",
		"id":      idVal,
		"error": map[string]any{
			"code":    code,
			"message": message,
			"data":    data,
		},
	}
	b, _ := json.Marshal(resp)
	return append(b, '\n')
}

// rawJSON exists so id (already-raw JSON bytes) is embedded verbatim in
// the response rather than re-escaped as a string.
type rawJSON []byte

func (r rawJSON) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("null"), nil
	}
	return r, nil
}

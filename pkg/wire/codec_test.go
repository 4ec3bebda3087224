package wire

import (
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
)

func TestDecode_ToolCallRequest(t *testing.T) {
	raw := []byte(`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"github_delete_repo","arguments":{"repo":"x"}}}`)

	msg, err := Decode(raw, ClientToServer)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !msg.IsToolCall() {
		t.Fatal("IsToolCall() = false, want true")
	}

	params, ok := msg.ParseToolCall()
	if !ok {
		t.Fatal("ParseToolCall() ok = false")
	}
	if params.Name != "github_delete_repo" {
		t.Errorf("Name = %q", params.Name)
	}
	if params.Arguments["repo"] != "x" {
		t.Errorf("Arguments[repo] = %v", params.Arguments["repo"])
	}
}

func TestDecode_NonJSONPassesThroughAsError(t *testing.T) {
	msg, err := Decode([]byte("not json"), ServerToClient)
	if err == nil {
		t.Fatal("Decode: expected error for non-JSON line")
	}
	if msg == nil || string(msg.Raw) != "not json" {
		t.Fatalf("Decode should still return Raw for passthrough, got %+v", msg)
	}
}

func TestMessage_RawID(t *testing.T) {
	msg := &Message{Raw: []byte(`{"jsonrpc":"2.0","id":"abc-1","method":"tools/call"}`)}
	id := msg.RawID()
	if string(id) != `"abc-1"` {
		t.Errorf("RawID() = %s, want \"abc-1\"", id)
	}
}

func TestEncodeDenial_PreservesRequestID(t *testing.T) {
	out := EncodeDenial([]byte(`42`), "denied by policy", DenialData{Service: "github", Operation: "delete", Reason: "destructive"})

	var decoded struct {
		JSONRPC string `json:"jsonrpc"`
		ID      int    `json:"id"`
		Error   struct {
			Code    int        `json:"code"`
			Message string     `json:"message"`
			Data    DenialData `json:"data"`
		} `json:"error"`
	}
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("unmarshal denial: %v", err)
	}
	if decoded.ID != 42 {
		t.Errorf("ID = %d, want 42", decoded.ID)
	}
	if decoded.Error.Code != DenialCode {
		t.Errorf("Code = %d, want %d", decoded.Error.Code, DenialCode)
	}
	if decoded.Error.Data.Service != "github" || decoded.Error.Data.Operation != "delete" {
		t.Errorf("Data = %+v", decoded.Error.Data)
	}
	if out[len(out)-1] != '\n' {
		t.Error("EncodeDenial output must end with a newline")
	}
}

func TestEncodeDenial_NullID(t *testing.T) {
	out := EncodeDenial(nil, "denied", DenialData{Service: "s", Operation: "read"})
	var decoded map[string]any
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["id"] != nil {
		t.Errorf("id = %v, want nil", decoded["id"])
	}
}

func TestEncode_RoundTripsResponse(t *testing.T) {
	id, err := jsonrpc.MakeID(float64(7))
	if err != nil {
		t.Fatalf("MakeID: %v", err)
	}
	resp := &jsonrpc.Response{ID: id, Result: json.RawMessage(`{"ok":true}`)}
	out, err := Encode(resp)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(out) == 0 {
		t.Fatal("Encode produced empty output")
	}
}

package mcp_test

import (
	"encoding/json"
	"testing"

	mcp "github.com/hypermindz/mediamath-mcp"
)

func TestMustString_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    mcp.MustString
		wantErr bool
	}{
		{
			name:  "string input",
			input: `"req-1"`,
			want:  mcp.MustString("req-1"),
		},
		{
			name:  "integer input",
			input: `42`,
			want:  mcp.MustString("42"),
		},
		{
			name:  "float input",
			input: `42.0`,
			want:  mcp.MustString("42"),
		},
		{
			name:    "invalid type",
			input:   `{"key": "value"}`,
			wantErr: true,
		},
		{
			name:    "invalid JSON",
			input:   `invalid`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got mcp.MustString
			err := json.Unmarshal([]byte(tt.input), &got)

			if (err != nil) != tt.wantErr {
				t.Errorf("MustString.UnmarshalJSON() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr && got != tt.want {
				t.Errorf("MustString.UnmarshalJSON() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMustString_MarshalJSON(t *testing.T) {
	bs, err := json.Marshal(mcp.MustString("7"))
	if err != nil {
		t.Fatalf("MustString.MarshalJSON() error = %v", err)
	}
	if string(bs) != `"7"` {
		t.Errorf("MustString.MarshalJSON() = %s, want %q", bs, `"7"`)
	}
}

func TestJSONRPCMessage_RoundTrip(t *testing.T) {
	in := mcp.JSONRPCMessage{
		JSONRPC: mcp.JSONRPCVersion,
		ID:      mcp.MustString("1"),
		Method:  mcp.MethodToolsCall,
		Params:  json.RawMessage(`{"name":"find_campaigns","arguments":{}}`),
	}

	bs, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var out mcp.JSONRPCMessage
	if err := json.Unmarshal(bs, &out); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if out.JSONRPC != in.JSONRPC || out.ID != in.ID || out.Method != in.Method {
		t.Errorf("round trip mismatch: got %+v, want %+v", out, in)
	}
}

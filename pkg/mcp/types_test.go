package mcp

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewErrorResponse_EchoesRawID(t *testing.T) {
	resp := NewErrorResponse(json.RawMessage(`"abc-1"`), ErrorCodeMethodNotFound, fmt.Sprintf(MessageMethodNotFound, "foo/bar"))
	b, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":"abc-1","error":{"code":-32601,"message":"Method not found: foo/bar"}}`, string(b))
}

func TestNewResponse_NilIDBecomesNull(t *testing.T) {
	b, err := json.Marshal(NewResponse(nil, map[string]any{}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":null,"result":{}}`, string(b))
}

func TestInitializedResult_Shape(t *testing.T) {
	res := InitializedResult{
		ProtocolVersion: LatestProtocolVersion,
		ServerInfo:      ImplementationSchema{Name: "xint", Version: "1.0.0"},
	}
	b, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"protocolVersion":"2024-11-05","capabilities":{"tools":{}},"serverInfo":{"name":"xint","version":"1.0.0"}}`, string(b))
}

func TestIsNotification(t *testing.T) {
	cases := map[string]bool{
		Initialized:               true,
		NotificationInitialized:   true,
		"notifications/cancelled": true,
		Initialize:                false,
		ToolsCall:                 false,
	}
	for method, want := range cases {
		req := JSONRPCRequest{Method: method}
		assert.Equal(t, want, req.IsNotification(), method)
	}
}

func TestJSONRPCRequest_KeepsIDVerbatim(t *testing.T) {
	var req JSONRPCRequest
	require.NoError(t, json.Unmarshal([]byte(`{"jsonrpc":"2.0","id":{"n":1},"method":"ping"}`), &req))
	assert.Equal(t, `{"n":1}`, string(req.ID))
}

package mcp

import (
	"encoding/json"
	"strings"
)

type (
	// JSONRPCRequest is an inbound JSON-RPC message. ID is kept raw so it can
	// be echoed back byte for byte.
	JSONRPCRequest struct {
		JSONRPC string          `json:"jsonrpc"`
		ID      json.RawMessage `json:"id,omitempty"`
		Method  string          `json:"method"`
		Params  json.RawMessage `json:"params,omitempty"`
	}

	// JSONRPCResponse is a successful reply
	JSONRPCResponse struct {
		JSONRPC string          `json:"jsonrpc"`
		ID      json.RawMessage `json:"id"`
		Result  any             `json:"result"`
	}

	// JSONRPCErrorResponse is a failed reply
	JSONRPCErrorResponse struct {
		JSONRPC string          `json:"jsonrpc"`
		ID      json.RawMessage `json:"id"`
		Error   JSONRPCError    `json:"error"`
	}

	// JSONRPCError is the error object of a failed reply
	JSONRPCError struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}

	// ToolSchema represents a tool definition
	ToolSchema struct {
		// The name of the tool
		Name string `json:"name"`
		// A human-readable description of the tool
		Description string `json:"description"`
		// A JSON Schema object defining the expected parameters for the tool
		InputSchema json.RawMessage `json:"inputSchema"`
	}

	// ListToolsResult represents the result of a tools/list request
	ListToolsResult struct {
		Tools []ToolSchema `json:"tools"`
	}

	// CallToolParams represents parameters for a tools/call request
	CallToolParams struct {
		// The name of the tool to call
		Name string `json:"name"`
		// The arguments to pass to the tool
		Arguments json.RawMessage `json:"arguments"`
	}

	// TextContent represents a text content item
	TextContent struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}

	// CallToolResult represents the result of a tools/call request
	CallToolResult struct {
		Content []TextContent `json:"content"`
	}

	// ImplementationSchema describes the name and version of an MCP implementation
	ImplementationSchema struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	}

	// ServerCapabilitiesSchema represents capabilities a server may support
	ServerCapabilitiesSchema struct {
		Tools ToolsCapabilitySchema `json:"tools"`
	}

	// ToolsCapabilitySchema is serialized as an empty object
	ToolsCapabilitySchema struct{}

	// InitializedResult is the result of an initialize request
	InitializedResult struct {
		// The version of the Model Context Protocol that the server wants to use
		ProtocolVersion string `json:"protocolVersion"`
		// Server capabilities
		Capabilities ServerCapabilitiesSchema `json:"capabilities"`
		// Server implementation information
		ServerInfo ImplementationSchema `json:"serverInfo"`
	}
)

// IsNotification reports whether the request is a notification that must not
// be answered.
func (r *JSONRPCRequest) IsNotification() bool {
	return r.Method == Initialized || strings.HasPrefix(r.Method, NotificationPrefix)
}

// NewTextContent wraps text into a single content item
func NewTextContent(text string) TextContent {
	return TextContent{Type: TextContentType, Text: text}
}

// NewResponse builds a success envelope echoing id
func NewResponse(id json.RawMessage, result any) JSONRPCResponse {
	return JSONRPCResponse{JSONRPC: JSPNRPCVersion, ID: id, Result: result}
}

// NewErrorResponse builds an error envelope echoing id
func NewErrorResponse(id json.RawMessage, code int, message string) JSONRPCErrorResponse {
	return JSONRPCErrorResponse{
		JSONRPC: JSPNRPCVersion,
		ID:      id,
		Error:   JSONRPCError{Code: code, Message: message},
	}
}

package mcp

// Protocol versions
const (
	ProtocolVersion20241105 = "2024-11-05"
	LatestProtocolVersion   = ProtocolVersion20241105
	JSPNRPCVersion          = "2.0"
)

// Methods
const (
	Initialize              = "initialize"
	Initialized             = "initialized"
	NotificationInitialized = "notifications/initialized"
	NotificationPrefix      = "notifications/"
	Ping                    = "ping"
	ToolsList               = "tools/list"
	ToolsCall               = "tools/call"
)

// Content types
const (
	TextContentType = "text"
)

// Error codes for MCP protocol
// Standard JSON-RPC error codes
const (
	ErrorCodeParseError     = -32700
	ErrorCodeInvalidRequest = -32600
	ErrorCodeMethodNotFound = -32601
	ErrorCodeInvalidParams  = -32602
	ErrorCodeInternalError  = -32603
)

const (
	MessageMethodNotFound = "Method not found: %s"
)

package cnst

// Tracer names used across the services
const (
	// TraceCore is the tracer name for dispatcher logic
	TraceCore = "xint/core"
	// TracePackageAPI is the tracer name for the package API client
	TracePackageAPI = "xint/packageapi"
)

// Common span names and prefixes
const (
	// SpanMCPMethodPrefix prefixes spans for handling MCP methods
	SpanMCPMethodPrefix = "mcp.method."
	// SpanToolExecute represents running a tool handler
	SpanToolExecute = "mcp.tool.execute"
	// SpanPackageAPICall represents one package API round trip
	SpanPackageAPICall = "packageapi.call"
)

// Common attribute keys
const (
	AttrTransportType    = "transport.type"
	AttrMCPTool          = "mcp.tool"
	AttrMCPSessionID     = "mcp.session_id"
	AttrMCPPolicyMode    = "mcp.policy_mode"
	AttrErrorReason      = "error.reason"
	AttrErrorKind        = "error.kind"
	AttrMCPErrorCode     = "mcp.error_code"
	AttrHTTPMethod       = "http.request.method"
	AttrHTTPPath         = "url.path"
	AttrHTTPStatusCode   = "http.status_code"
	AttrHTTPErrorPreview = "http.response.error_preview"
)

package errorx

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Kind tags an error with its place in the failure taxonomy
type Kind string

const (
	KindProtocolParse         Kind = "ProtocolParseError"
	KindPolicyDenied          Kind = "PolicyDenied"
	KindBudgetDenied          Kind = "BudgetDenied"
	KindBudgetUnavailable     Kind = "BudgetUnavailable"
	KindToolArgumentMissing   Kind = "ToolArgumentMissing"
	KindUnknownTool           Kind = "UnknownTool"
	KindUpstreamRequestFailed Kind = "UpstreamRequestFailed"
	KindUpstreamStatus        Kind = "UpstreamStatusError"
	KindResponseDecodeFailed  Kind = "ResponseDecodeFailed"
	KindInvalidResponseShape  Kind = "InvalidResponseShape"
	KindMissingCitations      Kind = "MissingCitations"
	KindUncitedClaim          Kind = "UncitedClaim"
	KindWebhookRejected       Kind = "WebhookRejected"
	KindConfigurationMissing  Kind = "ConfigurationMissing"
)

// ErrorCategory groups kinds for logs and metrics
type ErrorCategory string

const (
	CategoryValidation    ErrorCategory = "validation"
	CategoryAuthorization ErrorCategory = "authorization"
	CategoryExternal      ErrorCategory = "external"
	CategoryIntegrity     ErrorCategory = "integrity"
	CategoryConfiguration ErrorCategory = "configuration"
	CategoryInternal      ErrorCategory = "internal"
)

var kindCategories = map[Kind]ErrorCategory{
	KindProtocolParse:         CategoryValidation,
	KindToolArgumentMissing:   CategoryValidation,
	KindUnknownTool:           CategoryValidation,
	KindWebhookRejected:       CategoryValidation,
	KindPolicyDenied:          CategoryAuthorization,
	KindBudgetDenied:          CategoryAuthorization,
	KindBudgetUnavailable:     CategoryInternal,
	KindUpstreamRequestFailed: CategoryExternal,
	KindUpstreamStatus:        CategoryExternal,
	KindResponseDecodeFailed:  CategoryExternal,
	KindInvalidResponseShape:  CategoryIntegrity,
	KindMissingCitations:      CategoryIntegrity,
	KindUncitedClaim:          CategoryIntegrity,
	KindConfigurationMissing:  CategoryConfiguration,
}

// Category returns the category of the kind
func (k Kind) Category() ErrorCategory {
	if c, ok := kindCategories[k]; ok {
		return c
	}
	return CategoryInternal
}

// Error is a tagged failure. Diagnostic, when set, is the structured payload
// sent to clients in place of Message.
type Error struct {
	Kind       Kind
	Message    string
	Diagnostic any
	Err        error
}

// Error implements the error interface
func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// RPCMessage renders the text placed in a JSON-RPC error message
func (e *Error) RPCMessage() string {
	if e.Diagnostic == nil {
		return e.Message
	}
	out, err := json.Marshal(e.Diagnostic)
	if err != nil {
		return e.Message
	}
	return string(out)
}

// New creates an error of the given kind
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an error of the given kind that keeps err as its cause
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of the first tagged error in the chain, or "" if
// there is none
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// RPCMessage renders any error for a JSON-RPC error message
func RPCMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.RPCMessage()
	}
	return err.Error()
}

package errorx

import "fmt"

const (
	CodePolicyDenied = "POLICY_DENIED"
	CodeBudgetDenied = "BUDGET_DENIED"
)

// PolicyDenial is the diagnostic sent when the policy mode is too low
type PolicyDenial struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Tool         string `json:"tool"`
	PolicyMode   string `json:"policy_mode"`
	RequiredMode string `json:"required_mode"`
}

// BudgetDenial is the diagnostic sent when the daily budget is spent
type BudgetDenial struct {
	Code         string  `json:"code"`
	Message      string  `json:"message"`
	Tool         string  `json:"tool"`
	SpentUSD     float64 `json:"spent_usd"`
	LimitUSD     float64 `json:"limit_usd"`
	RemainingUSD float64 `json:"remaining_usd"`
}

// NewPolicyDenied builds a PolicyDenied error for tool
func NewPolicyDenied(tool, mode, required string) *Error {
	msg := fmt.Sprintf("MCP tool '%s' requires '%s' policy mode", tool, required)
	return &Error{
		Kind:    KindPolicyDenied,
		Message: msg,
		Diagnostic: PolicyDenial{
			Code:         CodePolicyDenied,
			Message:      msg,
			Tool:         tool,
			PolicyMode:   mode,
			RequiredMode: required,
		},
	}
}

// NewBudgetDenied builds a BudgetDenied error for tool
func NewBudgetDenied(tool string, spent, limit, remaining float64) *Error {
	msg := fmt.Sprintf("Daily budget exceeded ($%.2f / $%.2f)", spent, limit)
	return &Error{
		Kind:    KindBudgetDenied,
		Message: msg,
		Diagnostic: BudgetDenial{
			Code:         CodeBudgetDenied,
			Message:      msg,
			Tool:         tool,
			SpentUSD:     spent,
			LimitUSD:     limit,
			RemainingUSD: remaining,
		},
	}
}

// Package policy decides which tools a server may run in its current mode.
package policy

import (
	"github.com/xint-dev/xint/internal/common/cnst"
	"github.com/xint-dev/xint/internal/common/errorx"
	"github.com/xint-dev/xint/internal/tools"
)

// requiredModes lists tools that need more than read_only. They mutate
// follow or bookmark state, or publish to the shared catalog.
var requiredModes = map[tools.Name]cnst.PolicyMode{
	tools.Bookmarks:      cnst.PolicyEngagement,
	tools.Diff:           cnst.PolicyEngagement,
	tools.PackagePublish: cnst.PolicyEngagement,
}

// RequiredMode returns the lowest mode allowed to run tool
func RequiredMode(tool tools.Name) cnst.PolicyMode {
	if m, ok := requiredModes[tool]; ok {
		return m
	}
	return cnst.PolicyReadOnly
}

// Allowed reports whether current dominates required
func Allowed(current, required cnst.PolicyMode) bool {
	return current >= required
}

// Gate checks tool calls against a fixed mode
type Gate struct {
	mode cnst.PolicyMode
}

func NewGate(mode cnst.PolicyMode) *Gate {
	return &Gate{mode: mode}
}

// Mode returns the mode the gate was built with
func (g *Gate) Mode() cnst.PolicyMode {
	return g.mode
}

// Check returns a PolicyDenied error when tool needs a higher mode
func (g *Gate) Check(tool tools.Name) error {
	required := RequiredMode(tool)
	if Allowed(g.mode, required) {
		return nil
	}
	return errorx.NewPolicyDenied(tool.String(), g.mode.String(), required.String())
}

package cnst

import "fmt"

// PolicyMode is the capability tier a server runs with. Modes are ordered,
// a higher mode allows everything a lower one does.
type PolicyMode int

const (
	PolicyReadOnly PolicyMode = iota
	PolicyEngagement
	PolicyModeration
)

var policyModeNames = map[PolicyMode]string{
	PolicyReadOnly:   "read_only",
	PolicyEngagement: "engagement",
	PolicyModeration: "moderation",
}

func (m PolicyMode) String() string {
	if s, ok := policyModeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("policy(%d)", int(m))
}

// ParsePolicyMode accepts the names produced by String, plus a few aliases
func ParsePolicyMode(s string) (PolicyMode, error) {
	switch s {
	case "read_only", "readonly", "read-only", "":
		return PolicyReadOnly, nil
	case "engagement":
		return PolicyEngagement, nil
	case "moderation":
		return PolicyModeration, nil
	}
	return PolicyReadOnly, fmt.Errorf("%w: %q", ErrUnknownPolicyMode, s)
}

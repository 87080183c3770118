package version

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var Version string

// Get returns the release version of xint
func Get() string {
	return strings.TrimSpace(Version)
}

// Protocol returns the version reported in serverInfo, without the leading v
func Protocol() string {
	return strings.TrimPrefix(Get(), "v")
}

// Package webhook admits user supplied callback URLs before anything dials them.
package webhook

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/ifuryst/lol"

	"github.com/xint-dev/xint/internal/common/cnst"
	"github.com/xint-dev/xint/internal/common/config"
	"github.com/xint-dev/xint/internal/common/errorx"
	"github.com/xint-dev/xint/pkg/utils"
)

// Reason tells why a URL was rejected
type Reason string

const (
	InvalidURL            Reason = "InvalidUrl"
	CredentialsNotAllowed Reason = "CredentialsNotAllowed"
	MissingHost           Reason = "MissingHost"
	InsecureScheme        Reason = "InsecureScheme"
	HostNotAllowed        Reason = "HostNotAllowed"
)

// RejectedError is returned by Validate
type RejectedError struct {
	Reason Reason
	Host   string
}

func (e *RejectedError) Error() string {
	switch e.Reason {
	case CredentialsNotAllowed:
		return "Webhook URL must not include credentials."
	case MissingHost:
		return "Webhook URL must include a host."
	case InsecureScheme:
		return "Webhook URL must use https:// (http:// is only allowed for localhost/127.0.0.1/::1)."
	case HostNotAllowed:
		return fmt.Sprintf("Webhook host '%s' is not allowed. Set %s to include it.", e.Host, cnst.EnvWebhookAllowedHosts)
	}
	return "Invalid webhook URL."
}

var loopbackHosts = map[string]bool{
	"localhost": true,
	"127.0.0.1": true,
	"::1":       true,
}

// Validate checks rawURL against the scheme, credential and allowlist rules
// and returns its canonical form. allowlist is a comma separated list of
// hosts; a "*.suffix" entry matches suffix and its subdomains. An empty
// allowlist admits any host.
func Validate(rawURL, allowlist string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Scheme == "" || u.Opaque != "" {
		return "", &RejectedError{Reason: InvalidURL}
	}
	if u.User != nil {
		if _, hasPassword := u.User.Password(); hasPassword || u.User.Username() != "" {
			return "", &RejectedError{Reason: CredentialsNotAllowed}
		}
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", &RejectedError{Reason: MissingHost}
	}

	scheme := strings.ToLower(u.Scheme)
	switch {
	case scheme == "https":
	case scheme == "http" && loopbackHosts[host]:
	default:
		return "", &RejectedError{Reason: InsecureScheme, Host: host}
	}

	rules := ParseAllowlist(allowlist)
	if len(rules) > 0 && !hostAllowed(host, rules) {
		return "", &RejectedError{Reason: HostNotAllowed, Host: host}
	}

	return canonical(u, scheme), nil
}

// ParseAllowlist splits, trims, lowercases and de-duplicates allowlist rules
func ParseAllowlist(allowlist string) []string {
	rules := utils.SplitCSV(strings.ToLower(allowlist))
	if len(rules) == 0 {
		return nil
	}
	return lol.UniqSlice(rules)
}

func hostAllowed(host string, rules []string) bool {
	for _, rule := range rules {
		if suffix, ok := strings.CutPrefix(rule, "*."); ok {
			if host == suffix || strings.HasSuffix(host, "."+suffix) {
				return true
			}
			continue
		}
		if host == rule {
			return true
		}
	}
	return false
}

func canonical(u *url.URL, scheme string) string {
	c := *u
	c.Scheme = scheme
	c.User = nil
	c.Host = strings.ToLower(c.Host)
	if c.Path == "" && c.RawPath == "" {
		c.Path = "/"
	}
	return c.String()
}

// Checker validates URLs against the allowlist found in settings
type Checker struct {
	settings config.Settings
}

func NewChecker(settings config.Settings) *Checker {
	return &Checker{settings: settings}
}

// Validate reads the allowlist on every call so edits to the environment
// take effect without a restart. Rejections are tagged WebhookRejected.
func (c *Checker) Validate(rawURL string) (string, error) {
	allowlist, _ := c.settings.Get(cnst.EnvWebhookAllowedHosts)
	canonicalURL, err := Validate(rawURL, allowlist)
	if err != nil {
		return "", errorx.Wrap(errorx.KindWebhookRejected, err, "%s", err.Error())
	}
	return canonicalURL, nil
}

// ReasonOf extracts the rejection reason from err, if any
func ReasonOf(err error) (Reason, bool) {
	var rejected *RejectedError
	if errors.As(err, &rejected) {
		return rejected.Reason, true
	}
	return "", false
}

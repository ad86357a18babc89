// Package dbname enforces the policy linking a tenant's configured
// database name to its tenant identifier. The check is a security
// control: it runs for every non-default tenant regardless of whether
// the convenience property validation is enabled.
package dbname

import (
	"errors"
	"regexp"
	"strings"
)

// Placeholder database names pass validation unconditionally so that
// templated defaults survive early validation stages.
const placeholder = "ChangeMe"

// Mode governs how a tenant's database name must relate to its tenant
// identifier.
type Mode int

const (
	// ModeNone disables the check; validation always passes.
	ModeNone Mode = iota
	// ModeEqual requires the database name to equal the tenant id exactly.
	ModeEqual
	// ModePrefix requires the database name to start with the tenant id.
	ModePrefix
	// ModeContains requires the database name to contain the tenant id.
	ModeContains
)

func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "NONE"
	case ModeEqual:
		return "EQUAL"
	case ModePrefix:
		return "PREFIX"
	case ModeContains:
		return "CONTAINS"
	default:
		return "EQUAL"
	}
}

// ParseMode reads a mode from configuration. Unknown or blank input
// falls back to ModeEqual, the strictest non-trivial policy.
func ParseMode(s string) Mode {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "NONE":
		return ModeNone
	case "EQUAL":
		return ModeEqual
	case "PREFIX":
		return ModePrefix
	case "CONTAINS":
		return ModeContains
	default:
		return ModeEqual
	}
}

// urlPattern is the strict scheme-aware form of a JDBC-style URL:
// jdbc:<subprotocol>://<host>[:port]/<database>[?params]
var urlPattern = regexp.MustCompile(`^jdbc:[A-Za-z0-9]+://[^/?#]+/([^/?#]+)`)

// Extract parses the database name out of a JDBC-style URL: the path
// segment after the last '/' and before any '?' query. The strict
// pattern is preferred; plain string splitting is the fallback for URLs
// the pattern does not match.
func Extract(jdbcURL string) (string, bool) {
	if m := urlPattern.FindStringSubmatch(jdbcURL); m != nil {
		return m[1], true
	}

	idx := strings.LastIndex(jdbcURL, "/")
	if idx < 0 || idx == len(jdbcURL)-1 {
		return "", false
	}
	name := jdbcURL[idx+1:]
	if q := strings.Index(name, "?"); q >= 0 {
		name = name[:q]
	}
	if name == "" {
		return "", false
	}
	return name, true
}

// Validate checks the database-name policy for a tenant. Extraction
// failure fails validation, except under ModeNone. A placeholder
// database name passes unconditionally. Exempting the default tenant is
// the caller's responsibility; it is a structural exception, not a mode.
func Validate(tenantID, jdbcURL string, mode Mode) bool {
	if mode == ModeNone {
		return true
	}

	name, ok := Extract(jdbcURL)
	if !ok {
		return false
	}
	if name == placeholder {
		return true
	}

	switch mode {
	case ModePrefix:
		return strings.HasPrefix(name, tenantID)
	case ModeContains:
		return strings.Contains(name, tenantID)
	default:
		return name == tenantID
	}
}

// ErrNoDatabaseName is returned by Rewrite when no database segment can
// be located in the URL.
var ErrNoDatabaseName = errors.New("no database name segment in jdbc url")

// Rewrite replaces the database-name segment of a JDBC-style URL,
// preserving host, port and query parameters exactly:
//
//	Rewrite("jdbc:postgresql://host:5432/olddb?ssl=true", "newdb")
//	  -> "jdbc:postgresql://host:5432/newdb?ssl=true"
func Rewrite(jdbcURL, newName string) (string, error) {
	if loc := urlPattern.FindStringSubmatchIndex(jdbcURL); loc != nil {
		return jdbcURL[:loc[2]] + newName + jdbcURL[loc[3]:], nil
	}

	idx := strings.LastIndex(jdbcURL, "/")
	if idx < 0 || idx == len(jdbcURL)-1 {
		return "", ErrNoDatabaseName
	}
	rest := jdbcURL[idx+1:]
	query := ""
	if q := strings.Index(rest, "?"); q >= 0 {
		query = rest[q:]
	}
	return jdbcURL[:idx+1] + newName + query, nil
}

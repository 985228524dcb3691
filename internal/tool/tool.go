package tool

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"github.com/teachme/platform/internal/domain"
)

// Error codes carried by failed results. Authorization and validation
// failures are normal tool outcomes, not transport faults.
const (
	CodeValidation    = "validation"
	CodeAuthorization = "authorization"
	CodeNotFound      = "not_found"
	CodeInternal      = "internal"
)

// Result is the outcome of one handler execution. It is always serialized
// to a string before being submitted back to the remote agent.
type Result struct {
	OK      bool   `json:"ok"`
	Payload any    `json:"data,omitempty"`
	Code    string `json:"code,omitempty"`
	Err     string `json:"error,omitempty"`
}

// OKResult wraps a payload in a successful result.
func OKResult(payload any) Result {
	return Result{OK: true, Payload: payload}
}

// Fail builds a failed result with the given code.
func Fail(code, msg string) Result {
	return Result{OK: false, Code: code, Err: msg}
}

// String serializes the result for submission. Marshalling a handler
// payload never fails in practice; if it does, the error is reported
// in-band so the batch still completes.
func (r Result) String() string {
	b, err := json.Marshal(r)
	if err != nil {
		return `{"ok":false,"code":"internal","error":"unserializable tool result"}`
	}
	return string(b)
}

// Invocation is one tool-call request extracted from a run observation.
type Invocation struct {
	CallID         string
	Name           string
	NormalizedName string
	RawArguments   string
}

// Context carries the ambient state handlers may need so the remote agent
// does not have to repeat scope ids it never reliably supplies.
type Context struct {
	CallerID uuid.UUID
	Session  *domain.Session
	Binding  *domain.ThreadBinding
	OrgID    *uuid.UUID
	CourseID *uuid.UUID
}

// ActiveOrg resolves the organization in effect, preferring the thread
// binding's scope over the session's active organization.
func (c *Context) ActiveOrg() *uuid.UUID {
	if c.OrgID != nil {
		return c.OrgID
	}
	if c.Binding != nil && c.Binding.OrgID != nil {
		return c.Binding.OrgID
	}
	if c.Session != nil && c.Session.ActiveOrgID != nil {
		return c.Session.ActiveOrgID
	}
	return nil
}

// NormalizeName maps a remote-emitted tool name onto a registry key.
// Lower-cases and collapses every run of non-alphanumerics to a single
// underscore, so "Create-Organization" and "create organization" both
// resolve to "create_organization".
func NormalizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	pending := false
	for _, r := range strings.ToLower(name) {
		alnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !alnum {
			pending = b.Len() > 0
			continue
		}
		if pending {
			b.WriteByte('_')
			pending = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ParseArguments decodes the raw JSON argument payload. An empty payload
// yields an empty map; malformed JSON is a validation failure reported by
// the caller, not a crash.
func ParseArguments(raw string) (map[string]any, error) {
	args := map[string]any{}
	if strings.TrimSpace(raw) == "" {
		return args, nil
	}
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, err
	}
	return args, nil
}

// stringArg fetches a required non-empty string argument.
func stringArg(args map[string]any, key string) (string, bool) {
	v, ok := args[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return strings.TrimSpace(s), true
}

// optionalStringArg fetches a string argument that may be absent.
func optionalStringArg(args map[string]any, key string) string {
	s, _ := stringArg(args, key)
	return s
}

package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Role names used across the platform.
const (
	RoleSuperAdmin string = "super_admin"
	RoleOrgAdmin   string = "organization_admin"
	RoleTeacher    string = "teacher"
	RoleStudent    string = "student"
)

// RoleScope distinguishes platform-wide roles from organization memberships.
type RoleScope string

const (
	ScopeGlobal       RoleScope = "global"
	ScopeOrganization RoleScope = "organization"
)

// RoleBinding is one role a user holds, optionally tied to an organization.
type RoleBinding struct {
	Scope   RoleScope  `json:"scope"`
	Role    string     `json:"role"`
	OrgID   *uuid.UUID `json:"org_id,omitempty"`
	OrgName string     `json:"org_name,omitempty"`
}

// Session is the cached authorization context for one caller.
// Exactly one live session per user; every read slides ExpiresAt forward.
type Session struct {
	UserID      uuid.UUID     `json:"user_id"`
	Roles       []RoleBinding `json:"roles"`
	ActiveRole  string        `json:"active_role"`
	ActiveOrgID *uuid.UUID    `json:"active_org_id,omitempty"`
	ExpiresAt   time.Time     `json:"expires_at"`
}

// HasRole reports whether any binding grants the given role.
func (s *Session) HasRole(role string) bool {
	for _, r := range s.Roles {
		if r.Role == role {
			return true
		}
	}
	return false
}

// OrgRole returns the caller's role within the given organization, or "".
func (s *Session) OrgRole(orgID uuid.UUID) string {
	for _, r := range s.Roles {
		if r.Scope == ScopeOrganization && r.OrgID != nil && *r.OrgID == orgID {
			return r.Role
		}
	}
	return ""
}

// IsSuperAdmin reports whether the caller holds the platform-wide admin role.
func (s *Session) IsSuperAdmin() bool {
	return s.ActiveRole == RoleSuperAdmin || s.HasRole(RoleSuperAdmin)
}

// SessionStore is the TTL-keyed cache contract for sessions.
// Get returns (nil, nil) on a miss; callers rebuild from the database.
// Get slides the TTL forward as a side effect. Put replaces the whole value.
type SessionStore interface {
	Get(ctx context.Context, userID uuid.UUID) (*Session, error)
	Put(ctx context.Context, session *Session) error
	Delete(ctx context.Context, userID uuid.UUID) error
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/teachme/platform/internal/domain"
)

// SessionService resolves the caller's authorization context, rebuilding
// it from the database whenever the cache misses.
type SessionService struct {
	store       domain.SessionStore
	users       domain.UserRepository
	memberships domain.MembershipRepository
	ttl         time.Duration
}

// NewSessionService creates a new session service
func NewSessionService(
	store domain.SessionStore,
	users domain.UserRepository,
	memberships domain.MembershipRepository,
	ttl time.Duration,
) *SessionService {
	return &SessionService{
		store:       store,
		users:       users,
		memberships: memberships,
		ttl:         ttl,
	}
}

// Get returns the caller's session, rebuilding and caching it on a miss.
// A cache hit slides the TTL as a side effect of the store read.
func (s *SessionService) Get(ctx context.Context, userID uuid.UUID) (*domain.Session, error) {
	session, err := s.store.Get(ctx, userID)
	if err != nil {
		// A broken cache must not lock users out; rebuild from the source
		// of truth instead.
		log.Warn().Err(err).Stringer("user_id", userID).Msg("session cache read failed, rebuilding")
	}
	if session != nil {
		return session, nil
	}
	return s.rebuild(ctx, userID)
}

// rebuild assembles the session from users, global roles, and memberships.
func (s *SessionService) rebuild(ctx context.Context, userID uuid.UUID) (*domain.Session, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user for session: %w", err)
	}

	var bindings []domain.RoleBinding

	globals, err := s.users.GlobalRoles(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load global roles: %w", err)
	}
	for _, role := range globals {
		bindings = append(bindings, domain.RoleBinding{
			Scope: domain.ScopeGlobal,
			Role:  role,
		})
	}

	memberships, err := s.memberships.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load memberships: %w", err)
	}
	for _, m := range memberships {
		orgID := m.OrgID
		bindings = append(bindings, domain.RoleBinding{
			Scope:   domain.ScopeOrganization,
			Role:    m.Role,
			OrgID:   &orgID,
			OrgName: m.OrgName,
		})
	}

	session := &domain.Session{
		UserID: user.ID,
		Roles:  bindings,
	}
	if active := pickActiveRole(bindings); active != nil {
		session.ActiveRole = active.Role
		session.ActiveOrgID = active.OrgID
	}

	if err := s.store.Put(ctx, session); err != nil {
		log.Warn().Err(err).Stringer("user_id", userID).Msg("failed to cache rebuilt session")
	}
	return session, nil
}

// pickActiveRole chooses the default scope for a fresh session, most
// privileged first.
func pickActiveRole(bindings []domain.RoleBinding) *domain.RoleBinding {
	precedence := []string{
		domain.RoleSuperAdmin,
		domain.RoleOrgAdmin,
		domain.RoleTeacher,
		domain.RoleStudent,
	}
	for _, role := range precedence {
		for i := range bindings {
			if bindings[i].Role == role {
				return &bindings[i]
			}
		}
	}
	if len(bindings) > 0 {
		return &bindings[0]
	}
	return nil
}

// SwitchRole changes the active role, validated against held roles.
// orgName disambiguates when the same role is held in several orgs.
func (s *SessionService) SwitchRole(ctx context.Context, userID uuid.UUID, role, orgName string) (*domain.Session, error) {
	session, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	var target *domain.RoleBinding
	for i := range session.Roles {
		b := &session.Roles[i]
		if b.Role != role {
			continue
		}
		if orgName != "" && b.OrgName != orgName {
			continue
		}
		target = b
		break
	}
	if target == nil {
		return nil, fmt.Errorf("%w: role %q not held", ErrForbidden, role)
	}

	session.ActiveRole = target.Role
	session.ActiveOrgID = target.OrgID
	if err := s.store.Put(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	return session, nil
}

// Logout deletes the cached session. The next access rebuilds it.
func (s *SessionService) Logout(ctx context.Context, userID uuid.UUID) error {
	return s.store.Delete(ctx, userID)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/teachme/platform/internal/assistant"
	"github.com/teachme/platform/internal/domain"
)

// ThreadService manages thread bindings: the persistent mapping from
// (caller, agent) to a remote conversation thread.
type ThreadService struct {
	threads     domain.ThreadRepository
	exchanges   domain.ExchangeRepository
	agents      domain.AgentRepository
	memberships domain.MembershipRepository
	client      assistant.Client
}

// NewThreadService creates a new thread service
func NewThreadService(
	threads domain.ThreadRepository,
	exchanges domain.ExchangeRepository,
	agents domain.AgentRepository,
	memberships domain.MembershipRepository,
	client assistant.Client,
) *ThreadService {
	return &ThreadService{
		threads:     threads,
		exchanges:   exchanges,
		agents:      agents,
		memberships: memberships,
		client:      client,
	}
}

// ResolveOrCreate returns the caller's active binding for an agent,
// creating the remote thread and the binding when none exists. Sequential
// calls are idempotent; concurrent first calls may race and create two
// remote threads, in which case the losing insert resolves to the
// winner's binding and the extra remote thread is orphaned (the remote
// service has no compare-and-swap primitive).
func (s *ThreadService) ResolveOrCreate(ctx context.Context, session *domain.Session, agentID uuid.UUID) (*domain.ThreadBinding, error) {
	existing, err := s.threads.GetActive(ctx, session.UserID, agentID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up thread binding: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	agent, err := s.agents.GetByID(ctx, agentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load agent: %w", err)
	}

	remoteThreadID, err := s.client.CreateThread(ctx)
	if err != nil {
		return nil, &TransportError{Op: "create_thread", Err: err}
	}

	orgID, err := s.resolveOrgScope(ctx, session, agent)
	if err != nil {
		return nil, err
	}

	binding := &domain.ThreadBinding{
		ID:             uuid.New(),
		UserID:         session.UserID,
		AgentID:        agent.ID,
		CourseID:       agent.CourseID,
		OrgID:          orgID,
		Role:           session.ActiveRole,
		RemoteThreadID: remoteThreadID,
		Title:          "New conversation",
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.threads.Create(ctx, binding); err != nil {
		// The unique live-binding index rejects the loser of a concurrent
		// first-resolve race. The winner's binding is the caller's binding;
		// the orphaned remote thread is harmless.
		if errors.Is(err, domain.ErrDuplicate) {
			winner, getErr := s.threads.GetActive(ctx, session.UserID, agentID)
			if getErr == nil && winner != nil {
				log.Warn().
					Stringer("user_id", session.UserID).
					Stringer("agent_id", agentID).
					Msg("concurrent thread creation raced, duplicate remote thread orphaned")
				return winner, nil
			}
		}
		return nil, fmt.Errorf("failed to persist thread binding: %w", err)
	}

	return binding, nil
}

// resolveOrgScope picks the organization recorded on a new binding:
// the agent's own org, then the session's active org, then the newest
// admin-equivalent membership.
func (s *ThreadService) resolveOrgScope(ctx context.Context, session *domain.Session, agent *domain.Agent) (*uuid.UUID, error) {
	if agent.OrgID != nil {
		return agent.OrgID, nil
	}
	if session.ActiveOrgID != nil {
		return session.ActiveOrgID, nil
	}
	memberships, err := s.memberships.ListByUser(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	for _, m := range memberships {
		if m.Role == domain.RoleOrgAdmin || m.Role == domain.RoleTeacher {
			orgID := m.OrgID
			return &orgID, nil
		}
	}
	return nil, nil
}

// Get returns a binding after verifying ownership.
func (s *ThreadService) Get(ctx context.Context, userID, bindingID uuid.UUID) (*domain.ThreadBinding, error) {
	binding, err := s.threads.GetByID(ctx, bindingID)
	if err != nil {
		return nil, err
	}
	if binding.UserID != uuid.Nil && binding.UserID != userID {
		return nil, ErrForbidden
	}
	return binding, nil
}

// List returns the caller's bindings, optionally filtered by course.
func (s *ThreadService) List(ctx context.Context, userID uuid.UUID, courseID *uuid.UUID, limit, offset int) ([]domain.ThreadBinding, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.threads.ListByUser(ctx, userID, courseID, limit, offset)
}

// Rename retitles a binding the caller owns.
func (s *ThreadService) Rename(ctx context.Context, userID, bindingID uuid.UUID, title string) error {
	return s.threads.Rename(ctx, bindingID, userID, title)
}

// Archive retires a binding; a later ResolveOrCreate starts fresh.
func (s *ThreadService) Archive(ctx context.Context, userID, bindingID uuid.UUID) error {
	return s.threads.SetArchived(ctx, bindingID, userID, true)
}

// Unarchive restores an archived binding.
func (s *ThreadService) Unarchive(ctx context.Context, userID, bindingID uuid.UUID) error {
	return s.threads.SetArchived(ctx, bindingID, userID, false)
}

// Delete removes a binding and its exchanges.
func (s *ThreadService) Delete(ctx context.Context, userID, bindingID uuid.UUID) error {
	return s.threads.Delete(ctx, bindingID, userID)
}

// History returns the displayable conversation for a binding the caller
// owns. Tool audit rows are excluded.
func (s *ThreadService) History(ctx context.Context, userID, bindingID uuid.UUID, limit, offset int) ([]domain.Exchange, error) {
	if _, err := s.Get(ctx, userID, bindingID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.exchanges.History(ctx, bindingID, false, limit, offset)
}

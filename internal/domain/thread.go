package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ThreadBinding maps a (user, agent) pair to a remote conversation thread.
// RemoteThreadID is immutable once set; a new binding may only be created
// once the existing one is archived.
type ThreadBinding struct {
	ID             uuid.UUID  `json:"id"`
	UserID         uuid.UUID  `json:"user_id"`
	AgentID        uuid.UUID  `json:"agent_id"`
	CourseID       *uuid.UUID `json:"course_id,omitempty"`
	OrgID          *uuid.UUID `json:"org_id,omitempty"`
	Role           string     `json:"role,omitempty"` // caller's role when the binding was created
	RemoteThreadID string     `json:"remote_thread_id"`
	Title          string     `json:"title"`
	LastMessageAt  *time.Time `json:"last_message_at,omitempty"`
	ArchivedAt     *time.Time `json:"archived_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Archived reports whether the binding has been archived.
func (t *ThreadBinding) Archived() bool {
	return t.ArchivedAt != nil
}

// ThreadRepository defines persistent storage for thread bindings.
// Ownership-checked mutations match rows by (id, user_id); legacy rows with
// a NULL user_id are matched by id alone.
type ThreadRepository interface {
	Create(ctx context.Context, binding *ThreadBinding) error
	GetByID(ctx context.Context, id uuid.UUID) (*ThreadBinding, error)
	// GetActive returns the non-archived binding for (user, agent), or nil.
	GetActive(ctx context.Context, userID, agentID uuid.UUID) (*ThreadBinding, error)
	ListByUser(ctx context.Context, userID uuid.UUID, courseID *uuid.UUID, limit, offset int) ([]ThreadBinding, error)
	Rename(ctx context.Context, id, userID uuid.UUID, title string) error
	SetArchived(ctx context.Context, id, userID uuid.UUID, archived bool) error
	Delete(ctx context.Context, id, userID uuid.UUID) error
	TouchLastMessage(ctx context.Context, id uuid.UUID) error
}

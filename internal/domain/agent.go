package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AgentScope says what persona an agent row configures.
type AgentScope string

const (
	// AgentScopeRole is a role-wide agent (super admin, org admin, teacher).
	AgentScopeRole AgentScope = "role"
	// AgentScopeCourse is an agent dedicated to one course.
	AgentScopeCourse AgentScope = "course"
)

// Agent is a capability scope: the persona a remote run executes under.
// RemoteAgentID is the identifier the remote assistant service knows.
type Agent struct {
	ID            uuid.UUID  `json:"id"`
	Scope         AgentScope `json:"scope"`
	Role          string     `json:"role,omitempty"`
	OrgID         *uuid.UUID `json:"org_id,omitempty"`
	CourseID      *uuid.UUID `json:"course_id,omitempty"`
	Name          string     `json:"name"`
	RemoteAgentID string     `json:"remote_agent_id"`
	Instructions  string     `json:"instructions,omitempty"`
	IsActive      bool       `json:"is_active"`
	CreatedBy     uuid.UUID  `json:"created_by"`
	CreatedAt     time.Time  `json:"created_at"`
}

// AgentRepository defines persistent storage for agents.
type AgentRepository interface {
	Create(ctx context.Context, agent *Agent) error
	GetByID(ctx context.Context, id uuid.UUID) (*Agent, error)
	// GetByCourse returns the active course agent, or nil if none exists.
	GetByCourse(ctx context.Context, courseID uuid.UUID) (*Agent, error)
	UpdateInstructions(ctx context.Context, id uuid.UUID, instructions string) error
}

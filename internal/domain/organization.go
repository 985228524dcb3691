package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Organization is a tenant on the platform.
type Organization struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedBy uuid.UUID `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// Membership ties a user to an organization with a role.
type Membership struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	OrgID     uuid.UUID `json:"org_id"`
	OrgName   string    `json:"org_name,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// InviteStatus tracks the lifecycle of an invitation.
type InviteStatus string

const (
	InvitePending  InviteStatus = "pending"
	InviteAccepted InviteStatus = "accepted"
	InviteRevoked  InviteStatus = "revoked"
)

// Invite is a pending invitation to join an organization or a course.
type Invite struct {
	ID           uuid.UUID    `json:"id"`
	Inviter      uuid.UUID    `json:"inviter"`
	InviteeEmail string       `json:"invitee_email"`
	Role         string       `json:"role"`
	OrgID        *uuid.UUID   `json:"org_id,omitempty"`
	CourseID     *uuid.UUID   `json:"course_id,omitempty"`
	Status       InviteStatus `json:"status"`
	CreatedAt    time.Time    `json:"created_at"`
}

// OrganizationRepository defines persistent storage for organizations.
type OrganizationRepository interface {
	Create(ctx context.Context, org *Organization) error
	GetByID(ctx context.Context, id uuid.UUID) (*Organization, error)
	GetByName(ctx context.Context, name string) (*Organization, error)
}

// MembershipRepository defines storage for organization memberships.
type MembershipRepository interface {
	Add(ctx context.Context, m *Membership) error
	// Role returns the user's role in the organization, or "" if none.
	Role(ctx context.Context, userID, orgID uuid.UUID) (string, error)
	// ListByUser returns memberships newest first, org name populated.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Membership, error)
}

// InviteRepository defines storage for invitations.
type InviteRepository interface {
	Create(ctx context.Context, invite *Invite) error
	// PendingExists reports whether a pending invite already exists for the
	// same email and scope.
	PendingExists(ctx context.Context, email string, orgID, courseID *uuid.UUID) (bool, error)
}

package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Course belongs to an organization; AgentID links its dedicated assistant.
type Course struct {
	ID          uuid.UUID  `json:"id"`
	OrgID       uuid.UUID  `json:"org_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	AgentID     *uuid.UUID `json:"agent_id,omitempty"`
	CreatedBy   uuid.UUID  `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Document is one piece of ingested course content.
type Document struct {
	ID          uuid.UUID `json:"id"`
	CourseID    uuid.UUID `json:"course_id"`
	Title       string    `json:"title"`
	ContentType string    `json:"content_type"`
	Content     string    `json:"content"`
	CreatedBy   uuid.UUID `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// CourseRepository defines persistent storage for courses.
type CourseRepository interface {
	Create(ctx context.Context, course *Course) error
	GetByID(ctx context.Context, id uuid.UUID) (*Course, error)
	// GetByTitle resolves a course by its human-readable title within an org.
	GetByTitle(ctx context.Context, orgID uuid.UUID, title string) (*Course, error)
	SetAgent(ctx context.Context, courseID, agentID uuid.UUID) error
	IsEnrolled(ctx context.Context, userID, courseID uuid.UUID) (bool, error)
}

// DocumentRepository stores ingested course content.
type DocumentRepository interface {
	Create(ctx context.Context, doc *Document) error
}

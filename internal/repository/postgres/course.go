package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/teachme/platform/internal/domain"
)

// CourseRepository implements domain.CourseRepository
type CourseRepository struct {
	pool *pgxpool.Pool
}

// NewCourseRepository creates a new course repository
func NewCourseRepository(pool *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{pool: pool}
}

const courseColumns = `id, org_id, title, description, status, agent_id, created_by, created_at`

func scanCourse(row pgx.Row) (*domain.Course, error) {
	var c domain.Course
	err := row.Scan(
		&c.ID, &c.OrgID, &c.Title, &c.Description, &c.Status, &c.AgentID, &c.CreatedBy, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CourseRepository) Create(ctx context.Context, course *domain.Course) error {
	query := `
		INSERT INTO courses (id, org_id, title, description, status, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		course.ID,
		course.OrgID,
		course.Title,
		course.Description,
		course.Status,
		course.CreatedBy,
		course.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}
	return nil
}

func (r *CourseRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = $1`
	c, err := scanCourse(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return c, nil
}

// GetByTitle resolves a course by title within an organization, or nil.
func (r *CourseRepository) GetByTitle(ctx context.Context, orgID uuid.UUID, title string) (*domain.Course, error) {
	query := `
		SELECT ` + courseColumns + `
		FROM courses
		WHERE org_id = $1 AND lower(title) = lower($2)
		LIMIT 1
	`
	c, err := scanCourse(r.pool.QueryRow(ctx, query, orgID, title))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get course by title: %w", err)
	}
	return c, nil
}

func (r *CourseRepository) SetAgent(ctx context.Context, courseID, agentID uuid.UUID) error {
	query := `UPDATE courses SET agent_id = $1 WHERE id = $2`
	if _, err := r.pool.Exec(ctx, query, agentID, courseID); err != nil {
		return fmt.Errorf("failed to link course agent: %w", err)
	}
	return nil
}

func (r *CourseRepository) IsEnrolled(ctx context.Context, userID, courseID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM course_enrollments WHERE user_id = $1 AND course_id = $2)`,
		userID, courseID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check enrollment: %w", err)
	}
	return exists, nil
}

// DocumentRepository implements domain.DocumentRepository
type DocumentRepository struct {
	pool *pgxpool.Pool
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{pool: pool}
}

func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	query := `
		INSERT INTO course_documents (id, course_id, title, content_type, content, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		doc.ID,
		doc.CourseID,
		doc.Title,
		doc.ContentType,
		doc.Content,
		doc.CreatedBy,
		doc.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}

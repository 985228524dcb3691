package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/teachme/platform/internal/domain"
)

const uniqueViolationCode = "23505"

// ThreadRepository implements domain.ThreadRepository
type ThreadRepository struct {
	pool *pgxpool.Pool
}

// NewThreadRepository creates a new thread repository
func NewThreadRepository(pool *pgxpool.Pool) *ThreadRepository {
	return &ThreadRepository{pool: pool}
}

const threadColumns = `id, user_id, agent_id, course_id, org_id, role, remote_thread_id, title, last_message_at, archived_at, created_at`

func scanThread(row pgx.Row) (*domain.ThreadBinding, error) {
	var t domain.ThreadBinding
	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.AgentID,
		&t.CourseID,
		&t.OrgID,
		&t.Role,
		&t.RemoteThreadID,
		&t.Title,
		&t.LastMessageAt,
		&t.ArchivedAt,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *ThreadRepository) Create(ctx context.Context, binding *domain.ThreadBinding) error {
	query := `
		INSERT INTO chat_threads (id, user_id, agent_id, course_id, org_id, role, remote_thread_id, title, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.pool.Exec(ctx, query,
		binding.ID,
		binding.UserID,
		binding.AgentID,
		binding.CourseID,
		binding.OrgID,
		binding.Role,
		binding.RemoteThreadID,
		binding.Title,
		binding.CreatedAt,
	)
	if err != nil {
		// The partial unique index allows one live binding per (user, agent);
		// a losing concurrent insert surfaces as a duplicate, not a fault.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("failed to create thread binding: %w", err)
	}
	return nil
}

func (r *ThreadRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ThreadBinding, error) {
	query := `SELECT ` + threadColumns + ` FROM chat_threads WHERE id = $1`
	t, err := scanThread(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get thread binding: %w", err)
	}
	return t, nil
}

// GetActive returns the newest non-archived binding for (user, agent), or nil.
func (r *ThreadRepository) GetActive(ctx context.Context, userID, agentID uuid.UUID) (*domain.ThreadBinding, error) {
	query := `
		SELECT ` + threadColumns + `
		FROM chat_threads
		WHERE user_id = $1 AND agent_id = $2 AND archived_at IS NULL
		ORDER BY created_at DESC
		LIMIT 1
	`
	t, err := scanThread(r.pool.QueryRow(ctx, query, userID, agentID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active thread binding: %w", err)
	}
	return t, nil
}

func (r *ThreadRepository) ListByUser(ctx context.Context, userID uuid.UUID, courseID *uuid.UUID, limit, offset int) ([]domain.ThreadBinding, error) {
	query := `
		SELECT ` + threadColumns + `
		FROM chat_threads
		WHERE user_id = $1 AND ($2::uuid IS NULL OR course_id = $2)
		ORDER BY last_message_at DESC NULLS LAST, created_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query, userID, courseID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list thread bindings: %w", err)
	}
	defer rows.Close()

	var threads []domain.ThreadBinding
	for rows.Next() {
		t, err := scanThread(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan thread binding: %w", err)
		}
		threads = append(threads, *t)
	}
	return threads, nil
}

// Rename updates the title. Legacy rows without an owner are matched by id.
func (r *ThreadRepository) Rename(ctx context.Context, id, userID uuid.UUID, title string) error {
	query := `
		UPDATE chat_threads
		SET title = $1
		WHERE id = $2 AND (user_id = $3 OR user_id IS NULL)
	`
	tag, err := r.pool.Exec(ctx, query, title, id, userID)
	if err != nil {
		return fmt.Errorf("failed to rename thread: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ThreadRepository) SetArchived(ctx context.Context, id, userID uuid.UUID, archived bool) error {
	query := `
		UPDATE chat_threads
		SET archived_at = CASE WHEN $1 THEN now() ELSE NULL END
		WHERE id = $2 AND (user_id = $3 OR user_id IS NULL)
	`
	tag, err := r.pool.Exec(ctx, query, archived, id, userID)
	if err != nil {
		return fmt.Errorf("failed to update thread archive state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ThreadRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	query := `DELETE FROM chat_threads WHERE id = $1 AND (user_id = $2 OR user_id IS NULL)`
	tag, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete thread: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ThreadRepository) TouchLastMessage(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE chat_threads SET last_message_at = now() WHERE id = $1`
	if _, err := r.pool.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to touch thread: %w", err)
	}
	return nil
}

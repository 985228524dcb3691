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

// AgentRepository implements domain.AgentRepository
type AgentRepository struct {
	pool *pgxpool.Pool
}

// NewAgentRepository creates a new agent repository
func NewAgentRepository(pool *pgxpool.Pool) *AgentRepository {
	return &AgentRepository{pool: pool}
}

const agentColumns = `id, scope, role, org_id, course_id, name, remote_agent_id, instructions, is_active, created_by, created_at`

func scanAgent(row pgx.Row) (*domain.Agent, error) {
	var a domain.Agent
	err := row.Scan(
		&a.ID, &a.Scope, &a.Role, &a.OrgID, &a.CourseID, &a.Name,
		&a.RemoteAgentID, &a.Instructions, &a.IsActive, &a.CreatedBy, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AgentRepository) Create(ctx context.Context, agent *domain.Agent) error {
	query := `
		INSERT INTO assistants (id, scope, role, org_id, course_id, name, remote_agent_id, instructions, is_active, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.pool.Exec(ctx, query,
		agent.ID,
		agent.Scope,
		agent.Role,
		agent.OrgID,
		agent.CourseID,
		agent.Name,
		agent.RemoteAgentID,
		agent.Instructions,
		agent.IsActive,
		agent.CreatedBy,
		agent.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create agent: %w", err)
	}
	return nil
}

func (r *AgentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Agent, error) {
	query := `SELECT ` + agentColumns + ` FROM assistants WHERE id = $1`
	a, err := scanAgent(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get agent: %w", err)
	}
	return a, nil
}

// GetByCourse returns the active course agent, or nil if none exists.
func (r *AgentRepository) GetByCourse(ctx context.Context, courseID uuid.UUID) (*domain.Agent, error) {
	query := `
		SELECT ` + agentColumns + `
		FROM assistants
		WHERE scope = 'course' AND course_id = $1 AND is_active
		LIMIT 1
	`
	a, err := scanAgent(r.pool.QueryRow(ctx, query, courseID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get course agent: %w", err)
	}
	return a, nil
}

func (r *AgentRepository) UpdateInstructions(ctx context.Context, id uuid.UUID, instructions string) error {
	query := `UPDATE assistants SET instructions = $1 WHERE id = $2`
	tag, err := r.pool.Exec(ctx, query, instructions, id)
	if err != nil {
		return fmt.Errorf("failed to update agent instructions: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

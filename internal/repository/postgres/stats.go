package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/teachme/platform/internal/domain"
)

// StatsRepository implements domain.StatsRepository
type StatsRepository struct {
	pool *pgxpool.Pool
}

// NewStatsRepository creates a new stats repository
func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{pool: pool}
}

// Collect aggregates platform-wide counters in one round trip.
func (r *StatsRepository) Collect(ctx context.Context) (*domain.PlatformStats, error) {
	query := `
		SELECT
			(SELECT count(*) FROM organizations),
			(SELECT count(*) FROM courses),
			(SELECT count(*) FROM users),
			(SELECT count(*) FROM organization_memberships WHERE role = 'teacher'),
			(SELECT count(*) FROM course_enrollments),
			(SELECT count(*) FROM invites WHERE status = 'pending'),
			(SELECT count(*) FROM chat_threads WHERE archived_at IS NULL)
	`
	var s domain.PlatformStats
	err := r.pool.QueryRow(ctx, query).Scan(
		&s.Organizations,
		&s.Courses,
		&s.Users,
		&s.Teachers,
		&s.Students,
		&s.PendingInvites,
		&s.ActiveThreads,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to collect platform stats: %w", err)
	}
	return &s, nil
}

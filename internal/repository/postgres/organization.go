package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/teachme/platform/internal/domain"
)

// OrganizationRepository implements domain.OrganizationRepository
type OrganizationRepository struct {
	pool *pgxpool.Pool
}

// NewOrganizationRepository creates a new organization repository
func NewOrganizationRepository(pool *pgxpool.Pool) *OrganizationRepository {
	return &OrganizationRepository{pool: pool}
}

func (r *OrganizationRepository) Create(ctx context.Context, org *domain.Organization) error {
	query := `
		INSERT INTO organizations (id, name, created_by, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.pool.Exec(ctx, query, org.ID, org.Name, org.CreatedBy, org.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create organization: %w", err)
	}
	return nil
}

func (r *OrganizationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Organization, error) {
	query := `SELECT id, name, created_by, created_at FROM organizations WHERE id = $1`
	var o domain.Organization
	err := r.pool.QueryRow(ctx, query, id).Scan(&o.ID, &o.Name, &o.CreatedBy, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	return &o, nil
}

func (r *OrganizationRepository) GetByName(ctx context.Context, name string) (*domain.Organization, error) {
	query := `SELECT id, name, created_by, created_at FROM organizations WHERE lower(name) = $1 LIMIT 1`
	var o domain.Organization
	err := r.pool.QueryRow(ctx, query, strings.ToLower(name)).Scan(&o.ID, &o.Name, &o.CreatedBy, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get organization by name: %w", err)
	}
	return &o, nil
}

// MembershipRepository implements domain.MembershipRepository
type MembershipRepository struct {
	pool *pgxpool.Pool
}

// NewMembershipRepository creates a new membership repository
func NewMembershipRepository(pool *pgxpool.Pool) *MembershipRepository {
	return &MembershipRepository{pool: pool}
}

func (r *MembershipRepository) Add(ctx context.Context, m *domain.Membership) error {
	query := `
		INSERT INTO organization_memberships (id, user_id, org_id, role, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query, m.ID, m.UserID, m.OrgID, m.Role, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to add membership: %w", err)
	}
	return nil
}

// Role returns the user's role within the organization, or "".
func (r *MembershipRepository) Role(ctx context.Context, userID, orgID uuid.UUID) (string, error) {
	query := `
		SELECT role FROM organization_memberships
		WHERE user_id = $1 AND org_id = $2
		LIMIT 1
	`
	var role string
	err := r.pool.QueryRow(ctx, query, userID, orgID).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get membership role: %w", err)
	}
	return role, nil
}

func (r *MembershipRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Membership, error) {
	query := `
		SELECT m.id, m.user_id, m.org_id, o.name, m.role, m.created_at
		FROM organization_memberships m
		JOIN organizations o ON o.id = m.org_id
		WHERE m.user_id = $1
		ORDER BY m.created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	defer rows.Close()

	var memberships []domain.Membership
	for rows.Next() {
		var m domain.Membership
		if err := rows.Scan(&m.ID, &m.UserID, &m.OrgID, &m.OrgName, &m.Role, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		memberships = append(memberships, m)
	}
	return memberships, nil
}

// InviteRepository implements domain.InviteRepository
type InviteRepository struct {
	pool *pgxpool.Pool
}

// NewInviteRepository creates a new invite repository
func NewInviteRepository(pool *pgxpool.Pool) *InviteRepository {
	return &InviteRepository{pool: pool}
}

func (r *InviteRepository) Create(ctx context.Context, invite *domain.Invite) error {
	query := `
		INSERT INTO invites (id, inviter, invitee_email, role, org_id, course_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.pool.Exec(ctx, query,
		invite.ID,
		invite.Inviter,
		strings.ToLower(invite.InviteeEmail),
		invite.Role,
		invite.OrgID,
		invite.CourseID,
		invite.Status,
		invite.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create invite: %w", err)
	}
	return nil
}

func (r *InviteRepository) PendingExists(ctx context.Context, email string, orgID, courseID *uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM invites
			WHERE invitee_email = $1
			  AND status = 'pending'
			  AND ($2::uuid IS NULL OR org_id = $2)
			  AND ($3::uuid IS NULL OR course_id = $3)
		)
	`
	var exists bool
	err := r.pool.QueryRow(ctx, query, strings.ToLower(email), orgID, courseID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check pending invite: %w", err)
	}
	return exists, nil
}

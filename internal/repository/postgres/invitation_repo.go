package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"districtevents/internal/domain"
)

const invitationColumns = `id, email, full_name, role, church_id, token_hash, invited_by, expires_at, accepted_at, created_at`

type invitationRepository struct {
	DB *sql.DB
}

func NewInvitationRepository(db *sql.DB) domain.InvitationRepository {
	return &invitationRepository{
		DB: db,
	}
}

func scanInvitation(s rowScanner) (*domain.Invitation, error) {
	inv := &domain.Invitation{}
	var fullName, churchID sql.NullString
	var acceptedAt sql.NullTime
	var role string
	err := s.Scan(&inv.ID, &inv.Email, &fullName, &role, &churchID, &inv.TokenHash, &inv.InvitedBy, &inv.ExpiresAt, &acceptedAt, &inv.CreatedAt)
	if err != nil {
		return nil, err
	}
	inv.Role = domain.Role(role)
	inv.FullName = nullStringPtr(fullName)
	inv.ChurchID = nullStringPtr(churchID)
	if acceptedAt.Valid {
		inv.AcceptedAt = &acceptedAt.Time
	}
	return inv, nil
}

func (r *invitationRepository) Create(ctx context.Context, inv *domain.Invitation) error {
	query := `
		INSERT INTO pending_invites (email, full_name, role, church_id, token_hash, invited_by, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, inv.Email, inv.FullName, string(inv.Role), inv.ChurchID, inv.TokenHash, inv.InvitedBy, inv.ExpiresAt, inv.CreatedAt).
		Scan(&inv.ID)
}

func (r *invitationRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*domain.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM pending_invites WHERE token_hash = $1`
	inv, err := scanInvitation(r.DB.QueryRowContext(ctx, query, tokenHash))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return inv, nil
}

func (r *invitationRepository) MarkAccepted(ctx context.Context, id string, at time.Time) (bool, error) {
	query := `UPDATE pending_invites SET accepted_at = $2 WHERE id = $1 AND accepted_at IS NULL`
	result, err := r.DB.ExecContext(ctx, query, id, at)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

func (r *invitationRepository) ClearAccepted(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `UPDATE pending_invites SET accepted_at = NULL WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *invitationRepository) List(ctx context.Context) ([]*domain.Invitation, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+invitationColumns+` FROM pending_invites ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invs []*domain.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		invs = append(invs, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if invs == nil {
		invs = []*domain.Invitation{}
	}
	return invs, nil
}

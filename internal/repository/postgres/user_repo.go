package postgres

import (
	"context"
	"database/sql"
	"errors"

	"districtevents/internal/domain"

	"github.com/lib/pq"
)

// uniqueViolation is the Postgres SQLSTATE for unique_violation.
const uniqueViolation = "23505"

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) domain.UserRepository {
	return &userRepository{DB: db}
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (email, password_hash, salt, full_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, u.Email, u.PasswordHash, u.Salt, u.FullName, u.CreatedAt, u.UpdatedAt).Scan(&u.ID)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return domain.ErrDuplicateEmail
	}
	return err
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT id, email, password_hash, salt, full_name, created_at, updated_at
		FROM users
		WHERE email = $1
	`
	return r.getOne(ctx, query, email)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `
		SELECT id, email, password_hash, salt, full_name, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	return r.getOne(ctx, query, id)
}

func (r *userRepository) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	u := &domain.User{}
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Salt, &u.FullName, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *userRepository) AddRole(ctx context.Context, userID string, grant domain.RoleGrant) error {
	query := `
		INSERT INTO user_roles (user_id, role, church_id)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING
	`
	_, err := r.DB.ExecContext(ctx, query, userID, string(grant.Role), grant.ChurchID)
	return err
}

func (r *userRepository) ListRoles(ctx context.Context, userID string) ([]domain.RoleGrant, error) {
	query := `
		SELECT role, church_id
		FROM user_roles
		WHERE user_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	grants := make([]domain.RoleGrant, 0)
	for rows.Next() {
		var role string
		var churchID sql.NullString
		if err := rows.Scan(&role, &churchID); err != nil {
			return nil, err
		}
		grants = append(grants, domain.RoleGrant{Role: domain.Role(role), ChurchID: nullStringPtr(churchID)})
	}
	return grants, rows.Err()
}

func (r *userRepository) List(ctx context.Context) ([]*domain.UserWithRoles, error) {
	query := `
		SELECT u.id, u.email, u.password_hash, u.salt, u.full_name, u.created_at, u.updated_at, ur.role, ur.church_id
		FROM users u
		LEFT JOIN user_roles ur ON ur.user_id = u.id
		ORDER BY u.email ASC, ur.created_at ASC
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*domain.UserWithRoles, 0)
	var current *domain.UserWithRoles
	for rows.Next() {
		var u domain.User
		var role, churchID sql.NullString
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Salt, &u.FullName, &u.CreatedAt, &u.UpdatedAt, &role, &churchID); err != nil {
			return nil, err
		}
		if current == nil || current.ID != u.ID {
			current = &domain.UserWithRoles{User: u, Roles: []domain.RoleGrant{}}
			users = append(users, current)
		}
		if role.Valid {
			current.Roles = append(current.Roles, domain.RoleGrant{Role: domain.Role(role.String), ChurchID: nullStringPtr(churchID)})
		}
	}
	return users, rows.Err()
}

// UpdateRole swaps the user's grants in one transaction.
func (r *userRepository) UpdateRole(ctx context.Context, userID string, grant domain.RoleGrant) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return domain.ErrNotFound
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM user_roles WHERE user_id = $1`, userID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO user_roles (user_id, role, church_id) VALUES ($1, $2, $3)`, userID, string(grant.Role), grant.ChurchID); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *userRepository) RemoveRole(ctx context.Context, userID string) error {
	query := `
		WITH u AS (
			SELECT id FROM users WHERE id = $1
		), removed AS (
			DELETE FROM user_roles WHERE user_id IN (SELECT id FROM u)
		)
		SELECT EXISTS(SELECT 1 FROM u)
	`
	var exists bool
	if err := r.DB.QueryRowContext(ctx, query, userID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return domain.ErrNotFound
	}
	return nil
}

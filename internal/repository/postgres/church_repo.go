package postgres

import (
	"context"
	"database/sql"
	"errors"

	"districtevents/internal/domain"
)

const churchColumns = `id, name, description, location, pastor, phone, website, created_at, updated_at`

type churchRepository struct {
	DB *sql.DB
}

func NewChurchRepository(db *sql.DB) domain.ChurchRepository {
	return &churchRepository{DB: db}
}

func scanChurch(s rowScanner) (*domain.Church, error) {
	c := &domain.Church{}
	var desc, loc, pastor, phone, website sql.NullString
	if err := s.Scan(&c.ID, &c.Name, &desc, &loc, &pastor, &phone, &website, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.Description = nullStringPtr(desc)
	c.Location = nullStringPtr(loc)
	c.Pastor = nullStringPtr(pastor)
	c.Phone = nullStringPtr(phone)
	c.Website = nullStringPtr(website)
	return c, nil
}

func nullStringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

func (r *churchRepository) Create(ctx context.Context, c *domain.Church) error {
	query := `
		INSERT INTO churches (name, description, location, pastor, phone, website, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, c.Name, c.Description, c.Location, c.Pastor, c.Phone, c.Website, c.CreatedAt, c.UpdatedAt).
		Scan(&c.ID)
}

func (r *churchRepository) GetByID(ctx context.Context, id string) (*domain.Church, error) {
	c, err := scanChurch(r.DB.QueryRowContext(ctx, `SELECT `+churchColumns+` FROM churches WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *churchRepository) List(ctx context.Context) ([]*domain.Church, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+churchColumns+` FROM churches ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	churches := make([]*domain.Church, 0)
	for rows.Next() {
		c, err := scanChurch(rows)
		if err != nil {
			return nil, err
		}
		churches = append(churches, c)
	}
	return churches, rows.Err()
}

func (r *churchRepository) Update(ctx context.Context, c *domain.Church) error {
	query := `
		UPDATE churches
		SET name = $2, description = $3, location = $4, pastor = $5, phone = $6, website = $7, updated_at = $8
		WHERE id = $1
		RETURNING created_at
	`
	err := r.DB.QueryRowContext(ctx, query, c.ID, c.Name, c.Description, c.Location, c.Pastor, c.Phone, c.Website, c.UpdatedAt).
		Scan(&c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

func (r *churchRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM churches WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

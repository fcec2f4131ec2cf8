package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"districtevents/internal/domain"

	"github.com/lib/pq"
)

const registrationColumns = `id, event_id, attendee_name, attendee_email, attendee_phone, num_tickets,
	total_amount, registration_status, payment_status, hold_expires_at, checked_in, checked_in_at,
	confirmation_sent, created_at, updated_at`

type registrationRepository struct {
	DB *sql.DB
}

func NewRegistrationRepository(db *sql.DB) domain.RegistrationRepository {
	return &registrationRepository{
		DB: db,
	}
}

// scanRegistration scans registrationColumns followed by any extra destinations.
func scanRegistration(s rowScanner, extra ...any) (*domain.Registration, error) {
	reg := &domain.Registration{}
	var phoneNull sql.NullString
	var holdNull, checkedInAtNull sql.NullTime
	var regStatus, payStatus string
	dest := []any{
		&reg.ID, &reg.EventID, &reg.AttendeeName, &reg.AttendeeEmail, &phoneNull, &reg.NumTickets,
		&reg.TotalAmount, &regStatus, &payStatus, &holdNull, &reg.CheckedIn, &checkedInAtNull,
		&reg.ConfirmationSent, &reg.CreatedAt, &reg.UpdatedAt,
	}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	reg.RegistrationStatus = domain.RegistrationStatus(regStatus)
	reg.PaymentStatus = domain.PaymentStatus(payStatus)
	if phoneNull.Valid {
		reg.AttendeePhone = &phoneNull.String
	}
	if holdNull.Valid {
		reg.HoldExpiresAt = &holdNull.Time
	}
	if checkedInAtNull.Valid {
		reg.CheckedInAt = &checkedInAtNull.Time
	}
	return reg, nil
}

func (r *registrationRepository) Create(ctx context.Context, reg *domain.Registration) error {
	query := `
		INSERT INTO registrations (event_id, attendee_name, attendee_email, attendee_phone, num_tickets,
			total_amount, registration_status, payment_status, hold_expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		reg.EventID, reg.AttendeeName, reg.AttendeeEmail, reg.AttendeePhone, reg.NumTickets,
		reg.TotalAmount, string(reg.RegistrationStatus), string(reg.PaymentStatus), reg.HoldExpiresAt,
		reg.CreatedAt, reg.UpdatedAt,
	).Scan(&reg.ID)
}

func (r *registrationRepository) GetByID(ctx context.Context, id string) (*domain.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE id = $1`
	reg, err := scanRegistration(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return reg, nil
}

func (r *registrationRepository) ListByEventID(ctx context.Context, eventID string, page domain.PaginationParams) ([]*domain.Registration, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM registrations WHERE event_id = $1`, eventID).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := `
		SELECT ` + registrationColumns + `
		FROM registrations
		WHERE event_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	regs, err := r.list(ctx, query, eventID, page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, err
	}
	return regs, total, nil
}

const managedRegistrationFilter = `
	WHERE ($1::uuid[] IS NULL OR e.church_id = ANY($1::uuid[]))
		AND ($2 = '' OR r.attendee_name ILIKE $2 OR r.attendee_email ILIKE $2 OR r.attendee_phone ILIKE $2)
`

func (r *registrationRepository) ListManaged(ctx context.Context, filter domain.RegistrationFilter, page domain.PaginationParams) ([]*domain.ManagedRegistration, int, error) {
	var churches any
	if filter.ChurchIDs != nil {
		churches = pq.Array(filter.ChurchIDs)
	}
	pattern := ""
	if term := strings.TrimSpace(filter.Search); term != "" {
		pattern = "%" + likeEscaper.Replace(term) + "%"
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM registrations r JOIN events e ON e.id = r.event_id` + managedRegistrationFilter
	if err := r.DB.QueryRowContext(ctx, countQuery, churches, pattern).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := `
		SELECT ` + prefixColumns("r.", registrationColumns) + `, e.title, e.event_date, e.church_id
		FROM registrations r
		JOIN events e ON e.id = r.event_id
	` + managedRegistrationFilter + `
		ORDER BY r.created_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.DB.QueryContext(ctx, query, churches, pattern, page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := make([]*domain.ManagedRegistration, 0)
	for rows.Next() {
		item := &domain.ManagedRegistration{}
		reg, err := scanRegistration(rows, &item.EventTitle, &item.EventDate, &item.ChurchID)
		if err != nil {
			return nil, 0, err
		}
		item.Registration = *reg
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// likeEscaper escapes the ILIKE wildcards in user input.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *registrationRepository) ListExpiredHolds(ctx context.Context, now time.Time, limit int) ([]*domain.Registration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM registrations
		WHERE registration_status = 'pending' AND hold_expires_at IS NOT NULL AND hold_expires_at < $1
		ORDER BY hold_expires_at ASC
		LIMIT $2
	`
	return r.list(ctx, query, now, limit)
}

func (r *registrationRepository) MarkConfirmationSent(ctx context.Context, id string) error {
	query := `UPDATE registrations SET confirmation_sent = TRUE, updated_at = NOW() WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *registrationRepository) SetCheckedIn(ctx context.Context, id string, checkedIn bool, at time.Time) (*domain.Registration, error) {
	var checkedInAt *time.Time
	if checkedIn {
		checkedInAt = &at
	}
	query := `
		UPDATE registrations SET checked_in = $2, checked_in_at = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + registrationColumns
	reg, err := scanRegistration(r.DB.QueryRowContext(ctx, query, id, checkedIn, checkedInAt))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return reg, nil
}

func (r *registrationRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Registration, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	regs := make([]*domain.Registration, 0)
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return regs, nil
}

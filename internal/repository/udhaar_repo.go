package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bachat_backend/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrUdhaarNotFound is returned when no udhaar entry matches both id and owner
var ErrUdhaarNotFound = errors.New("udhaar not found")

// UdhaarRepository defines operations for udhaar data
type UdhaarRepository interface {
	Create(ctx context.Context, udhaar *model.Udhaar) error
	FindOwned(ctx context.Context, id, userID string) (*model.Udhaar, error)
	FindByUser(ctx context.Context, userID string, filters model.UdhaarFilters) ([]model.Udhaar, error)
	Update(ctx context.Context, udhaar *model.Udhaar) error
	Delete(ctx context.Context, id, userID string) error
	SumUnsettled(ctx context.Context) (float64, error)
}

type udhaarRepository struct {
	db DBTX
}

// NewUdhaarRepository creates a new UdhaarRepository
func NewUdhaarRepository(db DBTX) UdhaarRepository {
	return &udhaarRepository{db: db}
}

const udhaarColumns = `id, user_id, type, person_name, amount, date, notes, is_settled, created_at, updated_at`

func scanUdhaar(row pgx.Row) (*model.Udhaar, error) {
	var (
		u   model.Udhaar
		typ string
	)
	if err := row.Scan(&u.ID, &u.UserID, &typ, &u.PersonName, &u.Amount, &u.Date, &u.Notes, &u.IsSettled, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Type = model.UdhaarType(typ)
	return &u, nil
}

func (r *udhaarRepository) Create(ctx context.Context, u *model.Udhaar) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	sql := `INSERT INTO udhaar (id, user_id, type, person_name, amount, date, notes, is_settled)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING created_at, updated_at`
	err := r.db.QueryRow(ctx, sql, u.ID, u.UserID, string(u.Type), u.PersonName, u.Amount, u.Date, u.Notes, u.IsSettled).
		Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create udhaar: %w", err)
	}
	return nil
}

func (r *udhaarRepository) FindOwned(ctx context.Context, id, userID string) (*model.Udhaar, error) {
	sql := `SELECT ` + udhaarColumns + ` FROM udhaar WHERE id = $1 AND user_id = $2`
	u, err := scanUdhaar(r.db.QueryRow(ctx, sql, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find udhaar: %w", err)
	}
	return u, nil
}

func (r *udhaarRepository) FindByUser(ctx context.Context, userID string, filters model.UdhaarFilters) ([]model.Udhaar, error) {
	var queryBuilder strings.Builder
	args := &argList{}
	queryBuilder.WriteString(`SELECT ` + udhaarColumns + ` FROM udhaar WHERE user_id = ` + args.add(userID))
	if filters.Type != nil {
		queryBuilder.WriteString(" AND type = " + args.add(string(*filters.Type)))
	}
	if filters.IsSettled != nil {
		queryBuilder.WriteString(" AND is_settled = " + args.add(*filters.IsSettled))
	}
	queryBuilder.WriteString(" ORDER BY date DESC, created_at DESC")

	rows, err := r.db.Query(ctx, queryBuilder.String(), args.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query udhaar by user: %w", err)
	}
	defer rows.Close()

	entries := []model.Udhaar{}
	for rows.Next() {
		u, err := scanUdhaar(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan udhaar row: %w", err)
		}
		entries = append(entries, *u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating udhaar rows: %w", err)
	}
	return entries, nil
}

func (r *udhaarRepository) Update(ctx context.Context, u *model.Udhaar) error {
	sql := `UPDATE udhaar
            SET person_name = $1, amount = $2, date = $3, notes = $4, is_settled = $5, updated_at = NOW()
            WHERE id = $6 AND user_id = $7 RETURNING updated_at`
	err := r.db.QueryRow(ctx, sql, u.PersonName, u.Amount, u.Date, u.Notes, u.IsSettled, u.ID, u.UserID).Scan(&u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUdhaarNotFound
		}
		return fmt.Errorf("failed to update udhaar: %w", err)
	}
	return nil
}

func (r *udhaarRepository) Delete(ctx context.Context, id, userID string) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM udhaar WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete udhaar: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrUdhaarNotFound
	}
	return nil
}

// SumUnsettled totals the amount of every open udhaar entry across all users
func (r *udhaarRepository) SumUnsettled(ctx context.Context) (float64, error) {
	var total float64
	if err := r.db.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0) FROM udhaar WHERE is_settled = FALSE`).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum unsettled udhaar: %w", err)
	}
	return total, nil
}

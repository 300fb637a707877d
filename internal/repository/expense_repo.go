package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bachat_backend/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrExpenseNotFound is returned when no expense matches both id and owner
var ErrExpenseNotFound = errors.New("expense not found")

// PeriodTotals are rolling expense sums starting at the given boundaries
type PeriodTotals struct {
	Today float64
	Week  float64
	Month float64
}

// ExpenseRepository defines operations for expense data. Every method that touches
// existing rows is scoped by the owning user.
type ExpenseRepository interface {
	Create(ctx context.Context, expense *model.Expense) error
	FindOwned(ctx context.Context, id, userID string) (*model.Expense, error)
	FindByUser(ctx context.Context, userID string, filters model.ExpenseFilters) ([]model.Expense, error)
	Update(ctx context.Context, expense *model.Expense) error
	Delete(ctx context.Context, id, userID string) error
	PeriodTotals(ctx context.Context, userID string, today, week, month time.Time) (*PeriodTotals, error)
	CategoryTotals(ctx context.Context, userID string, dateRange model.DateRange) ([]model.CategoryTotal, error)
	SumSince(ctx context.Context, since time.Time) (float64, error)
}

type expenseRepository struct {
	db DBTX
}

// NewExpenseRepository creates a new ExpenseRepository
func NewExpenseRepository(db DBTX) ExpenseRepository {
	return &expenseRepository{db: db}
}

const expenseColumns = `id, user_id, amount, category, date, notes, created_at, updated_at`

func scanExpense(row pgx.Row) (*model.Expense, error) {
	var e model.Expense
	if err := row.Scan(&e.ID, &e.UserID, &e.Amount, &e.Category, &e.Date, &e.Notes, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

// Create inserts a new expense into the database
func (r *expenseRepository) Create(ctx context.Context, e *model.Expense) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	sql := `INSERT INTO expenses (id, user_id, amount, category, date, notes)
            VALUES ($1, $2, $3, $4, $5, $6) RETURNING created_at, updated_at`
	err := r.db.QueryRow(ctx, sql, e.ID, e.UserID, e.Amount, e.Category, e.Date, e.Notes).Scan(&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}
	return nil
}

// FindOwned retrieves an expense by id only if userID owns it
func (r *expenseRepository) FindOwned(ctx context.Context, id, userID string) (*model.Expense, error) {
	sql := `SELECT ` + expenseColumns + ` FROM expenses WHERE id = $1 AND user_id = $2`
	e, err := scanExpense(r.db.QueryRow(ctx, sql, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to find expense: %w", err)
	}
	return e, nil
}

// FindByUser retrieves expenses for a specific user with optional filters, newest first
func (r *expenseRepository) FindByUser(ctx context.Context, userID string, filters model.ExpenseFilters) ([]model.Expense, error) {
	var queryBuilder strings.Builder
	args := &argList{}
	queryBuilder.WriteString(`SELECT ` + expenseColumns + ` FROM expenses WHERE user_id = ` + args.add(userID))

	if filters.Category != nil && *filters.Category != "" {
		queryBuilder.WriteString(" AND category = " + args.add(*filters.Category))
	}
	if filters.StartDate != nil {
		queryBuilder.WriteString(" AND date >= " + args.add(*filters.StartDate))
	}
	if filters.EndDate != nil {
		queryBuilder.WriteString(" AND date <= " + args.add(*filters.EndDate))
	}
	queryBuilder.WriteString(" ORDER BY date DESC, created_at DESC")

	rows, err := r.db.Query(ctx, queryBuilder.String(), args.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses by user: %w", err)
	}
	defer rows.Close()

	expenses := []model.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense row: %w", err)
		}
		expenses = append(expenses, *e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expense rows: %w", err)
	}
	return expenses, nil
}

// Update writes every mutable field of an expense owned by e.UserID
func (r *expenseRepository) Update(ctx context.Context, e *model.Expense) error {
	sql := `UPDATE expenses
            SET amount = $1, category = $2, date = $3, notes = $4, updated_at = NOW()
            WHERE id = $5 AND user_id = $6 RETURNING updated_at`
	err := r.db.QueryRow(ctx, sql, e.Amount, e.Category, e.Date, e.Notes, e.ID, e.UserID).Scan(&e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrExpenseNotFound
		}
		return fmt.Errorf("failed to update expense: %w", err)
	}
	return nil
}

// Delete removes an expense owned by userID
func (r *expenseRepository) Delete(ctx context.Context, id, userID string) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM expenses WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrExpenseNotFound
	}
	return nil
}

// PeriodTotals sums a user's expenses dated at or after each boundary in one pass
func (r *expenseRepository) PeriodTotals(ctx context.Context, userID string, today, week, month time.Time) (*PeriodTotals, error) {
	sql := `SELECT
                COALESCE(SUM(amount) FILTER (WHERE date >= $2), 0),
                COALESCE(SUM(amount) FILTER (WHERE date >= $3), 0),
                COALESCE(SUM(amount) FILTER (WHERE date >= $4), 0)
            FROM expenses WHERE user_id = $1`
	var t PeriodTotals
	if err := r.db.QueryRow(ctx, sql, userID, today, week, month).Scan(&t.Today, &t.Week, &t.Month); err != nil {
		return nil, fmt.Errorf("failed to get period totals: %w", err)
	}
	return &t, nil
}

// CategoryTotals groups a user's expenses in dateRange by category, largest first
func (r *expenseRepository) CategoryTotals(ctx context.Context, userID string, dateRange model.DateRange) ([]model.CategoryTotal, error) {
	var queryBuilder strings.Builder
	args := &argList{}
	queryBuilder.WriteString(`SELECT category, COALESCE(SUM(amount), 0), COUNT(*) FROM expenses WHERE user_id = ` + args.add(userID))
	if dateRange.Start != nil {
		queryBuilder.WriteString(" AND date >= " + args.add(*dateRange.Start))
	}
	if dateRange.End != nil {
		queryBuilder.WriteString(" AND date <= " + args.add(*dateRange.End))
	}
	queryBuilder.WriteString(" GROUP BY category ORDER BY 2 DESC, category")

	rows, err := r.db.Query(ctx, queryBuilder.String(), args.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get expense by category: %w", err)
	}
	defer rows.Close()

	var totals []model.CategoryTotal
	for rows.Next() {
		var ct model.CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.Total, &ct.Count); err != nil {
			return nil, fmt.Errorf("failed to scan expense by category: %w", err)
		}
		totals = append(totals, ct)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expense by category: %w", err)
	}
	return totals, nil
}

// SumSince totals every user's expenses dated at or after since
func (r *expenseRepository) SumSince(ctx context.Context, since time.Time) (float64, error) {
	var total float64
	if err := r.db.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0) FROM expenses WHERE date >= $1`, since).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum expenses: %w", err)
	}
	return total, nil
}

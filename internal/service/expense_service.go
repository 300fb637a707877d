package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"bachat_backend/internal/model"
	"bachat_backend/internal/repository"
)

// ExpenseService defines operations for a user's expenses
type ExpenseService interface {
	Create(ctx context.Context, userID string, req model.CreateExpenseRequest) (*model.Expense, error)
	List(ctx context.Context, userID string, filters model.ExpenseFilters) ([]model.Expense, error)
	Update(ctx context.Context, id, userID string, req model.UpdateExpenseRequest) (*model.Expense, error)
	Delete(ctx context.Context, id, userID string) error
	Stats(ctx context.Context, userID string, dateRange model.DateRange) (*model.ExpenseStats, error)
	ExportCSV(ctx context.Context, userID string, filters model.ExpenseFilters) (*bytes.Buffer, error)
}

type expenseService struct {
	repo  repository.ExpenseRepository
	clock *Clock
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(repo repository.ExpenseRepository, clock *Clock) ExpenseService {
	return &expenseService{repo: repo, clock: clock}
}

func (s *expenseService) Create(ctx context.Context, userID string, req model.CreateExpenseRequest) (*model.Expense, error) {
	if req.Amount <= 0 {
		return nil, invalid("amount", "must be greater than 0")
	}
	category := strings.TrimSpace(req.Category)
	if category == "" {
		return nil, invalid("category", "is required")
	}

	date := s.clock.Now()
	if req.Date != nil && !req.Date.IsZero() {
		date = req.Date.Anchor(s.clock.Location())
	}

	expense := &model.Expense{
		UserID:   userID,
		Amount:   req.Amount,
		Category: category,
		Date:     date,
		Notes:    req.Notes,
	}
	if err := s.repo.Create(ctx, expense); err != nil {
		return nil, fmt.Errorf("failed to create expense in repo: %w", err)
	}
	return expense, nil
}

func (s *expenseService) List(ctx context.Context, userID string, filters model.ExpenseFilters) ([]model.Expense, error) {
	filters.StartDate, filters.EndDate = s.clock.DayBounds(filters.StartDate, filters.EndDate)

	expenses, err := s.repo.FindByUser(ctx, userID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to get user expenses from repo: %w", err)
	}
	return expenses, nil
}

func (s *expenseService) Update(ctx context.Context, id, userID string, req model.UpdateExpenseRequest) (*model.Expense, error) {
	existing, err := s.repo.FindOwned(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find expense for update: %w", err)
	}
	if existing == nil {
		return nil, ErrExpenseNotFound
	}

	// Apply updates
	if req.Amount != nil {
		if *req.Amount <= 0 {
			return nil, invalid("amount", "must be greater than 0")
		}
		existing.Amount = *req.Amount
	}
	if req.Category != nil {
		category := strings.TrimSpace(*req.Category)
		if category == "" {
			return nil, invalid("category", "must not be empty")
		}
		existing.Category = category
	}
	if req.Date != nil && !req.Date.IsZero() {
		existing.Date = req.Date.Anchor(s.clock.Location())
	}
	if req.Notes != nil { // "" clears the note
		existing.Notes = req.Notes
	}

	if err := s.repo.Update(ctx, existing); err != nil {
		if errors.Is(err, repository.ErrExpenseNotFound) {
			return nil, ErrExpenseNotFound
		}
		return nil, fmt.Errorf("failed to update expense in repo: %w", err)
	}
	return existing, nil
}

func (s *expenseService) Delete(ctx context.Context, id, userID string) error {
	if err := s.repo.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, repository.ErrExpenseNotFound) {
			return ErrExpenseNotFound
		}
		return fmt.Errorf("failed to delete expense in repo: %w", err)
	}
	return nil
}

// Stats returns rolling today/week/month totals and a category breakdown for
// dateRange, or for the current month when no bound is given.
func (s *expenseService) Stats(ctx context.Context, userID string, dateRange model.DateRange) (*model.ExpenseStats, error) {
	today, week, month := s.clock.PeriodStarts()

	totals, err := s.repo.PeriodTotals(ctx, userID, today, week, month)
	if err != nil {
		return nil, fmt.Errorf("failed to get period totals: %w", err)
	}

	if dateRange.Start == nil && dateRange.End == nil {
		dateRange.Start = &month
	} else {
		dateRange.Start, dateRange.End = s.clock.DayBounds(dateRange.Start, dateRange.End)
	}
	groups, err := s.repo.CategoryTotals(ctx, userID, dateRange)
	if err != nil {
		return nil, fmt.Errorf("failed to get category totals: %w", err)
	}

	stats := &model.ExpenseStats{
		Today:             totals.Today,
		Week:              totals.Week,
		Month:             totals.Month,
		CategoryBreakdown: breakdown(groups),
	}
	for _, g := range groups {
		stats.Total += g.Total
	}
	return stats, nil
}

// breakdown converts grouped sums into shares ordered by amount, largest first.
func breakdown(groups []model.CategoryTotal) []model.CategoryShare {
	var total float64
	for _, g := range groups {
		total += g.Total
	}

	shares := make([]model.CategoryShare, 0, len(groups))
	for _, g := range groups {
		share := model.CategoryShare{Category: g.Category, Amount: g.Total, Count: g.Count}
		if total > 0 {
			share.Percentage = roundTo2(g.Total / total * 100)
		}
		shares = append(shares, share)
	}
	return shares
}

func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ExportCSV renders the filtered expense list as CSV
func (s *expenseService) ExportCSV(ctx context.Context, userID string, filters model.ExpenseFilters) (*bytes.Buffer, error) {
	expenses, err := s.List(ctx, userID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch expenses for CSV export: %w", err)
	}

	buffer := &bytes.Buffer{}
	writer := csv.NewWriter(buffer)

	header := []string{"ID", "Date", "Category", "Amount", "Notes", "CreatedAt"}
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, e := range expenses {
		var notes string
		if e.Notes != nil {
			notes = *e.Notes
		}
		row := []string{
			e.ID,
			e.Date.In(s.clock.Location()).Format(model.DateLayout),
			e.Category,
			strconv.FormatFloat(e.Amount, 'f', 2, 64),
			notes,
			e.CreatedAt.Format(time.RFC3339),
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("error flushing CSV writer: %w", err)
	}
	return buffer, nil
}

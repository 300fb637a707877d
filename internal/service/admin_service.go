package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bachat_backend/internal/model"
	"bachat_backend/internal/repository"
)

// AdminService exposes platform-wide read models to administrators
type AdminService interface {
	Stats(ctx context.Context) (*model.AdminStats, error)
	ListUsers(ctx context.Context) ([]model.User, error)
}

type adminService struct {
	users    repository.UserRepository
	expenses repository.ExpenseRepository
	udhaar   repository.UdhaarRepository
	clock    *Clock
}

func NewAdminService(users repository.UserRepository, expenses repository.ExpenseRepository, udhaar repository.UdhaarRepository, clock *Clock) AdminService {
	return &adminService{users: users, expenses: expenses, udhaar: udhaar, clock: clock}
}

func (s *adminService) Stats(ctx context.Context) (*model.AdminStats, error) {
	totalUsers, err := s.users.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	_, _, monthStart := s.clock.PeriodStarts()
	monthly, err := s.expenses.SumSince(ctx, monthStart)
	if err != nil {
		return nil, fmt.Errorf("failed to sum monthly expenses: %w", err)
	}

	active, err := s.udhaar.SumUnsettled(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to sum active udhaar: %w", err)
	}

	return &model.AdminStats{
		TotalUsers:           totalUsers,
		TotalMonthlyExpenses: monthly,
		TotalActiveUdhaar:    active,
	}, nil
}

// ListUsers returns regular users, newest first
func (s *adminService) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.users.ListByRole(ctx, model.RoleUser)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// ProvisionAdmin promotes the account registered under email, or creates an
// operator-provisioned admin that can sign in through OTP. created reports which happened.
func ProvisionAdmin(ctx context.Context, users repository.UserRepository, email, name string, now time.Time) (user *model.User, created bool, err error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, false, invalid("email", "is required")
	}

	user, err = users.FindByEmail(ctx, email)
	if err != nil {
		return nil, false, fmt.Errorf("error finding user by email: %w", err)
	}
	if user != nil {
		if err := users.SetRole(ctx, user.ID, model.RoleAdmin); err != nil {
			return nil, false, fmt.Errorf("failed to promote user: %w", err)
		}
		user.Role = model.RoleAdmin
		return user, false, nil
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = "Admin"
	}
	user = &model.User{
		GoogleID: fmt.Sprintf("%s%d", model.ManualGoogleIDPrefix, now.UnixMilli()),
		Email:    email,
		FullName: &name,
		Role:     model.RoleAdmin,
	}
	if err := users.Create(ctx, user); err != nil {
		return nil, false, fmt.Errorf("failed to create admin: %w", err)
	}
	return user, true, nil
}

package handler

import (
	"bytes"
	"context"
	"mime/multipart"

	"bachat_backend/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockAuthService struct{ mock.Mock }

func (m *MockAuthService) GoogleLogin(ctx context.Context, idToken string, meta model.SignInMeta) (*model.AuthResult, error) {
	args := m.Called(ctx, idToken, meta)
	r, _ := args.Get(0).(*model.AuthResult)
	return r, args.Error(1)
}

func (m *MockAuthService) GoogleWebLogin(ctx context.Context, req model.GoogleWebLoginRequest, meta model.SignInMeta) (*model.AuthResult, error) {
	args := m.Called(ctx, req, meta)
	r, _ := args.Get(0).(*model.AuthResult)
	return r, args.Error(1)
}

func (m *MockAuthService) RequestOTP(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *MockAuthService) VerifyOTP(ctx context.Context, email, code string) (*model.AuthResult, error) {
	args := m.Called(ctx, email, code)
	r, _ := args.Get(0).(*model.AuthResult)
	return r, args.Error(1)
}

func (m *MockAuthService) UpdateProfile(ctx context.Context, userID string, req model.UpdateProfileRequest) (*model.AuthResult, error) {
	args := m.Called(ctx, userID, req)
	r, _ := args.Get(0).(*model.AuthResult)
	return r, args.Error(1)
}

func (m *MockAuthService) UpdateFCMToken(ctx context.Context, userID, token string) error {
	return m.Called(ctx, userID, token).Error(0)
}

type MockExpenseService struct{ mock.Mock }

func (m *MockExpenseService) Create(ctx context.Context, userID string, req model.CreateExpenseRequest) (*model.Expense, error) {
	args := m.Called(ctx, userID, req)
	e, _ := args.Get(0).(*model.Expense)
	return e, args.Error(1)
}

func (m *MockExpenseService) List(ctx context.Context, userID string, filters model.ExpenseFilters) ([]model.Expense, error) {
	args := m.Called(ctx, userID, filters)
	list, _ := args.Get(0).([]model.Expense)
	return list, args.Error(1)
}

func (m *MockExpenseService) Update(ctx context.Context, id, userID string, req model.UpdateExpenseRequest) (*model.Expense, error) {
	args := m.Called(ctx, id, userID, req)
	e, _ := args.Get(0).(*model.Expense)
	return e, args.Error(1)
}

func (m *MockExpenseService) Delete(ctx context.Context, id, userID string) error {
	return m.Called(ctx, id, userID).Error(0)
}

func (m *MockExpenseService) Stats(ctx context.Context, userID string, dateRange model.DateRange) (*model.ExpenseStats, error) {
	args := m.Called(ctx, userID, dateRange)
	s, _ := args.Get(0).(*model.ExpenseStats)
	return s, args.Error(1)
}

func (m *MockExpenseService) ExportCSV(ctx context.Context, userID string, filters model.ExpenseFilters) (*bytes.Buffer, error) {
	args := m.Called(ctx, userID, filters)
	b, _ := args.Get(0).(*bytes.Buffer)
	return b, args.Error(1)
}

type MockUdhaarService struct{ mock.Mock }

func (m *MockUdhaarService) Create(ctx context.Context, userID string, req model.CreateUdhaarRequest) (*model.Udhaar, error) {
	args := m.Called(ctx, userID, req)
	u, _ := args.Get(0).(*model.Udhaar)
	return u, args.Error(1)
}

func (m *MockUdhaarService) List(ctx context.Context, userID string, filters model.UdhaarFilters) ([]model.Udhaar, error) {
	args := m.Called(ctx, userID, filters)
	list, _ := args.Get(0).([]model.Udhaar)
	return list, args.Error(1)
}

func (m *MockUdhaarService) Update(ctx context.Context, id, userID string, req model.UpdateUdhaarRequest) (*model.Udhaar, error) {
	args := m.Called(ctx, id, userID, req)
	u, _ := args.Get(0).(*model.Udhaar)
	return u, args.Error(1)
}

func (m *MockUdhaarService) Delete(ctx context.Context, id, userID string) error {
	return m.Called(ctx, id, userID).Error(0)
}

type MockAdminService struct{ mock.Mock }

func (m *MockAdminService) Stats(ctx context.Context) (*model.AdminStats, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).(*model.AdminStats)
	return s, args.Error(1)
}

func (m *MockAdminService) ListUsers(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]model.User)
	return list, args.Error(1)
}

type MockAnalyticsService struct{ mock.Mock }

func (m *MockAnalyticsService) RecordActivity(ctx context.Context, userID string, req model.RecordActivityRequest) (*model.UserActivity, error) {
	args := m.Called(ctx, userID, req)
	a, _ := args.Get(0).(*model.UserActivity)
	return a, args.Error(1)
}

func (m *MockAnalyticsService) Report(ctx context.Context, days int) (*model.AnalyticsReport, error) {
	args := m.Called(ctx, days)
	r, _ := args.Get(0).(*model.AnalyticsReport)
	return r, args.Error(1)
}

type MockNotificationService struct{ mock.Mock }

func (m *MockNotificationService) Send(ctx context.Context, req model.SendNotificationRequest, image *multipart.FileHeader, publicBaseURL string) (*model.PushResult, error) {
	args := m.Called(ctx, req, image, publicBaseURL)
	r, _ := args.Get(0).(*model.PushResult)
	return r, args.Error(1)
}

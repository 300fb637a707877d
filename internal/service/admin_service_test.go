package service

import (
	"context"
	"testing"
	"time"

	"bachat_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAdminService_Stats(t *testing.T) {
	users := newMemUserRepo(adminUser(), &model.User{ID: "u-1", GoogleID: "g-1", Email: "a@x.io"})
	expenses := new(MockExpenseRepository)
	udhaar := new(MockUdhaarRepository)
	svc := NewAdminService(users, expenses, udhaar, fixedClock(statsNow))

	expenses.On("SumSince", mock.Anything, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)).Return(1234.5, nil)
	udhaar.On("SumUnsettled", mock.Anything).Return(300.0, nil)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &model.AdminStats{TotalUsers: 2, TotalMonthlyExpenses: 1234.5, TotalActiveUdhaar: 300}, stats)
}

func TestAdminService_ListUsers_OnlyRegularUsers(t *testing.T) {
	users := newMemUserRepo(adminUser(), &model.User{ID: "u-1", GoogleID: "g-1", Email: "a@x.io"})
	svc := NewAdminService(users, new(MockExpenseRepository), new(MockUdhaarRepository), fixedClock(statsNow))

	list, err := svc.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "u-1", list[0].ID)
}

func TestProvisionAdmin(t *testing.T) {
	t.Run("promotes existing user", func(t *testing.T) {
		users := newMemUserRepo(&model.User{ID: "u-1", GoogleID: "g-1", Email: "Owner@x.io", Role: model.RoleUser})

		user, created, err := ProvisionAdmin(context.Background(), users, " owner@x.io ", "", statsNow)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, model.RoleAdmin, user.Role)

		stored, _ := users.FindByID(context.Background(), "u-1")
		assert.Equal(t, model.RoleAdmin, stored.Role)
	})

	t.Run("creates manual admin", func(t *testing.T) {
		users := newMemUserRepo()

		user, created, err := ProvisionAdmin(context.Background(), users, "ops@x.io", "Ops Team", statsNow)
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, "manual_otp_1709739000000", user.GoogleID)
		assert.Equal(t, "Ops Team", *user.FullName)
		assert.Equal(t, model.RoleAdmin, user.Role)

		count, _ := users.Count(context.Background())
		assert.Equal(t, int64(1), count)
	})

	t.Run("email required", func(t *testing.T) {
		_, _, err := ProvisionAdmin(context.Background(), newMemUserRepo(), "  ", "", statsNow)
		var vErr *ValidationError
		assert.ErrorAs(t, err, &vErr)
	})
}

func TestAdminService_Stats_SettlingUdhaarLowersActiveTotal(t *testing.T) {
	ctx := context.Background()
	clock := fixedClock(statsNow)
	udhaarRepo := newMemUdhaarRepo()
	ledger := NewUdhaarService(udhaarRepo, clock)

	expenses := new(MockExpenseRepository)
	expenses.On("SumSince", mock.Anything, mock.Anything).Return(0.0, nil)
	admin := NewAdminService(newMemUserRepo(adminUser()), expenses, udhaarRepo, clock)

	entry, err := ledger.Create(ctx, "u-1", model.CreateUdhaarRequest{Type: model.UdhaarLene, PersonName: "Ravi", Amount: 1000})
	require.NoError(t, err)
	_, err = ledger.Create(ctx, "u-2", model.CreateUdhaarRequest{Type: model.UdhaarDene, PersonName: "Meena", Amount: 250})
	require.NoError(t, err)

	stats, err := admin.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1250.0, stats.TotalActiveUdhaar)

	// another user cannot settle it
	settled := true
	_, err = ledger.Update(ctx, entry.ID, "u-2", model.UpdateUdhaarRequest{IsSettled: &settled})
	assert.ErrorIs(t, err, ErrUdhaarNotFound)

	_, err = ledger.Update(ctx, entry.ID, "u-1", model.UpdateUdhaarRequest{IsSettled: &settled})
	require.NoError(t, err)

	stats, err = admin.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 250.0, stats.TotalActiveUdhaar)
}

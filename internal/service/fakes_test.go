package service

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"bachat_backend/internal/model"
	"bachat_backend/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixedClock(t time.Time) *Clock {
	return NewClock(func() time.Time { return t }, t.Location())
}

// memUserRepo is an in-memory UserRepository that keeps otp state, used where
// flows need several round trips against the same user.
type memUserRepo struct {
	mu      sync.Mutex
	users   map[string]*model.User
	otpHash map[string]*string
	otpExp  map[string]*time.Time
}

var _ repository.UserRepository = (*memUserRepo)(nil)

func newMemUserRepo(users ...*model.User) *memUserRepo {
	r := &memUserRepo{
		users:   map[string]*model.User{},
		otpHash: map[string]*string{},
		otpExp:  map[string]*time.Time{},
	}
	for _, u := range users {
		if u.Role == "" {
			u.Role = model.RoleUser
		}
		r.users[u.ID] = u
	}
	return r
}

func clone(u *model.User) *model.User {
	c := *u
	return &c
}

func (r *memUserRepo) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.GoogleID == user.GoogleID || strings.EqualFold(u.Email, user.Email) {
			return repository.ErrDuplicate
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Role == "" {
		user.Role = model.RoleUser
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = clone(user)
	return nil
}

func (r *memUserRepo) find(match func(*model.User) bool) *model.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			return clone(u)
		}
	}
	return nil
}

func (r *memUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.ID == id }), nil
}

func (r *memUserRepo) FindByGoogleID(_ context.Context, googleID string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.GoogleID == googleID }), nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return strings.EqualFold(u.Email, email) }), nil
}

func (r *memUserRepo) update(id string, fn func(*model.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	fn(u)
	return nil
}

func (r *memUserRepo) RecordSignIn(_ context.Context, id string, meta model.SignInMeta) error {
	return r.update(id, func(u *model.User) {
		if meta.Device != nil {
			u.DeviceInfo = meta.Device
		}
		if meta.IP != "" {
			ip := meta.IP
			u.LastIP = &ip
		}
		at := meta.At
		u.LastLogin = &at
	})
}

func (r *memUserRepo) LinkGoogleID(_ context.Context, id, googleID string) error {
	return r.update(id, func(u *model.User) { u.GoogleID = googleID })
}

func (r *memUserRepo) UpdateProfile(_ context.Context, id string, req model.UpdateProfileRequest) (*model.User, error) {
	err := r.update(id, func(u *model.User) {
		if req.FullName != nil {
			u.FullName = req.FullName
		}
		if req.MobileNumber != nil {
			u.MobileNumber = req.MobileNumber
		}
		if req.ProfilePicture != nil {
			u.ProfilePicture = req.ProfilePicture
		}
	})
	if err != nil {
		return nil, err
	}
	return r.FindByID(context.Background(), id)
}

func (r *memUserRepo) UpdateFCMToken(_ context.Context, id, token string) error {
	return r.update(id, func(u *model.User) { u.FCMToken = &token })
}

func (r *memUserRepo) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	return r.update(id, func(u *model.User) { u.LastLogin = &at })
}

func (r *memUserRepo) SetRole(_ context.Context, id string, role model.Role) error {
	return r.update(id, func(u *model.User) { u.Role = role })
}

func (r *memUserRepo) SetOTP(_ context.Context, id, otpHash string, expires time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	r.otpHash[id] = &otpHash
	r.otpExp[id] = &expires
	return nil
}

func (r *memUserRepo) ConsumeOTP(_ context.Context, email string, check repository.OTPCheck) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, u := range r.users {
		if !strings.EqualFold(u.Email, email) {
			continue
		}
		if err := check(r.otpHash[id], r.otpExp[id]); err != nil {
			return nil, err
		}
		delete(r.otpHash, id)
		delete(r.otpExp, id)
		return clone(u), nil
	}
	return nil, nil
}

func (r *memUserRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

func (r *memUserRepo) ListByRole(_ context.Context, role model.Role) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.User{}
	for _, u := range r.users {
		if u.Role == role {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memUserRepo) FindPushTokens(_ context.Context, userIDs []string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	want := map[string]bool{}
	for _, id := range userIDs {
		want[id] = true
	}
	var tokens []string
	for id, u := range r.users {
		if u.FCMToken == nil || *u.FCMToken == "" {
			continue
		}
		if len(want) == 0 || want[id] {
			tokens = append(tokens, *u.FCMToken)
		}
	}
	sort.Strings(tokens)
	return tokens, nil
}

// MockExpenseRepository is a mock implementation of ExpenseRepository
type MockExpenseRepository struct {
	mock.Mock
}

func (m *MockExpenseRepository) Create(ctx context.Context, e *model.Expense) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockExpenseRepository) FindOwned(ctx context.Context, id, userID string) (*model.Expense, error) {
	args := m.Called(ctx, id, userID)
	e, _ := args.Get(0).(*model.Expense)
	return e, args.Error(1)
}

func (m *MockExpenseRepository) FindByUser(ctx context.Context, userID string, filters model.ExpenseFilters) ([]model.Expense, error) {
	args := m.Called(ctx, userID, filters)
	list, _ := args.Get(0).([]model.Expense)
	return list, args.Error(1)
}

func (m *MockExpenseRepository) Update(ctx context.Context, e *model.Expense) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockExpenseRepository) Delete(ctx context.Context, id, userID string) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *MockExpenseRepository) PeriodTotals(ctx context.Context, userID string, today, week, month time.Time) (*repository.PeriodTotals, error) {
	args := m.Called(ctx, userID, today, week, month)
	t, _ := args.Get(0).(*repository.PeriodTotals)
	return t, args.Error(1)
}

func (m *MockExpenseRepository) CategoryTotals(ctx context.Context, userID string, dateRange model.DateRange) ([]model.CategoryTotal, error) {
	args := m.Called(ctx, userID, dateRange)
	list, _ := args.Get(0).([]model.CategoryTotal)
	return list, args.Error(1)
}

func (m *MockExpenseRepository) SumSince(ctx context.Context, since time.Time) (float64, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(float64), args.Error(1)
}

// MockUdhaarRepository is a mock implementation of UdhaarRepository
type MockUdhaarRepository struct {
	mock.Mock
}

func (m *MockUdhaarRepository) Create(ctx context.Context, u *model.Udhaar) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockUdhaarRepository) FindOwned(ctx context.Context, id, userID string) (*model.Udhaar, error) {
	args := m.Called(ctx, id, userID)
	u, _ := args.Get(0).(*model.Udhaar)
	return u, args.Error(1)
}

func (m *MockUdhaarRepository) FindByUser(ctx context.Context, userID string, filters model.UdhaarFilters) ([]model.Udhaar, error) {
	args := m.Called(ctx, userID, filters)
	list, _ := args.Get(0).([]model.Udhaar)
	return list, args.Error(1)
}

func (m *MockUdhaarRepository) Update(ctx context.Context, u *model.Udhaar) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockUdhaarRepository) Delete(ctx context.Context, id, userID string) error {
	return m.Called(ctx, id, userID).Error(0)
}

func (m *MockUdhaarRepository) SumUnsettled(ctx context.Context) (float64, error) {
	args := m.Called(ctx)
	return args.Get(0).(float64), args.Error(1)
}

// MockActivityRepository is a mock implementation of ActivityRepository
type MockActivityRepository struct {
	mock.Mock
}

func (m *MockActivityRepository) Create(ctx context.Context, a *model.UserActivity) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockActivityRepository) NewUsersByDay(ctx context.Context, since, until time.Time, tz string) ([]model.DailyCount, error) {
	args := m.Called(ctx, since, until, tz)
	list, _ := args.Get(0).([]model.DailyCount)
	return list, args.Error(1)
}

func (m *MockActivityRepository) ActiveUsersByDay(ctx context.Context, since, until time.Time, tz string) ([]model.DailyCount, error) {
	args := m.Called(ctx, since, until, tz)
	list, _ := args.Get(0).([]model.DailyCount)
	return list, args.Error(1)
}

func (m *MockActivityRepository) SessionStatsByDay(ctx context.Context, since, until time.Time, tz string) ([]model.DailySessionStat, error) {
	args := m.Called(ctx, since, until, tz)
	list, _ := args.Get(0).([]model.DailySessionStat)
	return list, args.Error(1)
}

// MockPusher is a mock implementation of Pusher
type MockPusher struct {
	mock.Mock
}

func (m *MockPusher) Send(ctx context.Context, msg model.PushMessage) (*model.PushResult, error) {
	args := m.Called(ctx, msg)
	r, _ := args.Get(0).(*model.PushResult)
	return r, args.Error(1)
}

type fakeVerifier struct {
	identity *model.GoogleIdentity
	err      error
}

func (f *fakeVerifier) Verify(context.Context, string) (*model.GoogleIdentity, error) {
	return f.identity, f.err
}

type sentMail struct {
	to, code string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (f *fakeMailer) SendOTP(_ context.Context, to, code string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{to: to, code: code})
	return nil
}

func (f *fakeMailer) last() sentMail {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[len(f.sent)-1]
}

// memUdhaarRepo is an in-memory UdhaarRepository scoped by owner like the SQL one.
type memUdhaarRepo struct {
	mu      sync.Mutex
	entries map[string]model.Udhaar
}

func newMemUdhaarRepo() *memUdhaarRepo {
	return &memUdhaarRepo{entries: map[string]model.Udhaar{}}
}

func (r *memUdhaarRepo) Create(_ context.Context, u *model.Udhaar) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	r.entries[u.ID] = *u
	return nil
}

func (r *memUdhaarRepo) FindOwned(_ context.Context, id, userID string) (*model.Udhaar, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok || e.UserID != userID {
		return nil, nil
	}
	return &e, nil
}

func (r *memUdhaarRepo) FindByUser(_ context.Context, userID string, filters model.UdhaarFilters) ([]model.Udhaar, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Udhaar
	for _, e := range r.entries {
		if e.UserID != userID {
			continue
		}
		if filters.Type != nil && e.Type != *filters.Type {
			continue
		}
		if filters.IsSettled != nil && e.IsSettled != *filters.IsSettled {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (r *memUdhaarRepo) Update(_ context.Context, u *model.Udhaar) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[u.ID]
	if !ok || e.UserID != u.UserID {
		return repository.ErrUdhaarNotFound
	}
	r.entries[u.ID] = *u
	return nil
}

func (r *memUdhaarRepo) Delete(_ context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok || e.UserID != userID {
		return repository.ErrUdhaarNotFound
	}
	delete(r.entries, id)
	return nil
}

func (r *memUdhaarRepo) SumUnsettled(context.Context) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total float64
	for _, e := range r.entries {
		if !e.IsSettled {
			total += e.Amount
		}
	}
	return total, nil
}

package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"bachat_backend/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userCols = []string{"id", "google_id", "email", "full_name", "mobile_number", "profile_picture", "fcm_token", "role",
	"device_info", "last_ip", "last_login", "created_at", "updated_at"}

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func userRow(id, email string, extra ...any) []any {
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	row := []any{id, "g-" + id, email, nil, nil, nil, nil, "user",
		[]byte(`{"platform":"android","model":"Pixel 8"}`), nil, nil, created, created}
	return append(row, extra...)
}

func TestUserRepository_FindByEmail(t *testing.T) {
	pool := newMockPool(t)
	repo := NewUserRepository(pool)

	pool.ExpectQuery(regexp.QuoteMeta("FROM users WHERE lower(email) = lower($1)")).
		WithArgs("Asha@Example.com").
		WillReturnRows(pgxmock.NewRows(userCols).AddRow(userRow("u-1", "asha@example.com")...))

	user, err := repo.FindByEmail(context.Background(), "Asha@Example.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "u-1", user.ID)
	assert.Equal(t, model.RoleUser, user.Role)
	require.NotNil(t, user.DeviceInfo)
	assert.Equal(t, model.PlatformAndroid, user.DeviceInfo.Platform)
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestUserRepository_FindByID_NotFound(t *testing.T) {
	pool := newMockPool(t)
	repo := NewUserRepository(pool)

	pool.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	user, err := repo.FindByID(context.Background(), "missing")
	assert.NoError(t, err)
	assert.Nil(t, user)
}

func TestUserRepository_Create(t *testing.T) {
	pool := newMockPool(t)
	repo := NewUserRepository(pool)
	now := time.Now()

	pool.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs(pgxmock.AnyArg(), "g-1", "a@x.io", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), "user",
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	user := &model.User{GoogleID: "g-1", Email: "a@x.io"}
	require.NoError(t, repo.Create(context.Background(), user))
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, model.RoleUser, user.Role)
	assert.Equal(t, now, user.CreatedAt)
}

func TestUserRepository_Create_Duplicate(t *testing.T) {
	pool := newMockPool(t)
	repo := NewUserRepository(pool)

	pool.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs(pgxmock.AnyArg(), "g-1", "a@x.io", pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), "user", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Create(context.Background(), &model.User{GoogleID: "g-1", Email: "a@x.io"})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestUserRepository_UpdateFCMToken_NotFound(t *testing.T) {
	pool := newMockPool(t)
	repo := NewUserRepository(pool)

	pool.ExpectExec(regexp.QuoteMeta("UPDATE users SET fcm_token = $2")).
		WithArgs("u-404", "tok").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	assert.ErrorIs(t, repo.UpdateFCMToken(context.Background(), "u-404", "tok"), ErrUserNotFound)
}

func TestUserRepository_ConsumeOTP(t *testing.T) {
	hash := "$2a$10$hash"
	expires := time.Now().Add(5 * time.Minute)

	t.Run("clears passcode when check passes", func(t *testing.T) {
		pool := newMockPool(t)
		repo := NewUserRepository(pool)

		pool.ExpectBegin()
		pool.ExpectQuery(regexp.QuoteMeta("otp_hash, otp_expires FROM users WHERE lower(email) = lower($1) FOR UPDATE")).
			WithArgs("ops@bachat.app").
			WillReturnRows(pgxmock.NewRows(append(userCols, "otp_hash", "otp_expires")).
				AddRow(userRow("admin-1", "ops@bachat.app", &hash, &expires)...))
		pool.ExpectExec(regexp.QuoteMeta("UPDATE users SET otp_hash = NULL, otp_expires = NULL")).
			WithArgs("admin-1").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		pool.ExpectCommit()

		var gotHash *string
		user, err := repo.ConsumeOTP(context.Background(), "ops@bachat.app", func(h *string, exp *time.Time) error {
			gotHash = h
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, "admin-1", user.ID)
		require.NotNil(t, gotHash)
		assert.Equal(t, hash, *gotHash)
		assert.NoError(t, pool.ExpectationsWereMet())
	})

	t.Run("rolls back when check fails", func(t *testing.T) {
		pool := newMockPool(t)
		repo := NewUserRepository(pool)
		errWrongCode := errors.New("wrong code")

		pool.ExpectBegin()
		pool.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
			WithArgs("ops@bachat.app").
			WillReturnRows(pgxmock.NewRows(append(userCols, "otp_hash", "otp_expires")).
				AddRow(userRow("admin-1", "ops@bachat.app", &hash, &expires)...))
		pool.ExpectRollback()

		user, err := repo.ConsumeOTP(context.Background(), "ops@bachat.app", func(*string, *time.Time) error {
			return errWrongCode
		})
		assert.ErrorIs(t, err, errWrongCode)
		assert.Nil(t, user)
		assert.NoError(t, pool.ExpectationsWereMet())
	})

	t.Run("unknown email", func(t *testing.T) {
		pool := newMockPool(t)
		repo := NewUserRepository(pool)

		pool.ExpectBegin()
		pool.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
			WithArgs("nobody@x.io").
			WillReturnError(pgx.ErrNoRows)
		pool.ExpectRollback()

		user, err := repo.ConsumeOTP(context.Background(), "nobody@x.io", func(*string, *time.Time) error {
			t.Fatal("check must not run without a user")
			return nil
		})
		assert.NoError(t, err)
		assert.Nil(t, user)
		assert.NoError(t, pool.ExpectationsWereMet())
	})
}

func TestUserRepository_FindPushTokens(t *testing.T) {
	pool := newMockPool(t)
	repo := NewUserRepository(pool)

	pool.ExpectQuery(regexp.QuoteMeta("AND id = ANY($1)")).
		WithArgs([]string{"u-1", "u-2"}).
		WillReturnRows(pgxmock.NewRows([]string{"fcm_token"}).AddRow("tok-1").AddRow("tok-2"))

	tokens, err := repo.FindPushTokens(context.Background(), []string{"u-1", "u-2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"tok-1", "tok-2"}, tokens)
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestUserRepository_ListByRole(t *testing.T) {
	pool := newMockPool(t)
	repo := NewUserRepository(pool)

	pool.ExpectQuery(regexp.QuoteMeta("WHERE role = $1 ORDER BY created_at DESC")).
		WithArgs("user").
		WillReturnRows(pgxmock.NewRows(userCols).
			AddRow(userRow("u-2", "b@x.io")...).
			AddRow(userRow("u-1", "a@x.io")...))

	users, err := repo.ListByRole(context.Background(), model.RoleUser)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "u-2", users[0].ID)
}

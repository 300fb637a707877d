package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bachat_backend/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrUserNotFound is returned by writes that target a missing user
var ErrUserNotFound = errors.New("user not found")

// OTPCheck inspects the pending passcode of a locked user row. Returning an error
// aborts the consume and leaves the passcode in place.
type OTPCheck func(hash *string, expires *time.Time) error

// UserRepository defines operations for user data
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByGoogleID(ctx context.Context, googleID string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	RecordSignIn(ctx context.Context, id string, meta model.SignInMeta) error
	LinkGoogleID(ctx context.Context, id, googleID string) error
	UpdateProfile(ctx context.Context, id string, req model.UpdateProfileRequest) (*model.User, error)
	UpdateFCMToken(ctx context.Context, id, token string) error
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	SetRole(ctx context.Context, id string, role model.Role) error
	SetOTP(ctx context.Context, id, otpHash string, expires time.Time) error
	ConsumeOTP(ctx context.Context, email string, check OTPCheck) (*model.User, error)
	Count(ctx context.Context) (int64, error)
	ListByRole(ctx context.Context, role model.Role) ([]model.User, error)
	FindPushTokens(ctx context.Context, userIDs []string) ([]string, error)
}

type userRepository struct {
	db DBTX
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db DBTX) UserRepository {
	return &userRepository{db: db}
}

// userColumns never includes the otp columns; only ConsumeOTP reads those.
const userColumns = `id, google_id, email, full_name, mobile_number, profile_picture, fcm_token, role,
	device_info, last_ip, last_login, created_at, updated_at`

func scanUser(row pgx.Row, extra ...any) (*model.User, error) {
	var (
		u      model.User
		role   string
		device []byte
	)
	dest := []any{
		&u.ID, &u.GoogleID, &u.Email, &u.FullName, &u.MobileNumber, &u.ProfilePicture, &u.FCMToken, &role,
		&device, &u.LastIP, &u.LastLogin, &u.CreatedAt, &u.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	u.Role = model.Role(role)
	info, err := model.UnmarshalDeviceInfo(device)
	if err != nil {
		return nil, fmt.Errorf("failed to decode device info: %w", err)
	}
	u.DeviceInfo = info
	return &u, nil
}

// Create inserts a new user. A missing id is generated and a missing role defaults to user.
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Role == "" {
		user.Role = model.RoleUser
	}
	device, err := model.MarshalDeviceInfo(user.DeviceInfo)
	if err != nil {
		return fmt.Errorf("failed to encode device info: %w", err)
	}

	sql := `INSERT INTO users (id, google_id, email, full_name, mobile_number, profile_picture, role, device_info, last_ip, last_login)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING created_at, updated_at`
	err = r.db.QueryRow(ctx, sql, user.ID, user.GoogleID, user.Email, user.FullName, user.MobileNumber,
		user.ProfilePicture, string(user.Role), device, user.LastIP, user.LastLogin).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("failed to create user: %w", ErrDuplicate)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) findOne(ctx context.Context, where string, arg any) (*model.User, error) {
	sql := `SELECT ` + userColumns + ` FROM users WHERE ` + where
	user, err := scanUser(r.db.QueryRow(ctx, sql, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found, service layer decides
		}
		return nil, err
	}
	return user, nil
}

// FindByID retrieves a user by id
func (r *userRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	user, err := r.findOne(ctx, "id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return user, nil
}

// FindByGoogleID retrieves a user by the subject of their Google identity
func (r *userRepository) FindByGoogleID(ctx context.Context, googleID string) (*model.User, error) {
	user, err := r.findOne(ctx, "google_id = $1", googleID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by google ID: %w", err)
	}
	return user, nil
}

// FindByEmail retrieves a user by email, case-insensitively
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := r.findOne(ctx, "lower(email) = lower($1)", email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return user, nil
}

// RecordSignIn refreshes device, ip and last login after a successful sign-in
func (r *userRepository) RecordSignIn(ctx context.Context, id string, meta model.SignInMeta) error {
	device, err := model.MarshalDeviceInfo(meta.Device)
	if err != nil {
		return fmt.Errorf("failed to encode device info: %w", err)
	}
	sql := `UPDATE users
            SET device_info = COALESCE($2, device_info), last_ip = COALESCE(NULLIF($3, ''), last_ip), last_login = $4, updated_at = NOW()
            WHERE id = $1`
	tag, err := r.db.Exec(ctx, sql, id, device, meta.IP, meta.At)
	if err != nil {
		return fmt.Errorf("failed to record sign-in: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// LinkGoogleID attaches a Google identity to an operator-provisioned user
func (r *userRepository) LinkGoogleID(ctx context.Context, id, googleID string) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET google_id = $2, updated_at = NOW() WHERE id = $1`, id, googleID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("failed to link google ID: %w", ErrDuplicate)
		}
		return fmt.Errorf("failed to link google ID: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpdateProfile merges the provided fields; nil fields keep their stored value
func (r *userRepository) UpdateProfile(ctx context.Context, id string, req model.UpdateProfileRequest) (*model.User, error) {
	sql := `UPDATE users
            SET full_name = COALESCE($2, full_name),
                mobile_number = COALESCE($3, mobile_number),
                profile_picture = COALESCE($4, profile_picture),
                updated_at = NOW()
            WHERE id = $1
            RETURNING ` + userColumns
	user, err := scanUser(r.db.QueryRow(ctx, sql, id, req.FullName, req.MobileNumber, req.ProfilePicture))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

// UpdateFCMToken stores the device push token of a user
func (r *userRepository) UpdateFCMToken(ctx context.Context, id, token string) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET fcm_token = $2, updated_at = NOW() WHERE id = $1`, id, token)
	if err != nil {
		return fmt.Errorf("failed to update fcm token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *userRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET last_login = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *userRepository) SetRole(ctx context.Context, id string, role model.Role) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET role = $2, updated_at = NOW() WHERE id = $1`, id, string(role))
	if err != nil {
		return fmt.Errorf("failed to set role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SetOTP stores a hashed passcode and its expiry, replacing any pending one
func (r *userRepository) SetOTP(ctx context.Context, id, otpHash string, expires time.Time) error {
	sql := `UPDATE users SET otp_hash = $2, otp_expires = $3, updated_at = NOW() WHERE id = $1`
	tag, err := r.db.Exec(ctx, sql, id, otpHash, expires)
	if err != nil {
		return fmt.Errorf("failed to store otp: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ConsumeOTP locks the user row, runs check against the pending passcode and, when
// check passes, clears both otp columns in the same transaction. It returns
// (nil, nil) when no user has the email.
func (r *userRepository) ConsumeOTP(ctx context.Context, email string, check OTPCheck) (*model.User, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin otp transaction: %w", err)
	}
	defer tx.Rollback(ctx) // no-op after commit

	var (
		otpHash    *string
		otpExpires *time.Time
	)
	sql := `SELECT ` + userColumns + `, otp_hash, otp_expires FROM users WHERE lower(email) = lower($1) FOR UPDATE`
	user, err := scanUser(tx.QueryRow(ctx, sql, email), &otpHash, &otpExpires)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load otp state: %w", err)
	}

	if err := check(otpHash, otpExpires); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `UPDATE users SET otp_hash = NULL, otp_expires = NULL, updated_at = NOW() WHERE id = $1`, user.ID); err != nil {
		return nil, fmt.Errorf("failed to clear otp: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit otp consume: %w", err)
	}
	return user, nil
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

// ListByRole returns users holding role, newest first
func (r *userRepository) ListByRole(ctx context.Context, role model.Role) ([]model.User, error) {
	sql := `SELECT ` + userColumns + ` FROM users WHERE role = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, sql, string(role))
	if err != nil {
		return nil, fmt.Errorf("failed to query users by role: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, *u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, nil
}

// FindPushTokens returns the registered push tokens of userIDs, or of every user when userIDs is empty
func (r *userRepository) FindPushTokens(ctx context.Context, userIDs []string) ([]string, error) {
	sql := `SELECT fcm_token FROM users WHERE fcm_token IS NOT NULL AND fcm_token <> ''`
	var args []any
	if len(userIDs) > 0 {
		sql += ` AND id = ANY($1)`
		args = append(args, userIDs)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query push tokens: %w", err)
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, fmt.Errorf("failed to scan push token: %w", err)
		}
		tokens = append(tokens, token)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating push tokens: %w", err)
	}
	return tokens, nil
}

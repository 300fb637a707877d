package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"bachat_backend/internal/model"
	"bachat_backend/internal/ratelimit"
	"bachat_backend/internal/repository"
	"bachat_backend/internal/utils"
	"bachat_backend/pkg/metrics"
)

// IdentityVerifier checks a Google ID token and returns its trusted claims
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (*model.GoogleIdentity, error)
}

// OTPMailer delivers a one-time passcode
type OTPMailer interface {
	SendOTP(ctx context.Context, to, code string, ttl time.Duration) error
}

// AuthService provides authentication related services
type AuthService interface {
	GoogleLogin(ctx context.Context, idToken string, meta model.SignInMeta) (*model.AuthResult, error)
	GoogleWebLogin(ctx context.Context, req model.GoogleWebLoginRequest, meta model.SignInMeta) (*model.AuthResult, error)
	RequestOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, code string) (*model.AuthResult, error)
	UpdateProfile(ctx context.Context, userID string, req model.UpdateProfileRequest) (*model.AuthResult, error)
	UpdateFCMToken(ctx context.Context, userID, token string) error
}

// AuthOptions wires the optional collaborators. A nil Verifier or Mailer makes the
// corresponding flow fail with a server configuration error.
type AuthOptions struct {
	Verifier    IdentityVerifier
	Mailer      OTPMailer
	Limiter     ratelimit.Limiter
	OTPTTL      time.Duration
	OTPLimit    ratelimit.Rule
	VerifyLimit ratelimit.Rule
	Logger      *slog.Logger
	Now         func() time.Time
	GenerateOTP func() (string, error)
}

type authService struct {
	userRepo repository.UserRepository
	jwtUtil  *utils.JWTUtil
	verifier IdentityVerifier
	mailer   OTPMailer
	limiter  ratelimit.Limiter
	otpTTL   time.Duration
	otpLimit ratelimit.Rule
	verLimit ratelimit.Rule
	log      *slog.Logger
	now      func() time.Time
	genOTP   func() (string, error)
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo repository.UserRepository, jwtUtil *utils.JWTUtil, opts AuthOptions) AuthService {
	s := &authService{
		userRepo: userRepo,
		jwtUtil:  jwtUtil,
		verifier: opts.Verifier,
		mailer:   opts.Mailer,
		limiter:  opts.Limiter,
		otpTTL:   opts.OTPTTL,
		otpLimit: opts.OTPLimit,
		verLimit: opts.VerifyLimit,
		log:      opts.Logger,
		now:      opts.Now,
		genOTP:   opts.GenerateOTP,
	}
	if s.otpTTL <= 0 {
		s.otpTTL = 10 * time.Minute
	}
	if s.otpLimit.Limit <= 0 {
		s.otpLimit = ratelimit.Rule{Limit: 5, Window: 15 * time.Minute}
	}
	if s.verLimit.Limit <= 0 {
		s.verLimit = ratelimit.Rule{Limit: 5, Window: 15 * time.Minute}
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.genOTP == nil {
		s.genOTP = utils.GenerateOTP
	}
	return s
}

// GoogleLogin verifies a Google ID token and signs the holder in
func (s *authService) GoogleLogin(ctx context.Context, idToken string, meta model.SignInMeta) (*model.AuthResult, error) {
	if s.verifier == nil {
		return nil, ErrGoogleNotConfigured
	}
	identity, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		s.log.Warn("google id token rejected", slog.Any("error", err))
		return nil, ErrInvalidIDToken
	}
	return s.signInWithIdentity(ctx, *identity, meta)
}

// GoogleWebLogin trusts identity fields sent by the web client
func (s *authService) GoogleWebLogin(ctx context.Context, req model.GoogleWebLoginRequest, meta model.SignInMeta) (*model.AuthResult, error) {
	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.ID) == "" {
		return nil, invalid("", "Email and ID are required")
	}
	identity := model.GoogleIdentity{
		Subject: req.ID,
		Email:   strings.TrimSpace(req.Email),
		Name:    req.Name,
		Picture: req.PhotoURL,
	}
	return s.signInWithIdentity(ctx, identity, meta)
}

func (s *authService) signInWithIdentity(ctx context.Context, id model.GoogleIdentity, meta model.SignInMeta) (*model.AuthResult, error) {
	if meta.At.IsZero() {
		meta.At = s.now()
	}

	user, err := s.userRepo.FindByGoogleID(ctx, id.Subject)
	if err != nil {
		return nil, fmt.Errorf("error finding user by google ID: %w", err)
	}

	if user == nil {
		user, err = s.userRepo.FindByEmail(ctx, id.Email)
		if err != nil {
			return nil, fmt.Errorf("error finding user by email: %w", err)
		}
		if user != nil {
			// Operator-provisioned accounts adopt the first Google identity that presents their email.
			if !strings.HasPrefix(user.GoogleID, model.ManualGoogleIDPrefix) {
				return nil, ErrEmailInUse
			}
			if err := s.userRepo.LinkGoogleID(ctx, user.ID, id.Subject); err != nil {
				return nil, fmt.Errorf("failed to link google identity: %w", err)
			}
			user.GoogleID = id.Subject
			s.log.Info("linked google identity to provisioned user", slog.String("user_id", user.ID))
		}
	}

	if user == nil {
		user, err = s.createFromIdentity(ctx, id, meta)
		if err != nil {
			return nil, err
		}
	} else {
		if err := s.userRepo.RecordSignIn(ctx, user.ID, meta); err != nil {
			return nil, fmt.Errorf("failed to record sign-in: %w", err)
		}
		applySignIn(user, meta)
	}

	return s.issue(user)
}

func (s *authService) createFromIdentity(ctx context.Context, id model.GoogleIdentity, meta model.SignInMeta) (*model.User, error) {
	fullName := strings.TrimSpace(id.Name)
	if fullName == "" {
		fullName = strings.SplitN(id.Email, "@", 2)[0]
	}
	user := &model.User{
		GoogleID: id.Subject,
		Email:    id.Email,
		FullName: &fullName,
		Role:     model.RoleUser,
	}
	if id.Picture != "" {
		user.ProfilePicture = &id.Picture
	}
	applySignIn(user, meta)

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// Lost a race against a concurrent first sign-in with the same identity.
			existing, findErr := s.userRepo.FindByGoogleID(ctx, id.Subject)
			if findErr == nil && existing != nil {
				return existing, nil
			}
			return nil, ErrEmailInUse
		}
		return nil, fmt.Errorf("failed to create user in repository: %w", err)
	}
	s.log.Info("user created", slog.String("user_id", user.ID))
	return user, nil
}

func applySignIn(user *model.User, meta model.SignInMeta) {
	if meta.Device != nil {
		user.DeviceInfo = meta.Device
	}
	if meta.IP != "" {
		ip := meta.IP
		user.LastIP = &ip
	}
	at := meta.At
	user.LastLogin = &at
}

func (s *authService) issue(user *model.User) (*model.AuthResult, error) {
	token, err := s.jwtUtil.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &model.AuthResult{User: user, Token: token, IsNewUser: user.IsProfileIncomplete()}, nil
}

// RequestOTP mails a fresh passcode to a registered user, replacing any pending one
func (s *authService) RequestOTP(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	if err := s.throttle(ctx, ratelimit.OTPRequestKey(email), s.otpLimit); err != nil {
		return err
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("error finding user by email: %w", err)
	}
	if user == nil {
		return ErrUserNotFound
	}
	if s.mailer == nil {
		return ErrMailerNotConfigured
	}

	code, err := s.genOTP()
	if err != nil {
		return fmt.Errorf("failed to generate otp: %w", err)
	}
	hash, err := utils.HashCode(code)
	if err != nil {
		return fmt.Errorf("failed to hash otp: %w", err)
	}
	if err := s.userRepo.SetOTP(ctx, user.ID, hash, s.now().Add(s.otpTTL)); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to store otp: %w", err)
	}

	if err := s.mailer.SendOTP(ctx, user.Email, code, s.otpTTL); err != nil {
		s.log.Error("otp email failed", slog.String("user_id", user.ID), slog.Any("error", err))
		return ErrDispatchFailed
	}
	metrics.RecordOTPEvent(metrics.OTPRequested)
	s.log.Info("otp sent", slog.String("user_id", user.ID))
	return nil
}

// throttle counts one attempt against key; limiter failures let the attempt through.
func (s *authService) throttle(ctx context.Context, key string, rule ratelimit.Rule) error {
	if s.limiter == nil {
		return nil
	}
	res, err := s.limiter.Check(ctx, key, rule)
	if err != nil {
		s.log.Error("otp rate limiter unavailable", slog.Any("error", err))
		return nil
	}
	if !res.Allowed {
		metrics.RecordOTPEvent(metrics.OTPThrottled)
		return ErrTooManyRequests
	}
	return nil
}

// VerifyOTP consumes a pending passcode and signs the user in. A passcode can succeed once.
func (s *authService) VerifyOTP(ctx context.Context, email, code string) (*model.AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := s.throttle(ctx, ratelimit.OTPVerifyKey(email), s.verLimit); err != nil {
		return nil, err
	}
	now := s.now()

	user, err := s.userRepo.ConsumeOTP(ctx, email, func(hash *string, expires *time.Time) error {
		// A consumed or never-requested code matches nothing.
		if hash == nil || *hash == "" || expires == nil || !utils.CheckCodeHash(code, *hash) {
			return ErrInvalidOTP
		}
		if !now.Before(*expires) {
			return ErrOTPExpired
		}
		return nil
	})
	switch {
	case errors.Is(err, ErrInvalidOTP):
		metrics.RecordOTPEvent(metrics.OTPRejected)
		return nil, err
	case errors.Is(err, ErrOTPExpired):
		metrics.RecordOTPEvent(metrics.OTPExpired)
		return nil, err
	case err != nil:
		return nil, fmt.Errorf("failed to verify otp: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.log.Warn("failed to update last login", slog.String("user_id", user.ID), slog.Any("error", err))
	} else {
		user.LastLogin = &now
	}

	metrics.RecordOTPEvent(metrics.OTPVerified)
	return s.issue(user)
}

// UpdateProfile merges the provided fields; empty strings keep the stored value
func (s *authService) UpdateProfile(ctx context.Context, userID string, req model.UpdateProfileRequest) (*model.AuthResult, error) {
	req.FullName = nonEmpty(req.FullName)
	req.MobileNumber = nonEmpty(req.MobileNumber)
	req.ProfilePicture = nonEmpty(req.ProfilePicture)

	user, err := s.userRepo.UpdateProfile(ctx, userID, req)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return s.issue(user)
}

func (s *authService) UpdateFCMToken(ctx context.Context, userID, token string) error {
	if strings.TrimSpace(token) == "" {
		return invalid("fcmToken", "is required")
	}
	if err := s.userRepo.UpdateFCMToken(ctx, userID, token); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to update fcm token: %w", err)
	}
	return nil
}

func nonEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}

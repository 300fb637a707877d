package model

import (
	"encoding/json"
	"time"
)

// Role is the closed set of access levels a user can hold.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

// ManualGoogleIDPrefix marks users provisioned by an operator rather than through Google sign-in.
const ManualGoogleIDPrefix = "manual_otp_"

// DevicePlatform identifies the client platform a user signed in from.
type DevicePlatform string

const (
	PlatformAndroid DevicePlatform = "android"
	PlatformIOS     DevicePlatform = "ios"
	PlatformWeb     DevicePlatform = "web"
)

// DeviceInfo describes the device used for the latest sign-in.
type DeviceInfo struct {
	Platform   DevicePlatform `json:"platform" binding:"omitempty,oneof=android ios web"`
	Model      string         `json:"model,omitempty"`
	OSVersion  string         `json:"osVersion,omitempty"`
	AppVersion string         `json:"appVersion,omitempty"`
}

// User represents a user in the system
type User struct {
	ID             string      `json:"_id"`
	GoogleID       string      `json:"googleId"`
	Email          string      `json:"email"`
	FullName       *string     `json:"fullName,omitempty"`
	MobileNumber   *string     `json:"mobileNumber,omitempty"`
	ProfilePicture *string     `json:"profilePicture,omitempty"`
	FCMToken       *string     `json:"-"`
	Role           Role        `json:"role"`
	OTPHash        *string     `json:"-"` // Never exposed
	OTPExpires     *time.Time  `json:"-"`
	DeviceInfo     *DeviceInfo `json:"deviceInfo,omitempty"`
	LastIP         *string     `json:"lastIp,omitempty"`
	LastLogin      *time.Time  `json:"lastLogin,omitempty"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

// IsProfileIncomplete reports whether onboarding still has to collect the mobile number.
func (u *User) IsProfileIncomplete() bool {
	return u.MobileNumber == nil || *u.MobileNumber == ""
}

// SignInMeta carries request metadata captured on every sign-in.
type SignInMeta struct {
	IP     string
	Device *DeviceInfo
	At     time.Time
}

// GoogleIdentity is the set of claims trusted after an identity assertion has been checked.
type GoogleIdentity struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

// GoogleLoginRequest is the body of POST /auth/google
type GoogleLoginRequest struct {
	Token      string      `json:"token" binding:"required"`
	DeviceInfo *DeviceInfo `json:"deviceInfo"`
}

// GoogleWebLoginRequest is the body of POST /auth/google-web
type GoogleWebLoginRequest struct {
	ID         string      `json:"id"`
	Email      string      `json:"email"`
	Name       string      `json:"name"`
	PhotoURL   string      `json:"photoUrl"`
	DeviceInfo *DeviceInfo `json:"deviceInfo"`
}

type OTPRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type OTPVerifyRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required,len=6,numeric"`
}

// UpdateProfileRequest uses pointers so omitted fields keep their stored value
type UpdateProfileRequest struct {
	FullName       *string `json:"fullName,omitempty"`
	MobileNumber   *string `json:"mobileNumber,omitempty"`
	ProfilePicture *string `json:"profilePicture,omitempty" binding:"omitempty,url"`
}

type UpdateFCMTokenRequest struct {
	FCMToken string `json:"fcmToken" binding:"required"`
}

// AuthResult is returned by every successful sign-in flow.
type AuthResult struct {
	User      *User
	Token     string
	IsNewUser bool
}

// MarshalDeviceInfo encodes device info for a JSONB column, keeping NULL for absent values.
func MarshalDeviceInfo(d *DeviceInfo) ([]byte, error) {
	if d == nil {
		return nil, nil
	}
	return json.Marshal(d)
}

// UnmarshalDeviceInfo decodes a JSONB column value, returning nil for NULL.
func UnmarshalDeviceInfo(raw []byte) (*DeviceInfo, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var d DeviceInfo
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

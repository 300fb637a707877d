package model

import "time"

// UdhaarType is the direction of an informal loan.
type UdhaarType string

const (
	UdhaarLene UdhaarType = "LENE" // money the user will receive
	UdhaarDene UdhaarType = "DENE" // money the user has to pay
)

// Valid reports whether t is LENE or DENE.
func (t UdhaarType) Valid() bool {
	switch t {
	case UdhaarLene, UdhaarDene:
		return true
	default:
		return false
	}
}

// Udhaar represents an IOU between the user and a named counterparty
type Udhaar struct {
	ID         string     `json:"_id"`
	UserID     string     `json:"user"`
	Type       UdhaarType `json:"type"`
	PersonName string     `json:"personName"`
	Amount     float64    `json:"amount"`
	Date       time.Time  `json:"date"`
	Notes      *string    `json:"notes,omitempty"`
	IsSettled  bool       `json:"isSettled"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

type CreateUdhaarRequest struct {
	Type       UdhaarType `json:"type" binding:"required,oneof=LENE DENE"`
	PersonName string     `json:"personName" binding:"required"`
	Amount     float64    `json:"amount" binding:"required,gt=0"`
	Date       *FlexTime  `json:"date"`
	Notes      *string    `json:"notes"`
}

// UpdateUdhaarRequest does not allow changing the direction of an entry
type UpdateUdhaarRequest struct {
	PersonName *string   `json:"personName,omitempty" binding:"omitempty,min=1"`
	Amount     *float64  `json:"amount,omitempty" binding:"omitempty,gt=0"`
	Date       *FlexTime `json:"date,omitempty"`
	Notes      *string   `json:"notes,omitempty"`
	IsSettled  *bool     `json:"isSettled,omitempty"`
}

type UdhaarFilters struct {
	Type      *UdhaarType
	IsSettled *bool
}

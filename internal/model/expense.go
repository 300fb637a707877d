package model

import "time"

// Expense represents a single spending record owned by one user
type Expense struct {
	ID        string    `json:"_id"`
	UserID    string    `json:"user"`
	Amount    float64   `json:"amount"`
	Category  string    `json:"category"`
	Date      time.Time `json:"date"`
	Notes     *string   `json:"notes,omitempty"` // Pointer for optional field
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateExpenseRequest is used for creating a new expense
type CreateExpenseRequest struct {
	Amount   float64   `json:"amount" binding:"required,gt=0"`
	Category string    `json:"category" binding:"required"`
	Date     *FlexTime `json:"date"`
	Notes    *string   `json:"notes"`
}

type UpdateExpenseRequest struct {
	Amount   *float64  `json:"amount,omitempty" binding:"omitempty,gt=0"` // Pointers to allow partial updates
	Category *string   `json:"category,omitempty" binding:"omitempty,min=1"`
	Date     *FlexTime `json:"date,omitempty"`
	Notes    *string   `json:"notes,omitempty"` // "" clears, omitted keeps
}

// ExpenseFilters contains filter parameters for a user's expense list
type ExpenseFilters struct {
	Category  *string
	StartDate *time.Time
	EndDate   *time.Time
}

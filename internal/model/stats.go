package model

import "time"

// CategoryTotal is a raw grouped sum as read from the store
type CategoryTotal struct {
	Category string
	Total    float64
	Count    int64
}

// CategoryShare is one slice of the category breakdown
type CategoryShare struct {
	Category   string  `json:"category"`
	Amount     float64 `json:"amount"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

// ExpenseStats is the per-user statistics payload
type ExpenseStats struct {
	Today             float64         `json:"today"`
	Week              float64         `json:"week"`
	Month             float64         `json:"month"`
	Total             float64         `json:"total"`
	CategoryBreakdown []CategoryShare `json:"categoryBreakdown"`
}

// DateRange bounds a query; nil ends are open
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// AdminStats represents platform-wide statistics
type AdminStats struct {
	TotalUsers           int64   `json:"totalUsers"`
	TotalMonthlyExpenses float64 `json:"totalMonthlyExpenses"`
	TotalActiveUdhaar    float64 `json:"totalActiveUdhaar"`
}

package model

// SendNotificationRequest is bound from the multipart form of POST /notifications/send
type SendNotificationRequest struct {
	Title         string   `form:"title"`
	Body          string   `form:"body" binding:"required"`
	ImageURL      string   `form:"imageUrl" binding:"omitempty,url"`
	TargetUserIDs []string `form:"targetUserIds"`
}

// PushMessage is what gets handed to the push transport
type PushMessage struct {
	Title    string
	Body     string
	ImageURL string
	Tokens   []string
}

type PushResult struct {
	SuccessCount int `json:"successCount"`
	FailureCount int `json:"failureCount"`
}

const DefaultNotificationTitle = "Bachat-G Admin"

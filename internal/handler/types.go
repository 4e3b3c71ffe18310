package handler

import (
	"time"

	"greeting-card-go/internal/greeting"
	"greeting-card-go/internal/model"
)

// GreetingRequest is the body of create and update requests
type GreetingRequest struct {
	SenderName    string `json:"senderName"`
	SenderEmail   string `json:"senderEmail"`
	RecipientName string `json:"recipientName"`
	Message       string `json:"message"`
	Occasion      string `json:"occasion"`
}

func (r GreetingRequest) toInput() greeting.Input {
	return greeting.Input{
		SenderName:    r.SenderName,
		SenderEmail:   r.SenderEmail,
		RecipientName: r.RecipientName,
		Message:       r.Message,
		Occasion:      r.Occasion,
	}
}

// GreetingResponse wraps a single greeting
type GreetingResponse struct {
	Success  bool           `json:"success"`
	Greeting model.Greeting `json:"greeting"`
	Message  string         `json:"message,omitempty"`
}

// GreetingListResponse wraps the full collection
type GreetingListResponse struct {
	Success   bool             `json:"success"`
	Greetings []model.Greeting `json:"greetings"`
	Count     int              `json:"count"`
}

// MessageResponse is a success envelope without a payload
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Success   bool      `json:"success"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Storage   string    `json:"storage"`
	Scheduler string    `json:"scheduler"`
	NextRun   string    `json:"nextRun,omitempty"`
	// LastRun and GreetingCount describe the latest statistics refresh
	LastRun       string `json:"lastRun,omitempty"`
	GreetingCount *int   `json:"greetingCount,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Success    bool                 `json:"success"`
	Error      string               `json:"error"`
	Violations []greeting.Violation `json:"violations,omitempty"`
}

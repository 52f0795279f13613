package types

import (
	"time"

	"github.com/google/uuid"
)

// SavedPlan is a persisted itinerary owned by an authenticated user.
type SavedPlan struct {
	ID           uuid.UUID  `json:"id"`
	UserID       uuid.UUID  `json:"user_id"`
	Destination  string     `json:"destination"`
	DurationDays int        `json:"duration_days"`
	Plan         TravelPlan `json:"plan"`
	Source       AISource   `json:"ai_source"`
	Confidence   float64    `json:"confidence"`
	CreatedAt    time.Time  `json:"created_at"`
}

// ChatSession groups a user's conversation turns.
type ChatSession struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ConversationMessage is a single turn inside a chat session.
type ConversationMessage struct {
	ID         uuid.UUID `json:"id"`
	SessionID  uuid.UUID `json:"session_id"`
	Role       string    `json:"role"`
	Content    string    `json:"content"`
	Source     AISource  `json:"ai_source,omitempty"`
	Confidence float64   `json:"confidence,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

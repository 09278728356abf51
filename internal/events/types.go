// Package events publishes quiz analytics events to a RabbitMQ topic exchange.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Type is the routing key of an event.
type Type string

const (
	TypeQuizStarted     Type = "quiz.started"
	TypeQuizAnswered    Type = "quiz.answered"
	TypeQuizCompleted   Type = "quiz.completed"
	TypeSummaryViewed   Type = "quiz.summary_viewed"
	TypeProgramsMatched Type = "programs.matched"
	TypeResultClaimed   Type = "result.claimed"
)

// SchemaVersion is stamped on every event body.
const SchemaVersion = "1"

// Event is the envelope published for every analytics event.
type Event struct {
	ID        string         `json:"id"`
	Type      Type           `json:"type"`
	Timestamp int64          `json:"timestamp"`
	Version   string         `json:"version"`
	SessionID string         `json:"sessionId,omitempty"`
	UserID    string         `json:"userId,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// New builds an event of type t stamped with a fresh id and the current time.
func New(t Type, sessionID, userID string, data map[string]any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      t,
		Timestamp: time.Now().Unix(),
		Version:   SchemaVersion,
		SessionID: sessionID,
		UserID:    userID,
		Data:      data,
	}
}

// ShouldLogAnswer reports whether an answer save is a milestone worth an
// event: the first question, every fifth question, or the completing answer.
func ShouldLogAnswer(questionID int, completed bool) bool {
	return completed || questionID == 1 || questionID%5 == 0
}

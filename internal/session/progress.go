// Package session keeps in-flight quiz progress in a TTL key-value store and
// drives the answer-by-answer quiz flow on top of the question catalog.
package session

import (
	"errors"
	"slices"
	"time"

	"github.com/nyashahama/program-matcher-backend/internal/quiz"
)

var (
	ErrNotFound    = errors.New("session: not found")
	ErrCompleted   = errors.New("session: quiz already completed")
	ErrConflict    = errors.New("session: concurrent update conflict")
	ErrForbidden   = errors.New("session: not owned by caller")
	ErrRateLimited = errors.New("session: rate limit exceeded")
)

// Status is the lifecycle state of a session.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Progress is one student's run through a catalog.
type Progress struct {
	ID             string       `json:"sessionId"`
	AnonToken      string       `json:"anonToken,omitempty"`
	UserID         string       `json:"userId,omitempty"`
	Email          string       `json:"email,omitempty"`
	CatalogVersion string       `json:"catalogVersion"`
	Answers        quiz.Answers `json:"answers"`
	// CurrentQuestionID is 0 once no visible question remains.
	CurrentQuestionID int        `json:"currentQuestionId"`
	Path              []int      `json:"path"`
	Status            Status     `json:"status"`
	StartedAt         time.Time  `json:"startedAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
	CompletedAt       *time.Time `json:"completedAt,omitempty"`
	ResultID          string     `json:"resultId,omitempty"`
	AccessToken       string     `json:"accessToken,omitempty"`
}

// Anonymous reports whether the session has no authenticated owner.
func (p *Progress) Anonymous() bool { return p.UserID == "" }

// Finalized reports whether the answers were handed off to permanent storage.
func (p *Progress) Finalized() bool { return p.ResultID != "" }

// recompute refreshes the visible path, the pointer and the status after a
// write to questionID.
func (p *Progress) recompute(c *quiz.Catalog, questionID int, now time.Time) {
	if !slices.Contains(p.Path, questionID) {
		p.Path = append(p.Path, questionID)
	}
	// Answers that hid earlier steps drop them from the traversed path.
	p.Path = slices.DeleteFunc(p.Path, func(id int) bool {
		q, ok := c.Question(id)
		return !ok || !c.IsVisible(q, p.Answers)
	})

	if next, ok := c.NextVisibleQuestionID(questionID, p.Answers); ok {
		p.CurrentQuestionID = next
	} else {
		p.CurrentQuestionID = firstOutstanding(c, p.Answers)
	}

	p.UpdatedAt = now
	if c.IsComplete(p.Answers) {
		p.Status = StatusCompleted
		p.CurrentQuestionID = 0
		if p.CompletedAt == nil {
			p.CompletedAt = &now
		}
	} else {
		p.Status = StatusInProgress
		p.CompletedAt = nil
	}
}

// firstOutstanding is the first visible required question without a valid
// answer, or 0.
func firstOutstanding(c *quiz.Catalog, answers quiz.Answers) int {
	for _, id := range c.VisibleQuestionIDs(answers) {
		q, _ := c.Question(id)
		if !q.Required {
			continue
		}
		v, _ := answers.Get(id)
		if !quiz.IsAnswerValid(q, v) {
			return id
		}
	}
	return 0
}

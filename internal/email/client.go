// Package email defines the interface for transactional email delivery and
// provides a Resend-backed implementation.
package email

import "context"

// MatchesReadyParams holds the data for the "your matches are ready" email.
type MatchesReadyParams struct {
	To          string
	FirstName   string // may be empty
	AccessToken string // inserted into the results URL
	// TopPrograms are display names, best first. At most three are listed.
	TopPrograms []string
}

// Sender is the interface the worker uses to send email. Tests inject a stub
// that records calls without hitting the network.
type Sender interface {
	// SendMatchesReady is called by the worker after the result is persisted.
	SendMatchesReady(ctx context.Context, p MatchesReadyParams) error
}

// Noop drops every message. Used when RESEND_API_KEY is not configured.
type Noop struct{}

func (Noop) SendMatchesReady(context.Context, MatchesReadyParams) error { return nil }

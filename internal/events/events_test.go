package events_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/nyashahama/program-matcher-backend/internal/events"
)

func TestShouldLogAnswer(t *testing.T) {
	cases := []struct {
		id        int
		completed bool
		want      bool
	}{
		{1, false, true},
		{2, false, false},
		{5, false, true},
		{10, false, true},
		{13, false, false},
		{13, true, true},
	}
	for _, c := range cases {
		if got := events.ShouldLogAnswer(c.id, c.completed); got != c.want {
			t.Errorf("ShouldLogAnswer(%d, %v) = %v, want %v", c.id, c.completed, got, c.want)
		}
	}
}

func TestAMQPPublisher_DisabledWithoutURI(t *testing.T) {
	p, err := events.NewAMQPPublisher("", slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("expected disabled publisher, got error: %v", err)
	}
	if err := p.Publish(context.Background(), events.New(events.TypeQuizStarted, "s1", "", nil)); err != nil {
		t.Errorf("disabled publish should be a no-op, got %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("disabled close: %v", err)
	}
}

func TestNew_StampsEnvelope(t *testing.T) {
	e := events.New(events.TypeQuizAnswered, "s1", "u1", map[string]any{"questionId": 5})
	if e.ID == "" || e.Timestamp == 0 || e.Version != events.SchemaVersion {
		t.Errorf("envelope not stamped: %+v", e)
	}
	if e.SessionID != "s1" || e.UserID != "u1" {
		t.Errorf("ids: got %+v", e)
	}
}

package email

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSendMatchesReady(t *testing.T) {
	var got resendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer re_test" {
			t.Errorf("authorization header: %q", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		_, _ = io.WriteString(w, `{"id":"msg_1"}`)
	}))
	defer srv.Close()

	c := newResendClient("re_test", "matches@example.com", "Matcher", "https://app.example.com", srv.URL)
	err := c.SendMatchesReady(context.Background(), MatchesReadyParams{
		To:          "dana@example.com",
		FirstName:   "Dana",
		AccessToken: "tok123",
		TopPrograms: []string{"Computer Science <Honours>", "Data Science", "Physics", "History"},
	})
	if err != nil {
		t.Fatalf("SendMatchesReady: %v", err)
	}

	if got.From != "Matcher <matches@example.com>" {
		t.Errorf("from: %q", got.From)
	}
	if len(got.To) != 1 || got.To[0] != "dana@example.com" {
		t.Errorf("to: %v", got.To)
	}
	if !strings.HasPrefix(got.Subject, "Dana,") {
		t.Errorf("subject: %q", got.Subject)
	}
	if !strings.Contains(got.HTML, "https://app.example.com/results/tok123") {
		t.Error("results URL missing from body")
	}
	if !strings.Contains(got.HTML, "Computer Science &lt;Honours&gt;") {
		t.Error("program names must be escaped")
	}
	if strings.Contains(got.HTML, "History") {
		t.Error("only the top three programs are listed")
	}
}

func TestSendMatchesReady_ResendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(w, `{"error":{"name":"validation_error","message":"bad to","statusCode":422}}`)
	}))
	defer srv.Close()

	c := newResendClient("re_test", "a@example.com", "A", "https://x", srv.URL)
	err := c.SendMatchesReady(context.Background(), MatchesReadyParams{To: "nope"})
	if err == nil || !strings.Contains(err.Error(), "validation_error") {
		t.Errorf("expected Resend error, got %v", err)
	}
}

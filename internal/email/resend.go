package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"time"
)

const resendEndpoint = "https://api.resend.com/emails"

// resendClient is the concrete Sender backed by the Resend API.
type resendClient struct {
	apiKey     string
	fromAddr   string
	fromName   string
	baseURL    string // results page base, e.g. "https://app.example.com"
	endpoint   string
	httpClient *http.Client
}

// NewResendClient returns a Sender that delivers email via Resend.
func NewResendClient(apiKey, fromAddr, fromName, baseURL string) Sender {
	return newResendClient(apiKey, fromAddr, fromName, baseURL, resendEndpoint)
}

func newResendClient(apiKey, fromAddr, fromName, baseURL, endpoint string) *resendClient {
	return &resendClient{
		apiKey:   apiKey,
		fromAddr: fromAddr,
		fromName: fromName,
		baseURL:  baseURL,
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// ─── RESEND API SHAPES ────────────────────────────────────────────────────────

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type resendResponse struct {
	ID    string `json:"id"`
	Error *struct {
		Name       string `json:"name"`
		Message    string `json:"message"`
		StatusCode int    `json:"statusCode"`
	} `json:"error"`
}

// ─── SENDER IMPLEMENTATION ────────────────────────────────────────────────────

func (c *resendClient) SendMatchesReady(ctx context.Context, p MatchesReadyParams) error {
	subject := "Your university matches are ready"
	if p.FirstName != "" {
		subject = fmt.Sprintf("%s, your university matches are ready", p.FirstName)
	}

	programs := p.TopPrograms
	if len(programs) > 3 {
		programs = programs[:3]
	}

	var body bytes.Buffer
	err := matchesReadyTmpl.Execute(&body, matchesReadyData{
		FirstName:  p.FirstName,
		Programs:   programs,
		ResultsURL: fmt.Sprintf("%s/results/%s", c.baseURL, p.AccessToken),
	})
	if err != nil {
		return fmt.Errorf("email: render template: %w", err)
	}
	return c.send(ctx, p.To, subject, body.String())
}

// ─── HTTP SEND ────────────────────────────────────────────────────────────────

func (c *resendClient) send(ctx context.Context, to, subject, html string) error {
	bodyBytes, err := json.Marshal(resendRequest{
		From:    fmt.Sprintf("%s <%s>", c.fromName, c.fromAddr),
		To:      []string{to},
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		return fmt.Errorf("email: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("email: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("email: http request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return fmt.Errorf("email: read response: %w", err)
	}

	var parsed resendResponse
	if err := json.Unmarshal(respBytes, &parsed); err != nil {
		return fmt.Errorf("email: unmarshal response (status %d): %w", resp.StatusCode, err)
	}
	if parsed.Error != nil {
		return fmt.Errorf("email: Resend error %s: %s", parsed.Error.Name, parsed.Error.Message)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("email: unexpected status %d: %.200s", resp.StatusCode, string(respBytes))
	}
	return nil
}

// ─── HTML TEMPLATES ───────────────────────────────────────────────────────────

type matchesReadyData struct {
	FirstName  string
	Programs   []string
	ResultsURL string
}

// Program and university names come from the catalog tables, so the body is
// rendered with html/template rather than string formatting.
var matchesReadyTmpl = template.Must(template.New("matches_ready").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: sans-serif; color: #1a1a1a; max-width: 560px; margin: 0 auto; padding: 24px;">
  <h2 style="margin-bottom: 8px;">Your matches are ready</h2>
  <p>{{if .FirstName}}Hi {{.FirstName}}{{else}}Hi there{{end}},</p>
  <p>We compared your interests, personality and priorities against every
  program in our catalog. Here is where you fit best:</p>
  {{if .Programs}}<ol>{{range .Programs}}
    <li>{{.}}</li>{{end}}
  </ol>{{end}}
  <p style="margin: 32px 0;">
    <a href="{{.ResultsURL}}"
       style="background: #0f172a; color: #ffffff; padding: 12px 24px;
              border-radius: 6px; text-decoration: none; font-weight: 600;">
      See your results
    </a>
  </p>
  <p style="color: #6b7280; font-size: 14px;">
    Bookmark this link. It is your permanent access to your results.<br>
    If the button above does not work, copy this URL:<br>
    <a href="{{.ResultsURL}}" style="color: #6b7280;">{{.ResultsURL}}</a>
  </p>
</body>
</html>`))

// Package messenger posts admin notifications through the messenger gateway.
package messenger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/crustntrust/site-api/internal/forms/domain"
)

const (
	defaultAttempts = 3
	defaultDelay    = 200 * time.Millisecond

	// TargetSubmissionReceived tags failures of the new-submission message.
	TargetSubmissionReceived = "admin_submission_notification"
)

// Failure describes a notification that could not be delivered.
type Failure struct {
	Target   string
	Payload  map[string]any
	Err      error
	Attempts int
}

// FailureRecorder persists undeliverable notifications.
type FailureRecorder interface {
	Record(ctx context.Context, f Failure) error
}

type Config struct {
	Endpoint           string
	Destination        string
	AdminReviewBaseURL string
	HTTPClient         *http.Client
	Failures           FailureRecorder
	Logger             *zap.Logger
}

// Notifier sends short text messages to the admin channel.
type Notifier struct {
	endpoint    string
	destination string
	reviewBase  string
	httpClient  *http.Client
	failures    FailureRecorder
	logger      *zap.Logger
	attempts    int
	delay       time.Duration
}

// New returns nil when no endpoint is configured; a nil *Notifier is a no-op.
func New(cfg Config) *Notifier {
	endpoint := strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/")
	if endpoint == "" {
		return nil
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 3 * time.Second}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{
		endpoint:    endpoint,
		destination: strings.TrimSpace(cfg.Destination),
		reviewBase:  strings.TrimRight(strings.TrimSpace(cfg.AdminReviewBaseURL), "/"),
		httpClient:  client,
		failures:    cfg.Failures,
		logger:      logger,
		attempts:    defaultAttempts,
		delay:       defaultDelay,
	}
}

// SubmissionReceived tells the admins that sub arrived for form.
// Delivery failures are logged and recorded, never returned.
func (n *Notifier) SubmissionReceived(ctx context.Context, form domain.FormDefinition, sub domain.Submission) {
	if n == nil {
		return
	}
	text := n.submissionMessage(form, sub)
	err := n.sendWithRetry(ctx, sub.ID, text)
	if err == nil {
		return
	}
	n.logger.Warn("submission notification failed",
		zap.String("submission", sub.ID),
		zap.String("form", form.Slug),
		zap.Error(err),
	)
	if n.failures == nil {
		return
	}
	failure := Failure{
		Target: TargetSubmissionReceived,
		Payload: map[string]any{
			"submissionId": sub.ID,
			"formSlug":     form.Slug,
			"formTitle":    form.Title,
			"text":         text,
		},
		Err:      err,
		Attempts: n.attempts,
	}
	if err := n.failures.Record(ctx, failure); err != nil {
		n.logger.Error("failed notification could not be stored", zap.Error(err))
	}
}

func (n *Notifier) submissionMessage(form domain.FormDefinition, sub domain.Submission) string {
	title := strings.TrimSpace(form.Title)
	if title == "" {
		title = form.Slug
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Ny innsending i **%s**.\n", title)
	fmt.Fprintf(&b, "- Navn: %s\n", sub.DisplayName(form.Questions))
	fmt.Fprintf(&b, "- Sted: %s\n", sub.Place())
	if n.reviewBase != "" && sub.ID != "" {
		fmt.Fprintf(&b, "[Se innsendingen](%s/%s/%s)\n", n.reviewBase, form.Slug, sub.ID)
	}
	return b.String()
}

func (n *Notifier) sendWithRetry(ctx context.Context, userID, text string) error {
	var lastErr error
	for i := 0; i < n.attempts; i++ {
		if lastErr = n.send(ctx, userID, text); lastErr == nil {
			return nil
		}
		if i == n.attempts-1 || n.delay <= 0 {
			continue
		}
		select {
		case <-ctx.Done():
			return errors.Join(lastErr, ctx.Err())
		case <-time.After(n.delay):
		}
	}
	return lastErr
}

func (n *Notifier) send(ctx context.Context, userID, text string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		userID = "admin"
	}
	payload := map[string]any{
		"userId": userID,
		"text":   text,
	}
	if n.destination != "" {
		payload["destination"] = n.destination
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode messenger payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint+"/messages", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build messenger request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("messenger request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		message, _ := io.ReadAll(io.LimitReader(res.Body, 1<<16))
		return fmt.Errorf("messenger status=%d body=%s", res.StatusCode, strings.TrimSpace(string(message)))
	}
	return nil
}

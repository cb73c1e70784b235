package external

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"rainalert/internal/types"
)

const (
	pushoverAPIBase  = "https://api.pushover.net"
	pushoverMessages = "/1/messages.json"
)

// PushoverClientConfig holds the configuration for a PushoverClient.
type PushoverClientConfig struct {
	Token   types.SecretString
	User    types.SecretString
	BaseURL string // defaults to pushoverAPIBase

	// EmergencyRetry and EmergencyExpire are sent with priority 2 messages,
	// which Pushover rejects without them.
	EmergencyRetry  time.Duration
	EmergencyExpire time.Duration

	Logger types.Logger
}

// PushoverClient implements types.Notifier on top of the Pushover messages API.
type PushoverClient struct {
	base    *BaseClient
	cfg     PushoverClientConfig
	baseURL string
	logger  types.Logger
}

var _ types.Notifier = (*PushoverClient)(nil)

// NewPushoverClient creates a PushoverClient. The httpClient timeout bounds
// each send.
func NewPushoverClient(httpClient *http.Client, cfg PushoverClientConfig) *PushoverClient {
	return NewPushoverClientWithBase(
		NewBaseClient(httpClient, "pushover", NotifierCodes, userAgent),
		cfg,
	)
}

// NewPushoverClientWithBase creates a PushoverClient with a pre-configured
// BaseClient.
func NewPushoverClientWithBase(base *BaseClient, cfg PushoverClientConfig) *PushoverClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = pushoverAPIBase
	}
	if cfg.EmergencyRetry <= 0 {
		cfg.EmergencyRetry = 60 * time.Second
	}
	if cfg.EmergencyExpire <= 0 {
		cfg.EmergencyExpire = time.Hour
	}
	return &PushoverClient{
		base:    base,
		cfg:     cfg,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  cfg.Logger,
	}
}

// Name implements types.Notifier.
func (p *PushoverClient) Name() string { return "pushover" }

// pushoverResponse is the messages.json response body.
type pushoverResponse struct {
	Status  int      `json:"status"`
	Request string   `json:"request"`
	Receipt string   `json:"receipt,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// Notify posts the alert once.
//
// Error mapping:
//   - transport failure, open breaker, 429, 5xx -> notifier_unavailable
//   - other non-2xx, or a body with status != 1 -> notifier_rejected
func (p *PushoverClient) Notify(ctx context.Context, alert types.Alert) error {
	form := p.buildForm(alert)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+pushoverMessages, strings.NewReader(form.Encode()))
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected, "building Pushover request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.base.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if p.logger != nil {
		p.logger.Info("pushover response", "status", resp.StatusCode, "body", strings.TrimSpace(string(body)))
	}

	var pr pushoverResponse
	decoded := json.Unmarshal(body, &pr) == nil

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return types.NewAppErrorWithDetails(
			types.ErrCodeNotifierUnavailable,
			fmt.Sprintf("Pushover returned status %d", resp.StatusCode),
			nil,
			map[string]any{"status": resp.StatusCode},
		)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return types.NewAppErrorWithDetails(
			types.ErrCodeNotifierRejected,
			fmt.Sprintf("Pushover rejected message (%d): %s", resp.StatusCode, strings.Join(pr.Errors, "; ")),
			nil,
			map[string]any{"status": resp.StatusCode, "request": pr.Request},
		)
	case decoded && pr.Status != 1:
		return types.NewAppErrorWithDetails(
			types.ErrCodeNotifierRejected,
			"Pushover response status is not 1",
			nil,
			map[string]any{"status": resp.StatusCode, "request": pr.Request},
		)
	}
	return nil
}

func (p *PushoverClient) buildForm(alert types.Alert) url.Values {
	priority := alert.Priority
	form := url.Values{}
	form.Set("token", p.cfg.Token.Unmask())
	form.Set("user", p.cfg.User.Unmask())
	form.Set("title", alert.Title)
	form.Set("message", alert.Message)
	form.Set("priority", strconv.Itoa(int(priority)))
	if !alert.CreatedAt.IsZero() {
		form.Set("timestamp", strconv.FormatInt(alert.CreatedAt.Unix(), 10))
	}
	if priority == types.PriorityEmergency {
		form.Set("retry", strconv.Itoa(int(p.cfg.EmergencyRetry/time.Second)))
		form.Set("expire", strconv.Itoa(int(p.cfg.EmergencyExpire/time.Second)))
	}
	return form
}

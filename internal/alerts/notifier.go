package alerts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"eld-compliance/internal/config"
	"eld-compliance/internal/domain/compliance"
)

// Notification is the payload handed to the alerting collaborator.
type Notification struct {
	Title    string              `json:"title"`
	Message  string              `json:"message"`
	Severity compliance.Severity `json:"severity"`
	DriverID *uuid.UUID          `json:"driver_id,omitempty"`
	TruckID  *uuid.UUID          `json:"truck_id,omitempty"`
	DeviceID *uuid.UUID          `json:"device_id,omitempty"`
}

// Notifier delivers notifications to the alerting collaborator. Delivery
// is at-most-effort: callers treat a failure as a logged event, never as
// a reason to fail or roll back ingestion.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// HTTPNotifier posts notifications to the alerting service.
type HTTPNotifier struct {
	url    string
	client *http.Client
}

func NewHTTPNotifier(cfg *config.AlertingConfig) *HTTPNotifier {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPNotifier{
		url:    cfg.URL,
		client: &http.Client{Timeout: timeout},
	}
}

func (n *HTTPNotifier) Notify(ctx context.Context, notification Notification) error {
	body, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("notification dispatch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("alerting service returned status %d", resp.StatusCode)
	}

	return nil
}

// NoopNotifier is used when no alerting service is configured.
type NoopNotifier struct{}

func (NoopNotifier) Notify(ctx context.Context, n Notification) error {
	return nil
}

package alerts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"eld-compliance/internal/domain/compliance"
	"eld-compliance/internal/hos"
	"eld-compliance/internal/logger"
)

// Emitter turns provider-reported and calculator-derived violations into
// compliance event records and dispatches best-effort notifications. The
// notification leg runs detached from the caller: it never blocks, never
// retries synchronously and never surfaces its failure to the ingestion
// or calculation that triggered it.
type Emitter struct {
	events        compliance.Repository
	notifier      Notifier
	notifyTimeout time.Duration
}

func NewEmitter(events compliance.Repository, notifier Notifier, notifyTimeout time.Duration) *Emitter {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	if notifyTimeout <= 0 {
		notifyTimeout = 5 * time.Second
	}
	return &Emitter{
		events:        events,
		notifier:      notifier,
		notifyTimeout: notifyTimeout,
	}
}

// Emit persists exactly one compliance event and fires the notification
// side channel. The returned error covers persistence only.
func (e *Emitter) Emit(ctx context.Context, event *compliance.Event) error {
	if err := e.events.Create(ctx, event); err != nil {
		return err
	}

	e.dispatch(Notification{
		Title:    event.Title,
		Message:  event.Description,
		Severity: event.Severity,
		DriverID: event.DriverID,
		TruckID:  event.TruckID,
		DeviceID: event.DeviceID,
	})

	return nil
}

// EmitHOSViolations records calculator-derived violations for a driver.
// A violation kind with an open (unresolved) event is not re-emitted, so
// repeated state queries do not multiply events for the same breach.
func (e *Emitter) EmitHOSViolations(ctx context.Context, companyID, driverID uuid.UUID, state *hos.State) error {
	if len(state.Violations) == 0 {
		return nil
	}

	open, err := e.openViolationKinds(ctx, companyID, driverID)
	if err != nil {
		return err
	}

	for _, violation := range state.Violations {
		if open[string(violation.Kind)] {
			continue
		}

		event := &compliance.Event{
			CompanyID:   companyID,
			DriverID:    &driverID,
			Type:        compliance.EventHOSViolation,
			Severity:    compliance.SeverityCritical,
			Title:       "HOS violation: " + string(violation.Kind),
			Description: violation.Description,
			EventTime:   state.AsOf,
			Metadata: map[string]string{
				"violation_kind": string(violation.Kind),
			},
		}
		if err := e.Emit(ctx, event); err != nil {
			return err
		}
	}

	return nil
}

func (e *Emitter) openViolationKinds(ctx context.Context, companyID, driverID uuid.UUID) (map[string]bool, error) {
	eventType := compliance.EventHOSViolation
	resolved := false
	events, _, err := e.events.ListByCompany(ctx, companyID, &compliance.Filter{
		DriverID: &driverID,
		Type:     &eventType,
		Resolved: &resolved,
		PageSize: 100,
	})
	if err != nil {
		return nil, err
	}

	open := make(map[string]bool, len(events))
	for _, event := range events {
		if kind, ok := event.Metadata["violation_kind"]; ok {
			open[kind] = true
		}
	}
	return open, nil
}

// dispatch runs the notification on its own goroutine with its own
// deadline, detached from the request context so a slow alerting service
// cannot hold up the ingestion path.
func (e *Emitter) dispatch(n Notification) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), e.notifyTimeout)
		defer cancel()

		if err := e.notifier.Notify(ctx, n); err != nil {
			logger.Error("alert notification failed",
				zap.String("title", n.Title),
				zap.String("severity", string(n.Severity)),
				zap.Error(err),
			)
		}
	}()
}

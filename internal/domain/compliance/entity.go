package compliance

import (
	"time"

	"github.com/google/uuid"
)

// EventType classifies a detected or reported violation/anomaly.
type EventType string

const (
	EventHOSViolation      EventType = "hos_violation"
	EventSpeeding          EventType = "speeding"
	EventHardBrake         EventType = "hard_brake"
	EventDeviceMalfunction EventType = "device_malfunction"
	EventOther             EventType = "other"
)

func (t EventType) Valid() bool {
	switch t {
	case EventHOSViolation, EventSpeeding, EventHardBrake, EventDeviceMalfunction, EventOther:
		return true
	}
	return false
}

// Severity grades an event for alert routing.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityInfo, SeverityWarning, SeverityCritical:
		return true
	}
	return false
}

// Event is a compliance event record. Events are never deleted; resolving
// one sets Resolved plus an audit note.
type Event struct {
	ID          uuid.UUID
	CompanyID   uuid.UUID
	DeviceID    *uuid.UUID
	TruckID     *uuid.UUID
	DriverID    *uuid.UUID
	Type        EventType
	Severity    Severity
	Title       string
	Description string
	EventTime   time.Time
	Resolved    bool
	ResolvedAt  *time.Time
	ResolveNote *string
	Metadata    map[string]string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

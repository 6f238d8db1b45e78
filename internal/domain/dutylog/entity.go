package dutylog

import (
	"time"

	"github.com/google/uuid"
)

// DutyStatus is the canonical duty state every provider payload is mapped
// into.
type DutyStatus string

const (
	StatusDriving      DutyStatus = "driving"
	StatusOnDuty       DutyStatus = "on_duty"
	StatusOffDuty      DutyStatus = "off_duty"
	StatusSleeperBerth DutyStatus = "sleeper_berth"
)

func (s DutyStatus) Valid() bool {
	switch s {
	case StatusDriving, StatusOnDuty, StatusOffDuty, StatusSleeperBerth:
		return true
	}
	return false
}

// IsRest reports whether time in this status counts toward a rest period.
func (s DutyStatus) IsRest() bool {
	return s == StatusOffDuty || s == StatusSleeperBerth
}

// Segment is one continuous interval in a single duty status. DriverID is
// nil when the provider driver id had no active mapping at ingest time;
// such segments are kept for dispatcher triage rather than dropped.
type Segment struct {
	ID            uuid.UUID
	CompanyID     uuid.UUID
	DriverID      *uuid.UUID
	TruckID       *uuid.UUID
	DeviceID      uuid.UUID
	ExternalID    *string
	Status        DutyStatus
	StartTime     time.Time
	EndTime       *time.Time
	OdometerStart *float64
	OdometerEnd   *float64
	StartLocation *string
	EndLocation   *string
	Certified     bool
	RawPayload    []byte
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Duration returns the segment length, clamping open segments at ref.
// Segments that start after ref contribute nothing.
func (s *Segment) Duration(ref time.Time) time.Duration {
	end := ref
	if s.EndTime != nil && s.EndTime.Before(ref) {
		end = *s.EndTime
	}
	if !end.After(s.StartTime) {
		return 0
	}
	return end.Sub(s.StartTime)
}

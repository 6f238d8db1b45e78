package hos

import (
	"time"

	"github.com/google/uuid"
)

// Regulatory limits for property-carrying drivers. The multi-day cycle cap
// is configurable per company; the daily limits are fixed by rule.
const (
	MaxDrivingHours        = 11.0
	MaxOnDutyHours         = 14.0
	BreakAfterDrivingHours = 8.0

	MinQualifyingBreak = 30 * time.Minute
	MinRestForReset    = 10 * time.Hour
)

// CycleConfig selects the multi-day cumulative on-duty cap:
// 7 days / 60 hours or 8 days / 70 hours.
type CycleConfig struct {
	Days     int
	MaxHours float64
}

func DefaultCycle() CycleConfig {
	return CycleConfig{Days: 8, MaxHours: 70.0}
}

// ViolationKind identifies which rule a violation breaches.
type ViolationKind string

const (
	ViolationDrivingLimit  ViolationKind = "driving_limit"
	ViolationOnDutyLimit   ViolationKind = "on_duty_limit"
	ViolationBreakRequired ViolationKind = "break_required"
	ViolationCycleLimit    ViolationKind = "cycle_limit"
)

// Violation describes one breached rule as of the query time.
type Violation struct {
	Kind        ViolationKind
	Description string
}

// State is the computed hours-of-service view for one driver at one
// instant. It is derived fresh from stored segments on every request and
// never persisted as ground truth.
type State struct {
	DriverID uuid.UUID
	AsOf     time.Time

	// WindowStart is the beginning of the current 14-hour on-duty window,
	// nil when the driver has no on-duty time in the lookback.
	WindowStart *time.Time

	DrivingHours           float64
	OnDutyHours            float64
	CycleHours             float64
	DrivingSinceBreakHours float64

	RemainingDrivingHours float64
	RemainingOnDutyHours  float64
	RemainingCycleHours   float64

	NeedsBreak bool
	CanDrive   bool

	Violations []Violation
}

// HasViolation reports whether the state carries a violation of the given
// kind.
func (s *State) HasViolation(kind ViolationKind) bool {
	for _, v := range s.Violations {
		if v.Kind == kind {
			return true
		}
	}
	return false
}

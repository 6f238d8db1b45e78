package compliance

import (
	"time"

	"github.com/google/uuid"

	domainCompliance "eld-compliance/internal/domain/compliance"
	"eld-compliance/internal/domain/dutylog"
	"eld-compliance/internal/hos"
)

type HOSQuery struct {
	At            *time.Time
	CycleDays     *int
	CycleMaxHours *float64
}

type HOSResponse struct {
	DriverID uuid.UUID  `json:"driver_id"`
	AsOf     time.Time  `json:"as_of"`
	Window   *time.Time `json:"window_start,omitempty"`

	DrivingHours           float64 `json:"driving_hours"`
	OnDutyHours            float64 `json:"on_duty_hours"`
	CycleHours             float64 `json:"cycle_hours"`
	DrivingSinceBreakHours float64 `json:"driving_since_break_hours"`

	RemainingDrivingHours float64 `json:"remaining_driving_hours"`
	RemainingOnDutyHours  float64 `json:"remaining_on_duty_hours"`
	RemainingCycleHours   float64 `json:"remaining_cycle_hours"`

	NeedsBreak bool `json:"needs_break"`
	CanDrive   bool `json:"can_drive"`

	Violations []ViolationResponse `json:"violations"`
}

type ViolationResponse struct {
	Kind        hos.ViolationKind `json:"kind"`
	Description string            `json:"description"`
}

type ResolveEventRequest struct {
	Note string `json:"note" validate:"required,min=2,max=500"`
}

type EventFilterRequest struct {
	DriverID *uuid.UUID                  `form:"driver_id"`
	Type     *domainCompliance.EventType `form:"type"`
	Severity *domainCompliance.Severity  `form:"severity"`
	Resolved *bool                       `form:"resolved"`
	Page     int                         `form:"page"`
	PageSize int                         `form:"page_size"`
}

type EventResponse struct {
	ID          uuid.UUID                  `json:"id"`
	CompanyID   uuid.UUID                  `json:"company_id"`
	DeviceID    *uuid.UUID                 `json:"device_id,omitempty"`
	TruckID     *uuid.UUID                 `json:"truck_id,omitempty"`
	DriverID    *uuid.UUID                 `json:"driver_id,omitempty"`
	Type        domainCompliance.EventType `json:"type"`
	Severity    domainCompliance.Severity  `json:"severity"`
	Title       string                     `json:"title"`
	Description string                     `json:"description"`
	EventTime   time.Time                  `json:"event_time"`
	Resolved    bool                       `json:"resolved"`
	ResolvedAt  *time.Time                 `json:"resolved_at,omitempty"`
	ResolveNote *string                    `json:"resolve_note,omitempty"`
	Metadata    map[string]string          `json:"metadata,omitempty"`
	CreatedAt   time.Time                  `json:"created_at"`
}

type EventListResponse struct {
	Events   []*EventResponse `json:"events"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

type UnassignedLogResponse struct {
	ID         uuid.UUID          `json:"id"`
	DeviceID   uuid.UUID          `json:"device_id"`
	Status     dutylog.DutyStatus `json:"status"`
	StartTime  time.Time          `json:"start_time"`
	EndTime    *time.Time         `json:"end_time,omitempty"`
	ExternalID *string            `json:"external_id,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
}

func ToHOSResponse(state *hos.State) *HOSResponse {
	violations := make([]ViolationResponse, 0, len(state.Violations))
	for _, v := range state.Violations {
		violations = append(violations, ViolationResponse{Kind: v.Kind, Description: v.Description})
	}

	return &HOSResponse{
		DriverID:               state.DriverID,
		AsOf:                   state.AsOf,
		Window:                 state.WindowStart,
		DrivingHours:           state.DrivingHours,
		OnDutyHours:            state.OnDutyHours,
		CycleHours:             state.CycleHours,
		DrivingSinceBreakHours: state.DrivingSinceBreakHours,
		RemainingDrivingHours:  state.RemainingDrivingHours,
		RemainingOnDutyHours:   state.RemainingOnDutyHours,
		RemainingCycleHours:    state.RemainingCycleHours,
		NeedsBreak:             state.NeedsBreak,
		CanDrive:               state.CanDrive,
		Violations:             violations,
	}
}

func ToEventResponse(e *domainCompliance.Event) *EventResponse {
	return &EventResponse{
		ID:          e.ID,
		CompanyID:   e.CompanyID,
		DeviceID:    e.DeviceID,
		TruckID:     e.TruckID,
		DriverID:    e.DriverID,
		Type:        e.Type,
		Severity:    e.Severity,
		Title:       e.Title,
		Description: e.Description,
		EventTime:   e.EventTime,
		Resolved:    e.Resolved,
		ResolvedAt:  e.ResolvedAt,
		ResolveNote: e.ResolveNote,
		Metadata:    e.Metadata,
		CreatedAt:   e.CreatedAt,
	}
}

func ToUnassignedLogResponse(s *dutylog.Segment) *UnassignedLogResponse {
	return &UnassignedLogResponse{
		ID:         s.ID,
		DeviceID:   s.DeviceID,
		Status:     s.Status,
		StartTime:  s.StartTime,
		EndTime:    s.EndTime,
		ExternalID: s.ExternalID,
		CreatedAt:  s.CreatedAt,
	}
}

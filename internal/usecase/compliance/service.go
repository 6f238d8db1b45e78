package compliance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"eld-compliance/internal/alerts"
	domainCompliance "eld-compliance/internal/domain/compliance"
	"eld-compliance/internal/domain/dutylog"
	"eld-compliance/internal/hos"
	"eld-compliance/internal/logger"
	appErrors "eld-compliance/pkg/errors"
	"eld-compliance/pkg/utils"
)

const defaultUnassignedLimit = 100

// Service orchestrates compliance reads: hours-of-service state, event
// triage, and unassigned-log review. HOS state is computed on demand and
// new violations found during a read are emitted as events as a side
// effect; the read itself never fails because of the emitter.
type Service struct {
	hosService *hos.Service
	emitter    *alerts.Emitter
	events     domainCompliance.Repository
	logs       dutylog.Repository
}

func NewService(hosService *hos.Service, emitter *alerts.Emitter, events domainCompliance.Repository, logs dutylog.Repository) *Service {
	return &Service{
		hosService: hosService,
		emitter:    emitter,
		events:     events,
		logs:       logs,
	}
}

// GetDriverHOS computes the driver's hours-of-service state at the query
// instant (now when unset). Violations observed at the current instant
// raise compliance events; historical queries are purely informational.
func (s *Service) GetDriverHOS(ctx context.Context, companyID, driverID uuid.UUID, query *HOSQuery) (*HOSResponse, error) {
	at := time.Now().UTC()
	historical := false
	if query.At != nil {
		at = query.At.UTC()
		historical = true
	}

	var (
		state *hos.State
		err   error
	)
	if query.CycleDays != nil && query.CycleMaxHours != nil {
		cycle := hos.CycleConfig{Days: *query.CycleDays, MaxHours: *query.CycleMaxHours}
		state, err = s.hosService.GetStateWithCycle(ctx, companyID, driverID, at, cycle)
	} else {
		state, err = s.hosService.GetState(ctx, companyID, driverID, at)
	}
	if err != nil {
		return nil, err
	}

	if !historical && len(state.Violations) > 0 {
		if err := s.emitter.EmitHOSViolations(ctx, companyID, driverID, state); err != nil {
			logger.Warn("failed to emit hos violation events",
				zap.String("driver_id", driverID.String()),
				zap.Error(err),
			)
		}
	}

	return ToHOSResponse(state), nil
}

func (s *Service) ListEvents(ctx context.Context, companyID uuid.UUID, filter *EventFilterRequest) (*EventListResponse, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.PageSize > 100 {
		filter.PageSize = 100
	}

	events, total, err := s.events.ListByCompany(ctx, companyID, &domainCompliance.Filter{
		DriverID: filter.DriverID,
		Type:     filter.Type,
		Severity: filter.Severity,
		Resolved: filter.Resolved,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	})
	if err != nil {
		return nil, err
	}

	responses := make([]*EventResponse, 0, len(events))
	for _, e := range events {
		responses = append(responses, ToEventResponse(e))
	}

	return &EventListResponse{
		Events:   responses,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}

func (s *Service) ResolveEvent(ctx context.Context, companyID, eventID uuid.UUID, req *ResolveEventRequest) (*EventResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError("VALIDATION_ERROR", "Invalid input", err)
	}

	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.CompanyID != companyID {
		return nil, domainCompliance.ErrEventNotFound
	}

	if err := s.events.Resolve(ctx, eventID, req.Note); err != nil {
		return nil, err
	}

	resolved, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	logger.Info("compliance event resolved",
		zap.String("event_id", eventID.String()),
		zap.String("type", string(resolved.Type)),
	)

	return ToEventResponse(resolved), nil
}

// ListUnassignedLogs returns duty segments that arrived with a driver id
// no mapping could resolve. They stay queryable so a fleet manager can
// attribute them after creating the missing mapping.
func (s *Service) ListUnassignedLogs(ctx context.Context, companyID uuid.UUID, limit int) ([]*UnassignedLogResponse, error) {
	if limit <= 0 || limit > defaultUnassignedLimit {
		limit = defaultUnassignedLimit
	}

	segments, err := s.logs.ListUnassigned(ctx, companyID, limit)
	if err != nil {
		return nil, err
	}

	responses := make([]*UnassignedLogResponse, 0, len(segments))
	for _, seg := range segments {
		responses = append(responses, ToUnassignedLogResponse(seg))
	}

	return responses, nil
}

package hos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"eld-compliance/internal/domain/dutylog"
	"eld-compliance/internal/logger"
)

// Service computes HOS state on demand. Nothing upstream pushes compliance
// state forward: every caller gets a value derived fresh from the log
// store, which keeps the answer correct under late and out-of-order
// deliveries.
type Service struct {
	logs  dutylog.Repository
	cycle CycleConfig
}

func NewService(logs dutylog.Repository, cycle CycleConfig) *Service {
	if cycle.Days <= 0 {
		cycle = DefaultCycle()
	}
	return &Service{logs: logs, cycle: cycle}
}

// GetState returns the driver's HOS state as of the given time.
func (s *Service) GetState(ctx context.Context, companyID, driverID uuid.UUID, at time.Time) (*State, error) {
	return s.GetStateWithCycle(ctx, companyID, driverID, at, s.cycle)
}

// GetStateWithCycle computes state under an explicit cycle configuration,
// for companies on the 60-hour/7-day rule.
func (s *Service) GetStateWithCycle(ctx context.Context, companyID, driverID uuid.UUID, at time.Time, cycle CycleConfig) (*State, error) {
	if cycle.Days <= 0 {
		cycle = s.cycle
	}

	// The lookback must cover the whole cycle plus enough slack to find
	// the qualifying rest that anchors the current on-duty window.
	lookback := time.Duration(cycle.Days)*24*time.Hour + 24*time.Hour
	from := at.Add(-lookback)

	segments, err := s.logs.ListForDriverWindow(ctx, companyID, driverID, from, at)
	if err != nil {
		return nil, err
	}

	state := Compute(driverID, segments, at, cycle)

	if len(state.Violations) > 0 {
		logger.Warn("HOS violations detected",
			zap.String("driver_id", driverID.String()),
			zap.Time("as_of", at),
			zap.Int("violations", len(state.Violations)),
		)
	}

	return state, nil
}

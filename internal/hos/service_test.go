package hos

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"eld-compliance/internal/domain/dutylog"
)

// scopedLogRepo serves segments only for its owning company, the way the
// real repository filters on company_id.
type scopedLogRepo struct {
	companyID uuid.UUID
	segments  []*dutylog.Segment

	queriedCompany uuid.UUID
}

func (r *scopedLogRepo) Insert(_ context.Context, _ *dutylog.Segment) error             { return nil }
func (r *scopedLogRepo) UpsertByExternalID(_ context.Context, _ *dutylog.Segment) error { return nil }

func (r *scopedLogRepo) ListForDriverWindow(_ context.Context, companyID, driverID uuid.UUID, _, _ time.Time) ([]*dutylog.Segment, error) {
	r.queriedCompany = companyID
	if companyID != r.companyID {
		return nil, nil
	}

	var out []*dutylog.Segment
	for _, s := range r.segments {
		if s.DriverID != nil && *s.DriverID == driverID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *scopedLogRepo) ListUnassigned(_ context.Context, _ uuid.UUID, _ int) ([]*dutylog.Segment, error) {
	return nil, nil
}

func (r *scopedLogRepo) CountForDevice(_ context.Context, _ uuid.UUID) (int64, error) {
	return 0, nil
}

func TestGetStateIsCompanyScoped(t *testing.T) {
	companyID := uuid.New()
	driverID := uuid.New()
	deviceID := uuid.New()

	driving := seg(deviceID, dutylog.StatusDriving, at(0, 0), at(5, 0))
	driving.CompanyID = companyID
	driving.DriverID = &driverID

	repo := &scopedLogRepo{companyID: companyID, segments: []*dutylog.Segment{driving}}
	svc := NewService(repo, DefaultCycle())

	state, err := svc.GetState(context.Background(), companyID, driverID, at(5, 0))
	require.NoError(t, err)
	require.InDelta(t, 5.0, state.DrivingHours, 1e-9)

	// The same driver id queried under another company must come back
	// empty: the repository is asked with the caller's company, so a
	// tenant can never read another tenant's duty history.
	otherCompany := uuid.New()
	state, err = svc.GetState(context.Background(), otherCompany, driverID, at(5, 0))
	require.NoError(t, err)
	require.Equal(t, otherCompany, repo.queriedCompany)
	require.Zero(t, state.DrivingHours)
	require.Empty(t, state.Violations)
}

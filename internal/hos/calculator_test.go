package hos

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"eld-compliance/internal/domain/dutylog"
)

var testDay = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func seg(deviceID uuid.UUID, status dutylog.DutyStatus, start, end time.Time) *dutylog.Segment {
	e := end
	return &dutylog.Segment{
		ID:        uuid.New(),
		DeviceID:  deviceID,
		Status:    status,
		StartTime: start,
		EndTime:   &e,
		UpdatedAt: time.Now(),
	}
}

func at(h, m int) time.Time {
	return testDay.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

func TestComputeExactDrivingLimitIsCompliant(t *testing.T) {
	driverID := uuid.New()
	deviceID := uuid.New()

	// 6h driving, qualifying 30-minute break, then 5h driving: exactly
	// 11 hours behind the wheel.
	segments := []*dutylog.Segment{
		seg(deviceID, dutylog.StatusDriving, at(0, 0), at(6, 0)),
		seg(deviceID, dutylog.StatusOffDuty, at(6, 0), at(6, 30)),
		seg(deviceID, dutylog.StatusDriving, at(6, 30), at(11, 30)),
	}

	state := Compute(driverID, segments, at(11, 30), DefaultCycle())

	require.InDelta(t, 11.0, state.DrivingHours, 1e-9)
	require.Zero(t, state.RemainingDrivingHours)
	require.False(t, state.HasViolation(ViolationDrivingLimit))
	require.False(t, state.NeedsBreak)
	require.Empty(t, state.Violations)
}

func TestComputeDrivingBeyondLimitViolates(t *testing.T) {
	driverID := uuid.New()
	deviceID := uuid.New()

	segments := []*dutylog.Segment{
		seg(deviceID, dutylog.StatusDriving, at(0, 0), at(6, 0)),
		seg(deviceID, dutylog.StatusOffDuty, at(6, 0), at(6, 30)),
		seg(deviceID, dutylog.StatusDriving, at(6, 30), at(11, 31)),
	}

	state := Compute(driverID, segments, at(11, 31), DefaultCycle())

	require.Greater(t, state.DrivingHours, 11.0)
	require.True(t, state.HasViolation(ViolationDrivingLimit))
	require.False(t, state.CanDrive)
}

func TestComputeInsufficientBreakFlagsViolation(t *testing.T) {
	driverID := uuid.New()
	deviceID := uuid.New()

	// A 9-minute pause does not qualify as a break, so the driver crosses
	// the 8-hour mark without one.
	segments := []*dutylog.Segment{
		seg(deviceID, dutylog.StatusDriving, at(0, 0), at(6, 0)),
		seg(deviceID, dutylog.StatusOnDuty, at(6, 0), at(6, 10)),
		seg(deviceID, dutylog.StatusDriving, at(6, 10), at(9, 0)),
	}

	state := Compute(driverID, segments, at(9, 0), DefaultCycle())

	require.InDelta(t, 8.0+50.0/60.0, state.DrivingSinceBreakHours, 1e-9)
	require.True(t, state.NeedsBreak)
	require.True(t, state.HasViolation(ViolationBreakRequired))
	require.False(t, state.CanDrive)
}

func TestComputeQualifyingBreakResetsBreakClock(t *testing.T) {
	driverID := uuid.New()
	deviceID := uuid.New()

	segments := []*dutylog.Segment{
		seg(deviceID, dutylog.StatusDriving, at(0, 0), at(6, 0)),
		seg(deviceID, dutylog.StatusOffDuty, at(6, 0), at(6, 30)),
		seg(deviceID, dutylog.StatusDriving, at(6, 30), at(11, 30)),
	}

	state := Compute(driverID, segments, at(11, 30), DefaultCycle())

	require.InDelta(t, 5.0, state.DrivingSinceBreakHours, 1e-9)
	require.False(t, state.NeedsBreak)
	require.False(t, state.HasViolation(ViolationBreakRequired))
}

func TestComputeWindowStartsAfterTenHourRest(t *testing.T) {
	driverID := uuid.New()
	deviceID := uuid.New()

	// Yesterday's shift, a full 10-hour rest, then today's shift. The
	// window anchors at today's first work segment, so yesterday's
	// driving does not count against the daily limits.
	yesterday := testDay.Add(-24 * time.Hour)
	segments := []*dutylog.Segment{
		seg(deviceID, dutylog.StatusDriving, yesterday.Add(6*time.Hour), yesterday.Add(14*time.Hour)),
		seg(deviceID, dutylog.StatusSleeperBerth, yesterday.Add(14*time.Hour), at(0, 0)),
		seg(deviceID, dutylog.StatusDriving, at(0, 0), at(4, 0)),
	}

	state := Compute(driverID, segments, at(4, 0), DefaultCycle())

	require.NotNil(t, state.WindowStart)
	require.True(t, state.WindowStart.Equal(at(0, 0)))
	require.InDelta(t, 4.0, state.DrivingHours, 1e-9)

	// Yesterday's hours still count toward the multi-day cycle.
	require.InDelta(t, 12.0, state.CycleHours, 1e-9)
}

func TestComputeOnDutyWindowLimit(t *testing.T) {
	driverID := uuid.New()
	deviceID := uuid.New()

	segments := []*dutylog.Segment{
		seg(deviceID, dutylog.StatusOnDuty, at(0, 0), at(8, 0)),
		seg(deviceID, dutylog.StatusDriving, at(8, 0), at(14, 30)),
	}

	state := Compute(driverID, segments, at(14, 30), DefaultCycle())

	require.Greater(t, state.OnDutyHours, 14.0)
	require.True(t, state.HasViolation(ViolationOnDutyLimit))
}

func TestComputeCycleLimitConfigurable(t *testing.T) {
	driverID := uuid.New()
	deviceID := uuid.New()

	// 9 hours a day for 7 days breaches a 60-hour/7-day cycle but not a
	// 70-hour/8-day one.
	var segments []*dutylog.Segment
	for day := 0; day < 7; day++ {
		start := testDay.Add(time.Duration(-day*24) * time.Hour)
		segments = append(segments,
			seg(deviceID, dutylog.StatusDriving, start, start.Add(9*time.Hour)),
			seg(deviceID, dutylog.StatusOffDuty, start.Add(9*time.Hour), start.Add(20*time.Hour)),
		)
	}
	ref := testDay.Add(9 * time.Hour)

	shortCycle := Compute(driverID, segments, ref, CycleConfig{Days: 7, MaxHours: 60})
	require.True(t, shortCycle.HasViolation(ViolationCycleLimit))

	longCycle := Compute(driverID, segments, ref, CycleConfig{Days: 8, MaxHours: 70})
	require.False(t, longCycle.HasViolation(ViolationCycleLimit))
}

func TestComputeRevisionsKeyedOnExternalID(t *testing.T) {
	driverID := uuid.New()
	deviceID := uuid.New()

	externalID := "rec-42"
	first := seg(deviceID, dutylog.StatusDriving, at(0, 0), at(5, 0))
	first.ExternalID = &externalID
	first.UpdatedAt = testDay

	// A revision of the same record shortens the segment; only the
	// revision may count.
	revised := seg(deviceID, dutylog.StatusDriving, at(0, 0), at(3, 0))
	revised.ExternalID = &externalID
	revised.UpdatedAt = testDay.Add(time.Hour)

	state := Compute(driverID, []*dutylog.Segment{first, revised}, at(6, 0), DefaultCycle())

	require.InDelta(t, 3.0, state.DrivingHours, 1e-9)
}

func TestComputeOpenSegmentClampsAtReference(t *testing.T) {
	driverID := uuid.New()
	deviceID := uuid.New()

	open := &dutylog.Segment{
		ID:        uuid.New(),
		DeviceID:  deviceID,
		Status:    dutylog.StatusDriving,
		StartTime: at(0, 0),
		UpdatedAt: time.Now(),
	}

	state := Compute(driverID, []*dutylog.Segment{open}, at(3, 30), DefaultCycle())

	require.InDelta(t, 3.5, state.DrivingHours, 1e-9)
	require.True(t, state.CanDrive)
}

func TestComputeNoSegmentsYieldsFullAllowance(t *testing.T) {
	state := Compute(uuid.New(), nil, at(0, 0), DefaultCycle())

	require.Nil(t, state.WindowStart)
	require.Zero(t, state.DrivingHours)
	require.InDelta(t, MaxDrivingHours, state.RemainingDrivingHours, 1e-9)
	require.InDelta(t, MaxOnDutyHours, state.RemainingOnDutyHours, 1e-9)
	require.True(t, state.CanDrive)
	require.Empty(t, state.Violations)
}

package hos

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"eld-compliance/internal/domain/dutylog"
)

// Compute derives the HOS state for one driver from the duty-status
// segments intersecting the lookback, as of the reference time. Segments
// may arrive in any order, may overlap, and may carry revisions of earlier
// records; the calculator keys on the latest ingested version of each
// external record id and otherwise trusts recorded time only.
func Compute(driverID uuid.UUID, segments []*dutylog.Segment, at time.Time, cycle CycleConfig) *State {
	if cycle.Days <= 0 {
		cycle = DefaultCycle()
	}

	segs := dedupeRevisions(segments)
	segs = dropAfter(segs, at)
	sort.Slice(segs, func(i, j int) bool {
		return segs[i].StartTime.Before(segs[j].StartTime)
	})

	state := &State{
		DriverID:              driverID,
		AsOf:                  at,
		RemainingDrivingHours: MaxDrivingHours,
		RemainingOnDutyHours:  MaxOnDutyHours,
		RemainingCycleHours:   cycle.MaxHours,
	}

	windowStart, ok := findWindowStart(segs, at)
	if ok {
		ws := windowStart
		state.WindowStart = &ws
	}

	var (
		driving           time.Duration
		onDuty            time.Duration
		drivingSinceBreak time.Duration
		breakViolation    bool
	)

	for _, seg := range segs {
		dur := clippedDuration(seg, windowStart, at)

		switch {
		case seg.Status == dutylog.StatusDriving:
			if ok && dur > 0 {
				driving += dur
				onDuty += dur
				drivingSinceBreak += dur
				if drivingSinceBreak > breakThreshold() {
					breakViolation = true
				}
			}
		case seg.Status == dutylog.StatusOnDuty:
			if ok && dur > 0 {
				onDuty += dur
			}
		case seg.Status.IsRest():
			// The break clock resets on any qualifying rest, even rest
			// recorded before the current window opened.
			if seg.Duration(at) >= MinQualifyingBreak {
				drivingSinceBreak = 0
			}
		}
	}

	state.DrivingHours = driving.Hours()
	state.OnDutyHours = onDuty.Hours()
	state.DrivingSinceBreakHours = drivingSinceBreak.Hours()
	state.CycleHours = cycleHours(segs, at, cycle)

	state.RemainingDrivingHours = remaining(MaxDrivingHours, state.DrivingHours)
	state.RemainingOnDutyHours = remaining(MaxOnDutyHours, state.OnDutyHours)
	state.RemainingCycleHours = remaining(cycle.MaxHours, state.CycleHours)

	// The limits are inclusive: exactly 11.0 hours of driving is
	// compliant, any time beyond is not.
	if driving > durationHours(MaxDrivingHours) {
		state.Violations = append(state.Violations, Violation{
			Kind: ViolationDrivingLimit,
			Description: fmt.Sprintf("%.2f hours driven in the current window exceeds the %.0f-hour driving limit",
				state.DrivingHours, MaxDrivingHours),
		})
	}
	if onDuty > durationHours(MaxOnDutyHours) {
		state.Violations = append(state.Violations, Violation{
			Kind: ViolationOnDutyLimit,
			Description: fmt.Sprintf("%.2f on-duty hours in the current window exceeds the %.0f-hour on-duty limit",
				state.OnDutyHours, MaxOnDutyHours),
		})
	}

	state.NeedsBreak = drivingSinceBreak >= breakThreshold()
	if breakViolation {
		state.Violations = append(state.Violations, Violation{
			Kind: ViolationBreakRequired,
			Description: fmt.Sprintf("%.2f hours driven without a qualifying %d-minute break",
				state.DrivingSinceBreakHours, int(MinQualifyingBreak.Minutes())),
		})
	}

	if state.CycleHours > cycle.MaxHours {
		state.Violations = append(state.Violations, Violation{
			Kind: ViolationCycleLimit,
			Description: fmt.Sprintf("%.2f on-duty hours in the past %d days exceeds the %.0f-hour cycle limit",
				state.CycleHours, cycle.Days, cycle.MaxHours),
		})
	}

	state.CanDrive = state.RemainingDrivingHours > 0 &&
		state.RemainingOnDutyHours > 0 &&
		state.RemainingCycleHours > 0 &&
		!state.NeedsBreak &&
		len(state.Violations) == 0

	return state
}

// dedupeRevisions keeps only the most recently ingested version of each
// (device, external id) record. Segments without an external id are always
// kept; providers that resend them do so as discrete events.
func dedupeRevisions(segments []*dutylog.Segment) []*dutylog.Segment {
	type key struct {
		device   uuid.UUID
		external string
	}

	latest := make(map[key]*dutylog.Segment)
	var keyless []*dutylog.Segment

	for _, seg := range segments {
		if seg.ExternalID == nil || *seg.ExternalID == "" {
			keyless = append(keyless, seg)
			continue
		}
		k := key{device: seg.DeviceID, external: *seg.ExternalID}
		cur, exists := latest[k]
		if !exists || seg.UpdatedAt.After(cur.UpdatedAt) {
			latest[k] = seg
		}
	}

	out := make([]*dutylog.Segment, 0, len(latest)+len(keyless))
	out = append(out, keyless...)
	for _, seg := range latest {
		out = append(out, seg)
	}
	return out
}

func dropAfter(segments []*dutylog.Segment, at time.Time) []*dutylog.Segment {
	out := segments[:0:0]
	for _, seg := range segments {
		if !seg.StartTime.After(at) {
			out = append(out, seg)
		}
	}
	return out
}

// findWindowStart locates the beginning of the current on-duty window: the
// first driving/on-duty segment following at least 10 consecutive
// off-duty/sleeper hours. Rest runs are built from adjacent rest segments;
// a gap in recorded time ends the run, since unrecorded time cannot be
// credited as rest. When no qualifying rest exists in the lookback the
// window is anchored at the earliest work segment available.
func findWindowStart(sorted []*dutylog.Segment, at time.Time) (time.Time, bool) {
	var (
		restStart  time.Time
		restEnd    time.Time
		inRest     bool
		resetAfter time.Time
		haveReset  bool
	)

	endRun := func() {
		if inRest && restEnd.Sub(restStart) >= MinRestForReset {
			resetAfter = restEnd
			haveReset = true
		}
		inRest = false
	}

	for _, seg := range sorted {
		end := at
		if seg.EndTime != nil && seg.EndTime.Before(at) {
			end = *seg.EndTime
		}
		if !end.After(seg.StartTime) {
			continue
		}

		if seg.Status.IsRest() {
			if inRest && !seg.StartTime.After(restEnd) {
				if end.After(restEnd) {
					restEnd = end
				}
			} else {
				endRun()
				restStart = seg.StartTime
				restEnd = end
				inRest = true
			}
			continue
		}

		endRun()
	}
	endRun()

	var windowStart time.Time
	found := false
	for _, seg := range sorted {
		if seg.Status.IsRest() {
			continue
		}
		if haveReset && seg.StartTime.Before(resetAfter) {
			continue
		}
		if !found || seg.StartTime.Before(windowStart) {
			windowStart = seg.StartTime
			found = true
		}
	}

	return windowStart, found
}

// clippedDuration bounds a segment to [from, to].
func clippedDuration(seg *dutylog.Segment, from, to time.Time) time.Duration {
	start := seg.StartTime
	if start.Before(from) {
		start = from
	}
	end := to
	if seg.EndTime != nil && seg.EndTime.Before(to) {
		end = *seg.EndTime
	}
	if !end.After(start) {
		return 0
	}
	return end.Sub(start)
}

// cycleHours sums driving and on-duty time over the trailing cycle window.
func cycleHours(sorted []*dutylog.Segment, at time.Time, cycle CycleConfig) float64 {
	from := at.Add(-time.Duration(cycle.Days) * 24 * time.Hour)

	var total time.Duration
	for _, seg := range sorted {
		if seg.Status != dutylog.StatusDriving && seg.Status != dutylog.StatusOnDuty {
			continue
		}
		total += clippedDuration(seg, from, at)
	}
	return total.Hours()
}

func remaining(limit, used float64) float64 {
	if used >= limit {
		return 0
	}
	return limit - used
}

func breakThreshold() time.Duration {
	return durationHours(BreakAfterDrivingHours)
}

func durationHours(h float64) time.Duration {
	return time.Duration(h * float64(time.Hour))
}

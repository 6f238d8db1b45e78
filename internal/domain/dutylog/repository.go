package dutylog

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository persists duty-status segments. Writes upsert keyed by
// (device, external id) so retried offline queues and redelivered
// webhooks stay idempotent.
type Repository interface {
	Insert(ctx context.Context, segment *Segment) error

	// UpsertByExternalID applies the segment keyed on the client-supplied
	// record id. Re-applying an identical segment leaves stored state
	// unchanged; a revised segment replaces the previous version.
	UpsertByExternalID(ctx context.Context, segment *Segment) error

	// ListForDriverWindow returns every segment for the driver whose
	// interval intersects [from, to], ordered by start time. Open
	// segments (nil end time) intersect when they start before to. The
	// query is company-scoped: segments belonging to another company are
	// never returned, whatever driver id the caller asks about.
	ListForDriverWindow(ctx context.Context, companyID, driverID uuid.UUID, from, to time.Time) ([]*Segment, error)

	ListUnassigned(ctx context.Context, companyID uuid.UUID, limit int) ([]*Segment, error)
	CountForDevice(ctx context.Context, deviceID uuid.UUID) (int64, error)
}

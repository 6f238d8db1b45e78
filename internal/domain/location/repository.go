package location

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository persists location pings. InsertBatch callers are expected to
// chunk large batches; the store enforces its own bound as well.
type Repository interface {
	InsertBatch(ctx context.Context, pings []*Ping) error
	ListForDevice(ctx context.Context, deviceID uuid.UUID, from, to time.Time, limit int) ([]*Ping, error)
	CountForDevice(ctx context.Context, deviceID uuid.UUID) (int64, error)
}

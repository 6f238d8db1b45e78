package location

import (
	"time"

	"github.com/google/uuid"
)

// Ping is a single timestamped GPS sample. Pings are append-only and high
// volume; they are audit context, never input to compliance math.
type Ping struct {
	ID         uuid.UUID
	CompanyID  uuid.UUID
	DeviceID   uuid.UUID
	TruckID    *uuid.UUID
	DriverID   *uuid.UUID
	Latitude   float64
	Longitude  float64
	Speed      *float64
	Heading    *float64
	Odometer   *float64
	RecordedAt time.Time
	CreatedAt  time.Time
}

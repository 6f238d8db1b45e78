package compliance

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists compliance events.
type Repository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, eventID uuid.UUID) (*Event, error)
	Resolve(ctx context.Context, eventID uuid.UUID, note string) error
	ListByCompany(ctx context.Context, companyID uuid.UUID, filter *Filter) ([]*Event, int64, error)
}

// Filter narrows event listings.
type Filter struct {
	DriverID *uuid.UUID
	Type     *EventType
	Severity *Severity
	Resolved *bool
	Page     int
	PageSize int
}

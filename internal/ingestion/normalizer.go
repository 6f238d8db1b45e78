package ingestion

import (
	"time"

	"eld-compliance/internal/domain/compliance"
	"eld-compliance/internal/domain/device"
	"eld-compliance/internal/domain/dutylog"
	appErrors "eld-compliance/pkg/errors"
)

// Canonical event kinds reported back to webhook callers.
const (
	KindDutyLog   = "duty_log"
	KindLocation  = "location"
	KindViolation = "violation"
	KindUnknown   = "unknown"
)

// LogRecord is a provider-independent duty-status segment before identity
// resolution. Mandatory fields stay pointers until validation so that an
// absent value is distinguishable from a zero value.
type LogRecord struct {
	ExternalID       *string
	ProviderDriverID *string
	Status           dutylog.DutyStatus
	StartTime        *time.Time
	EndTime          *time.Time
	OdometerStart    *float64
	OdometerEnd      *float64
	StartLocation    *string
	EndLocation      *string
	Certified        bool
	Raw              []byte
}

// PingRecord is a provider-independent location sample.
type PingRecord struct {
	ProviderDriverID *string
	Latitude         *float64
	Longitude        *float64
	Speed            *float64
	Heading          *float64
	Odometer         *float64
	RecordedAt       *time.Time
}

// EventRecord is a provider-reported violation or anomaly.
type EventRecord struct {
	ProviderDriverID *string
	Type             compliance.EventType
	Severity         compliance.Severity
	Title            string
	Description      string
	EventTime        *time.Time
	Metadata         map[string]string
}

// DroppedRecord reports one record filtered out of a batch, with the
// per-field failures that disqualified it.
type DroppedRecord struct {
	Index  int
	Kind   string
	Errors []FieldError
}

// Batch is the output of one normalization pass: zero or more canonical
// records plus the individually dropped ones. A batch with drops is not an
// error; ingestion is partial-failure tolerant.
type Batch struct {
	Kind       string
	DeliveryID *string
	Logs       []LogRecord
	Pings      []PingRecord
	Events     []EventRecord
	Dropped    []DroppedRecord
}

// Empty reports whether nothing valid survived normalization.
func (b *Batch) Empty() bool {
	return len(b.Logs) == 0 && len(b.Pings) == 0 && len(b.Events) == 0
}

// Normalizer converts one provider's native payloads into canonical
// records. Implementations own their field-alias tables; nothing outside
// the implementation knows a vendor's vocabulary.
type Normalizer interface {
	Provider() device.Provider

	// ExtractDeviceID pulls the provider-native device identifier out of
	// an authenticated payload, for identity resolution before any
	// normalization work.
	ExtractDeviceID(obj payloadObject) *string

	// Normalize produces canonical records from the payload. Individually
	// invalid records are dropped into Batch.Dropped; only a payload that
	// cannot be interpreted at all returns an error.
	Normalize(obj payloadObject, raw []byte) (*Batch, error)
}

// Registry selects a Normalizer by provider identifier.
type Registry struct {
	normalizers map[device.Provider]Normalizer
}

func NewRegistry(normalizers ...Normalizer) *Registry {
	r := &Registry{normalizers: make(map[device.Provider]Normalizer, len(normalizers))}
	for _, n := range normalizers {
		r.normalizers[n.Provider()] = n
	}
	return r
}

// DefaultRegistry wires every supported provider.
func DefaultRegistry() *Registry {
	return NewRegistry(
		NewSamsaraNormalizer(),
		NewGeotabNormalizer(),
		NewMotiveNormalizer(),
		NewMobileNormalizer(),
	)
}

func (r *Registry) Get(provider device.Provider) (Normalizer, error) {
	n, ok := r.normalizers[provider]
	if !ok {
		return nil, appErrors.ErrUnknownProvider
	}
	return n, nil
}

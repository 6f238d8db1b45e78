package ingestion

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"eld-compliance/internal/alerts"
	"eld-compliance/internal/domain/compliance"
	"eld-compliance/internal/domain/device"
	"eld-compliance/internal/domain/driver"
	"eld-compliance/internal/domain/dutylog"
	"eld-compliance/internal/domain/location"
)

type fakeDeviceRepo struct {
	devices map[uuid.UUID]*device.Device
	touched int
}

func newFakeDeviceRepo() *fakeDeviceRepo {
	return &fakeDeviceRepo{devices: make(map[uuid.UUID]*device.Device)}
}

func (r *fakeDeviceRepo) Create(_ context.Context, d *device.Device) error {
	r.devices[d.ID] = d
	return nil
}

func (r *fakeDeviceRepo) GetByID(_ context.Context, id uuid.UUID) (*device.Device, error) {
	d, ok := r.devices[id]
	if !ok {
		return nil, device.ErrDeviceNotFound
	}
	return d, nil
}

func (r *fakeDeviceRepo) GetBySerial(_ context.Context, serial string) (*device.Device, error) {
	for _, d := range r.devices {
		if d.SerialNumber == serial {
			return d, nil
		}
	}
	return nil, device.ErrDeviceNotFound
}

func (r *fakeDeviceRepo) GetByProviderDeviceID(_ context.Context, provider device.Provider, providerDeviceID string) (*device.Device, error) {
	for _, d := range r.devices {
		if d.Provider == provider && d.ProviderDeviceID == providerDeviceID {
			return d, nil
		}
	}
	return nil, device.ErrDeviceNotFound
}

func (r *fakeDeviceRepo) UpsertBySerial(_ context.Context, d *device.Device) error {
	for _, existing := range r.devices {
		if existing.SerialNumber == d.SerialNumber {
			d.ID = existing.ID
			r.devices[d.ID] = d
			return nil
		}
	}
	d.ID = uuid.New()
	r.devices[d.ID] = d
	return nil
}

func (r *fakeDeviceRepo) UpdateStatus(_ context.Context, id uuid.UUID, status device.DeviceStatus) error {
	d, ok := r.devices[id]
	if !ok {
		return device.ErrDeviceNotFound
	}
	d.Status = status
	return nil
}

func (r *fakeDeviceRepo) UpdateSyncTokenHash(_ context.Context, id uuid.UUID, hash string) error {
	d, ok := r.devices[id]
	if !ok {
		return device.ErrDeviceNotFound
	}
	d.SyncTokenHash = &hash
	return nil
}

func (r *fakeDeviceRepo) TouchLastSync(_ context.Context, id uuid.UUID) error {
	r.touched++
	return nil
}

func (r *fakeDeviceRepo) List(_ context.Context, _ uuid.UUID, _ *device.Filter) ([]*device.Device, int64, error) {
	return nil, 0, nil
}

type fakeMappingRepo struct {
	byKey map[string]uuid.UUID
}

func newFakeMappingRepo() *fakeMappingRepo {
	return &fakeMappingRepo{byKey: make(map[string]uuid.UUID)}
}

func mappingKey(deviceID uuid.UUID, provider device.Provider, providerDriverID string) string {
	return deviceID.String() + "|" + string(provider) + "|" + providerDriverID
}

func (r *fakeMappingRepo) Create(_ context.Context, m *driver.Mapping) error {
	r.byKey[mappingKey(m.DeviceID, m.Provider, m.ProviderDriverID)] = m.DriverID
	return nil
}

func (r *fakeMappingRepo) GetByID(_ context.Context, _ uuid.UUID) (*driver.Mapping, error) {
	return nil, driver.ErrMappingNotFound
}

func (r *fakeMappingRepo) ResolveDriver(_ context.Context, deviceID uuid.UUID, provider device.Provider, providerDriverID string) (uuid.UUID, error) {
	id, ok := r.byKey[mappingKey(deviceID, provider, providerDriverID)]
	if !ok {
		return uuid.Nil, driver.ErrMappingNotFound
	}
	return id, nil
}

func (r *fakeMappingRepo) Deactivate(_ context.Context, _ uuid.UUID) error { return nil }

func (r *fakeMappingRepo) ListByCompany(_ context.Context, _ uuid.UUID) ([]*driver.Mapping, error) {
	return nil, nil
}

func (r *fakeMappingRepo) ListByDevice(_ context.Context, _ uuid.UUID) ([]*driver.Mapping, error) {
	return nil, nil
}

type fakeDutyLogRepo struct {
	inserted []*dutylog.Segment
	byKey    map[string]*dutylog.Segment

	// failures makes the next N upserts return an error.
	failures int
}

func newFakeDutyLogRepo() *fakeDutyLogRepo {
	return &fakeDutyLogRepo{byKey: make(map[string]*dutylog.Segment)}
}

func (r *fakeDutyLogRepo) Insert(_ context.Context, seg *dutylog.Segment) error {
	seg.ID = uuid.New()
	r.inserted = append(r.inserted, seg)
	return nil
}

func (r *fakeDutyLogRepo) UpsertByExternalID(_ context.Context, seg *dutylog.Segment) error {
	if r.failures > 0 {
		r.failures--
		return errors.New("storage unavailable")
	}
	if seg.ExternalID == nil {
		return r.Insert(nil, seg)
	}
	key := seg.DeviceID.String() + "|" + *seg.ExternalID
	if existing, ok := r.byKey[key]; ok {
		seg.ID = existing.ID
		r.byKey[key] = seg
		return nil
	}
	seg.ID = uuid.New()
	r.byKey[key] = seg
	return nil
}

func (r *fakeDutyLogRepo) ListForDriverWindow(_ context.Context, _, _ uuid.UUID, _, _ time.Time) ([]*dutylog.Segment, error) {
	return nil, nil
}

func (r *fakeDutyLogRepo) ListUnassigned(_ context.Context, _ uuid.UUID, _ int) ([]*dutylog.Segment, error) {
	return nil, nil
}

func (r *fakeDutyLogRepo) CountForDevice(_ context.Context, _ uuid.UUID) (int64, error) {
	return int64(len(r.inserted) + len(r.byKey)), nil
}

type fakeLocationRepo struct {
	batches [][]*location.Ping
}

func (r *fakeLocationRepo) InsertBatch(_ context.Context, pings []*location.Ping) error {
	r.batches = append(r.batches, pings)
	return nil
}

func (r *fakeLocationRepo) ListForDevice(_ context.Context, _ uuid.UUID, _, _ time.Time, _ int) ([]*location.Ping, error) {
	return nil, nil
}

func (r *fakeLocationRepo) CountForDevice(_ context.Context, _ uuid.UUID) (int64, error) {
	total := 0
	for _, b := range r.batches {
		total += len(b)
	}
	return int64(total), nil
}

type fakeEventRepo struct {
	events []*compliance.Event
}

func (r *fakeEventRepo) Create(_ context.Context, e *compliance.Event) error {
	e.ID = uuid.New()
	r.events = append(r.events, e)
	return nil
}

func (r *fakeEventRepo) GetByID(_ context.Context, id uuid.UUID) (*compliance.Event, error) {
	for _, e := range r.events {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, compliance.ErrEventNotFound
}

func (r *fakeEventRepo) Resolve(_ context.Context, id uuid.UUID, note string) error {
	for _, e := range r.events {
		if e.ID == id {
			e.Resolved = true
			e.ResolveNote = &note
			return nil
		}
	}
	return compliance.ErrEventNotFound
}

func (r *fakeEventRepo) ListByCompany(_ context.Context, companyID uuid.UUID, filter *compliance.Filter) ([]*compliance.Event, int64, error) {
	var out []*compliance.Event
	for _, e := range r.events {
		if e.CompanyID != companyID {
			continue
		}
		if filter != nil && filter.Resolved != nil && e.Resolved != *filter.Resolved {
			continue
		}
		if filter != nil && filter.Type != nil && e.Type != *filter.Type {
			continue
		}
		if filter != nil && filter.DriverID != nil && (e.DriverID == nil || *e.DriverID != *filter.DriverID) {
			continue
		}
		out = append(out, e)
	}
	return out, int64(len(out)), nil
}

type storeFixture struct {
	devices  *fakeDeviceRepo
	mappings *fakeMappingRepo
	logs     *fakeDutyLogRepo
	pings    *fakeLocationRepo
	events   *fakeEventRepo
	store    *Store
	dev      *device.Device
}

func newStoreFixture(t *testing.T, locationBatchSize int) *storeFixture {
	t.Helper()

	f := &storeFixture{
		devices:  newFakeDeviceRepo(),
		mappings: newFakeMappingRepo(),
		logs:     newFakeDutyLogRepo(),
		pings:    &fakeLocationRepo{},
		events:   &fakeEventRepo{},
	}
	emitter := alerts.NewEmitter(f.events, alerts.NoopNotifier{}, time.Second)
	f.store = NewStore(f.devices, f.mappings, f.logs, f.pings, emitter, locationBatchSize)

	f.dev = &device.Device{
		ID:               uuid.New(),
		CompanyID:        uuid.New(),
		Provider:         device.ProviderMobileApp,
		ProviderDeviceID: "phone-1",
		SerialNumber:     "phone-1",
		Status:           device.StatusActive,
	}
	require.NoError(t, f.devices.Create(context.Background(), f.dev))
	return f
}

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

func floatPtr(f float64) *float64 { return &f }

func TestStoreIngestIdempotentUpsert(t *testing.T) {
	f := newStoreFixture(t, 100)
	start := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

	batch := &Batch{
		Kind: KindDutyLog,
		Logs: []LogRecord{
			{
				ExternalID: strPtr("c-1"),
				Status:     dutylog.StatusDriving,
				StartTime:  timePtr(start),
				EndTime:    timePtr(start.Add(2 * time.Hour)),
			},
		},
	}

	for i := 0; i < 3; i++ {
		summary, err := f.store.Ingest(context.Background(), f.dev, batch)
		require.NoError(t, err)
		require.Equal(t, 1, summary.LogsStored)
	}

	// Re-delivering the same client record id never grows the store.
	count, err := f.logs.CountForDevice(context.Background(), f.dev.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

func TestStoreIngestChunksLocations(t *testing.T) {
	f := newStoreFixture(t, 100)
	recorded := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

	var pings []PingRecord
	for i := 0; i < 250; i++ {
		pings = append(pings, PingRecord{
			Latitude:   floatPtr(40.0),
			Longitude:  floatPtr(-75.0),
			RecordedAt: timePtr(recorded.Add(time.Duration(i) * time.Second)),
		})
	}

	summary, err := f.store.Ingest(context.Background(), f.dev, &Batch{Kind: KindLocation, Pings: pings})
	require.NoError(t, err)
	require.Equal(t, 250, summary.PingsStored)

	// 250 records at a 100-record bound: chunks of 100, 100, 50.
	require.Len(t, f.pings.batches, 3)
	require.Len(t, f.pings.batches[0], 100)
	require.Len(t, f.pings.batches[1], 100)
	require.Len(t, f.pings.batches[2], 50)
}

func TestStoreIngestUnmappedDriverStoredUnassigned(t *testing.T) {
	f := newStoreFixture(t, 100)
	start := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

	batch := &Batch{
		Kind: KindDutyLog,
		Logs: []LogRecord{
			{
				ExternalID:       strPtr("c-9"),
				ProviderDriverID: strPtr("unknown-driver"),
				Status:           dutylog.StatusOnDuty,
				StartTime:        timePtr(start),
			},
		},
	}

	summary, err := f.store.Ingest(context.Background(), f.dev, batch)
	require.NoError(t, err)
	require.Equal(t, 1, summary.LogsStored)
	require.Equal(t, 1, summary.Unmapped)

	stored := f.logs.byKey[f.dev.ID.String()+"|c-9"]
	require.NotNil(t, stored)
	require.Nil(t, stored.DriverID)
}

func TestStoreIngestResolvesMappedDriver(t *testing.T) {
	f := newStoreFixture(t, 100)
	driverID := uuid.New()
	require.NoError(t, f.mappings.Create(context.Background(), &driver.Mapping{
		DeviceID:         f.dev.ID,
		Provider:         f.dev.Provider,
		ProviderDriverID: "d-77",
		DriverID:         driverID,
	}))

	start := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	batch := &Batch{
		Kind: KindDutyLog,
		Logs: []LogRecord{
			{
				ExternalID:       strPtr("c-2"),
				ProviderDriverID: strPtr("d-77"),
				Status:           dutylog.StatusDriving,
				StartTime:        timePtr(start),
			},
		},
	}

	summary, err := f.store.Ingest(context.Background(), f.dev, batch)
	require.NoError(t, err)
	require.Zero(t, summary.Unmapped)

	stored := f.logs.byKey[f.dev.ID.String()+"|c-2"]
	require.NotNil(t, stored)
	require.NotNil(t, stored.DriverID)
	require.Equal(t, driverID, *stored.DriverID)
}

func TestStoreIngestEmitsEventsAndTouchesHeartbeat(t *testing.T) {
	f := newStoreFixture(t, 100)
	eventTime := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)

	batch := &Batch{
		Kind: KindViolation,
		Events: []EventRecord{
			{
				Type:      compliance.EventSpeeding,
				Severity:  compliance.SeverityCritical,
				Title:     "Speeding",
				EventTime: timePtr(eventTime),
			},
		},
	}

	summary, err := f.store.Ingest(context.Background(), f.dev, batch)
	require.NoError(t, err)
	require.Equal(t, 1, summary.EventsStored)
	require.Len(t, f.events.events, 1)
	require.Equal(t, f.dev.CompanyID, f.events.events[0].CompanyID)
	require.Equal(t, 1, f.devices.touched)
}

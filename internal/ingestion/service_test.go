package ingestion

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"eld-compliance/internal/alerts"
	"eld-compliance/internal/config"
	"eld-compliance/internal/domain/device"
	appErrors "eld-compliance/pkg/errors"
)

type ingestorFixture struct {
	*storeFixture
	ingestor *Ingestor
}

func newIngestorFixture(t *testing.T) *ingestorFixture {
	t.Helper()

	f := &ingestorFixture{storeFixture: newStoreFixture(t, 100)}
	verifier := NewSignatureVerifier(&config.ProvidersConfig{
		SamsaraSecret: "samsara-secret",
	})
	emitter := alerts.NewEmitter(f.events, alerts.NoopNotifier{}, time.Second)
	store := NewStore(f.devices, f.mappings, f.logs, f.pings, emitter, 100)
	f.ingestor = NewIngestor(verifier, DefaultRegistry(), f.devices, store)
	return f
}

func (f *ingestorFixture) addSamsaraDevice(t *testing.T, providerDeviceID string) *device.Device {
	t.Helper()
	dev := &device.Device{
		ID:               uuid.New(),
		CompanyID:        uuid.New(),
		Provider:         device.ProviderSamsara,
		ProviderDeviceID: providerDeviceID,
		SerialNumber:     "sn-" + providerDeviceID,
		Status:           device.StatusActive,
	}
	require.NoError(t, f.devices.Create(context.Background(), dev))
	return dev
}

const samsaraLogBody = `{
	"eventId": "evt-1",
	"eventType": "dutyStatusLogUpdated",
	"data": {
		"deviceId": "gw-100",
		"logId": "log-1",
		"dutyStatus": "driving",
		"startTime": "2025-03-10T08:00:00Z",
		"endTime": "2025-03-10T10:00:00Z"
	}
}`

func TestHandleWebhookStoresSignedDelivery(t *testing.T) {
	f := newIngestorFixture(t)
	dev := f.addSamsaraDevice(t, "gw-100")

	body := []byte(samsaraLogBody)
	sig := "sha256=" + signHex("samsara-secret", body)

	result, err := f.ingestor.HandleWebhook(context.Background(), device.ProviderSamsara, dev.CompanyID, body, sig)
	require.NoError(t, err)
	require.Equal(t, KindDutyLog, result.Processed)
	require.Equal(t, 1, result.Summary.LogsStored)
	require.Len(t, f.logs.byKey, 1)
}

func TestHandleWebhookRejectsBadSignature(t *testing.T) {
	f := newIngestorFixture(t)
	dev := f.addSamsaraDevice(t, "gw-100")

	body := []byte(samsaraLogBody)

	_, err := f.ingestor.HandleWebhook(context.Background(), device.ProviderSamsara, dev.CompanyID, body, "sha256=deadbeef")
	require.ErrorIs(t, err, appErrors.ErrInvalidSignature)
	require.Empty(t, f.logs.byKey)

	metrics := f.ingestor.Metrics()
	require.EqualValues(t, 1, metrics.MessagesFailed)
}

func TestHandleWebhookUnknownDevice(t *testing.T) {
	f := newIngestorFixture(t)

	body := []byte(samsaraLogBody)
	sig := "sha256=" + signHex("samsara-secret", body)

	_, err := f.ingestor.HandleWebhook(context.Background(), device.ProviderSamsara, uuid.New(), body, sig)
	require.ErrorIs(t, err, appErrors.ErrDeviceNotFound)
}

func TestHandleWebhookCompanyMismatchLooksLikeNotFound(t *testing.T) {
	f := newIngestorFixture(t)
	f.addSamsaraDevice(t, "gw-100")

	body := []byte(samsaraLogBody)
	sig := "sha256=" + signHex("samsara-secret", body)

	// Right device, wrong company: indistinguishable from not-found so
	// the caller learns nothing about other tenants.
	_, err := f.ingestor.HandleWebhook(context.Background(), device.ProviderSamsara, uuid.New(), body, sig)
	require.ErrorIs(t, err, appErrors.ErrDeviceNotFound)
	require.Empty(t, f.logs.byKey)
}

func TestHandleWebhookSuppressesDuplicateDelivery(t *testing.T) {
	f := newIngestorFixture(t)
	dev := f.addSamsaraDevice(t, "gw-100")

	body := []byte(samsaraLogBody)
	sig := "sha256=" + signHex("samsara-secret", body)

	first, err := f.ingestor.HandleWebhook(context.Background(), device.ProviderSamsara, dev.CompanyID, body, sig)
	require.NoError(t, err)
	require.Equal(t, 1, first.Summary.LogsStored)

	// Same eventId again: acknowledged but not re-stored.
	second, err := f.ingestor.HandleWebhook(context.Background(), device.ProviderSamsara, dev.CompanyID, body, sig)
	require.NoError(t, err)
	require.Zero(t, second.Summary.LogsStored)
	require.Len(t, f.logs.byKey, 1)
}

func TestHandleWebhookCountsGeneratedAlerts(t *testing.T) {
	f := newIngestorFixture(t)
	dev := f.addSamsaraDevice(t, "gw-100")

	body := []byte(`{
		"eventId": "evt-9",
		"eventType": "alertIncident",
		"data": {
			"deviceId": "gw-100",
			"alertType": "speeding",
			"severity": "high",
			"description": "82 mph in a 65 zone",
			"happenedAtTime": "2025-03-10T15:04:05Z"
		}
	}`)
	sig := "sha256=" + signHex("samsara-secret", body)

	result, err := f.ingestor.HandleWebhook(context.Background(), device.ProviderSamsara, dev.CompanyID, body, sig)
	require.NoError(t, err)
	require.Equal(t, 1, result.Summary.EventsStored)

	metrics := f.ingestor.Metrics()
	require.EqualValues(t, 1, metrics.AlertsGenerated)
}

func TestHandleWebhookRetryAfterStoreFailureIsNotADuplicate(t *testing.T) {
	f := newIngestorFixture(t)
	dev := f.addSamsaraDevice(t, "gw-100")
	f.logs.failures = 1

	body := []byte(samsaraLogBody)
	sig := "sha256=" + signHex("samsara-secret", body)

	_, err := f.ingestor.HandleWebhook(context.Background(), device.ProviderSamsara, dev.CompanyID, body, sig)
	require.Error(t, err)
	require.Empty(t, f.logs.byKey)

	// The provider retries the identical eventId after the failed write.
	// A delivery only counts as seen once it has been stored, so the
	// retry must go through rather than being swallowed as a duplicate.
	result, err := f.ingestor.HandleWebhook(context.Background(), device.ProviderSamsara, dev.CompanyID, body, sig)
	require.NoError(t, err)
	require.Equal(t, 1, result.Summary.LogsStored)
	require.Len(t, f.logs.byKey, 1)
}

func TestHandleMobileBatchEmptyAfterFilteringFails(t *testing.T) {
	f := newIngestorFixture(t)

	// Every location lacks coordinates, so nothing valid remains.
	body := []byte(`{"device_id":"phone-1","locations":[{"driver_id":"d-1"},{"driver_id":"d-1"}]}`)

	_, err := f.ingestor.HandleMobileBatch(context.Background(), f.dev, body)
	require.ErrorIs(t, err, appErrors.ErrNoValidRecords)
}

func TestHandleMobileBatchNoRecordsFails(t *testing.T) {
	f := newIngestorFixture(t)

	_, err := f.ingestor.HandleMobileBatch(context.Background(), f.dev, []byte(`{"device_id":"phone-1"}`))
	require.ErrorIs(t, err, appErrors.ErrEmptyBatch)
}

func TestHandleMobileBatchUpserts(t *testing.T) {
	f := newIngestorFixture(t)

	body := []byte(`{
		"device_id": "phone-1",
		"logs": [
			{"client_record_id": "c-1", "log_type": "driving", "start_time": "2025-03-10T08:00:00Z", "end_time": "2025-03-10T10:00:00Z"}
		]
	}`)

	for i := 0; i < 2; i++ {
		result, err := f.ingestor.HandleMobileBatch(context.Background(), f.dev, body)
		require.NoError(t, err)
		require.Equal(t, 1, result.Summary.LogsStored)
	}

	// Upsert by client record id keeps the store at one row.
	require.Len(t, f.logs.byKey, 1)
	require.Empty(t, f.logs.inserted)
}

package ingestion

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"eld-compliance/internal/domain/compliance"
	"eld-compliance/internal/domain/device"
	"eld-compliance/internal/domain/dutylog"
)

func mustDecode(t *testing.T, body string) payloadObject {
	t.Helper()
	obj, err := decodePayload([]byte(body))
	require.NoError(t, err)
	return obj
}

func TestSamsaraDutyLogNormalization(t *testing.T) {
	body := `{
		"eventId": "evt-1001",
		"eventType": "DutyStatusLogUpdated",
		"data": {
			"deviceId": "gw-477",
			"logId": "log-9",
			"driverId": "drv-12",
			"dutyStatus": "sleeperBerth",
			"startTime": "2025-03-10T08:00:00Z",
			"endTime": "2025-03-10T12:00:00Z",
			"certified": true
		}
	}`

	n := NewSamsaraNormalizer()
	obj := mustDecode(t, body)

	deviceID := n.ExtractDeviceID(obj)
	require.NotNil(t, deviceID)
	require.Equal(t, "gw-477", *deviceID)

	batch, err := n.Normalize(obj, []byte(body))
	require.NoError(t, err)
	require.Equal(t, KindDutyLog, batch.Kind)
	require.NotNil(t, batch.DeliveryID)
	require.Equal(t, "evt-1001", *batch.DeliveryID)
	require.Len(t, batch.Logs, 1)
	require.Empty(t, batch.Dropped)

	log := batch.Logs[0]
	require.Equal(t, dutylog.StatusSleeperBerth, log.Status)
	require.Equal(t, "log-9", *log.ExternalID)
	require.Equal(t, "drv-12", *log.ProviderDriverID)
	require.True(t, log.Certified)
	require.Equal(t, "2025-03-10T08:00:00Z", log.StartTime.Format("2006-01-02T15:04:05Z"))
}

func TestSamsaraLocationAliasProbing(t *testing.T) {
	// Same semantic payload under two alias sets.
	bodies := []string{
		`{"eventType":"locationUpdated","data":{"deviceId":"gw-1","location":{"latitude":37.77,"longitude":-122.42,"speedMilesPerHour":55.5},"happenedAtTime":"2025-03-10T10:00:00Z"}}`,
		`{"eventType":"gpsPing","data":{"deviceId":"gw-1","location":{"lat":37.77,"lng":-122.42,"speed":55.5},"time":"2025-03-10T10:00:00Z"}}`,
	}

	n := NewSamsaraNormalizer()
	for i, body := range bodies {
		batch, err := n.Normalize(mustDecode(t, body), []byte(body))
		require.NoError(t, err, "variant %d", i)
		require.Equal(t, KindLocation, batch.Kind)
		require.Len(t, batch.Pings, 1)

		ping := batch.Pings[0]
		require.InDelta(t, 37.77, *ping.Latitude, 1e-9, "variant %d", i)
		require.InDelta(t, -122.42, *ping.Longitude, 1e-9, "variant %d", i)
		require.InDelta(t, 55.5, *ping.Speed, 1e-9, "variant %d", i)
		require.NotNil(t, ping.RecordedAt, "variant %d", i)
	}
}

func TestGeotabLetterCodesAndMultipleLogs(t *testing.T) {
	body := `{
		"id": "batch-7",
		"type": "DutyStatusLog",
		"device": {"id": "b-339"},
		"logs": [
			{"id": "l1", "driver": {"id": "g-5"}, "status": "D", "fromDate": "2025-03-10T00:00:00Z", "toDate": "2025-03-10T06:00:00Z"},
			{"id": "l2", "driver": {"id": "g-5"}, "status": "SB", "fromDate": "2025-03-10T06:00:00Z", "toDate": "2025-03-10T16:00:00Z"},
			{"id": "l3", "driver": {"id": "g-5"}, "status": "ON", "fromDate": "2025-03-10T16:00:00Z"}
		]
	}`

	n := NewGeotabNormalizer()
	obj := mustDecode(t, body)

	deviceID := n.ExtractDeviceID(obj)
	require.NotNil(t, deviceID)
	require.Equal(t, "b-339", *deviceID)

	batch, err := n.Normalize(obj, []byte(body))
	require.NoError(t, err)
	require.Len(t, batch.Logs, 3)
	require.Equal(t, dutylog.StatusDriving, batch.Logs[0].Status)
	require.Equal(t, dutylog.StatusSleeperBerth, batch.Logs[1].Status)
	require.Equal(t, dutylog.StatusOnDuty, batch.Logs[2].Status)
	require.Nil(t, batch.Logs[2].EndTime)
	require.Equal(t, "g-5", *batch.Logs[1].ProviderDriverID)
}

func TestMotiveNumericDriverIDCoercion(t *testing.T) {
	body := `{
		"event_type": "hos_log.updated",
		"log": {
			"id": "m-88",
			"eld_device_id": "eld-204",
			"driver_id": 48213,
			"log_type": "off_duty",
			"start_time": "2025-03-10T00:00:00Z",
			"end_time": "2025-03-10T08:00:00Z"
		}
	}`

	n := NewMotiveNormalizer()
	obj := mustDecode(t, body)

	deviceID := n.ExtractDeviceID(obj)
	require.NotNil(t, deviceID)
	require.Equal(t, "eld-204", *deviceID)

	batch, err := n.Normalize(obj, []byte(body))
	require.NoError(t, err)
	require.Len(t, batch.Logs, 1)
	require.Equal(t, "48213", *batch.Logs[0].ProviderDriverID)
	require.Equal(t, dutylog.StatusOffDuty, batch.Logs[0].Status)
}

func TestUnrecognizedDutyStatusFallsBackToOffDuty(t *testing.T) {
	require.Equal(t, dutylog.StatusOffDuty, mapDutyStatus(device.ProviderSamsara, "yardMove"))
	require.Equal(t, dutylog.StatusOffDuty, mapDutyStatus(device.ProviderGeotab, "PC"))
	require.Equal(t, dutylog.StatusDriving, mapDutyStatus(device.ProviderGeotab, " d "))
}

func TestMobilePartialBatchFiltering(t *testing.T) {
	// 10 locations, 3 missing coordinates: exactly 7 survive.
	var items []string
	for i := 0; i < 10; i++ {
		if i%3 == 1 {
			items = append(items, fmt.Sprintf(`{"driver_id":"d-1","recorded_at":"2025-03-10T0%d:00:00Z"}`, i))
			continue
		}
		items = append(items, fmt.Sprintf(`{"driver_id":"d-1","latitude":40.1,"longitude":-75.2,"recorded_at":"2025-03-10T0%d:00:00Z"}`, i))
	}
	body := `{"device_id":"phone-1","locations":[` + strings.Join(items, ",") + `]}`

	n := NewMobileNormalizer()
	batch, err := n.Normalize(mustDecode(t, body), []byte(body))
	require.NoError(t, err)
	require.Equal(t, KindLocation, batch.Kind)
	require.Len(t, batch.Pings, 7)
	require.Len(t, batch.Dropped, 3)

	for _, dropped := range batch.Dropped {
		require.Equal(t, KindLocation, dropped.Kind)
		require.NotEmpty(t, dropped.Errors)
	}
}

func TestMobileLogValidationDropsInvertedInterval(t *testing.T) {
	body := `{
		"device_id": "phone-1",
		"logs": [
			{"client_record_id": "c-1", "driver_id": "d-1", "log_type": "driving", "start_time": "2025-03-10T08:00:00Z", "end_time": "2025-03-10T06:00:00Z"},
			{"client_record_id": "c-2", "driver_id": "d-1", "log_type": "driving", "start_time": "2025-03-10T08:00:00Z", "end_time": "2025-03-10T10:00:00Z"}
		]
	}`

	n := NewMobileNormalizer()
	batch, err := n.Normalize(mustDecode(t, body), []byte(body))
	require.NoError(t, err)
	require.Len(t, batch.Logs, 1)
	require.Equal(t, "c-2", *batch.Logs[0].ExternalID)
	require.Len(t, batch.Dropped, 1)
}

func TestMobileEmptyBatch(t *testing.T) {
	n := NewMobileNormalizer()
	batch, err := n.Normalize(mustDecode(t, `{"device_id":"phone-1"}`), []byte(`{}`))
	require.NoError(t, err)
	require.True(t, batch.Empty())
	require.Equal(t, KindUnknown, batch.Kind)
}

func TestRegistryResolvesAllProviders(t *testing.T) {
	registry := DefaultRegistry()

	for _, provider := range device.KnownProviders {
		n, err := registry.Get(provider)
		require.NoError(t, err)
		require.Equal(t, provider, n.Provider())
	}

	_, err := registry.Get(device.Provider("unknown"))
	require.Error(t, err)
}

func TestSamsaraViolationNormalization(t *testing.T) {
	body := `{
		"eventType": "alertIncident",
		"data": {
			"deviceId": "gw-3",
			"driverId": "drv-7",
			"alertType": "speeding",
			"severity": "high",
			"description": "82 mph in a 65 zone",
			"happenedAtTime": "2025-03-10T15:04:05Z"
		}
	}`

	n := NewSamsaraNormalizer()
	batch, err := n.Normalize(mustDecode(t, body), []byte(body))
	require.NoError(t, err)
	require.Equal(t, KindViolation, batch.Kind)
	require.Len(t, batch.Events, 1)

	event := batch.Events[0]
	require.Equal(t, compliance.EventSpeeding, event.Type)
	require.Equal(t, compliance.SeverityCritical, event.Severity)
	require.Equal(t, "82 mph in a 65 zone", event.Description)
}

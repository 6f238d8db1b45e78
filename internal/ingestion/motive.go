package ingestion

import (
	"strings"

	"eld-compliance/internal/domain/compliance"
	"eld-compliance/internal/domain/device"
)

// MotiveNormalizer handles Motive-style webhooks: snake_case fields, the
// record under a kind-specific key (log / location / event), and numeric
// driver ids, which the alias probing coerces to strings.
type MotiveNormalizer struct{}

func NewMotiveNormalizer() *MotiveNormalizer {
	return &MotiveNormalizer{}
}

func (n *MotiveNormalizer) Provider() device.Provider {
	return device.ProviderMotive
}

func (n *MotiveNormalizer) ExtractDeviceID(obj payloadObject) *string {
	for _, key := range []string{"log", "location", "event"} {
		if inner := obj.object(key); inner != nil {
			if id := inner.stringField("eld_device_id", "device_id"); id != nil {
				return id
			}
		}
	}
	return obj.stringField("eld_device_id", "device_id")
}

func (n *MotiveNormalizer) Normalize(obj payloadObject, raw []byte) (*Batch, error) {
	batch := &Batch{Kind: KindUnknown, DeliveryID: obj.stringField("delivery_id", "webhook_id")}

	eventType := ""
	if et := obj.stringField("event_type", "action"); et != nil {
		eventType = strings.ToLower(*et)
	}

	switch {
	case strings.Contains(eventType, "hos_log"), strings.Contains(eventType, "log"):
		batch.Kind = KindDutyLog
		item := obj.object("log")
		if item == nil {
			item = obj
		}
		rec := LogRecord{
			ExternalID:       item.stringField("id", "log_id"),
			ProviderDriverID: item.stringField("driver_id"),
			StartTime:        item.timeField("start_time", "started_at"),
			EndTime:          item.timeField("end_time", "ended_at"),
			OdometerStart:    item.floatField("start_odometer", "odometer_start"),
			OdometerEnd:      item.floatField("end_odometer", "odometer_end"),
			StartLocation:    item.stringField("start_location"),
			EndLocation:      item.stringField("end_location"),
			Raw:              raw,
		}
		if status := item.stringField("log_type", "duty_status", "status"); status != nil {
			rec.Status = mapDutyStatus(device.ProviderMotive, *status)
		}
		if certified := item.boolField("certified"); certified != nil {
			rec.Certified = *certified
		}
		batch.Logs = append(batch.Logs, rec)

	case strings.Contains(eventType, "location"), strings.Contains(eventType, "vehicle_position"):
		batch.Kind = KindLocation
		item := obj.object("location")
		if item == nil {
			item = obj
		}
		batch.Pings = append(batch.Pings, PingRecord{
			ProviderDriverID: item.stringField("driver_id"),
			Latitude:         item.floatField("lat", "latitude"),
			Longitude:        item.floatField("lon", "longitude"),
			Speed:            item.floatField("speed"),
			Heading:          item.floatField("bearing", "heading"),
			Odometer:         item.floatField("odometer"),
			RecordedAt:       item.timeField("located_at", "recorded_at", "timestamp"),
		})

	case strings.Contains(eventType, "violation"), strings.Contains(eventType, "event"):
		batch.Kind = KindViolation
		item := obj.object("event")
		if item == nil {
			item = obj
		}
		rec := EventRecord{
			ProviderDriverID: item.stringField("driver_id"),
			Type:             mapMotiveEventType(item.stringField("violation_type", "type")),
			Severity:         mapSeverity(item.stringField("severity")),
			Description:      stringOrEmpty(item.stringField("description", "note")),
			EventTime:        item.timeField("occurred_at", "start_time", "timestamp"),
		}
		if title := item.stringField("title", "violation_type", "type"); title != nil {
			rec.Title = *title
		}
		batch.Events = append(batch.Events, rec)
	}

	filterBatch(batch)
	return batch, nil
}

func mapMotiveEventType(raw *string) compliance.EventType {
	if raw == nil {
		return compliance.EventOther
	}
	switch strings.ToLower(*raw) {
	case "hos_violation", "hours_of_service":
		return compliance.EventHOSViolation
	case "speeding":
		return compliance.EventSpeeding
	case "hard_brake", "hard_braking":
		return compliance.EventHardBrake
	case "device_malfunction", "eld_malfunction":
		return compliance.EventDeviceMalfunction
	}
	return compliance.EventOther
}

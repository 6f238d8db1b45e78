package ingestion

import (
	"strings"

	"eld-compliance/internal/domain/compliance"
	"eld-compliance/internal/domain/device"
)

// SamsaraNormalizer handles Samsara-style webhooks: a camelCase envelope
// with an eventType discriminator and the record nested under data.
type SamsaraNormalizer struct{}

func NewSamsaraNormalizer() *SamsaraNormalizer {
	return &SamsaraNormalizer{}
}

func (n *SamsaraNormalizer) Provider() device.Provider {
	return device.ProviderSamsara
}

func (n *SamsaraNormalizer) ExtractDeviceID(obj payloadObject) *string {
	if data := obj.object("data"); data != nil {
		if id := data.stringField("deviceId", "gatewaySerial", "vehicleId"); id != nil {
			return id
		}
	}
	return obj.stringField("deviceId", "gatewaySerial")
}

func (n *SamsaraNormalizer) Normalize(obj payloadObject, raw []byte) (*Batch, error) {
	batch := &Batch{Kind: KindUnknown, DeliveryID: obj.stringField("eventId", "deliveryId")}

	eventType := ""
	if et := obj.stringField("eventType", "event"); et != nil {
		eventType = strings.ToLower(*et)
	}

	data := obj.object("data")
	if data == nil {
		data = obj
	}

	switch {
	case strings.Contains(eventType, "dutystatus"), strings.Contains(eventType, "hoslog"):
		batch.Kind = KindDutyLog
		rec := LogRecord{
			ExternalID:       data.stringField("logId", "id"),
			ProviderDriverID: data.stringField("driverId", "driver"),
			StartTime:        data.timeField("startTime", "startMs"),
			EndTime:          data.timeField("endTime", "endMs"),
			OdometerStart:    data.floatField("odometerStartMeters", "odometerStart"),
			OdometerEnd:      data.floatField("odometerEndMeters", "odometerEnd"),
			StartLocation:    data.stringField("startLocation"),
			EndLocation:      data.stringField("endLocation"),
			Raw:              raw,
		}
		if status := data.stringField("dutyStatus", "hosStatusType", "status"); status != nil {
			rec.Status = mapDutyStatus(device.ProviderSamsara, *status)
		}
		if certified := data.boolField("certified"); certified != nil {
			rec.Certified = *certified
		}
		batch.Logs = append(batch.Logs, rec)

	case strings.Contains(eventType, "location"), strings.Contains(eventType, "gps"):
		batch.Kind = KindLocation
		loc := data.object("location")
		if loc == nil {
			loc = data
		}
		batch.Pings = append(batch.Pings, PingRecord{
			ProviderDriverID: data.stringField("driverId", "driver"),
			Latitude:         loc.floatField("latitude", "lat"),
			Longitude:        loc.floatField("longitude", "lng", "lon"),
			Speed:            loc.floatField("speedMilesPerHour", "speed"),
			Heading:          loc.floatField("headingDegrees", "heading"),
			Odometer:         data.floatField("odometerMeters", "odometer"),
			RecordedAt:       data.timeField("happenedAtTime", "time", "timestamp"),
		})

	case strings.Contains(eventType, "violation"), strings.Contains(eventType, "alert"):
		batch.Kind = KindViolation
		rec := EventRecord{
			ProviderDriverID: data.stringField("driverId", "driver"),
			Type:             mapSamsaraEventType(data.stringField("violationType", "alertType")),
			Severity:         mapSeverity(data.stringField("severity", "level")),
			Description:      stringOrEmpty(data.stringField("description", "details")),
			EventTime:        data.timeField("happenedAtTime", "time", "timestamp"),
		}
		if title := data.stringField("title", "violationType", "alertType"); title != nil {
			rec.Title = *title
		}
		batch.Events = append(batch.Events, rec)
	}

	filterBatch(batch)
	return batch, nil
}

func mapSamsaraEventType(raw *string) compliance.EventType {
	if raw == nil {
		return compliance.EventOther
	}
	switch strings.ToLower(*raw) {
	case "hosviolation", "hos_violation", "hos":
		return compliance.EventHOSViolation
	case "speeding", "severespeeding":
		return compliance.EventSpeeding
	case "harshbrake", "harshevent", "hard_brake":
		return compliance.EventHardBrake
	case "devicemalfunction", "malfunction":
		return compliance.EventDeviceMalfunction
	}
	return compliance.EventOther
}

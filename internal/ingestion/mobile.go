package ingestion

import (
	"strings"

	"eld-compliance/internal/domain/compliance"
	"eld-compliance/internal/domain/device"
)

// MobileNormalizer handles first-party app batches. The app speaks a
// near-canonical snake_case dialect and always supplies client_record_id,
// so retried offline queues upsert instead of duplicating.
type MobileNormalizer struct{}

func NewMobileNormalizer() *MobileNormalizer {
	return &MobileNormalizer{}
}

func (n *MobileNormalizer) Provider() device.Provider {
	return device.ProviderMobileApp
}

func (n *MobileNormalizer) ExtractDeviceID(obj payloadObject) *string {
	return obj.stringField("device_id")
}

func (n *MobileNormalizer) Normalize(obj payloadObject, raw []byte) (*Batch, error) {
	batch := &Batch{Kind: KindUnknown}

	if items := obj.array("logs"); len(items) > 0 {
		batch.Kind = KindDutyLog
		for _, item := range items {
			rec := LogRecord{
				ExternalID:       item.stringField("client_record_id", "id"),
				ProviderDriverID: item.stringField("driver_id"),
				StartTime:        item.timeField("start_time"),
				EndTime:          item.timeField("end_time"),
				OdometerStart:    item.floatField("odometer_start"),
				OdometerEnd:      item.floatField("odometer_end"),
				StartLocation:    item.stringField("start_location"),
				EndLocation:      item.stringField("end_location"),
				Raw:              raw,
			}
			if status := item.stringField("log_type", "status"); status != nil {
				rec.Status = mapDutyStatus(device.ProviderMobileApp, *status)
			}
			if certified := item.boolField("certified"); certified != nil {
				rec.Certified = *certified
			}
			batch.Logs = append(batch.Logs, rec)
		}
	}

	if items := obj.array("locations"); len(items) > 0 {
		if batch.Kind == KindUnknown {
			batch.Kind = KindLocation
		}
		for _, item := range items {
			batch.Pings = append(batch.Pings, PingRecord{
				ProviderDriverID: item.stringField("driver_id"),
				Latitude:         item.floatField("latitude", "lat"),
				Longitude:        item.floatField("longitude", "lng"),
				Speed:            item.floatField("speed"),
				Heading:          item.floatField("heading"),
				Odometer:         item.floatField("odometer"),
				RecordedAt:       item.timeField("recorded_at", "timestamp"),
			})
		}
	}

	if items := obj.array("events"); len(items) > 0 {
		if batch.Kind == KindUnknown {
			batch.Kind = KindViolation
		}
		for _, item := range items {
			rec := EventRecord{
				ProviderDriverID: item.stringField("driver_id"),
				Type:             mapMobileEventType(item.stringField("event_type")),
				Severity:         mapSeverity(item.stringField("severity")),
				Description:      stringOrEmpty(item.stringField("description")),
				EventTime:        item.timeField("event_time", "timestamp"),
			}
			if title := item.stringField("title"); title != nil {
				rec.Title = *title
			}
			batch.Events = append(batch.Events, rec)
		}
	}

	filterBatch(batch)
	return batch, nil
}

func mapMobileEventType(raw *string) compliance.EventType {
	if raw == nil {
		return compliance.EventOther
	}
	t := compliance.EventType(strings.ToLower(*raw))
	if t.Valid() {
		return t
	}
	return compliance.EventOther
}

// mapSeverity translates provider severity literals; anything
// unrecognized lands on warning, the middle of the scale.
func mapSeverity(raw *string) compliance.Severity {
	if raw == nil {
		return compliance.SeverityWarning
	}
	switch strings.ToLower(*raw) {
	case "info", "low", "minor":
		return compliance.SeverityInfo
	case "warning", "medium", "moderate":
		return compliance.SeverityWarning
	case "critical", "high", "severe":
		return compliance.SeverityCritical
	}
	return compliance.SeverityWarning
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

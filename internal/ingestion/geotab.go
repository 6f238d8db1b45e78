package ingestion

import (
	"strings"

	"eld-compliance/internal/domain/compliance"
	"eld-compliance/internal/domain/device"
)

// GeotabNormalizer handles Geotab-style webhooks: typed records with
// nested device/driver objects, duty statuses as letter codes (D, ON,
// OFF, SB) and date ranges as fromDate/toDate. Log payloads may carry
// multiple records under logs.
type GeotabNormalizer struct{}

func NewGeotabNormalizer() *GeotabNormalizer {
	return &GeotabNormalizer{}
}

func (n *GeotabNormalizer) Provider() device.Provider {
	return device.ProviderGeotab
}

func (n *GeotabNormalizer) ExtractDeviceID(obj payloadObject) *string {
	if dev := obj.object("device"); dev != nil {
		if id := dev.stringField("id", "serialNumber"); id != nil {
			return id
		}
	}
	return obj.stringField("deviceId")
}

func (n *GeotabNormalizer) Normalize(obj payloadObject, raw []byte) (*Batch, error) {
	batch := &Batch{Kind: KindUnknown, DeliveryID: obj.stringField("id", "version")}

	recordType := ""
	if rt := obj.stringField("type", "recordType"); rt != nil {
		recordType = strings.ToLower(*rt)
	}

	switch recordType {
	case "dutystatuslog", "hoslog":
		batch.Kind = KindDutyLog
		items := obj.array("logs")
		if len(items) == 0 {
			items = []payloadObject{obj}
		}
		for _, item := range items {
			rec := LogRecord{
				ExternalID:    item.stringField("id"),
				StartTime:     item.timeField("fromDate", "dateTime"),
				EndTime:       item.timeField("toDate"),
				OdometerStart: item.floatField("odometerFrom", "odometer"),
				OdometerEnd:   item.floatField("odometerTo"),
				StartLocation: item.stringField("location"),
				Raw:           raw,
			}
			if driver := item.object("driver"); driver != nil {
				rec.ProviderDriverID = driver.stringField("id")
			} else {
				rec.ProviderDriverID = item.stringField("driverId")
			}
			if status := item.stringField("status", "dutyStatus"); status != nil {
				rec.Status = mapDutyStatus(device.ProviderGeotab, *status)
			}
			if verified := item.boolField("verified"); verified != nil {
				rec.Certified = *verified
			}
			batch.Logs = append(batch.Logs, rec)
		}

	case "logrecord", "gpsrecord":
		batch.Kind = KindLocation
		items := obj.array("records")
		if len(items) == 0 {
			items = []payloadObject{obj}
		}
		for _, item := range items {
			ping := PingRecord{
				Latitude:   item.floatField("latitude", "y"),
				Longitude:  item.floatField("longitude", "x"),
				Speed:      item.floatField("speed"),
				Heading:    item.floatField("bearing", "heading"),
				Odometer:   item.floatField("odometer"),
				RecordedAt: item.timeField("dateTime", "timestamp"),
			}
			if driver := item.object("driver"); driver != nil {
				ping.ProviderDriverID = driver.stringField("id")
			}
			batch.Pings = append(batch.Pings, ping)
		}

	case "exceptionevent", "exception":
		batch.Kind = KindViolation
		rec := EventRecord{
			Type:        mapGeotabRule(obj.stringField("rule", "ruleName")),
			Severity:    mapSeverity(obj.stringField("severity")),
			Description: stringOrEmpty(obj.stringField("details", "description")),
			EventTime:   obj.timeField("activeFrom", "dateTime"),
		}
		if driver := obj.object("driver"); driver != nil {
			rec.ProviderDriverID = driver.stringField("id")
		}
		if title := obj.stringField("ruleName", "rule"); title != nil {
			rec.Title = *title
		}
		batch.Events = append(batch.Events, rec)
	}

	filterBatch(batch)
	return batch, nil
}

func mapGeotabRule(raw *string) compliance.EventType {
	if raw == nil {
		return compliance.EventOther
	}
	rule := strings.ToLower(*raw)
	switch {
	case strings.Contains(rule, "hos"), strings.Contains(rule, "availability"):
		return compliance.EventHOSViolation
	case strings.Contains(rule, "speed"):
		return compliance.EventSpeeding
	case strings.Contains(rule, "brak"):
		return compliance.EventHardBrake
	case strings.Contains(rule, "malfunction"), strings.Contains(rule, "diagnostic"):
		return compliance.EventDeviceMalfunction
	}
	return compliance.EventOther
}

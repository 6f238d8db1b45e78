package ingestion

import "fmt"

// FieldError is one per-field validation failure on a canonical record.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("validation error [%s]: %s", e.Field, e.Message)
}

func validateLog(rec *LogRecord) []FieldError {
	var errs []FieldError

	if rec.StartTime == nil {
		errs = append(errs, FieldError{Field: "start_time", Message: "start time is required"})
	}
	if rec.EndTime != nil && rec.StartTime != nil && rec.EndTime.Before(*rec.StartTime) {
		errs = append(errs, FieldError{Field: "end_time", Message: "end time precedes start time"})
	}
	if !rec.Status.Valid() {
		errs = append(errs, FieldError{Field: "status", Message: "unknown duty status"})
	}

	return errs
}

func validatePing(rec *PingRecord) []FieldError {
	var errs []FieldError

	if rec.Latitude == nil || rec.Longitude == nil {
		errs = append(errs, FieldError{Field: "coordinates", Message: "latitude and longitude are required"})
	} else {
		if *rec.Latitude < -90 || *rec.Latitude > 90 {
			errs = append(errs, FieldError{Field: "latitude", Message: "latitude must be between -90 and 90"})
		}
		if *rec.Longitude < -180 || *rec.Longitude > 180 {
			errs = append(errs, FieldError{Field: "longitude", Message: "longitude must be between -180 and 180"})
		}
	}
	if rec.RecordedAt == nil {
		errs = append(errs, FieldError{Field: "timestamp", Message: "timestamp is required"})
	}
	if rec.Speed != nil && *rec.Speed < 0 {
		errs = append(errs, FieldError{Field: "speed", Message: "speed must be non-negative"})
	}

	return errs
}

func validateEvent(rec *EventRecord) []FieldError {
	var errs []FieldError

	if !rec.Type.Valid() {
		errs = append(errs, FieldError{Field: "event_type", Message: "unknown event type"})
	}
	if !rec.Severity.Valid() {
		errs = append(errs, FieldError{Field: "severity", Message: "unknown severity"})
	}
	if rec.EventTime == nil {
		errs = append(errs, FieldError{Field: "event_time", Message: "event time is required"})
	}
	if rec.Title == "" {
		errs = append(errs, FieldError{Field: "title", Message: "title is required"})
	}

	return errs
}

// filterBatch drops individually invalid records, keeping the rest of the
// batch intact.
func filterBatch(b *Batch) {
	logs := b.Logs[:0:0]
	for i := range b.Logs {
		if errs := validateLog(&b.Logs[i]); len(errs) > 0 {
			b.Dropped = append(b.Dropped, DroppedRecord{Index: i, Kind: KindDutyLog, Errors: errs})
			continue
		}
		logs = append(logs, b.Logs[i])
	}
	b.Logs = logs

	pings := b.Pings[:0:0]
	for i := range b.Pings {
		if errs := validatePing(&b.Pings[i]); len(errs) > 0 {
			b.Dropped = append(b.Dropped, DroppedRecord{Index: i, Kind: KindLocation, Errors: errs})
			continue
		}
		pings = append(pings, b.Pings[i])
	}
	b.Pings = pings

	events := b.Events[:0:0]
	for i := range b.Events {
		if errs := validateEvent(&b.Events[i]); len(errs) > 0 {
			b.Dropped = append(b.Dropped, DroppedRecord{Index: i, Kind: KindViolation, Errors: errs})
			continue
		}
		events = append(events, b.Events[i])
	}
	b.Events = events
}

package ingestion

import (
	"encoding/json"
	"strconv"
	"time"
)

// payloadObject is a decoded provider payload. Providers disagree on field
// names, nesting and casing for the same concept, so extraction probes a
// small ordered set of known aliases and takes the first present non-null
// value. A genuinely absent field stays nil; nothing is ever substituted
// with a plausible-looking default.
type payloadObject map[string]interface{}

func decodePayload(body []byte) (payloadObject, error) {
	var obj payloadObject
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, err
	}
	return obj, nil
}

func (o payloadObject) object(key string) payloadObject {
	if v, ok := o[key]; ok {
		if m, ok := v.(map[string]interface{}); ok {
			return payloadObject(m)
		}
	}
	return nil
}

func (o payloadObject) array(key string) []payloadObject {
	v, ok := o[key]
	if !ok {
		return nil
	}
	raw, ok := v.([]interface{})
	if !ok {
		return nil
	}
	items := make([]payloadObject, 0, len(raw))
	for _, item := range raw {
		if m, ok := item.(map[string]interface{}); ok {
			items = append(items, payloadObject(m))
		}
	}
	return items
}

// stringField probes aliases in order and returns the first present,
// non-null value. Numeric ids are coerced to strings so that provider
// driver ids stay comparable across payload variants.
func (o payloadObject) stringField(aliases ...string) *string {
	for _, key := range aliases {
		v, ok := o[key]
		if !ok || v == nil {
			continue
		}
		switch val := v.(type) {
		case string:
			if val == "" {
				continue
			}
			s := val
			return &s
		case float64:
			s := strconv.FormatFloat(val, 'f', -1, 64)
			return &s
		}
	}
	return nil
}

func (o payloadObject) floatField(aliases ...string) *float64 {
	for _, key := range aliases {
		v, ok := o[key]
		if !ok || v == nil {
			continue
		}
		switch val := v.(type) {
		case float64:
			f := val
			return &f
		case string:
			if f, err := strconv.ParseFloat(val, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

func (o payloadObject) boolField(aliases ...string) *bool {
	for _, key := range aliases {
		if v, ok := o[key]; ok && v != nil {
			if b, ok := v.(bool); ok {
				val := b
				return &val
			}
		}
	}
	return nil
}

// timeField accepts RFC 3339 strings and unix epoch numbers (seconds or
// milliseconds), the two formats seen across vendor payloads.
func (o payloadObject) timeField(aliases ...string) *time.Time {
	for _, key := range aliases {
		v, ok := o[key]
		if !ok || v == nil {
			continue
		}
		switch val := v.(type) {
		case string:
			if t, err := time.Parse(time.RFC3339, val); err == nil {
				return &t
			}
		case float64:
			// Heuristic: values past the year 33658 in seconds are
			// millisecond timestamps.
			sec := int64(val)
			if sec > 1e12 {
				t := time.UnixMilli(sec).UTC()
				return &t
			}
			t := time.Unix(sec, 0).UTC()
			return &t
		}
	}
	return nil
}

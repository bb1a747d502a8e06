package clients

import (
	"fmt"
	"strconv"
	"strings"
)

// Suppliers name the same logical field inconsistently across payloads.
// ReadField tries candidate keys in priority order, matching exact keys
// first and then case-insensitively.
func ReadField(record map[string]interface{}, aliases ...string) (interface{}, bool) {
	for _, alias := range aliases {
		if v, ok := record[alias]; ok && v != nil {
			return v, true
		}
	}
	for _, alias := range aliases {
		for k, v := range record {
			if v != nil && strings.EqualFold(k, alias) {
				return v, true
			}
		}
	}
	return nil, false
}

// ReadString resolves a field and coerces it to a trimmed string
func ReadString(record map[string]interface{}, aliases ...string) string {
	v, ok := ReadField(record, aliases...)
	if !ok {
		return ""
	}
	return CoerceString(v)
}

// CoerceString renders a scalar payload value as a string
func CoerceString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		// JSON numbers decode as float64; render integers without a fraction
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", t))
	}
}

// CoerceInt renders a scalar payload value as an int, best effort
func CoerceInt(v interface{}) int {
	switch t := v.(type) {
	case float64:
		return int(t)
	case int:
		return t
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			f, ferr := strconv.ParseFloat(strings.TrimSpace(t), 64)
			if ferr != nil {
				return 0
			}
			return int(f)
		}
		return n
	default:
		return 0
	}
}

// ToArray normalizes a loose payload value for iteration. The XML/JSON
// object conversions used by several suppliers collapse single-element
// arrays into a bare object; every parser passes array-valued fields through
// here before ranging over them.
func ToArray(v interface{}) []interface{} {
	switch t := v.(type) {
	case nil:
		return nil
	case []interface{}:
		return t
	case []map[string]interface{}:
		out := make([]interface{}, len(t))
		for i := range t {
			out[i] = t[i]
		}
		return out
	default:
		return []interface{}{v}
	}
}

// AsObject casts a loose payload value to a string-keyed map, or nil
func AsObject(v interface{}) map[string]interface{} {
	if m, ok := v.(map[string]interface{}); ok {
		return m
	}
	return nil
}

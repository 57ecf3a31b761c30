package store

import (
	"fmt"
	"strconv"
	"strings"
)

// Matches reports whether rec satisfies every predicate in query.
// Each predicate is a case-insensitive substring test against the field's
// string form; array fields match when any element matches. A missing or
// null field never matches.
func Matches(rec Record, query map[string]string) bool {
	for field, want := range query {
		v, ok := rec[field]
		if !ok || v == nil {
			return false
		}
		needle := strings.ToLower(want)
		switch val := v.(type) {
		case []any:
			hit := false
			for _, el := range val {
				if strings.Contains(strings.ToLower(stringify(el)), needle) {
					hit = true
					break
				}
			}
			if !hit {
				return false
			}
		default:
			if !strings.Contains(strings.ToLower(stringify(v)), needle) {
				return false
			}
		}
	}
	return true
}

func stringify(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		// JSON numbers decode as float64; keep integral values unpadded.
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func filterRecords(recs []Record, query map[string]string) []Record {
	out := make([]Record, 0, len(recs))
	for _, rec := range recs {
		if Matches(rec, query) {
			out = append(out, rec)
		}
	}
	return out
}

package repository

import (
	"time"

	"github.com/surrealdb/surrealdb.go/pkg/models"
)

// extractQueryResults unwraps the records of the first statement in a
// SurrealDB response
func extractQueryResults(result []interface{}) []map[string]interface{} {
	if len(result) == 0 {
		return nil
	}

	rows, ok := result[0].([]interface{})
	if resp, isResp := result[0].(map[string]interface{}); isResp {
		rows, ok = resp["result"].([]interface{})
	}
	if !ok {
		return nil
	}

	records := make([]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		if m, ok := row.(map[string]interface{}); ok {
			records = append(records, m)
		}
	}
	return records
}

// extractCount reads the count field of a `GROUP ALL` count query
func extractCount(result []interface{}) int {
	records := extractQueryResults(result)
	if len(records) == 0 {
		return 0
	}
	return getInt(records[0], "count")
}

// getString extracts a string value from a map
func getString(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// getInt extracts an int value from a map
func getInt(m map[string]interface{}, key string) int {
	switch v := m[key].(type) {
	case float64:
		return int(v)
	case float32:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	case uint64:
		return int(v)
	}
	return 0
}

// getTime extracts a time value from a map
func getTime(m map[string]interface{}, key string) time.Time {
	switch v := m[key].(type) {
	case time.Time:
		return v.UTC()
	case string:
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t.UTC()
		}
	case models.CustomDateTime:
		return v.Time.UTC()
	case *models.CustomDateTime:
		if v != nil {
			return v.Time.UTC()
		}
	}
	return time.Time{}
}

package graph

// Row value accessors. Neo4j returns integers as int64 and floats as
// float64; these tolerate either plus missing keys.

func rowString(row map[string]any, key string) string {
	if val, ok := row[key]; ok && val != nil {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

func rowInt64(row map[string]any, key string) int64 {
	val, ok := row[key]
	if !ok || val == nil {
		return 0
	}
	switch v := val.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}

func rowFloat64(row map[string]any, key string) float64 {
	val, ok := row[key]
	if !ok || val == nil {
		return 0.0
	}
	switch v := val.(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	}
	return 0.0
}

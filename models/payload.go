package models

// Payload values come back from the index as loosely typed data, and older
// points may predate newer fields, so reads go through defensive accessors
// with explicit fallbacks.

// PayloadString returns the string stored at key, or "" when the key is
// absent or holds a different type.
func PayloadString(payload map[string]interface{}, key string) string {
	if s, ok := payload[key].(string); ok {
		return s
	}
	return ""
}

// PayloadInt returns the integer stored at key, or fallback when the key is
// absent or holds a different type. Numeric payloads may decode as int64 or
// float64 depending on the transport.
func PayloadInt(payload map[string]interface{}, key string, fallback int) int {
	switch v := payload[key].(type) {
	case int64:
		return int(v)
	case int:
		return v
	case float64:
		return int(v)
	default:
		return fallback
	}
}

// PayloadBool returns the boolean stored at key, or false when the key is
// absent or holds a different type.
func PayloadBool(payload map[string]interface{}, key string) bool {
	if b, ok := payload[key].(bool); ok {
		return b
	}
	return false
}

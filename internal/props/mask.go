package props

import "strings"

// maskedValue replaces sensitive values in diagnostic output. The key
// itself is always logged; only the value is hidden.
const maskedValue = "******"

var sensitivePatterns = []string{"password", "secret", "key", "salt"}

// IsSensitiveKey reports whether a property key looks like it carries a
// credential and must have its value masked in logs.
func IsSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, p := range sensitivePatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// MaskValue returns the value safe for logging against the given key.
func MaskValue(key, value string) string {
	if value == "" {
		return value
	}
	if IsSensitiveKey(key) {
		return maskedValue
	}
	return value
}

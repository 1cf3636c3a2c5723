// Package logger provides structured logging for authclient.
package logger

import "strings"

// Sensitive key patterns that should be redacted.
var sensitiveKeyPatterns = []string{
	"password",
	"secret",
	"token",
	"authorization",
	"credential",
}

// bearerPrefix marks an Authorization header value.
const bearerPrefix = "Bearer "

// redactedValue is the placeholder for redacted sensitive data.
const redactedValue = "***REDACTED***"

// redact returns the value to log for key.
func redact(key string, value any) any {
	s, ok := value.(string)
	if !ok {
		return value
	}
	if strings.HasPrefix(s, bearerPrefix) {
		return bearerPrefix + redactedValue
	}
	if s != "" && IsSensitiveKey(key) {
		return redactedValue
	}
	return value
}

// RedactString masks a credential for display, keeping a short hint
// at both ends: first 3 chars + "..." + last 3 chars.
func RedactString(value string) string {
	if len(value) <= 12 {
		return "***"
	}
	return value[:3] + "..." + value[len(value)-3:]
}

// IsSensitiveKey checks if a key name suggests sensitive content.
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}

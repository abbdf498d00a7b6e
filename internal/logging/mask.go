package logging

import "strings"

const maskChar = "*"

// sensitiveKeywords mark log keys whose values must not be written.
var sensitiveKeywords = []string{
	"token",
	"secret",
	"password",
	"authorization",
	"bearer",
	"credential",
}

// IsSensitiveField reports whether a log key names sensitive data.
func IsSensitiveField(fieldName string) bool {
	lower := strings.ToLower(fieldName)
	for _, kw := range sensitiveKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// MaskValue masks a value completely, keeping at most 8 mask characters.
func MaskValue(value string) string {
	if value == "" {
		return ""
	}
	return strings.Repeat(maskChar, min(len(value), 8))
}

// MaskArgs masks sensitive values in key-value logging arguments.
func MaskArgs(args []any) []any {
	if len(args) < 2 {
		return args
	}

	result := make([]any, len(args))
	copy(result, args)

	for i := 0; i < len(result)-1; i += 2 {
		key, ok := result[i].(string)
		if !ok || !IsSensitiveField(key) {
			continue
		}
		if s, ok := result[i+1].(string); ok {
			result[i+1] = MaskValue(s)
		} else {
			result[i+1] = strings.Repeat(maskChar, 8)
		}
	}
	return result
}

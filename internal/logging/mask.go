package logging

import "strings"

// secretKeyPatterns contains substrings that indicate a key likely holds
// a secret.
var secretKeyPatterns = []string{
	"TOKEN",
	"KEY",
	"SECRET",
	"PASSWORD",
	"AUTH",
	"CREDENTIAL",
}

// SecretKey reports whether the key name suggests a secret value.
func SecretKey(key string) bool {
	upper := strings.ToUpper(key)
	for _, pattern := range secretKeyPatterns {
		if strings.Contains(upper, pattern) {
			return true
		}
	}
	return false
}

// MaskValue obscures a secret, keeping the last 4 characters when the
// value is long enough to stay identifiable.
func MaskValue(value string) string {
	if len(value) > 4 {
		return "****" + value[len(value)-4:]
	}
	return "********"
}

// MaskEnv returns a copy of env with secret-looking values masked.
// If showSecrets is true, the original map is returned unchanged.
func MaskEnv(env map[string]string, showSecrets bool) map[string]string {
	if env == nil || showSecrets {
		return env
	}
	masked := make(map[string]string, len(env))
	for k, v := range env {
		if SecretKey(k) {
			masked[k] = MaskValue(v)
		} else {
			masked[k] = v
		}
	}
	return masked
}

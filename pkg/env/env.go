// Package env reads plain environment variables for the few settings that
// live outside the STOCKROOM_-prefixed config (PORT, LOG_FORMAT).
package env

import "os"

// Get reads key from the environment, falling back when unset or empty.
func Get(key, fallback string) string {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return fallback
	}
	return val
}

package util

import (
	"time"
)

// DateKey formats a timestamp as the YYYY-MM-DD key used throughout the
// schedule and identity caches.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

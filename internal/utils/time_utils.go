package utils

import (
	"log"
	"time"
)

var displayLoc = time.UTC

// SetLocation sets the display timezone from an IANA name, UTC when empty
func SetLocation(name string) *time.Location {
	if name == "" {
		displayLoc = time.UTC
		return displayLoc
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		// In production docker, ensure tzdata is installed
		log.Printf("[WARN] Unknown timezone %q, falling back to UTC: %v", name, err)
		loc = time.UTC
	}
	displayLoc = loc
	return displayLoc
}

// GetLocation returns the display *time.Location
func GetLocation() *time.Location {
	return displayLoc
}

// FormatTimestamp renders t in the display timezone
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.In(displayLoc).Format("2006-01-02 15:04:05 MST")
}

// utils/dates.go - Institution time zone handling
package utils

import (
	"log"
	"os"
	"sync"
	"time"
)

var (
	locationOnce sync.Once
	location     *time.Location
)

// InstitutionLocation returns the canonical time zone for all deadline
// arithmetic. Threshold matching must be deterministic regardless of which
// client or worker evaluates it, so every calendar-date computation uses
// this single zone (INSTITUTION_TZ, default Asia/Bangkok).
func InstitutionLocation() *time.Location {
	locationOnce.Do(func() {
		name := os.Getenv("INSTITUTION_TZ")
		if name == "" {
			name = "Asia/Bangkok"
		}
		loc, err := time.LoadLocation(name)
		if err != nil {
			log.Printf("Warning: invalid INSTITUTION_TZ %q, falling back to UTC: %v", name, err)
			loc = time.UTC
		}
		location = loc
	})
	return location
}

// Now returns the current instant in the institution time zone.
func Now() time.Time {
	return time.Now().In(InstitutionLocation())
}

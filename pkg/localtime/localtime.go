// Package localtime renders wall-clock instants for chat messages.
package localtime

import (
	"time"
	_ "time/tzdata"
)

const (
	// Zone is the IANA name of the zone every displayed time is rendered in.
	Zone = "Asia/Kolkata"

	// Layout is a 12-hour clock with am/pm marker and zone abbreviation,
	// e.g. "09:05 PM IST on March 04, 2025".
	Layout = "03:04 PM MST on January 02, 2006"
)

var location = mustLoad(Zone)

// Format renders t in the display zone.
func Format(t time.Time) string {
	return t.In(location).Format(Layout)
}

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		// tzdata is embedded, so only a misspelled name gets here
		panic(err)
	}
	return loc
}

package localtime

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{
			name: "evening",
			in:   time.Date(2025, time.March, 4, 15, 35, 0, 0, time.UTC),
			want: "09:05 PM IST on March 04, 2025",
		},
		{
			name: "morning crosses date line",
			in:   time.Date(2024, time.December, 31, 20, 0, 0, 0, time.UTC),
			want: "01:30 AM IST on January 01, 2025",
		},
		{
			name: "input zone is irrelevant",
			in:   time.Date(2025, time.March, 4, 10, 35, 0, 0, time.FixedZone("EST", -5*3600)),
			want: "09:05 PM IST on March 04, 2025",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.in))
		})
	}
}

func TestNow(t *testing.T) {
	re := regexp.MustCompile(`^\d{2}:\d{2} (AM|PM) IST on [A-Z][a-z]+ \d{2}, \d{4}$`)
	assert.Regexp(t, re, Format(time.Now()))
}

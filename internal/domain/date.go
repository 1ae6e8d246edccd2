package domain

import (
	"strings"
	"time"
)

const (
	isoDateLayout   = "2006-01-02"
	localDateLayout = "2.1.2006"
)

// NormalizeLocalDate converts a "DD.MM.YYYY" date to "YYYY-MM-DD".
// Input that does not parse is returned trimmed but otherwise unchanged.
func NormalizeLocalDate(raw string) string {
	raw = strings.TrimSpace(raw)
	t, err := time.Parse(localDateLayout, raw)
	if err != nil {
		return raw
	}
	return t.Format(isoDateLayout)
}

// ParseISODate parses a "YYYY-MM-DD" date. Anything else is reported as unknown.
func ParseISODate(s string) (time.Time, bool) {
	if len(s) != len(isoDateLayout) {
		return time.Time{}, false
	}
	t, err := time.Parse(isoDateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func FormatISODate(t time.Time) string {
	return t.Format(isoDateLayout)
}

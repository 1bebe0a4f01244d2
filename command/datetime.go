package command

import "time"

// dateTimeLayout is the fixed 12-digit yyMMddHHmmss wire form, UTC.
const dateTimeLayout = "060102150405"

// parseDateTime converts the wire's 12-digit form to UTC. It returns the
// zero Time and false if the bytes are not a valid date_time field.
func parseDateTime(b []byte) (time.Time, bool) {
	t, err := time.ParseInLocation(dateTimeLayout, string(b), time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// formatDateTime renders t in the wire's 12-digit yyMMddHHmmss form, UTC.
func formatDateTime(t time.Time) []byte {
	return []byte(t.UTC().Format(dateTimeLayout))
}

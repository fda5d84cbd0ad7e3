package changelog

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// resolveTimezone interprets the release_date_timezone config value: "local",
// "UTC" (the empty string is treated the same as "local"), a numeric offset
// like "+02:00", or an IANA zone name such as "America/New_York".
func resolveTimezone(tz string) (*time.Location, error) {
	switch strings.ToLower(strings.TrimSpace(tz)) {
	case "", "local":
		return time.Local, nil
	case "utc":
		return time.UTC, nil
	}

	if loc, ok := parseNumericOffset(tz); ok {
		return loc, nil
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", tz, err)
	}
	return loc, nil
}

func parseNumericOffset(tz string) (*time.Location, bool) {
	if len(tz) < 3 || (tz[0] != '+' && tz[0] != '-') {
		return nil, false
	}
	parts := strings.SplitN(tz[1:], ":", 2)
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil, false
	}
	minutes := 0
	if len(parts) == 2 {
		minutes, err = strconv.Atoi(parts[1])
		if err != nil {
			return nil, false
		}
	}
	offset := hours*3600 + minutes*60
	if tz[0] == '-' {
		offset = -offset
	}
	return time.FixedZone(tz, offset), true
}

// strftimeDirectives maps the subset of strftime conversion specifiers the
// release date format supports onto Go's reference-time layout tokens.
var strftimeDirectives = map[byte]string{
	'Y': "2006",
	'y': "06",
	'm': "01",
	'd': "02",
	'H': "15",
	'M': "04",
	'S': "05",
	'B': "January",
	'b': "Jan",
	'A': "Monday",
	'a': "Mon",
	'p': "PM",
	'Z': "MST",
	'z': "-0700",
}

// formatDate renders t per a strftime-like format string translated to Go's
// layout syntax, in the given timezone.
func formatDate(t time.Time, format, tz string) (string, error) {
	loc, err := resolveTimezone(tz)
	if err != nil {
		return "", err
	}

	var layout strings.Builder
	for i := 0; i < len(format); i++ {
		if format[i] != '%' || i == len(format)-1 {
			layout.WriteByte(format[i])
			continue
		}
		i++
		if tok, ok := strftimeDirectives[format[i]]; ok {
			layout.WriteString(tok)
		} else if format[i] == '%' {
			layout.WriteByte('%')
		} else {
			layout.WriteByte('%')
			layout.WriteByte(format[i])
		}
	}

	return t.In(loc).Format(layout.String()), nil
}

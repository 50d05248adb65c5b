package decode

import (
	"strings"
	"time"
)

// birthdayLayouts covers the date shapes providers put in free-text birthday
// fields. Ordered most to least specific; four-digit-year forms first.
var birthdayLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006.01.02",
	"01/02/2006",
	"02.01.2006",
	"January 2, 2006",
	"January 2 2006",
	"2 January 2006",
	"2006-01-02T15:04:05Z07:00",
}

// Birthday extracts (year, month, day) integer components from a free-text
// birthday field using calendar-aware parsing. Invalid input never produces
// an error; components that cannot be determined are zero.
func Birthday(s string) (year, month, day int) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, 0
	}

	for _, layout := range birthdayLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		return t.Year(), int(t.Month()), t.Day()
	}

	// Some providers omit the year ("05-14" or "May 14"). Parse as
	// month/day only; time.Parse defaults the year to zero.
	for _, layout := range []string{"01-02", "01/02", "January 2"} {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		return 0, int(t.Month()), t.Day()
	}

	return 0, 0, 0
}

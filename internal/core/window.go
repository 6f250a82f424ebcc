package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// maxWindowDays is the largest day count a time.Duration can hold.
const maxWindowDays = math.MaxInt64 / int64(24*time.Hour)

// ParseWindow parses a trailing-window length. It accepts whole days ("7d")
// in addition to anything time.ParseDuration understands ("90m", "1h30m").
// The result is always positive.
func ParseWindow(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("window must not be empty")
	}

	var d time.Duration
	if strings.HasSuffix(s, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil {
			return 0, fmt.Errorf("invalid day window %q", s)
		}
		if days <= 0 {
			return 0, fmt.Errorf("window %q must be positive", s)
		}
		if int64(days) > maxWindowDays {
			return 0, fmt.Errorf("window %q exceeds the maximum of %d days", s, maxWindowDays)
		}
		d = time.Duration(days) * 24 * time.Hour
	} else {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return 0, fmt.Errorf("unsupported window format %q (use e.g. 30m, 1h, 7d)", s)
		}
		d = parsed
	}

	if d <= 0 {
		return 0, fmt.Errorf("window %q must be positive", s)
	}
	return d, nil
}

package dispatch

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultArrival is used when an arrival estimate cannot be parsed.
const DefaultArrival = 30 * time.Minute

var (
	hoursRe   = regexp.MustCompile(`(?:^|[^\d.,])(\d+)\s*(?:hours?|hrs?|h)\b`)
	minutesRe = regexp.MustCompile(`(?:^|[^\d.,])(\d+)\s*(?:minutes?|mins?|m)\b`)
	bareRe    = regexp.MustCompile(`^\d+$`)
	// Fractional amounts are not supported and fall back to the default.
	decimalRe = regexp.MustCompile(`\d[.,]\d`)
)

// ParseArrival converts texts such as "2 hours 30 minutes", "1 hour",
// "45 min" or a bare number of minutes into a duration. It reports false and
// returns fallback when nothing usable is found.
func ParseArrival(text string, fallback time.Duration) (time.Duration, bool) {
	s := strings.ToLower(strings.TrimSpace(text))
	if s == "" || decimalRe.MatchString(s) {
		return fallback, false
	}
	if bareRe.MatchString(s) {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return fallback, false
		}
		return time.Duration(n) * time.Minute, true
	}
	var total time.Duration
	found := false
	if m := hoursRe.FindStringSubmatch(s); m != nil {
		n, _ := strconv.Atoi(m[1])
		total += time.Duration(n) * time.Hour
		found = true
	}
	if m := minutesRe.FindStringSubmatch(s); m != nil {
		n, _ := strconv.Atoi(m[1])
		total += time.Duration(n) * time.Minute
		found = true
	}
	if !found || total <= 0 {
		return fallback, false
	}
	return total, true
}

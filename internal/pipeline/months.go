package pipeline

import (
	"log/slog"
	"sort"
	"strconv"
	"strings"
)

// ParseMonths parses a month specification like "4", "1-3" or "1, 2, 6"
// into a sorted list of month numbers. A malformed specification falls
// back to month 1 with a warning; out-of-range values are dropped.
func ParseMonths(input string, logger *slog.Logger) []int {
	if logger == nil {
		logger = slog.Default()
	}

	s := strings.TrimSpace(input)
	var months []int
	ok := true

	switch {
	case strings.Contains(s, "-"):
		parts := strings.SplitN(s, "-", 2)
		start, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
		end, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err1 != nil || err2 != nil {
			ok = false
			break
		}
		for m := start; m <= end; m++ {
			months = append(months, m)
		}
	case strings.Contains(s, ","):
		for _, part := range strings.Split(s, ",") {
			m, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				ok = false
				break
			}
			months = append(months, m)
		}
	default:
		m, err := strconv.Atoi(s)
		if err != nil {
			ok = false
			break
		}
		months = append(months, m)
	}

	if !ok {
		logger.Warn("Invalid month specification, defaulting to month 1",
			slog.String("input", input))
		months = []int{1}
	}

	var valid []int
	for _, m := range months {
		if m >= 1 && m <= 12 {
			valid = append(valid, m)
		}
	}
	sort.Ints(valid)
	return valid
}

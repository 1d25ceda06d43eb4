// Package timespec parses the compact age specifications accepted by the
// cache prune command, such as "30s", "5m", "2h", and "400d".
package timespec

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var specPattern = regexp.MustCompile(`^(\d+)([smhd])$`)

// Parse converts a time specification into a duration. The format is a
// positive integer followed by one of the units s, m, h, or d.
func Parse(spec string) (time.Duration, error) {
	if spec == "" {
		return 0, fmt.Errorf("time specification cannot be empty")
	}

	match := specPattern.FindStringSubmatch(strings.ToLower(spec))
	if match == nil {
		return 0, fmt.Errorf("invalid time specification %q: expected <positive integer><unit> where unit is s, m, h, or d", spec)
	}

	amount, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, fmt.Errorf("invalid time amount %q: %w", match[1], err)
	}
	if amount <= 0 {
		return 0, fmt.Errorf("time amount must be positive, got %d", amount)
	}

	switch match[2] {
	case "s":
		return time.Duration(amount) * time.Second, nil
	case "m":
		return time.Duration(amount) * time.Minute, nil
	case "h":
		return time.Duration(amount) * time.Hour, nil
	case "d":
		return time.Duration(amount) * 24 * time.Hour, nil
	}

	// Unreachable: the pattern only admits the four units above.
	return 0, fmt.Errorf("unsupported time unit %q", match[2])
}

package pitcher

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrNotFound       = errors.New("pitcher not found")
	ErrInvalidQuery   = errors.New("invalid pitcher query")
	ErrUnparsableStat = errors.New("unparsable stat value")
)

func ValidateQuery(query Query) error {
	query = query.Normalize()
	if query.Name == "" {
		return fmt.Errorf("%w: pitcher name is required", ErrInvalidQuery)
	}
	if strings.EqualFold(query.Name, "TBD") {
		return fmt.Errorf("%w: pitcher is not announced", ErrInvalidQuery)
	}
	return nil
}

// IsAnnounced reports whether a schedule's probable pitcher name refers to a
// real player.
func IsAnnounced(name string) bool {
	name = strings.TrimSpace(name)
	return name != "" && !strings.EqualFold(name, "TBD")
}

// ParseStat parses a rate stat such as ERA or WHIP. Sources publish blanks,
// dashes and infinity markers for pitchers without outs recorded.
func ParseStat(raw string) (float64, error) {
	value := strings.TrimSpace(raw)
	switch strings.ToLower(value) {
	case "", "-", "--", "-.--", "n/a", "inf", "∞", "infinity":
		return 0, fmt.Errorf("%w: %q", ErrUnparsableStat, raw)
	}
	value = strings.TrimPrefix(value, "+")
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return 0, fmt.Errorf("%w: %q", ErrUnparsableStat, raw)
	}
	return parsed, nil
}

// ParseCount parses a counting stat such as strikeouts.
func ParseCount(raw string) (int, error) {
	value := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnparsableStat, raw)
	}
	return parsed, nil
}

// ParseInnings converts baseball notation, where the digit after the dot
// counts outs, into decimal innings: "75.1" is 75 1/3.
func ParseInnings(raw string) (float64, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return 0, fmt.Errorf("%w: %q", ErrUnparsableStat, raw)
	}
	whole, frac, hasFrac := strings.Cut(value, ".")
	innings, err := strconv.Atoi(whole)
	if err != nil || innings < 0 {
		return 0, fmt.Errorf("%w: %q", ErrUnparsableStat, raw)
	}
	if !hasFrac || frac == "" || frac == "0" {
		return float64(innings), nil
	}
	switch frac {
	case "1":
		return float64(innings) + 1.0/3.0, nil
	case "2":
		return float64(innings) + 2.0/3.0, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnparsableStat, raw)
	}
	return parsed, nil
}

func Float(v float64) *float64 { return &v }

func Int(v int) *int { return &v }

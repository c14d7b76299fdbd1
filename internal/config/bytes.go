package config

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	kb = 1024
	mb = kb * 1024
	gb = mb * 1024
	tb = gb * 1024
)

// ParseBytes parses a human-readable byte string such as "256MB", "1.5GB"
// or "4096". Units are binary (1KB = 1024 bytes).
func ParseBytes(s string) (int64, error) {
	s = strings.TrimSpace(s)
	var multiplier int64 = 1

	upper := strings.ToUpper(s)
	switch {
	case strings.HasSuffix(upper, "TB"):
		multiplier = tb
		s = s[:len(s)-2]
	case strings.HasSuffix(upper, "GB"):
		multiplier = gb
		s = s[:len(s)-2]
	case strings.HasSuffix(upper, "MB"):
		multiplier = mb
		s = s[:len(s)-2]
	case strings.HasSuffix(upper, "KB"):
		multiplier = kb
		s = s[:len(s)-2]
	case strings.HasSuffix(upper, "B"):
		s = s[:len(s)-1]
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("invalid byte string: %q", s)
	}
	return int64(value * float64(multiplier)), nil
}

// FormatBytes formats bytes as a human-readable string.
func FormatBytes(b int64) string {
	switch {
	case b >= tb:
		return fmt.Sprintf("%.2f TB", float64(b)/float64(tb))
	case b >= gb:
		return fmt.Sprintf("%.2f GB", float64(b)/float64(gb))
	case b >= mb:
		return fmt.Sprintf("%.2f MB", float64(b)/float64(mb))
	case b >= kb:
		return fmt.Sprintf("%.2f KB", float64(b)/float64(kb))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

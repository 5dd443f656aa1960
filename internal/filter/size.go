package filter

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

var sizeSuffixes = map[byte]int64{
	'B': 1,
	'K': 1 << 10,
	'M': 1 << 20,
	'G': 1 << 30,
	'T': 1 << 40,
}

// ParseSize parses a human-readable size into bytes. A bare number or a
// single-letter suffix (B, K, M, G, T; any case) is read in powers of
// 1024, so 1.5G is 1610612736. Anything else is handed to
// humanize.ParseBytes, which accepts unit names such as "10 MB" (decimal)
// and "10MiB" (binary).
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty size string")
	}
	if strings.HasPrefix(s, "-") {
		return 0, fmt.Errorf("negative size: %q", s)
	}

	multiplier := int64(1)
	numStr := s
	if m, ok := sizeSuffixes[strings.ToUpper(s[len(s)-1:])[0]]; ok {
		multiplier = m
		numStr = s[:len(s)-1]
	}

	if n, err := strconv.ParseInt(numStr, 10, 64); err == nil {
		if n > math.MaxInt64/multiplier {
			return 0, fmt.Errorf("size out of range: %q", s)
		}
		return n * multiplier, nil
	}
	if f, err := strconv.ParseFloat(numStr, 64); err == nil && !math.IsNaN(f) {
		// float64(MaxInt64) rounds up to 2^63, so >= rejects it too.
		if math.IsInf(f, 0) || f*float64(multiplier) >= math.MaxInt64 {
			return 0, fmt.Errorf("size out of range: %q", s)
		}
		return int64(f * float64(multiplier)), nil
	}

	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid size: %q", s)
	}
	if n > math.MaxInt64 {
		return 0, fmt.Errorf("size out of range: %q", s)
	}
	return int64(n), nil
}

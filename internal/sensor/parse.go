package sensor

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseLine accepts "101.325" or "pressure=101.325" (also with ':' as separator).
func ParseLine(line string) (float64, error) {
	s := strings.TrimSpace(line)
	if i := strings.IndexAny(s, "=:"); i >= 0 {
		key := strings.ToLower(strings.TrimSpace(s[:i]))
		if key != "pressure" && key != "p" {
			return 0, fmt.Errorf("%w: unknown key %q", ErrUnparsable, key)
		}
		s = strings.TrimSpace(s[i+1:])
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnparsable, line)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q is not finite", ErrUnparsable, line)
	}

	return v, nil
}

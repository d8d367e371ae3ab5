package config

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseColor reads "#rrggbb", "rrggbb" or "0xrrggbb" into linear 0..1 RGB.
func ParseColor(s string) ([3]float64, error) {
	h := strings.TrimSpace(s)
	h = strings.TrimPrefix(h, "#")
	h = strings.TrimPrefix(strings.ToLower(h), "0x")
	if len(h) != 6 {
		return [3]float64{}, fmt.Errorf("color %q: want 6 hex digits", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return [3]float64{}, fmt.Errorf("color %q: %w", s, err)
	}
	return [3]float64{
		float64(v>>16&0xff) / 255,
		float64(v>>8&0xff) / 255,
		float64(v&0xff) / 255,
	}, nil
}

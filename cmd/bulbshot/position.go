package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-bulb/common"
)

// parsePosition reads a camera position written as "x,y,z".
func parsePosition(s string) ([3]float32, error) {
	var pos [3]float32
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return pos, fmt.Errorf("position %q: want x,y,z", s)
	}
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return pos, fmt.Errorf("position %q: %w", s, err)
		}
		if !common.IsFinite(float32(v)) {
			return pos, fmt.Errorf("position %q: component %d is not finite", s, i)
		}
		pos[i] = float32(v)
	}
	return pos, nil
}

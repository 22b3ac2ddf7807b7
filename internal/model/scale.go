package model

import (
	"fmt"
	"math"
	"strings"
)

// DecimalPlaces returns the number of digits after the decimal point in a
// decimal string such as "600.5". Trailing zeros count; they indicate the
// precision the caller asked for.
func DecimalPlaces(value string) int {
	if i := strings.IndexByte(value, '.'); i >= 0 {
		return len(value) - i - 1
	}
	return 0
}

// ScaleFactor derives the smallest power of ten that turns every provided
// decimal string into an integer.
func ScaleFactor(values ...string) int {
	places := 0
	for _, v := range values {
		if p := DecimalPlaces(v); p > places {
			places = p
		}
	}
	factor := 1
	for i := 0; i < places; i++ {
		factor *= 10
	}
	return factor
}

// ScaleValue parses a decimal string and scales it by factor without going
// through floating point, so "600.05" at factor 100 is exactly 60005.
func ScaleValue(value string, factor int) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty dimension")
	}
	whole, frac := value, ""
	if i := strings.IndexByte(value, '.'); i >= 0 {
		whole, frac = value[:i], value[i+1:]
	}
	places := 0
	for f := factor; f >= 10; f /= 10 {
		places++
	}
	result := 0
	for _, ch := range whole {
		if ch < '0' || ch > '9' {
			return 0, fmt.Errorf("invalid dimension %q", value)
		}
		result = result*10 + int(ch-'0')
	}
	for i, ch := range frac {
		if ch < '0' || ch > '9' {
			return 0, fmt.Errorf("invalid dimension %q", value)
		}
		if i < places {
			result = result*10 + int(ch-'0')
		} else if ch != '0' {
			return 0, fmt.Errorf("dimension %q exceeds precision 1/%d", value, factor)
		}
	}
	// Dimensions with fewer decimals than the factor still scale fully.
	for i := len(frac); i < places; i++ {
		result *= 10
	}
	return result, nil
}

// ScaleFloat scales a configuration value (kerf, trim) by the request's
// factor, rounding to the nearest scaled unit.
func ScaleFloat(value float64, factor int) int {
	return int(math.Round(value * float64(factor)))
}

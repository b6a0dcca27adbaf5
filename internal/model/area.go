package model

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidArea is returned when an area is outside the fixed category set.
var ErrInvalidArea = errors.New("invalid area")

// areaPrefix is the closed area -> code prefix mapping. Product codes are the
// single source of sequence truth; nothing outside the store may count them.
var areaPrefix = map[string]string{
	"Kitchen":     "A",
	"Bedroom":     "B",
	"Living Room": "C",
	"Patio":       "D",
}

// Areas returns the fixed category set.
func Areas() []string {
	return []string{"Kitchen", "Bedroom", "Living Room", "Patio"}
}

// PrefixForArea maps an area to its single-letter code prefix.
func PrefixForArea(area string) (string, error) {
	prefix, ok := areaPrefix[area]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidArea, area)
	}
	return prefix, nil
}

// NextCode derives the next product code for a prefix given the greatest
// existing code with that prefix ("" when none). The sequence is zero-padded
// to three digits and simply grows wider past 999.
func NextCode(prefix, latest string) string {
	current := 0
	if len(latest) > len(prefix) && latest[:len(prefix)] == prefix {
		if n, err := strconv.Atoi(latest[len(prefix):]); err == nil {
			current = n
		}
	}
	return fmt.Sprintf("%s%03d", prefix, current+1)
}

package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrefixForArea(t *testing.T) {
	tests := []struct {
		area   string
		prefix string
	}{
		{"Kitchen", "A"},
		{"Bedroom", "B"},
		{"Living Room", "C"},
		{"Patio", "D"},
	}
	for _, tt := range tests {
		prefix, err := PrefixForArea(tt.area)
		require.NoError(t, err, tt.area)
		assert.Equal(t, tt.prefix, prefix)
	}
}

func TestPrefixForAreaInvalid(t *testing.T) {
	for _, area := range []string{"", "Garage", "kitchen", "Living  Room"} {
		_, err := PrefixForArea(area)
		assert.True(t, errors.Is(err, ErrInvalidArea), "area %q", area)
	}
}

func TestNextCode(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		latest string
		want   string
	}{
		{"empty store", "A", "", "A001"},
		{"increments", "B", "B014", "B015"},
		{"pad boundary", "C", "C099", "C100"},
		{"padding grows past 999", "D", "D999", "D1000"},
		{"wide sequences keep growing", "D", "D1000", "D1001"},
		{"unparseable suffix treated as zero", "A", "Axyz", "A001"},
		{"foreign prefix treated as zero", "A", "B010", "A001"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextCode(tt.prefix, tt.latest))
		})
	}
}

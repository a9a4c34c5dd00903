package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeClock(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"09:00", "09:00", true},
		{"09:00:00", "09:00", true},
		{"23:59:59", "23:59", true},
		{"9:00", "09:00", true},
		{"24:00", "", false},
		{"09:60", "", false},
		{"morning", "", false},
		{"", "", false},
	}

	for _, tc := range cases {
		got, ok := normalizeClock(tc.in)
		assert.Equal(t, tc.ok, ok, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestParseDate(t *testing.T) {
	got, err := parseDate(nil)
	assert.NoError(t, err)
	assert.Nil(t, got)

	empty := ""
	got, err = parseDate(&empty)
	assert.NoError(t, err)
	assert.Nil(t, got)

	valid := "2026-06-01"
	got, err = parseDate(&valid)
	assert.NoError(t, err)
	if assert.NotNil(t, got) {
		assert.Equal(t, 2026, got.Year())
		assert.Equal(t, 6, int(got.Month()))
		assert.Equal(t, 1, got.Day())
	}

	invalid := "01.06.2026"
	_, err = parseDate(&invalid)
	assert.Error(t, err)
}

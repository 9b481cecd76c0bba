package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"12.34", "12.34", true},
		{"12,34", "12.34", true},
		{" 7 ", "7.00", true},
		{"0.01", "0.01", true},
		{"12.345", "", false},
		{"0", "", false},
		{"-1.00", "", false},
		{"abc", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			require.NoError(t, err, tc.in)
			assert.Equal(t, tc.want, FormatAmount(got), tc.in)
		} else {
			assert.ErrorIs(t, err, ErrInvalidAmount, tc.in)
		}
	}
}

func TestFormatAmountAlwaysTwoDigits(t *testing.T) {
	assert.Equal(t, "2000.00", FormatAmount(dec("2000")))
	assert.Equal(t, "0.50", FormatAmount(dec("0.5")))
}

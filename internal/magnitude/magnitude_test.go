package magnitude

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"15K", 15_000},
		{"15k", 15_000},
		{"1.2M", 1_200_000},
		{"2.3m", 2_300_000},
		{"150,000", 150_000},
		{" 950 ", 950},
		{"12,500 coins", 12_500},
		{"1.5K COINS", 1_500},
	}
	for _, tt := range tests {
		got, ok := Parse(tt.in)
		require.True(t, ok, "Parse(%q)", tt.in)
		assert.Equal(t, tt.want, got, "Parse(%q)", tt.in)
	}
}

func TestParseAbsent(t *testing.T) {
	for _, in := range []string{"", "   ", "--", "0", "0K", "abc", "1.2.3K", "M"} {
		_, ok := Parse(in)
		assert.False(t, ok, "Parse(%q) should be absent", in)
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{999, "999"},
		{1_000, "1K"},
		{15_000, "15K"},
		{15_400, "15K"},
		{15_600, "16K"},
		{1_200_000, "1M"},
		{1_500_000, "2M"},
		{2_500_000, "2M"},
		{-500, "-500"},
	}
	for _, tt := range tests {
		got, ok := Format(tt.in)
		require.True(t, ok)
		assert.Equal(t, tt.want, got, "Format(%d)", tt.in)
	}

	_, ok := Format(0)
	assert.False(t, ok, "zero should format as absent")
	assert.Equal(t, "", MustFormat(0))
	assert.Equal(t, "", FormatOptional(nil))
}

func TestRoundTripApproximate(t *testing.T) {
	for _, in := range []string{"15K", "150K", "999", "2M", "42", "1.2M", "7.5K"} {
		n, ok := Parse(in)
		require.True(t, ok)
		out, ok := Format(n)
		require.True(t, ok)
		back, ok := Parse(out)
		require.True(t, ok)

		switch {
		case n < 1_000:
			assert.Equal(t, in, out)
		case n < 1_000_000:
			assert.InDelta(t, n, back, 500)
		default:
			assert.InDelta(t, n, back, 500_000)
		}
	}
}

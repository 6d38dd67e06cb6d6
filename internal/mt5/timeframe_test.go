package mt5

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeframe_AnyCase(t *testing.T) {
	for _, name := range TimeframeNames() {
		want, err := ParseTimeframe(name)
		require.NoError(t, err)

		for _, variant := range []string{strings.ToUpper(name), strings.ToUpper(name[:1]) + name[1:], " " + name + " "} {
			got, err := ParseTimeframe(variant)
			require.NoError(t, err, variant)
			assert.Equal(t, want, got, variant)
		}
	}
}

func TestParseTimeframe_Codes(t *testing.T) {
	tests := []struct {
		name string
		want Timeframe
	}{
		{"m1", 1},
		{"M30", 30},
		{"h1", 16385},
		{"H4", 16388},
		{"h12", 16396},
		{"D1", 16408},
		{"w1", 32769},
		{"MN1", 49153},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimeframe(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTimeframe_Unknown(t *testing.T) {
	for _, name := range []string{"", "m7", "1h", "h24", "mn"} {
		_, err := ParseTimeframe(name)
		assert.ErrorIs(t, err, ErrUnknownTimeframe, name)
	}
}

func TestTimeframeNames_Vocabulary(t *testing.T) {
	assert.ElementsMatch(t, []string{
		"m1", "m2", "m3", "m4", "m5", "m6", "m10", "m12", "m15", "m20", "m30",
		"h1", "h2", "h3", "h4", "h6", "h8", "h12", "d1", "w1", "mn1",
	}, TimeframeNames())
}

func TestTimeframe_String(t *testing.T) {
	assert.Equal(t, "H4", TimeframeH4.String())
	assert.Equal(t, "MN1", TimeframeMN1.String())
	assert.Equal(t, "Timeframe(7)", Timeframe(7).String())
}

package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLabelPosition(t *testing.T) {
	for _, p := range []LabelPosition{TopLeft, TopCenter, TopRight, BottomLeft, BottomCenter, BottomRight} {
		got, err := ParseLabelPosition(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
	got, err := ParseLabelPosition("BottomCenter")
	require.NoError(t, err)
	assert.Equal(t, BottomCenter, got)

	_, err = ParseLabelPosition("middle")
	assert.Error(t, err)
}

func TestParseAlignment(t *testing.T) {
	got, err := ParseAlignment("")
	require.NoError(t, err)
	assert.Equal(t, AlignmentCenter, got)

	got, err = ParseAlignment("Right")
	require.NoError(t, err)
	assert.Equal(t, AlignmentRight, got)
	assert.Equal(t, "right", got.String())

	_, err = ParseAlignment("justify")
	assert.Error(t, err)
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#1e90FF")
	require.NoError(t, err)
	assert.Equal(t, Color{R: 0x1e, G: 0x90, B: 0xff}, c)
	assert.Equal(t, "#1e90ff", c.Hex())

	c, err = ParseColor("f00")
	require.NoError(t, err)
	assert.Equal(t, Color{R: 255}, c)

	c, err = ParseColor("White")
	require.NoError(t, err)
	assert.Equal(t, White, c)

	_, err = ParseColor("#12345")
	assert.Error(t, err)
	_, err = ParseColor("#zzzzzz")
	assert.Error(t, err)

	assert.Equal(t, "#00ff00", Color{R: -4, G: 300}.Hex())
}

package barcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/barlabel/layout"
)

func TestOptionsSet(t *testing.T) {
	opts := DefaultOptions()

	require.NoError(t, opts.Set("dpi", "300"))
	require.NoError(t, opts.Set("width", "1in"))
	require.NoError(t, opts.Set("height", "120"))
	require.NoError(t, opts.Set("size", "12"))
	require.NoError(t, opts.Set("fore", "#336699"))
	require.NoError(t, opts.Set("background", "white"))
	require.NoError(t, opts.Set("position", "top-right"))
	require.NoError(t, opts.Set("align", "left"))
	require.NoError(t, opts.Set("label", "Hello"))
	require.NoError(t, opts.Set("show_label", "false"))
	require.NoError(t, opts.Set("rotate", "270"))
	require.NoError(t, opts.Set("flip", "hv"))
	require.NoError(t, opts.Set("format", ".JPG"))
	require.NoError(t, opts.Set("Font", "embed:gomono"))
	require.NoError(t, opts.Set("style", "bold"))

	assert.Equal(t, 300, opts.Width)
	assert.Equal(t, 120, opts.Height)
	assert.Equal(t, 12.0, opts.LabelFontSize)
	assert.Equal(t, layout.Color{R: 0x33, G: 0x66, B: 0x99}, opts.ForeColor)
	assert.Equal(t, layout.White, opts.BackColor)
	assert.Equal(t, layout.TopRight, opts.LabelPosition)
	assert.Equal(t, layout.AlignmentLeft, opts.Alignment)
	require.NotNil(t, opts.AlternateLabel)
	assert.Equal(t, "Hello", *opts.AlternateLabel)
	assert.False(t, opts.IncludeLabel)
	assert.Equal(t, 270, opts.Rotate)
	assert.True(t, opts.FlipH)
	assert.True(t, opts.FlipV)
	assert.Equal(t, "jpg", opts.Format)
	assert.Equal(t, "embed:gomono", opts.LabelFont.Src)
	assert.Equal(t, "bold", opts.LabelFont.Style)
	assert.NoError(t, opts.Validate())
}

func TestOptionsSetErrors(t *testing.T) {
	cases := map[string][2]string{
		"unknown key":    {"shape", "round"},
		"zero width":     {"width", "0"},
		"garbage height": {"height", "tall"},
		"bad dpi":        {"dpi", "high"},
		"negative size":  {"size", "-3"},
		"garbage size":   {"size", "big"},
		"bad colour":     {"fore", "#12"},
		"bad position":   {"position", "middle"},
		"bad bool":       {"show-label", "maybe"},
		"bad rotate":     {"rotate", "ninety"},
		"bad flip":       {"flip", "diagonal"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			opts := DefaultOptions()
			assert.Error(t, opts.Set(kv[0], kv[1]))
		})
	}
}

func TestOptionsValidate(t *testing.T) {
	opts := DefaultOptions()
	require.NoError(t, opts.Validate())

	opts.Rotate = 45
	assert.Error(t, opts.Validate())

	opts = DefaultOptions()
	opts.Width = 0
	assert.Error(t, opts.Validate())

	opts = DefaultOptions()
	opts.LabelFontSize = -1
	assert.Error(t, opts.Validate())
}

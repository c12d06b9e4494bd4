package renderer

import (
	"errors"
	"image"
	"image/draw"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/barlabel/layout"
)

type recordingEngine struct {
	plans     []*layout.Plan
	renderErr error
}

func (e *recordingEngine) MeasureText(_ layout.FontResource, size float64, text string, _ float64) (layout.Metrics, error) {
	return layout.Metrics{Width: size * float64(len(text)) / 2, Height: size}, nil
}

func (e *recordingEngine) Render(plan *layout.Plan, _ draw.Image) error {
	e.plans = append(e.plans, plan)
	return e.renderErr
}

func sample(sym layout.Symbology, data string) *layout.Barcode {
	return &layout.Barcode{
		Type:         sym,
		Data:         data,
		EncodedValue: strings.Repeat("10", 47) + "1",
		Width:        190,
		Height:       100,
	}
}

func TestLabelDispatchesOnType(t *testing.T) {
	cases := []struct {
		b     *layout.Barcode
		texts int
		lines int
	}{
		{sample(layout.Code128, "ABC"), 1, 0},
		{sample(layout.ITF14, "12345678901231"), 1, 1},
		{sample(layout.EAN13, "5901234123457"), 3, 0},
		{sample(layout.UPCA, "012345678905"), 4, 0},
	}
	for _, tc := range cases {
		e := &recordingEngine{}
		img := image.NewRGBA(image.Rect(0, 0, 190, 100))
		out, err := Label(tc.b, img, e)
		require.NoError(t, err, string(tc.b.Type))
		assert.Same(t, img, out.(*image.RGBA))
		require.Len(t, e.plans, 1)
		assert.Len(t, e.plans[0].Texts(), tc.texts, string(tc.b.Type))
		assert.Len(t, e.plans[0].Lines(), tc.lines, string(tc.b.Type))
		assert.Equal(t, 190, e.plans[0].Width)
	}
}

func TestExplicitVariantsIgnoreType(t *testing.T) {
	e := &recordingEngine{}
	img := image.NewRGBA(image.Rect(0, 0, 190, 100))
	_, err := LabelITF14(sample(layout.Code128, "ABC"), img, e)
	require.NoError(t, err)
	assert.Len(t, e.plans[0].Lines(), 1)

	_, err = LabelGeneric(sample(layout.EAN13, "not digits"), img, e)
	require.NoError(t, err)

	_, err = LabelEAN13(sample(layout.Code128, "5901234123457"), img, e)
	require.NoError(t, err)
	_, err = LabelUPCA(sample(layout.Code128, "012345678905"), img, e)
	require.NoError(t, err)
	assert.Len(t, e.plans, 4)
}

func TestLabelWrapsRenderFailure(t *testing.T) {
	cause := errors.New("rasterizer exploded")
	e := &recordingEngine{renderErr: cause}
	img := image.NewRGBA(image.Rect(0, 0, 190, 100))
	out, err := Label(sample(layout.Code128, "ABC"), img, e)
	var lre *layout.LabelRenderingError
	require.ErrorAs(t, err, &lre)
	assert.ErrorIs(t, err, cause)
	assert.NotNil(t, out)
}

func TestLabelRejectsMissingCollaborators(t *testing.T) {
	_, err := Label(sample(layout.Code128, "ABC"), nil, &recordingEngine{})
	assert.IsType(t, &layout.LabelRenderingError{}, err)

	_, err = Label(sample(layout.Code128, "ABC"), image.NewRGBA(image.Rect(0, 0, 1, 1)), nil)
	assert.IsType(t, &layout.LabelRenderingError{}, err)
}

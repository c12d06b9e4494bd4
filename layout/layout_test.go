package layout

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMeasurer 让宽度与字号、字符数成正比，高度等于字号加 extraHeight，便于手算期望值。
// 真实字体的行高通常带小数，extraHeight 用来模拟这一点。
type fakeMeasurer struct {
	perChar     float64
	extraHeight float64
	calls       int
}

func (f *fakeMeasurer) MeasureText(_ FontResource, size float64, text string, _ float64) (Metrics, error) {
	f.calls++
	k := f.perChar
	if k == 0 {
		k = 1
	}
	return Metrics{Width: size * k * float64(len(text)), Height: size + f.extraHeight}, nil
}

var errFontMissing = errors.New("font family not found")

func failingMeasurer() Measurer {
	return MeasurerFunc(func(FontResource, float64, string, float64) (Metrics, error) {
		return Metrics{}, errFontMissing
	})
}

func testBarcode(sym Symbology, data, encoded string, width, height int) *Barcode {
	return &Barcode{
		Type:         sym,
		Data:         data,
		EncodedValue: encoded,
		Width:        width,
		Height:       height,
		ForeColor:    Black,
		BackColor:    White,
		LabelFont:    FontResource{Name: "mono", Src: "builtin:mono"},
	}
}

func TestFitFontSizeTightness(t *testing.T) {
	m := &fakeMeasurer{}
	size, err := FitFontSize(m, FontResource{}, "12345", 100, 1000, DefaultDPI)
	require.NoError(t, err)
	assert.InDelta(t, 18.0, size, 1e-9)

	fit := size / fitSafety
	at, _ := m.MeasureText(FontResource{}, fit, "12345", DefaultDPI)
	assert.LessOrEqual(t, at.Width, 100.0)
	over, _ := m.MeasureText(FontResource{}, fit+1, "12345", DefaultDPI)
	assert.Greater(t, over.Width, 100.0)
}

func TestFitFontSizeHeightBound(t *testing.T) {
	size, err := FitFontSize(&fakeMeasurer{}, FontResource{}, "1", 1000, 12, DefaultDPI)
	require.NoError(t, err)
	assert.InDelta(t, 12*fitSafety, size, 1e-9)
}

func TestFitFontSizeEdges(t *testing.T) {
	m := &fakeMeasurer{}
	size, err := FitFontSize(m, FontResource{}, "", 1, 1, DefaultDPI)
	require.NoError(t, err)
	assert.InDelta(t, defaultFitSize*fitSafety, size, 1e-9)
	assert.Zero(t, m.calls, "empty label must not be measured")

	size, err = FitFontSize(m, FontResource{}, "X", 1e6, 1e6, DefaultDPI)
	require.NoError(t, err)
	assert.InDelta(t, maxFitSize*fitSafety, size, 1e-9)
	assert.Equal(t, maxFitSize, m.calls)

	size, err = FitFontSize(&fakeMeasurer{}, FontResource{}, "X", 0.5, 0.5, DefaultDPI)
	require.NoError(t, err)
	assert.Zero(t, size)
}

func TestFitFontSizePropagatesMeasureError(t *testing.T) {
	_, err := FitFontSize(failingMeasurer(), FontResource{}, "abc", 10, 10, DefaultDPI)
	require.ErrorIs(t, err, errFontMissing)
}

func TestMeasureReferenceBandUsesAlphabet(t *testing.T) {
	var seen string
	m := MeasurerFunc(func(_ FontResource, size float64, text string, _ float64) (Metrics, error) {
		seen = text
		return Metrics{Width: 1, Height: size * 2}, nil
	})
	got, err := MeasureReferenceBand(m, FontResource{}, 7, DefaultDPI)
	require.NoError(t, err)
	assert.Equal(t, ReferenceAlphabet, seen)
	assert.Equal(t, 14.0, got.Height)
}

func TestEAN13GeometryScenario(t *testing.T) {
	g := ean13Geometry(350, 10, AlignmentCenter)
	assert.Equal(t, 35, g.BarWidth)
	assert.Equal(t, 0, g.Shift)
	assert.Equal(t, 105.0, g.S2)
	assert.Equal(t, 1470.0, g.W2)
	assert.Equal(t, g.W2, g.W3)
	assert.Equal(t, g.S2+g.W2+5*35, g.S3)
	assert.Equal(t, 1750.0, g.S3)
}

func TestEAN13GeometryInvariants(t *testing.T) {
	for _, width := range []int{95, 190, 203, 331, 640} {
		for _, a := range []Alignment{AlignmentLeft, AlignmentCenter, AlignmentRight} {
			g := ean13Geometry(width, 95, a)
			bw := float64(width / 95)
			assert.Equal(t, 42*bw, g.W2)
			assert.Equal(t, 42*bw, g.W3)
			assert.Equal(t, g.S2+g.W2+5*bw, g.S3)
		}
	}
	assert.Equal(t, 0, ean13Geometry(203, 95, AlignmentLeft).Shift)
	assert.Equal(t, 13, ean13Geometry(203, 95, AlignmentRight).Shift)
	assert.Equal(t, 6, ean13Geometry(203, 95, AlignmentCenter).Shift)
}

func TestLayoutEAN13Plan(t *testing.T) {
	b := testBarcode(EAN13, "5901234123457", "1010101010", 350, 150)
	plan, err := Layout(b, 350, 150, &fakeMeasurer{})
	require.NoError(t, err)

	fills := plan.Fills()
	require.Len(t, fills, 2)
	assert.Equal(t, 105.0, fills[0].X)
	assert.Equal(t, 1470.0, fills[0].Width)
	assert.Equal(t, 1750.0, fills[1].X)
	assert.Equal(t, White, fills[0].Color)

	texts := plan.Texts()
	require.Len(t, texts, 3)
	assert.Equal(t, []string{"5", "901234", "123457"}, []string{texts[0].Content, texts[1].Content, texts[2].Content})
	assert.Equal(t, -35.0, texts[0].X)
	assert.Equal(t, 105.0, texts[1].X)
	assert.Equal(t, 1750.0-35, texts[2].X)
	assert.InDelta(t, texts[1].FontSize*smallFontScale, texts[0].FontSize, 1e-9)
	assert.Equal(t, texts[1].Y, texts[2].Y)
}

func TestLayoutEAN13RejectsBadData(t *testing.T) {
	b := testBarcode(EAN13, "59012341234", "1010101010", 350, 150)
	_, err := Layout(b, 350, 150, &fakeMeasurer{})
	var lre *LabelRenderingError
	require.ErrorAs(t, err, &lre)
}

func TestLayoutUPCADigitGroups(t *testing.T) {
	encoded := strings.Repeat("10", 47) + "1"
	b := testBarcode(UPCA, "012345678905", encoded, 300, 120)
	plan, err := Layout(b, 300, 120, &fakeMeasurer{perChar: 0.5})
	require.NoError(t, err)

	texts := plan.Texts()
	require.Len(t, texts, 4)
	got := make([]string, len(texts))
	for i, tb := range texts {
		got[i] = tb.Content
	}
	assert.Equal(t, []string{"0", "12345", "67890", "5"}, got)
	assert.Equal(t, texts[0].FontSize, texts[3].FontSize)
	assert.Less(t, texts[0].FontSize, texts[1].FontSize)

	g := upcaGeometry(300, 95, AlignmentCenter)
	assert.Equal(t, 3, g.BarWidth)
	assert.Equal(t, 7+upcaShiftBias, g.Shift)
	assert.Equal(t, 34*3.0, g.W2)
	assert.Equal(t, g.S2+g.W2+15, g.S3)
	assert.Equal(t, px(g.S2)-3+upcaLargeShift, texts[1].X)
	assert.Equal(t, px(g.S3)-3+upcaLargeShift, texts[2].X)

	fills := plan.Fills()
	require.Len(t, fills, 2)
	assert.Equal(t, px(g.S2), fills[0].X)
	assert.Equal(t, px(g.S3), fills[1].X)
}

func TestDigitBandsReachBottomEdge(t *testing.T) {
	cases := []struct {
		sym  Symbology
		data string
		enc  string
	}{
		{EAN13, "5901234123457", strings.Repeat("10", 47) + "1"},
		{UPCA, "012345678905", strings.Repeat("10", 47) + "1"},
	}
	for _, tc := range cases {
		t.Run(string(tc.sym), func(t *testing.T) {
			b := testBarcode(tc.sym, tc.data, tc.enc, 300, 120)
			plan, err := Layout(b, 300, 120, &fakeMeasurer{perChar: 0.5, extraHeight: 0.41})
			require.NoError(t, err)
			for _, f := range plan.Fills() {
				assert.Equal(t, 120.0, f.Y+f.Height)
			}
		})
	}
}

func TestLayoutITF14(t *testing.T) {
	for _, extra := range []float64{0, 0.41} {
		alt := "1 23 45678 90123 1"
		b := testBarcode(ITF14, "12345678901231", "1010", 400, 160)
		b.AlternateLabel = &alt
		b.LabelFontSize = 12
		plan, err := Layout(b, 400, 160, &fakeMeasurer{extraHeight: extra})
		require.NoError(t, err)

		fills := plan.Fills()
		require.Len(t, fills, 1)
		assert.Equal(t, Rect{X: 0, Y: 150, Width: 400, Height: 10, Color: White}, fills[0])
		assert.Equal(t, 160.0, fills[0].Y+fills[0].Height, "band must reach the bottom edge (extra %g)", extra)

		texts := plan.Texts()
		require.Len(t, texts, 1)
		assert.Equal(t, alt, texts[0].Content)
		assert.Equal(t, 200.0, texts[0].X)
		assert.Equal(t, 149.0, texts[0].Y)
		assert.Equal(t, AlignCenter, texts[0].Align)

		lines := plan.Lines()
		require.Len(t, lines, 1)
		assert.Equal(t, 146.0, lines[0].Y1)
		assert.Equal(t, 400.0, lines[0].X2)
		assert.Equal(t, 10.0, lines[0].Width)
	}
}

func TestLayoutGenericPositions(t *testing.T) {
	cases := []struct {
		pos    LabelPosition
		bandY  float64
		textX  float64
		align  string
		valign string
	}{
		{TopLeft, 0, 0, AlignLeft, AlignTop},
		{TopCenter, 0, 100, AlignCenter, AlignTop},
		{TopRight, 0, 200, AlignRight, AlignTop},
		{BottomLeft, 90, 0, AlignLeft, AlignBottom},
		{BottomCenter, 90, 100, AlignCenter, AlignBottom},
		{BottomRight, 90, 200, AlignRight, AlignBottom},
	}
	for _, extra := range []float64{0, 0.5} {
		for _, tc := range cases {
			t.Run(fmt.Sprintf("%s/extra=%g", tc.pos, extra), func(t *testing.T) {
				b := testBarcode(Code128, "ABC-123", "11010010000", 200, 100)
				b.LabelPosition = tc.pos
				plan, err := Layout(b, 200, 100, &fakeMeasurer{extraHeight: extra})
				require.NoError(t, err)

				fills := plan.Fills()
				require.Len(t, fills, 1)
				assert.Equal(t, tc.bandY, fills[0].Y)
				assert.Equal(t, 200.0, fills[0].Width)
				assert.Equal(t, 10.0, fills[0].Height)
				if tc.pos.IsTop() {
					assert.Zero(t, fills[0].Y)
				} else {
					assert.Equal(t, 100.0, fills[0].Y+fills[0].Height)
				}

				texts := plan.Texts()
				require.Len(t, texts, 1)
				assert.Equal(t, tc.textX, texts[0].X)
				assert.Equal(t, tc.align, texts[0].Align)
				assert.Equal(t, tc.valign, texts[0].VAlign)
				assert.Empty(t, plan.Lines())
			})
		}
	}
}

func TestLayoutIsIdempotent(t *testing.T) {
	for _, b := range []*Barcode{
		testBarcode(EAN13, "5901234123457", strings.Repeat("10", 47)+"1", 300, 150),
		testBarcode(UPCA, "012345678905", strings.Repeat("10", 47)+"1", 300, 150),
		testBarcode(ITF14, "12345678901231", "1010", 300, 150),
		testBarcode(Code39, "HELLO", "1011", 300, 150),
	} {
		first, err := Layout(b, 300, 150, &fakeMeasurer{perChar: 0.6})
		require.NoError(t, err)
		second, err := Layout(b, 300, 150, &fakeMeasurer{perChar: 0.6})
		require.NoError(t, err)
		assert.Equal(t, first, second, string(b.Type))
	}
}

func TestLayoutWrapsMeasureFailure(t *testing.T) {
	for _, sym := range []Symbology{Code128, ITF14, EAN13, UPCA} {
		data := map[Symbology]string{EAN13: "5901234123457", UPCA: "012345678905"}[sym]
		if data == "" {
			data = "12345678901231"
		}
		b := testBarcode(sym, data, strings.Repeat("10", 47)+"1", 300, 150)
		_, err := Layout(b, 300, 150, failingMeasurer())
		require.Error(t, err)

		var lre *LabelRenderingError
		require.ErrorAs(t, err, &lre, string(sym))
		assert.ErrorIs(t, err, errFontMissing)
		assert.True(t, strings.HasPrefix(err.Error(), labelErrorMessage))
	}
}

func TestLayoutRejectsInvalidInput(t *testing.T) {
	_, err := Layout(nil, 10, 10, &fakeMeasurer{})
	assert.IsType(t, &LabelRenderingError{}, err)

	_, err = Layout(testBarcode(Code128, "A", "1", 10, 10), 10, 10, nil)
	assert.IsType(t, &LabelRenderingError{}, err)

	_, err = Layout(testBarcode(Code128, "A", "1", 10, 10), 0, 10, &fakeMeasurer{})
	assert.IsType(t, &LabelRenderingError{}, err)
}

func TestWrapLabelErrorDoesNotDoubleWrap(t *testing.T) {
	assert.NoError(t, WrapLabelError(nil))
	once := WrapLabelError(errFontMissing)
	assert.Same(t, once, WrapLabelError(once))
	assert.Equal(t, labelErrorMessage, (&LabelRenderingError{}).Error())
}

func TestStrategyDispatch(t *testing.T) {
	m := &fakeMeasurer{}
	for _, sym := range Symbologies() {
		b := testBarcode(sym, "12345678901231", "1010", 200, 100)
		plan, err := StrategyFor(sym).Layout(b, 200, 100, m)
		switch sym {
		case EAN13, UPCA:
			assert.Error(t, err, "14 digits is not a valid %s label", sym)
		case ITF14:
			require.NoError(t, err)
			assert.Len(t, plan.Lines(), 1)
		default:
			require.NoError(t, err)
			assert.Empty(t, plan.Lines(), string(sym))
			assert.Len(t, plan.Fills(), 1)
		}
	}
}

func TestBars(t *testing.T) {
	b := testBarcode(Code128, "x", "1100101", 70, 40)
	plan, err := Bars(b, 70, 40)
	require.NoError(t, err)
	assert.Equal(t, []Rect{
		{X: 0, Y: 0, Width: 20, Height: 40, Color: Black},
		{X: 40, Y: 0, Width: 10, Height: 40, Color: Black},
		{X: 60, Y: 0, Width: 10, Height: 40, Color: Black},
	}, plan.Fills())

	b.Width = 75
	b.Alignment = AlignmentRight
	plan, err = Bars(b, 75, 40)
	require.NoError(t, err)
	assert.Equal(t, 5.0, plan.Fills()[0].X)

	b.EncodedValue = "10x1"
	_, err = Bars(b, 75, 40)
	assert.Error(t, err)

	b.EncodedValue = strings.Repeat("1", 100)
	_, err = Bars(b, 75, 40)
	assert.ErrorIs(t, err, ErrTooNarrow)
}

func TestCommandKind(t *testing.T) {
	plan := newPlan(1, 1)
	plan.fill(Rect{})
	plan.line(Line{})
	plan.text(TextBox{})
	var kinds []string
	for _, c := range plan.Commands {
		kinds = append(kinds, c.Kind())
	}
	assert.Equal(t, []string{"fill", "line", "text"}, kinds)
	assert.Equal(t, "unknown", Command{}.Kind())
}

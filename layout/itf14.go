package layout

// itf14BearerDivisor 决定底部分隔线的粗细：图像高度 / 16。
const itf14BearerDivisor = 16.0

// layoutITF14 在底部铺背景带、居中写标签，并在标签上方画一条整宽分隔线。
func layoutITF14(b *Barcode, w, h int, m Measurer) (*Plan, error) {
	dpi := b.DPI()
	size := labelFontSize(b)
	band, err := MeasureReferenceBand(m, b.LabelFont, size, dpi)
	if err != nil {
		return nil, err
	}
	bandH := px(band.Height)
	fillH := px(band.Height - 2)
	H := float64(h)

	plan := newPlan(w, h)
	// 背景带高 band-2，底边贴住图像底边
	plan.fill(Rect{X: 0, Y: H - fillH, Width: float64(w), Height: fillH, Color: b.BackColor})
	plan.text(TextBox{
		Content:  b.Label(),
		X:        px(float64(w) / 2),
		Y:        H - bandH + 1,
		Font:     b.LabelFont,
		FontSize: size,
		DPI:      dpi,
		Color:    b.ForeColor,
		Align:    AlignCenter,
		VAlign:   AlignTop,
	})
	lineY := H - bandH - 2
	plan.line(Line{X1: 0, Y1: lineY, X2: float64(w), Y2: lineY, Color: b.ForeColor, Width: H / itf14BearerDivisor})
	return plan, nil
}

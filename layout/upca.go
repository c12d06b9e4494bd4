package layout

const (
	// upcaShiftBias 是 UPC-A 在对齐偏移之外固定追加的像素偏移。
	upcaShiftBias = 3
	// upcaLargeShift 是主字号数字组的右移量。经验值，改动前需要做图像回归比对。
	upcaLargeShift = 5
	// upcaFitRatio 缩小 UPC-A 的字号拟合宽度。
	upcaFitRatio = 0.9
)

// upcaGeometry: 块 1 为 4 个模块，块 2 从第 12 个模块起、块 3 隔 5 个模块，各 34 个模块；
// 块 4 为尾随数字，距块 3 末端 8 个模块再回退半个模块。
func upcaGeometry(width, modules int, a Alignment) eanGeometry {
	bw := width / modules
	half := int(float64(bw) * 0.5)
	shift := alignmentShift(width, modules, a) + upcaShiftBias
	g := eanGeometry{BarWidth: bw, Shift: shift}
	fbw := float64(bw)
	g.W1 = fbw * 4
	g.W2 = fbw * 34
	g.W3 = fbw * 34
	g.S1 = float64(shift) - fbw
	g.S2 = g.S1 + fbw*12
	g.S3 = g.S2 + g.W2 + fbw*5
	g.S4 = g.S3 + g.W3 + fbw*8 - float64(half)
	return g
}

// layoutUPCA 按 1/5/5/1 分组写 12 位数字，首尾数字用小字号贴底。
func layoutUPCA(b *Barcode, w, h int, m Measurer) (*Plan, error) {
	text := b.Data
	if err := requireDigits("UPC-A", text, 12); err != nil {
		return nil, err
	}
	if _, err := barWidth(b.Width, b.EncodedValue); err != nil {
		return nil, err
	}
	n := len(b.EncodedValue)
	dpi := b.DPI()
	H := float64(h)

	desired := int(float64(b.Width-b.Width%n) * upcaFitRatio)
	size, err := FitFontSize(m, b.LabelFont, text, float64(desired), H, dpi)
	if err != nil {
		return nil, err
	}
	small := size * smallFontScale
	band, err := MeasureReferenceBand(m, b.LabelFont, size, dpi)
	if err != nil {
		return nil, err
	}
	smallBand, err := MeasureReferenceBand(m, b.LabelFont, small, dpi)
	if err != nil {
		return nil, err
	}
	logger().Debug("upca font fitted", "size", size, "small", small, "band", band.Height)

	g := upcaGeometry(b.Width, n, b.Alignment)
	bandH := px(band.Height)
	labelY := H - bandH
	smallY := H - px(smallBand.Height)
	bw := float64(g.BarWidth)

	plan := newPlan(w, h)
	plan.fill(Rect{X: px(g.S2), Y: labelY, Width: px(g.W2), Height: bandH, Color: b.BackColor})
	plan.fill(Rect{X: px(g.S3), Y: labelY, Width: px(g.W3), Height: bandH, Color: b.BackColor})

	digit := func(content string, x, y, fontSize float64) {
		plan.text(TextBox{
			Content:  content,
			X:        x,
			Y:        y,
			Font:     b.LabelFont,
			FontSize: fontSize,
			DPI:      dpi,
			Color:    b.ForeColor,
			Align:    AlignLeft,
			VAlign:   AlignTop,
		})
	}
	digit(text[0:1], px(g.S1), smallY, small)
	digit(text[1:6], px(g.S2)-bw+upcaLargeShift, labelY, size)
	digit(text[6:11], px(g.S3)-bw+upcaLargeShift, labelY, size)
	digit(text[11:12], px(g.S4), smallY, small)
	return plan, nil
}

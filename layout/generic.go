package layout

// horizontal 返回标签位置对应的水平锚点。
func (p LabelPosition) horizontal() string {
	switch p {
	case TopLeft, BottomLeft:
		return AlignLeft
	case TopRight, BottomRight:
		return AlignRight
	default:
		return AlignCenter
	}
}

// layoutGeneric 在图像顶部或底部铺一条整宽背景带，文字按 LabelPosition 锚定。
func layoutGeneric(b *Barcode, w, h int, m Measurer) (*Plan, error) {
	dpi := b.DPI()
	size := labelFontSize(b)
	band, err := MeasureReferenceBand(m, b.LabelFont, size, dpi)
	if err != nil {
		return nil, err
	}

	// 底部背景带的下边必须与图像底边重合，故先取整高度再求起点
	bandH := px(band.Height)
	var bandY, textY float64
	var valign string
	if b.LabelPosition.IsTop() {
		bandY, textY, valign = 0, 0, AlignTop
	} else {
		bandY, textY, valign = float64(h)-bandH, float64(h), AlignBottom
	}

	align := b.LabelPosition.horizontal()
	var textX float64
	switch align {
	case AlignLeft:
		textX = 0
	case AlignRight:
		textX = float64(w)
	default:
		textX = float64(w / 2)
	}

	plan := newPlan(w, h)
	plan.fill(Rect{X: 0, Y: bandY, Width: float64(w), Height: bandH, Color: b.BackColor})
	plan.text(TextBox{
		Content:  b.Label(),
		X:        textX,
		Y:        textY,
		Font:     b.LabelFont,
		FontSize: size,
		DPI:      dpi,
		Color:    b.ForeColor,
		Align:    align,
		VAlign:   valign,
	})
	return plan, nil
}

package layout

import "fmt"

// smallFontScale 是前导/尾随单个数字所用小字号相对主字号的比例。
const smallFontScale = 0.3

// ean13LeadingLift 把 EAN-13 前导数字上提到小字号带高的 0.9 处。
const ean13LeadingLift = 0.9

// eanGeometry 以像素记录 EAN-13 / UPC-A 各数字块的起点与宽度。
// S1..S4 为块起点，W1..W3 为块宽，均为 BarWidth 的整数倍加上偏移。
type eanGeometry struct {
	BarWidth int
	Shift    int
	S1, S2   float64
	S3, S4   float64
	W1, W2   float64
	W3       float64
}

// ean13Geometry: 块 1 为 4 个模块（前导数字，无背景），块 2、块 3 各 42 个模块，中间隔 5 个模块。
func ean13Geometry(width, modules int, a Alignment) eanGeometry {
	bw := width / modules
	shift := alignmentShift(width, modules, a)
	g := eanGeometry{BarWidth: bw, Shift: shift}
	fbw := float64(bw)
	g.W1 = fbw * 4
	g.W2 = fbw * 42
	g.W3 = fbw * 42
	g.S1 = float64(shift) - fbw
	g.S2 = g.S1 + fbw*4
	g.S3 = g.S2 + g.W2 + fbw*5
	return g
}

func requireDigits(kind, data string, n int) error {
	if len(data) != n {
		return fmt.Errorf("%s 标签需要 %d 位数字，实际 %q", kind, n, data)
	}
	for _, r := range data {
		if r < '0' || r > '9' {
			return fmt.Errorf("%s 标签包含非数字字符: %q", kind, data)
		}
	}
	return nil
}

// layoutEAN13 按 1/6/6 分组在条码下方写 13 位数字。
func layoutEAN13(b *Barcode, w, h int, m Measurer) (*Plan, error) {
	text := b.Data
	if err := requireDigits("EAN-13", text, 13); err != nil {
		return nil, err
	}
	if _, err := barWidth(b.Width, b.EncodedValue); err != nil {
		return nil, err
	}
	n := len(b.EncodedValue)
	dpi := b.DPI()
	H := float64(h)

	desired := b.Width - b.Width%n
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
	logger().Debug("ean13 font fitted", "size", size, "small", small, "band", band.Height)

	g := ean13Geometry(b.Width, n, b.Alignment)
	bandH := px(band.Height)
	labelY := H - bandH

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
	digit(text[0:1], px(g.S1), px(H-smallBand.Height*ean13LeadingLift), small)
	digit(text[1:7], px(g.S2), labelY, size)
	digit(text[7:], px(g.S3)-float64(g.BarWidth), labelY, size)
	return plan, nil
}

package layout

import "fmt"

// Bars 把模块序列铺成整高的填充矩形：每个模块 floor(Width/n) 像素宽，
// 整体按 Alignment 在宽度余量内偏移，连续的 '1' 合并成一个矩形。
func Bars(b *Barcode, imageWidth, imageHeight int) (*Plan, error) {
	if b == nil {
		return nil, fmt.Errorf("条码为空")
	}
	bw, err := barWidth(b.Width, b.EncodedValue)
	if err != nil {
		return nil, err
	}
	shift := alignmentShift(b.Width, len(b.EncodedValue), b.Alignment)

	plan := newPlan(imageWidth, imageHeight)
	runStart := -1
	flush := func(end int) {
		if runStart < 0 {
			return
		}
		plan.fill(Rect{
			X:      float64(shift + runStart*bw),
			Y:      0,
			Width:  float64((end - runStart) * bw),
			Height: float64(imageHeight),
			Color:  b.ForeColor,
		})
		runStart = -1
	}
	for i, r := range b.EncodedValue {
		switch r {
		case '1':
			if runStart < 0 {
				runStart = i
			}
		case '0':
			flush(i)
		default:
			return nil, fmt.Errorf("编码值包含非法模块 %q (位置 %d)", r, i)
		}
	}
	flush(len(b.EncodedValue))
	return plan, nil
}

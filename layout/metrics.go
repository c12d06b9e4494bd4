package layout

import "fmt"

// ReferenceAlphabet 用于测量标签带高度，与实际标签内容无关。
const ReferenceAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// MeasureReferenceBand 测量参考字母表，得到标签带的稳定尺寸。
func MeasureReferenceBand(m Measurer, font FontResource, size, dpi float64) (Metrics, error) {
	if m == nil {
		return Metrics{}, fmt.Errorf("layout: 缺少测量后端 Measurer")
	}
	metrics, err := m.MeasureText(font, size, ReferenceAlphabet, dpi)
	if err != nil {
		return Metrics{}, fmt.Errorf("测量参考字母表失败: %w", err)
	}
	return metrics, nil
}

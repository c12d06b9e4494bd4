package layout

import "fmt"

const (
	maxFitSize     = 100
	defaultFitSize = 10
	fitSafety      = 0.9
)

// FitFontSize 返回能让 label 落在 maxWidth × maxHeight 内的最大字号（pt），再乘以 0.9 留出余量。
//
// 从 1 到 100 逐个尝试，第一个超出宽或高的字号减一即为结果；全部放得下时取 100。
// 这里刻意保持线性扫描：换成二分会改变边界上的像素输出。
func FitFontSize(m Measurer, font FontResource, label string, maxWidth, maxHeight, dpi float64) (float64, error) {
	if label == "" {
		return defaultFitSize * fitSafety, nil
	}
	if m == nil {
		return 0, fmt.Errorf("layout: 缺少测量后端 Measurer")
	}

	size := maxFitSize
	for i := 1; i <= maxFitSize; i++ {
		bounds, err := m.MeasureText(font, float64(i), label, dpi)
		if err != nil {
			return 0, fmt.Errorf("测量字号 %d 失败: %w", i, err)
		}
		if bounds.Width > maxWidth || bounds.Height > maxHeight {
			size = i - 1
			break
		}
	}
	return float64(size) * fitSafety, nil
}

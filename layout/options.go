package layout

// Measurer 负责在给定字体、字号（pt）与分辨率下测量单行文本的像素尺寸。
// 渲染器实现该接口，布局阶段只依赖它，不接触具体的字体引擎。
type Measurer interface {
	MeasureText(font FontResource, size float64, text string, dpi float64) (Metrics, error)
}

// MeasurerFunc adapts a plain function to Measurer.
type MeasurerFunc func(font FontResource, size float64, text string, dpi float64) (Metrics, error)

func (f MeasurerFunc) MeasureText(font FontResource, size float64, text string, dpi float64) (Metrics, error) {
	return f(font, size, text, dpi)
}

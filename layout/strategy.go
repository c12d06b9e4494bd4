package layout

import (
	"errors"
	"fmt"
	"math"
)

// labelErrorMessage 是标签失败时对调用方展示的固定文案。
const labelErrorMessage = "error occurred writing the label"

// ErrTooNarrow 表示图像宽度放不下全部模块。
var ErrTooNarrow = errors.New("barcode narrower than its module count")

// LabelRenderingError 是标签布局或绘制失败时唯一对外暴露的错误类型，Err 保留原始原因。
type LabelRenderingError struct {
	Err error
}

func (e *LabelRenderingError) Error() string {
	if e.Err == nil {
		return labelErrorMessage
	}
	return labelErrorMessage + ": " + e.Err.Error()
}

func (e *LabelRenderingError) Unwrap() error { return e.Err }

// WrapLabelError 把任意错误包装为 *LabelRenderingError；已包装过的错误原样返回。
func WrapLabelError(err error) error {
	if err == nil {
		return nil
	}
	var lre *LabelRenderingError
	if errors.As(err, &lre) {
		return err
	}
	return &LabelRenderingError{Err: err}
}

// Strategy 计算某一码制的标签绘制计划。
type Strategy interface {
	Layout(b *Barcode, imageWidth, imageHeight int, m Measurer) (*Plan, error)
}

// StrategyFunc adapts a function to Strategy.
type StrategyFunc func(b *Barcode, imageWidth, imageHeight int, m Measurer) (*Plan, error)

func (f StrategyFunc) Layout(b *Barcode, imageWidth, imageHeight int, m Measurer) (*Plan, error) {
	return f(b, imageWidth, imageHeight, m)
}

// strategies 只登记有专用版式的码制，其余码制走通用版式。
var strategies = map[Symbology]Strategy{
	EAN13: StrategyFunc(layoutEAN13),
	UPCA:  StrategyFunc(layoutUPCA),
	ITF14: StrategyFunc(layoutITF14),
}

var genericStrategy Strategy = StrategyFunc(layoutGeneric)

// StrategyFor 返回码制对应的版式策略。
func StrategyFor(sym Symbology) Strategy {
	if s, ok := strategies[sym]; ok {
		return s
	}
	return genericStrategy
}

// Layout 根据 b.Type 选择版式并生成标签绘制计划，任何失败都以 *LabelRenderingError 返回。
func Layout(b *Barcode, imageWidth, imageHeight int, m Measurer) (*Plan, error) {
	if b == nil {
		return nil, WrapLabelError(fmt.Errorf("条码为空"))
	}
	return run(StrategyFor(b.Type), b, imageWidth, imageHeight, m)
}

// LayoutGeneric 生成通用单标签版式。
func LayoutGeneric(b *Barcode, imageWidth, imageHeight int, m Measurer) (*Plan, error) {
	return run(genericStrategy, b, imageWidth, imageHeight, m)
}

// LayoutITF14 生成 ITF-14 版式。
func LayoutITF14(b *Barcode, imageWidth, imageHeight int, m Measurer) (*Plan, error) {
	return run(StrategyFunc(layoutITF14), b, imageWidth, imageHeight, m)
}

// LayoutEAN13 生成 EAN-13 版式。
func LayoutEAN13(b *Barcode, imageWidth, imageHeight int, m Measurer) (*Plan, error) {
	return run(StrategyFunc(layoutEAN13), b, imageWidth, imageHeight, m)
}

// LayoutUPCA 生成 UPC-A 版式。
func LayoutUPCA(b *Barcode, imageWidth, imageHeight int, m Measurer) (*Plan, error) {
	return run(StrategyFunc(layoutUPCA), b, imageWidth, imageHeight, m)
}

func run(s Strategy, b *Barcode, imageWidth, imageHeight int, m Measurer) (*Plan, error) {
	if b == nil {
		return nil, WrapLabelError(fmt.Errorf("条码为空"))
	}
	if m == nil {
		return nil, WrapLabelError(fmt.Errorf("layout: 缺少测量后端 Measurer"))
	}
	if imageWidth <= 0 || imageHeight <= 0 {
		return nil, WrapLabelError(fmt.Errorf("图像尺寸非法: %dx%d", imageWidth, imageHeight))
	}
	plan, err := s.Layout(b, imageWidth, imageHeight, m)
	if err != nil {
		return nil, WrapLabelError(err)
	}
	logger().Debug("label laid out", "type", string(b.Type), "commands", len(plan.Commands))
	return plan, nil
}

func newPlan(w, h int) *Plan { return &Plan{Width: w, Height: h} }

// barWidth 返回每个模块的像素宽度（向下取整）。
func barWidth(width int, encoded string) (int, error) {
	n := len(encoded)
	if n == 0 {
		return 0, fmt.Errorf("编码值为空")
	}
	if width < n {
		return 0, fmt.Errorf("%w: 条码宽度 %d 小于模块数 %d", ErrTooNarrow, width, n)
	}
	return width / n, nil
}

// alignmentShift 返回条码在宽度余量内的水平偏移。
func alignmentShift(width, modules int, a Alignment) int {
	rem := width % modules
	switch a {
	case AlignmentLeft:
		return 0
	case AlignmentRight:
		return rem
	default:
		return rem / 2
	}
}

// labelFontSize 返回条码声明的标签字号，未设置时使用 10pt。
func labelFontSize(b *Barcode) float64 {
	if b.LabelFontSize > 0 {
		return b.LabelFontSize
	}
	return defaultFitSize
}

// px 模拟整数像素坐标：直接截断小数部分。
func px(v float64) float64 { return math.Trunc(v) }

package renderer

import (
	"fmt"
	"image/draw"

	"github.com/ByLCY/barlabel/layout"
)

// Renderer 把绘制计划画到调用方提供的图像上，坐标单位为像素。
type Renderer interface {
	Render(plan *layout.Plan, dst draw.Image) error
}

// Engine 同时提供文字测量与绘制，布局阶段用前者，输出阶段用后者。
type Engine interface {
	layout.Measurer
	Renderer
}

type layoutFunc func(b *layout.Barcode, imageWidth, imageHeight int, m layout.Measurer) (*layout.Plan, error)

// Label 按 b.Type 选择版式，把标签画到 img 上并返回同一个 img。
// 失败时统一返回 *layout.LabelRenderingError；此时 img 可能已被部分绘制，调用方应丢弃。
func Label(b *layout.Barcode, img draw.Image, engine Engine) (draw.Image, error) {
	return label(layout.Layout, b, img, engine)
}

// LabelGeneric 使用通用版式绘制标签。
func LabelGeneric(b *layout.Barcode, img draw.Image, engine Engine) (draw.Image, error) {
	return label(layout.LayoutGeneric, b, img, engine)
}

// LabelITF14 使用 ITF-14 版式绘制标签。
func LabelITF14(b *layout.Barcode, img draw.Image, engine Engine) (draw.Image, error) {
	return label(layout.LayoutITF14, b, img, engine)
}

// LabelEAN13 使用 EAN-13 版式绘制标签。
func LabelEAN13(b *layout.Barcode, img draw.Image, engine Engine) (draw.Image, error) {
	return label(layout.LayoutEAN13, b, img, engine)
}

// LabelUPCA 使用 UPC-A 版式绘制标签。
func LabelUPCA(b *layout.Barcode, img draw.Image, engine Engine) (draw.Image, error) {
	return label(layout.LayoutUPCA, b, img, engine)
}

func label(fn layoutFunc, b *layout.Barcode, img draw.Image, engine Engine) (draw.Image, error) {
	if img == nil {
		return nil, layout.WrapLabelError(fmt.Errorf("目标图像为空"))
	}
	if engine == nil {
		return img, layout.WrapLabelError(fmt.Errorf("缺少渲染引擎"))
	}
	bounds := img.Bounds()
	plan, err := fn(b, bounds.Dx(), bounds.Dy(), engine)
	if err != nil {
		return img, layout.WrapLabelError(err)
	}
	if err := engine.Render(plan, img); err != nil {
		return img, layout.WrapLabelError(fmt.Errorf("绘制标签失败: %w", err))
	}
	return img, nil
}

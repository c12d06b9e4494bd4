package barcode

import (
	"fmt"
	"image"
	"io"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/ByLCY/barlabel/layout"
	canvasrenderer "github.com/ByLCY/barlabel/renderer/canvas"
)

// FormatPDF 是矢量输出格式名，不经过 imaging。
const FormatPDF = "pdf"

// PDFRenderer 能把绘制计划写成 PDF。
type PDFRenderer interface {
	RenderPDF(w io.Writer, dpi float64, info canvasrenderer.PDFInfo, plans ...*layout.Plan) error
}

// ParseFormat 解析位图格式名（png、jpg、jpeg、gif、tif、tiff、bmp），可带前导点。
func ParseFormat(name string) (imaging.Format, error) {
	f, err := imaging.FormatFromExtension(strings.TrimSpace(name))
	if err != nil {
		return f, fmt.Errorf("不支持的图像格式 %q: %w", name, err)
	}
	return f, nil
}

// ContentType 返回格式对应的 MIME 类型。
func ContentType(format string) string {
	if strings.EqualFold(strings.TrimPrefix(format, "."), FormatPDF) {
		return "application/pdf"
	}
	f, err := ParseFormat(format)
	if err != nil {
		return "application/octet-stream"
	}
	return "image/" + strings.ToLower(f.String())
}

// Save 按格式名把位图写入 w。
func Save(w io.Writer, img image.Image, format string) error {
	f, err := ParseFormat(format)
	if err != nil {
		return err
	}
	if err := imaging.Encode(w, img, f, imaging.JPEGQuality(95)); err != nil {
		return fmt.Errorf("编码 %s 失败: %w", f, err)
	}
	return nil
}

// SavePDF 以矢量方式重绘未旋转的条码。引擎不支持 PDF 时返回错误。
func (g *Generator) SavePDF(w io.Writer, res *Result) error {
	pr, ok := g.engine.(PDFRenderer)
	if !ok {
		return fmt.Errorf("渲染引擎不支持 PDF 输出")
	}
	plans, err := g.Plans(res)
	if err != nil {
		return fmt.Errorf("重算绘制计划失败: %w", err)
	}
	info := canvasrenderer.PDFInfo{
		Title:    res.Report.Data,
		Subject:  res.Report.Type,
		Keywords: []string{res.Report.Type, res.Report.Data},
		Creator:  "barlabel",
	}
	return pr.RenderPDF(w, res.Barcode.DPI(), info, plans...)
}

// Write 按 format 输出结果：pdf 走矢量路径，其余走位图编码。
func (g *Generator) Write(w io.Writer, res *Result, format string) error {
	if strings.EqualFold(strings.TrimPrefix(format, "."), FormatPDF) {
		return g.SavePDF(w, res)
	}
	return Save(w, res.Image, format)
}

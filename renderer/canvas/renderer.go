package canvasrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
	"github.com/tdewolff/canvas/renderers/rasterizer"

	"github.com/ByLCY/barlabel/fonts"
	"github.com/ByLCY/barlabel/layout"
	"github.com/ByLCY/barlabel/renderer"
)

// defaultLineWidth 是线宽缺省时使用的像素宽度。
const defaultLineWidth = 1.0

// maxFontFileSize 限制从磁盘读取的字体文件大小。
const maxFontFileSize = 32 << 20

// Renderer draws label plans via github.com/tdewolff/canvas.
//
// 画布单位取像素，按每单位 1 点栅格化；字号（pt）在创建字体面时按 dpi 换算成像素。
type Renderer struct {
	baseDir string

	// injected resources
	fontBlobs map[string][]byte // by unique name
	fontErrs  map[string]error  // injected fonts that failed to load

	fontMu       sync.Mutex
	fontFamilies map[string]*fontFamilyEntry
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ renderer.Engine   = (*Renderer)(nil)
	_ layout.Measurer   = (*Renderer)(nil)
)

type fontFamilyEntry struct {
	family *canvas.FontFamily
	style  canvas.FontStyle
}

// Options configures the canvas renderer.
type Options struct {
	BaseDir string
	Fonts   map[string]Resource // fonts accessible via builtin:<name>
}

// Resource can be provided either by Bytes or by Path.
type Resource struct {
	Bytes []byte
	Path  string
}

// NewRenderer creates a canvas-based renderer rooted at baseDir for resolving font paths.
func NewRenderer(baseDir string) *Renderer { return NewRendererWithOptions(Options{BaseDir: baseDir}) }

// NewRendererWithOptions creates a renderer with injected fonts and optional baseDir.
func NewRendererWithOptions(opts Options) *Renderer {
	r := &Renderer{
		baseDir:      opts.BaseDir,
		fontBlobs:    map[string][]byte{},
		fontErrs:     map[string]error{},
		fontFamilies: map[string]*fontFamilyEntry{},
	}
	for name, res := range opts.Fonts {
		if name == "" {
			continue
		}
		if len(res.Bytes) > 0 {
			r.fontBlobs[name] = res.Bytes
			continue
		}
		if res.Path != "" {
			// 读取失败留到实际使用时报错
			data, err := readFontFile(res.Path)
			if err != nil {
				r.fontErrs[name] = fmt.Errorf("读取字体 %s (%s) 失败: %w", name, res.Path, err)
				continue
			}
			r.fontBlobs[name] = data
		}
	}
	return r
}

// MeasureText 实现 layout.Measurer：宽度取排版宽度，高度取字体行高，单位为像素。
func (r *Renderer) MeasureText(font layout.FontResource, size float64, text string, dpi float64) (layout.Metrics, error) {
	face, err := r.fontFace(font, faceSize(size, dpi, 1), layout.Black)
	if err != nil {
		return layout.Metrics{}, err
	}
	return layout.Metrics{
		Width:  face.TextWidth(text),
		Height: face.Metrics().LineHeight,
	}, nil
}

// Render 把计划栅格化后按 alpha 叠加到 dst 上，dst 原有的条码像素保持不变。
func (r *Renderer) Render(plan *layout.Plan, dst draw.Image) error {
	if plan == nil {
		return fmt.Errorf("绘制计划为空")
	}
	if dst == nil {
		return fmt.Errorf("目标图像为空")
	}
	b := dst.Bounds()
	c := canvas.New(float64(b.Dx()), float64(b.Dy()))
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点

	if err := r.drawPlan(ctx, plan, 1); err != nil {
		return err
	}
	img := rasterizer.Draw(c, canvas.DPMM(1), canvas.DefaultColorSpace)
	draw.Draw(dst, b, img, image.Point{}, draw.Over)
	return nil
}

// PDFInfo 写入 PDF 文档信息字典。
type PDFInfo struct {
	Title    string
	Subject  string
	Keywords []string
	Author   string
	Creator  string
}

// RenderPDF 把若干同尺寸的计划叠画成一页矢量 PDF，像素按 dpi 换算为毫米。
func (r *Renderer) RenderPDF(w io.Writer, dpi float64, info PDFInfo, plans ...*layout.Plan) error {
	if len(plans) == 0 || plans[0] == nil {
		return fmt.Errorf("缺少可渲染的计划")
	}
	if dpi <= 0 {
		dpi = layout.DefaultDPI
	}
	k := layout.MmPerInch / dpi
	width := float64(plans[0].Width) * k
	height := float64(plans[0].Height) * k

	var buf bytes.Buffer
	writer := pdf.New(&buf, width, height, nil)
	writer.SetInfo(info.Title, info.Subject, strings.Join(info.Keywords, ", "), info.Author, info.Creator)

	c := canvas.New(width, height)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV)
	for i, plan := range plans {
		if plan == nil {
			continue
		}
		if err := r.drawPlan(ctx, plan, k); err != nil {
			return fmt.Errorf("绘制第 %d 个计划失败: %w", i, err)
		}
	}
	c.RenderTo(writer)
	if err := writer.Close(); err != nil {
		return fmt.Errorf("写入 PDF 失败: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// drawPlan 按顺序执行绘制命令，k 为像素到画布单位的缩放。
func (r *Renderer) drawPlan(ctx *canvas.Context, plan *layout.Plan, k float64) error {
	for i, cmd := range plan.Commands {
		var err error
		switch {
		case cmd.Fill != nil:
			drawRect(ctx, *cmd.Fill, k)
		case cmd.Line != nil:
			drawLine(ctx, *cmd.Line, k)
		case cmd.Text != nil:
			err = r.drawTextBox(ctx, *cmd.Text, k)
		default:
			err = fmt.Errorf("未知绘制命令")
		}
		if err != nil {
			return fmt.Errorf("命令 %d (%s): %w", i, cmd.Kind(), err)
		}
	}
	return nil
}

func drawRect(ctx *canvas.Context, rc layout.Rect, k float64) {
	if rc.Width <= 0 || rc.Height <= 0 {
		return
	}
	ctx.SetFillColor(colorFromLayout(rc.Color))
	ctx.SetStrokeColor(canvas.Transparent)
	ctx.DrawPath(rc.X*k, rc.Y*k, canvas.Rectangle(rc.Width*k, rc.Height*k))
}

func drawLine(ctx *canvas.Context, ln layout.Line, k float64) {
	w := ln.Width
	if w <= 0 {
		w = defaultLineWidth
	}
	ctx.SetFillColor(canvas.Transparent)
	ctx.SetStrokeColor(colorFromLayout(ln.Color))
	ctx.SetStrokeWidth(w * k)
	p := &canvas.Path{}
	p.MoveTo(0, 0)
	p.LineTo((ln.X2-ln.X1)*k, (ln.Y2-ln.Y1)*k)
	ctx.DrawPath(ln.X1*k, ln.Y1*k, p)
}

func (r *Renderer) drawTextBox(ctx *canvas.Context, tb layout.TextBox, k float64) error {
	// 拟合结果可能为 0，此时没有可见文字
	if tb.FontSize <= 0 || tb.Content == "" {
		return nil
	}
	face, err := r.fontFace(tb.Font, faceSize(tb.FontSize, tb.DPI, k), tb.Color)
	if err != nil {
		return err
	}

	var textAlign canvas.TextAlign
	switch strings.ToLower(tb.Align) {
	case layout.AlignCenter:
		textAlign = canvas.Center
	case layout.AlignRight, "end":
		textAlign = canvas.Right
	default:
		textAlign = canvas.Left
	}

	// 基线：顶部锚点向下加上升部，底部锚点向上减下降部
	metrics := face.Metrics()
	baseline := tb.Y*k + metrics.Ascent
	if tb.VAlign == layout.AlignBottom {
		baseline = tb.Y*k - metrics.Descent
	}
	ctx.DrawText(tb.X*k, baseline, canvas.NewTextLine(face, tb.Content, textAlign))
	return nil
}

// faceSize 把 pt 字号换算成字体面尺寸：先得到像素字高，再按字体面 pt → mm 的字高换算回去。
func faceSize(sizePt, dpi, k float64) float64 {
	return layout.PointsToPixels(sizePt, dpi) * layout.PtPerInch / layout.MmPerInch * k
}

func (r *Renderer) fontFace(font layout.FontResource, size float64, col layout.Color) (*canvas.FontFace, error) {
	family, style, err := r.ensureFontFamily(font)
	if err != nil {
		return nil, err
	}
	return family.Face(size, colorFromLayout(col), style, canvas.FontNormal), nil
}

// ensureFontFamily 只缓存解析后的字体族，字体面每次按字号新建。
func (r *Renderer) ensureFontFamily(font layout.FontResource) (*canvas.FontFamily, canvas.FontStyle, error) {
	key := fontCacheKey(font)
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if entry, ok := r.fontFamilies[key]; ok {
		return entry.family, entry.style, nil
	}

	style := parseFontStyle(font.Style)
	familyName := font.Family
	if familyName == "" {
		familyName = font.Name
	}
	if familyName == "" {
		familyName = "Label"
	}
	family := canvas.NewFontFamily(familyName)

	data, err := r.loadFontBytes(font)
	if err != nil {
		return nil, canvas.FontRegular, err
	}
	if err := family.LoadFont(data, 0, style); err != nil {
		return nil, canvas.FontRegular, fmt.Errorf("加载字体 %s 失败: %w", familyName, err)
	}

	r.fontFamilies[key] = &fontFamilyEntry{family: family, style: style}
	return family, style, nil
}

func (r *Renderer) loadFontBytes(font layout.FontResource) ([]byte, error) {
	src := font.Src
	if src == "" {
		return fonts.Load(fonts.Default)
	}
	if strings.HasPrefix(src, "built-in:") || strings.HasPrefix(src, "builtin:") {
		name := strings.TrimPrefix(strings.TrimPrefix(src, "built-in:"), "builtin:")
		if blob, ok := r.fontBlobs[name]; ok {
			return blob, nil
		}
		if blob, ok := r.fontBlobs[strings.ToLower(name)]; ok {
			return blob, nil
		}
		if err, ok := r.fontErrs[name]; ok {
			return nil, err
		}
		if blob, err := fonts.Load(name); err == nil {
			return blob, nil
		}
		return nil, fmt.Errorf("找不到内置字体资源 built-in:%s", name)
	}
	if strings.HasPrefix(src, "embed:") {
		return fonts.Load(src)
	}
	// 路径字体只能位于 baseDir 之内
	if r.baseDir == "" {
		return nil, fmt.Errorf("未指定资源目录时不允许直接使用字体路径：%s（请改用 builtin: 或 embed:）", src)
	}
	if !filepath.IsLocal(src) {
		return nil, fmt.Errorf("字体路径 %s 必须是资源目录内的相对路径", src)
	}
	root, err := os.OpenRoot(r.baseDir)
	if err != nil {
		return nil, fmt.Errorf("打开资源目录失败: %w", err)
	}
	defer root.Close()
	f, err := root.Open(src)
	if err != nil {
		return nil, fmt.Errorf("读取字体 %s 失败: %w", src, err)
	}
	defer f.Close()
	data, err := readLimited(f)
	if err != nil {
		return nil, fmt.Errorf("读取字体 %s 失败: %w", src, err)
	}
	return data, nil
}

// readFontFile reads a trusted font path from configuration.
func readFontFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readLimited(f)
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxFontFileSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxFontFileSize {
		return nil, fmt.Errorf("字体文件超过 %d 字节", maxFontFileSize)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("字体文件为空")
	}
	return data, nil
}

func parseFontStyle(style string) canvas.FontStyle {
	if style == "" {
		return canvas.FontRegular
	}
	s := strings.ToLower(style)
	result := canvas.FontRegular
	switch {
	case strings.Contains(s, "black"):
		result = canvas.FontBlack
	case strings.Contains(s, "extrabold"):
		result = canvas.FontExtraBold
	case strings.Contains(s, "semibold"), strings.Contains(s, "demibold"):
		result = canvas.FontSemiBold
	case strings.Contains(s, "bold"):
		result = canvas.FontBold
	case strings.Contains(s, "medium"):
		result = canvas.FontMedium
	case strings.Contains(s, "light"):
		result = canvas.FontLight
	}
	if strings.Contains(s, "italic") || strings.Contains(s, "oblique") {
		result |= canvas.FontItalic
	}
	return result
}

func fontCacheKey(font layout.FontResource) string {
	return fmt.Sprintf("%s|%s|%s|%s", font.Name, font.Family, font.Src, font.Style)
}

func colorFromLayout(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}

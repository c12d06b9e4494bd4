package barcode

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ByLCY/barlabel/layout"
)

// Options 控制一次条码生成：图像尺寸、颜色、标签与输出方向。
type Options struct {
	Width  int     `json:"width" yaml:"width"`
	Height int     `json:"height" yaml:"height"`
	DPI    float64 `json:"dpi" yaml:"dpi"`

	IncludeLabel   bool                 `json:"includeLabel" yaml:"includeLabel"`
	AlternateLabel *string              `json:"alternateLabel,omitempty" yaml:"alternateLabel,omitempty"`
	LabelFont      layout.FontResource  `json:"labelFont" yaml:"labelFont"`
	LabelFontSize  float64              `json:"labelFontSize" yaml:"labelFontSize"`
	LabelPosition  layout.LabelPosition `json:"labelPosition" yaml:"labelPosition"`
	Alignment      layout.Alignment     `json:"alignment" yaml:"alignment"`

	ForeColor layout.Color `json:"foreColor" yaml:"foreColor"`
	BackColor layout.Color `json:"backColor" yaml:"backColor"`

	// Rotate 只接受 0/90/180/270（逆时针）。
	Rotate int  `json:"rotate" yaml:"rotate"`
	FlipH  bool `json:"flipH" yaml:"flipH"`
	FlipV  bool `json:"flipV" yaml:"flipV"`

	// Format 是输出格式名，仅写入报告；编码由 Save/SavePDF 完成。
	Format string `json:"format" yaml:"format"`
}

// DefaultOptions 返回 300×150、96 DPI、黑条白底、底部居中标签的配置。
func DefaultOptions() Options {
	return Options{
		Width:         300,
		Height:        150,
		DPI:           layout.DefaultDPI,
		IncludeLabel:  true,
		LabelFontSize: 10,
		LabelPosition: layout.BottomCenter,
		Alignment:     layout.AlignmentCenter,
		ForeColor:     layout.Black,
		BackColor:     layout.White,
		Format:        "png",
	}
}

// Validate 检查尺寸与旋转角度。
func (o Options) Validate() error {
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("图像尺寸必须为正数: %dx%d", o.Width, o.Height)
	}
	if o.DPI < 0 {
		return fmt.Errorf("dpi 不能为负数: %g", o.DPI)
	}
	switch o.Rotate {
	case 0, 90, 180, 270:
	default:
		return fmt.Errorf("不支持的旋转角度 %d（仅 0/90/180/270）", o.Rotate)
	}
	if o.LabelFontSize < 0 {
		return fmt.Errorf("字号不能为负数: %g", o.LabelFontSize)
	}
	return nil
}

// Set 按属性名设置一个选项，值为文本形式。width/height 可带 px/pt/mm/cm/in 单位，
// 按当前 DPI 换算；size 无单位时按 pt 处理。
func (o *Options) Set(key, raw string) error {
	var err error
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "width":
		o.Width, err = pixels(raw, o.DPI)
	case "height":
		o.Height, err = pixels(raw, o.DPI)
	case "dpi":
		o.DPI, err = strconv.ParseFloat(raw, 64)
	case "font":
		o.LabelFont.Src = raw
	case "font-name", "font_name":
		o.LabelFont.Name = raw
	case "style":
		o.LabelFont.Style = raw
	case "size":
		l := layout.ParseRawLengthStr(raw)
		if l.Value < 0 || (l.Value == 0 && strings.TrimSpace(raw) != "0") {
			return fmt.Errorf("字号格式错误: %q", raw)
		}
		o.LabelFontSize = l.Points(o.DPI)
	case "fore", "color":
		o.ForeColor, err = layout.ParseColor(raw)
	case "back", "background":
		o.BackColor, err = layout.ParseColor(raw)
	case "position":
		o.LabelPosition, err = layout.ParseLabelPosition(raw)
	case "align":
		o.Alignment, err = layout.ParseAlignment(raw)
	case "label":
		text := raw
		o.AlternateLabel = &text
	case "show-label", "show_label":
		o.IncludeLabel, err = strconv.ParseBool(raw)
	case "rotate":
		o.Rotate, err = strconv.Atoi(raw)
	case "flip":
		switch strings.ToLower(raw) {
		case "none", "":
			o.FlipH, o.FlipV = false, false
		case "h":
			o.FlipH, o.FlipV = true, false
		case "v":
			o.FlipH, o.FlipV = false, true
		case "hv", "vh":
			o.FlipH, o.FlipV = true, true
		default:
			err = fmt.Errorf("未知翻转方式 %q", raw)
		}
	case "format":
		o.Format = strings.ToLower(strings.TrimPrefix(raw, "."))
	default:
		return fmt.Errorf("未知属性 %q", key)
	}
	return err
}

// pixels 把长度换算为整数像素；无单位时按像素处理。
func pixels(raw string, dpi float64) (int, error) {
	l := layout.ParseRawLengthStr(raw)
	if l.Value <= 0 {
		return 0, fmt.Errorf("长度必须为正数: %q", raw)
	}
	return int(l.Pixels(dpi) + 0.5), nil
}

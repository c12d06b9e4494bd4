package barcode

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/ByLCY/barlabel/layout"
)

// Report 记录一次生成的输入与产物概要，可序列化后用于复现同一张条码。
type Report struct {
	Type          string  `json:"type" yaml:"type"`
	RawData       string  `json:"rawData" yaml:"rawData"`
	Data          string  `json:"data" yaml:"data"`
	EncodedValue  string  `json:"encodedValue" yaml:"encodedValue"`
	CheckSum      int     `json:"checkSum" yaml:"checkSum"`
	EncodingTime  float64 `json:"encodingTimeMs" yaml:"encodingTimeMs"`
	IncludeLabel  bool    `json:"includeLabel" yaml:"includeLabel"`
	Label         *string `json:"alternateLabel,omitempty" yaml:"alternateLabel,omitempty"`
	LabelFont     string  `json:"labelFont" yaml:"labelFont"`
	LabelFontSize float64 `json:"labelFontSize" yaml:"labelFontSize"`
	LabelPosition string  `json:"labelPosition" yaml:"labelPosition"`
	Alignment     string  `json:"alignment" yaml:"alignment"`
	ForeColor     string  `json:"foreColor" yaml:"foreColor"`
	BackColor     string  `json:"backColor" yaml:"backColor"`
	ImageWidth    int     `json:"imageWidth" yaml:"imageWidth"`
	ImageHeight   int     `json:"imageHeight" yaml:"imageHeight"`
	DPI           float64 `json:"dpi" yaml:"dpi"`
	Rotate        int     `json:"rotate" yaml:"rotate"`
	FlipH         bool    `json:"flipH" yaml:"flipH"`
	FlipV         bool    `json:"flipV" yaml:"flipV"`
	ImageFormat   string  `json:"imageFormat" yaml:"imageFormat"`
}

// JSON 以缩进 JSON 输出报告。
func (r Report) JSON() ([]byte, error) { return json.MarshalIndent(r, "", "  ") }

// YAML 以 YAML 输出报告。
func (r Report) YAML() ([]byte, error) { return yaml.Marshal(r) }

// ParseReport 读取 JSON 或 YAML 格式的报告。
func ParseReport(data []byte) (Report, error) {
	var r Report
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Report{}, fmt.Errorf("解析报告失败: %w", err)
	}
	return r, nil
}

// Options 由报告还原生成参数；字体只保留 src。报告里的尺寸是旋转后的，这里换回旋转前。
func (r Report) Options() (Options, error) {
	width, height := r.ImageWidth, r.ImageHeight
	if r.Rotate == 90 || r.Rotate == 270 {
		width, height = height, width
	}
	opts := Options{
		Width:          width,
		Height:         height,
		DPI:            r.DPI,
		IncludeLabel:   r.IncludeLabel,
		AlternateLabel: r.Label,
		LabelFont:      layout.FontResource{Src: r.LabelFont},
		LabelFontSize:  r.LabelFontSize,
		Rotate:         r.Rotate,
		FlipH:          r.FlipH,
		FlipV:          r.FlipV,
		Format:         r.ImageFormat,
	}
	var err error
	if opts.LabelPosition, err = layout.ParseLabelPosition(r.LabelPosition); err != nil {
		return Options{}, err
	}
	if opts.Alignment, err = layout.ParseAlignment(r.Alignment); err != nil {
		return Options{}, err
	}
	if opts.ForeColor, err = layout.ParseColor(r.ForeColor); err != nil {
		return Options{}, err
	}
	if opts.BackColor, err = layout.ParseColor(r.BackColor); err != nil {
		return Options{}, err
	}
	return opts, opts.Validate()
}

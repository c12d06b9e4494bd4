package layout

// 该文件定义条码描述、绘制计划与资源描述，供布局计算、渲染与调试 JSON 共用。

// Symbology 表示条码码制。
type Symbology string

const (
	Code128         Symbology = "CODE128"
	Code39          Symbology = "CODE39"
	Code93          Symbology = "CODE93"
	Codabar         Symbology = "CODABAR"
	EAN8            Symbology = "EAN8"
	EAN13           Symbology = "EAN13"
	UPCA            Symbology = "UPCA"
	ITF14           Symbology = "ITF14"
	Interleaved2of5 Symbology = "I2OF5"
	Standard2of5    Symbology = "S2OF5"
)

// Symbologies 按固定顺序列出全部支持的码制。
func Symbologies() []Symbology {
	return []Symbology{Code128, Code39, Code93, Codabar, EAN8, EAN13, UPCA, ITF14, Interleaved2of5, Standard2of5}
}

// LabelPosition 决定通用标签位于条码的哪一侧、如何对齐。
type LabelPosition int

const (
	TopLeft LabelPosition = iota
	TopCenter
	TopRight
	BottomLeft
	BottomCenter
	BottomRight
)

var labelPositionNames = map[LabelPosition]string{
	TopLeft:      "top-left",
	TopCenter:    "top-center",
	TopRight:     "top-right",
	BottomLeft:   "bottom-left",
	BottomCenter: "bottom-center",
	BottomRight:  "bottom-right",
}

func (p LabelPosition) String() string {
	if s, ok := labelPositionNames[p]; ok {
		return s
	}
	return "unknown"
}

// IsTop 报告标签带是否位于图像顶部。
func (p LabelPosition) IsTop() bool { return p == TopLeft || p == TopCenter || p == TopRight }

// Alignment 控制条码在图像宽度上的水平对齐。
type Alignment int

const (
	AlignmentCenter Alignment = iota
	AlignmentLeft
	AlignmentRight
)

func (a Alignment) String() string {
	switch a {
	case AlignmentLeft:
		return "left"
	case AlignmentRight:
		return "right"
	default:
		return "center"
	}
}

// Barcode 描述一次标签渲染所需的全部只读输入。
type Barcode struct {
	Type           Symbology     `json:"type"`
	Data           string        `json:"data"`
	EncodedValue   string        `json:"encodedValue"`             // 模块序列，长度即模块数
	AlternateLabel *string       `json:"alternateLabel,omitempty"` // 非空时替代 Data 作为标签文本
	Width          int           `json:"width"`
	Height         int           `json:"height"`
	ForeColor      Color         `json:"foreColor"`
	BackColor      Color         `json:"backColor"`
	LabelFont      FontResource  `json:"labelFont"`
	LabelFontSize  float64       `json:"labelFontSize"` // pt
	LabelPosition  LabelPosition `json:"labelPosition"`
	Alignment      Alignment     `json:"alignment"`

	HorizontalResolution float64 `json:"horizontalResolution"`
	VerticalResolution   float64 `json:"verticalResolution"`
}

// Label 返回实际绘制的标签文本。
func (b *Barcode) Label() string {
	if b.AlternateLabel != nil {
		return *b.AlternateLabel
	}
	return b.Data
}

// DPI 返回测量文字所用的分辨率，未设置时按 96 处理。
func (b *Barcode) DPI() float64 {
	if b.HorizontalResolution > 0 {
		return b.HorizontalResolution
	}
	return DefaultDPI
}

// FontResource 描述字体资源，src 可以是文件路径、内置 embed 路径或 builtin:* 形式。
type FontResource struct {
	Name   string `json:"name"`
	Src    string `json:"src"`
	Style  string `json:"style"`
	Family string `json:"family"` // 渲染器使用的 Family 名称
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

var (
	Black = Color{}
	White = Color{R: 255, G: 255, B: 255}
)

// Metrics 是一段文本在给定字体与分辨率下的测量结果（像素）。
type Metrics struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Plan 是一次布局产出的有序绘制命令，坐标单位为像素，原点在左上角。
type Plan struct {
	Width    int       `json:"width"`
	Height   int       `json:"height"`
	Commands []Command `json:"commands"`
}

func (p *Plan) fill(r Rect) { p.Commands = append(p.Commands, Command{Fill: &r}) }

func (p *Plan) line(l Line) { p.Commands = append(p.Commands, Command{Line: &l}) }

func (p *Plan) text(t TextBox) { p.Commands = append(p.Commands, Command{Text: &t}) }

// Fills 返回计划中的全部填充矩形（按绘制顺序）。
func (p *Plan) Fills() []Rect {
	var out []Rect
	for _, c := range p.Commands {
		if c.Fill != nil {
			out = append(out, *c.Fill)
		}
	}
	return out
}

// Texts 返回计划中的全部文本命令（按绘制顺序）。
func (p *Plan) Texts() []TextBox {
	var out []TextBox
	for _, c := range p.Commands {
		if c.Text != nil {
			out = append(out, *c.Text)
		}
	}
	return out
}

// Lines 返回计划中的全部线段命令（按绘制顺序）。
func (p *Plan) Lines() []Line {
	var out []Line
	for _, c := range p.Commands {
		if c.Line != nil {
			out = append(out, *c.Line)
		}
	}
	return out
}

// Command 有且只有一个字段非空。
type Command struct {
	Fill *Rect    `json:"fill,omitempty"`
	Line *Line    `json:"line,omitempty"`
	Text *TextBox `json:"text,omitempty"`
}

// Kind returns the human-readable command type.
func (c Command) Kind() string {
	switch {
	case c.Fill != nil:
		return "fill"
	case c.Line != nil:
		return "line"
	case c.Text != nil:
		return "text"
	default:
		return "unknown"
	}
}

// Rect 表示一个实心矩形。
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Color  Color   `json:"color"`
}

// Line 表示一条线段。
type Line struct {
	X1    float64 `json:"x1"`
	Y1    float64 `json:"y1"`
	X2    float64 `json:"x2"`
	Y2    float64 `json:"y2"`
	Color Color   `json:"color"`
	Width float64 `json:"width"` // 线宽（像素）
}

// 文本锚点：水平对齐 left/center/right，垂直对齐 top/bottom。
const (
	AlignLeft   = "left"
	AlignCenter = "center"
	AlignRight  = "right"
	AlignTop    = "top"
	AlignBottom = "bottom"
)

// TextBox 表示一个锚定在 (X, Y) 的单行文本。
type TextBox struct {
	Content  string       `json:"content"`
	X        float64      `json:"x"`
	Y        float64      `json:"y"`
	Font     FontResource `json:"font"`
	FontSize float64      `json:"fontSize"` // pt
	DPI      float64      `json:"dpi"`
	Color    Color        `json:"color"`
	Align    string       `json:"align"`  // X 处的水平锚点
	VAlign   string       `json:"valign"` // Y 处的垂直锚点
}

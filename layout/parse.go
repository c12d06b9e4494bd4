package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseLabelPosition 解析 "bottom-center"、"BottomCenter"、"bottom_center" 等写法。
func ParseLabelPosition(s string) (LabelPosition, error) {
	key := normalizeName(s)
	for p, name := range labelPositionNames {
		if normalizeName(name) == key {
			return p, nil
		}
	}
	return 0, fmt.Errorf("未知的标签位置 %q", s)
}

// ParseAlignment 解析 left/center/right，空串视为 center。
func ParseAlignment(s string) (Alignment, error) {
	switch normalizeName(s) {
	case "", "center", "centre":
		return AlignmentCenter, nil
	case "left":
		return AlignmentLeft, nil
	case "right":
		return AlignmentRight, nil
	}
	return 0, fmt.Errorf("未知的对齐方式 %q", s)
}

func normalizeName(s string) string {
	return strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToLower(strings.TrimSpace(s)))
}

// Hex 返回 #rrggbb 形式。
func (c Color) Hex() string { return fmt.Sprintf("#%02x%02x%02x", clamp8(c.R), clamp8(c.G), clamp8(c.B)) }

func clamp8(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

// ParseColor 解析 "#rrggbb"、"rrggbb"、"#rgb" 以及 black/white。
func ParseColor(s string) (Color, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "black":
		return Black, nil
	case "white":
		return White, nil
	}
	v = strings.TrimPrefix(v, "#")
	if len(v) == 3 {
		v = string([]byte{v[0], v[0], v[1], v[1], v[2], v[2]})
	}
	if len(v) != 6 {
		return Color{}, fmt.Errorf("颜色格式错误: %q", s)
	}
	n, err := strconv.ParseUint(v, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("颜色格式错误: %q: %w", s, err)
	}
	return Color{R: int(n >> 16 & 0xff), G: int(n >> 8 & 0xff), B: int(n & 0xff)}, nil
}

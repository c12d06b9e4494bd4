// Package symbology turns raw data into the module pattern consumed by the
// label engine, using github.com/boombuler/barcode encoders.
package symbology

import (
	"errors"
	"fmt"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/codabar"
	"github.com/boombuler/barcode/code128"
	"github.com/boombuler/barcode/code39"
	"github.com/boombuler/barcode/code93"
	"github.com/boombuler/barcode/ean"
	"github.com/boombuler/barcode/twooffive"

	"github.com/ByLCY/barlabel/layout"
)

var (
	// ErrUnsupported 表示码制不受支持。
	ErrUnsupported = errors.New("unsupported symbology")
	// ErrInvalidData 表示数据无法按该码制编码。
	ErrInvalidData = errors.New("invalid barcode data")
)

// Encoded 是一次编码的结果。
type Encoded struct {
	Symbology layout.Symbology
	// Data 是规范化后的数据，EAN/UPC/ITF-14 会补上校验位。
	Data string
	// Value 是模块序列，'1' 为条，'0' 为空。
	Value string
	// CheckSum 为 -1 表示该码制没有独立的校验值。
	CheckSum int
	// Kind 是编码库给出的码制名称。
	Kind string
}

type encoderFunc func(data string) (barcode.Barcode, string, error)

var encoders = map[layout.Symbology]encoderFunc{
	layout.Code128: func(data string) (barcode.Barcode, string, error) {
		bc, err := code128.Encode(data)
		return bc, data, err
	},
	layout.Code39: func(data string) (barcode.Barcode, string, error) {
		bc, err := code39.Encode(data, false, true)
		return bc, data, err
	},
	layout.Code93: func(data string) (barcode.Barcode, string, error) {
		bc, err := code93.Encode(data, true, true)
		return bc, data, err
	},
	layout.Codabar:         encodeCodabar,
	layout.EAN8:            encodeEAN(7, 8),
	layout.EAN13:           encodeEAN(12, 13),
	layout.UPCA:            encodeUPCA,
	layout.ITF14:           encodeITF14,
	layout.Interleaved2of5: encodeI2of5,
	layout.Standard2of5: func(data string) (barcode.Barcode, string, error) {
		bc, err := twooffive.Encode(data, false)
		return bc, data, err
	},
}

// Encode 按码制编码 data，返回模块序列与规范化数据。
func Encode(sym layout.Symbology, data string) (*Encoded, error) {
	enc, ok := encoders[sym]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, sym)
	}
	if data == "" {
		return nil, fmt.Errorf("%w: %s: 数据为空", ErrInvalidData, sym)
	}
	bc, normalized, err := enc(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %q: %v", ErrInvalidData, sym, data, err)
	}
	out := &Encoded{
		Symbology: sym,
		Data:      normalized,
		Value:     Modules(bc),
		CheckSum:  -1,
		Kind:      bc.Metadata().CodeKind,
	}
	switch sym {
	case layout.EAN8, layout.EAN13, layout.UPCA:
		// 规范化数据的末位就是校验位
		out.CheckSum = int(normalized[len(normalized)-1] - '0')
	default:
		if cs, ok := bc.(barcode.BarcodeIntCS); ok {
			out.CheckSum = cs.CheckSum()
		}
	}
	return out, nil
}

// Modules 读取一维条码图像的第一行，把前景色记为 '1'。
func Modules(bc barcode.Barcode) string {
	b := bc.Bounds()
	var sb strings.Builder
	sb.Grow(b.Dx())
	for x := b.Min.X; x < b.Max.X; x++ {
		r, g, bl, _ := bc.At(x, b.Min.Y).RGBA()
		if (r+g+bl)/3 < 0x8000 {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

func encodeEAN(short, full int) encoderFunc {
	return func(data string) (barcode.Barcode, string, error) {
		if len(data) != short && len(data) != full {
			return nil, "", fmt.Errorf("需要 %d 或 %d 位数字", short, full)
		}
		if !isDigits(data) {
			return nil, "", fmt.Errorf("只能包含数字")
		}
		bc, err := ean.Encode(data)
		if err != nil {
			return nil, "", err
		}
		return bc, bc.Content(), nil
	}
}

// encodeUPCA 把 UPC-A 当作前导 0 的 EAN-13 编码，模块序列完全相同。
func encodeUPCA(data string) (barcode.Barcode, string, error) {
	if len(data) != 11 && len(data) != 12 {
		return nil, "", fmt.Errorf("需要 11 或 12 位数字")
	}
	if !isDigits(data) {
		return nil, "", fmt.Errorf("只能包含数字")
	}
	bc, err := ean.Encode("0" + data)
	if err != nil {
		return nil, "", err
	}
	return bc, strings.TrimPrefix(bc.Content(), "0"), nil
}

func encodeITF14(data string) (barcode.Barcode, string, error) {
	if !isDigits(data) {
		return nil, "", fmt.Errorf("只能包含数字")
	}
	switch len(data) {
	case 13:
		data += string(rune('0' + GS1CheckDigit(data)))
	case 14:
		if want := GS1CheckDigit(data[:13]); int(data[13]-'0') != want {
			return nil, "", fmt.Errorf("校验位不匹配，应为 %d", want)
		}
	default:
		return nil, "", fmt.Errorf("需要 13 或 14 位数字")
	}
	bc, err := twooffive.Encode(data, true)
	return bc, data, err
}

// GS1CheckDigit 按 GS1 模 10 规则计算校验位：自右向左权重 3、1 交替。
// twooffive.AddCheckSum 直接取 sum%10，结果与 GS1 不一致，这里不用它。
func GS1CheckDigit(digits string) int {
	sum := 0
	weight := 3
	for i := len(digits) - 1; i >= 0; i-- {
		sum += int(digits[i]-'0') * weight
		weight = 4 - weight
	}
	return (10 - sum%10) % 10
}

// encodeI2of5 对奇数长度的数据补前导 0。
func encodeI2of5(data string) (barcode.Barcode, string, error) {
	if len(data)%2 == 1 {
		data = "0" + data
	}
	bc, err := twooffive.Encode(data, true)
	return bc, data, err
}

// encodeCodabar 在缺少起止符时补上 A...B。
func encodeCodabar(data string) (barcode.Barcode, string, error) {
	if len(data) < 2 || !isCodabarGuard(data[0]) || !isCodabarGuard(data[len(data)-1]) {
		data = "A" + data + "B"
	}
	bc, err := codabar.Encode(data)
	return bc, data, err
}

func isCodabarGuard(c byte) bool { return c >= 'A' && c <= 'D' }

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

var aliasNames = map[layout.Symbology][]string{
	layout.Code128:         {"CODE128", "CODE-128", "C128"},
	layout.Code39:          {"CODE39", "CODE-39", "C39"},
	layout.Code93:          {"CODE93", "CODE-93", "C93"},
	layout.Codabar:         {"CODABAR"},
	layout.EAN8:            {"EAN8", "EAN-8"},
	layout.EAN13:           {"EAN13", "EAN-13"},
	layout.UPCA:            {"UPCA", "UPC-A", "UPC"},
	layout.ITF14:           {"ITF14", "ITF-14"},
	layout.Interleaved2of5: {"I2OF5", "I25", "ITF", "INTERLEAVED2OF5"},
	layout.Standard2of5:    {"S2OF5", "2OF5", "STANDARD2OF5"},
}

var aliases = func() map[string]layout.Symbology {
	m := map[string]layout.Symbology{}
	for sym, names := range aliasNames {
		for _, n := range names {
			m[n] = sym
		}
	}
	return m
}()

// Parse 解析码制名称，大小写与空格、下划线不敏感。
func Parse(name string) (layout.Symbology, error) {
	key := strings.ToUpper(strings.TrimSpace(name))
	key = strings.NewReplacer(" ", "", "_", "").Replace(key)
	if sym, ok := aliases[key]; ok {
		return sym, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupported, name)
}

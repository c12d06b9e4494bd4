package dsl

import (
	"fmt"
	"io"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	dslLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "Color", Pattern: `#(?:[0-9A-Fa-f]{3}|[0-9A-Fa-f]{6})\b`},
		{Name: "HashComment", Pattern: `#[^\n]*`},
		{Name: "Number", Pattern: `-?(?:\d+\.\d+|\d+)(?:px|pt|mm|cm|in)?`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Symbol", Pattern: `[;:]`},
		{Name: "LBrace", Pattern: `{`},
		{Name: "RBrace", Pattern: `}`},
	})

	batchParser = participle.MustBuild[Document](
		participle.Lexer(dslLexer),
		participle.Elide("Whitespace", "LineComment", "BlockComment", "HashComment"),
	)
)

// Document is the root AST node for a batch file.
type Document struct {
	Pos      lexer.Position `parser:"" json:"-"`
	Name     string         `parser:"Newline* 'batch' @Ident"`
	Version  string         `parser:"@Ident?"`
	Sections []*Section     `parser:"'{' Newline* ( @@ Newline* )* '}' Newline*"`
}

// Section is one top-level entry: defaults, a single barcode or an each loop.
type Section struct {
	Defaults *DefaultsSection `parser:"  @@"`
	Barcode  *BarcodeSection  `parser:"| @@"`
	Each     *EachSection     `parser:"| @@"`
}

// Kind returns the human-readable section type.
func (s *Section) Kind() string {
	switch {
	case s == nil:
		return "unknown"
	case s.Defaults != nil:
		return "defaults"
	case s.Barcode != nil:
		return "barcode"
	case s.Each != nil:
		return "each"
	default:
		return "unknown"
	}
}

// DefaultsSection 为后续所有条码提供缺省属性。
type DefaultsSection struct {
	Block *Block `parser:"'defaults' @@"`
}

// BarcodeSection 声明一张条码：码制、数据与可选属性块。
type BarcodeSection struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Type  string         `parser:"'barcode' @Ident"`
	Data  StringLiteral  `parser:"@String"`
	Block *Block         `parser:"@@?"`
}

// EachSection 对数据中的数组逐项展开内部的条码声明，当前项绑定到 Var。
type EachSection struct {
	Pos      lexer.Position    `parser:"" json:"-"`
	Path     StringLiteral     `parser:"'each' @String"`
	Var      string            `parser:"'as' @Ident"`
	Barcodes []*BarcodeSection `parser:"'{' Newline* ( @@ Newline* )* '}'"`
}

// Block is a delimited list of assignments.
type Block struct {
	Assignments []*Assignment `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// Assignment uses colon syntax (key: value).
type Assignment struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Key   string         `parser:"@Ident"`
	Value *Value         `parser:"':' @@"`
}

// Value represents a property value.
type Value struct {
	String *StringLiteral `parser:"  @String"`
	Number *string        `parser:"| @Number"`
	Color  *string        `parser:"| @Color"`
	Ident  *string        `parser:"| @Ident"`
}

// Raw 返回值的文本形式，字符串已去掉引号。
func (v *Value) Raw() string {
	switch {
	case v == nil:
		return ""
	case v.String != nil:
		return string(*v.String)
	case v.Number != nil:
		return *v.Number
	case v.Color != nil:
		return *v.Color
	case v.Ident != nil:
		return *v.Ident
	}
	return ""
}

// StringLiteral unquotes Go-style strings on capture.
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("string literal capture requires value")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLiteral(val)
	return nil
}

// Parse parses a batch file from an io.Reader.
func Parse(r io.Reader) (*Document, error) {
	return batchParser.Parse("", r)
}

// ParseString parses a batch file from a string.
func ParseString(input string) (*Document, error) {
	return batchParser.ParseString("", input)
}

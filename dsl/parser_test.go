package dsl_test

import (
	"strings"
	"testing"

	"github.com/ByLCY/barlabel/dsl"
)

const sampleDSL = `
// 零售标签
batch Retail v1 {
  defaults {
    width: 50mm
    height: 150
    dpi: 96
    font: "embed:goregular"; size: 10pt
    fore: #000; back: #ffffff
    position: bottom-center
  }

  barcode EAN13 "590123412345" {
    label: "${sku.name|unnamed}"
    out: "ean.png"
  }

  barcode CODE128 "HELLO"

  each "items" as item {
    barcode UPC-A "${item.upc}" { out: "${item.id}.png" }
  }
}
`

func TestParseDocument(t *testing.T) {
	doc, err := dsl.ParseString(sampleDSL)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if doc.Name != "Retail" {
		t.Fatalf("expected batch name Retail, got %s", doc.Name)
	}
	if doc.Version != "v1" {
		t.Fatalf("expected version v1, got %s", doc.Version)
	}

	var kinds []string
	for _, s := range doc.Sections {
		kinds = append(kinds, s.Kind())
	}
	if got := strings.Join(kinds, ","); got != "defaults,barcode,barcode,each" {
		t.Fatalf("unexpected sections: %s", got)
	}

	defaults := doc.Sections[0].Defaults.Block.Assignments
	if len(defaults) != 8 {
		t.Fatalf("expected 8 default assignments, got %d", len(defaults))
	}
	if v := defaults[0].Value; v.Number == nil || *v.Number != "50mm" {
		t.Fatalf("expected width 50mm, got %+v", v)
	}
	if v := defaults[5].Value; v.Color == nil || *v.Color != "#000" {
		t.Fatalf("expected fore color #000, got %+v", v)
	}
	if v := defaults[7].Value; v.Ident == nil || *v.Ident != "bottom-center" {
		t.Fatalf("expected position ident, got %+v", v)
	}

	ean := doc.Sections[1].Barcode
	if ean.Type != "EAN13" || ean.Data != "590123412345" {
		t.Fatalf("unexpected barcode header: %s %q", ean.Type, ean.Data)
	}
	if got := ean.Block.Assignments[0].Value.Raw(); got != "${sku.name|unnamed}" {
		t.Fatalf("unexpected label: %q", got)
	}
	if doc.Sections[2].Barcode.Block != nil {
		t.Fatalf("expected barcode without block")
	}

	each := doc.Sections[3].Each
	if each.Path != "items" || each.Var != "item" || len(each.Barcodes) != 1 {
		t.Fatalf("unexpected each section: %+v", each)
	}
	if each.Barcodes[0].Type != "UPC-A" {
		t.Fatalf("expected UPC-A, got %s", each.Barcodes[0].Type)
	}
}

func TestParseVersionOptional(t *testing.T) {
	doc, err := dsl.ParseString("batch Plain {\n barcode CODE39 \"A1\"\n}\n")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if doc.Version != "" || len(doc.Sections) != 1 {
		t.Fatalf("unexpected document: %+v", doc)
	}
}

func TestParseErrors(t *testing.T) {
	for _, src := range []string{
		`batch {}`,
		`batch X { barcode EAN13 }`,
		`batch X { defaults { width 10 } }`,
		`batch X { each items as item { } }`,
	} {
		if _, err := dsl.ParseString(src); err == nil {
			t.Fatalf("expected error for %q", src)
		}
	}
}

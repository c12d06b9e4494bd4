package cmd

import (
	"bytes"
	"encoding/json"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/barlabel/barcode"
)

// execute runs the command tree in an isolated working directory.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "barlabel", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)

	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"render", "batch", "serve"})
}

func TestRootCommandHelp(t *testing.T) {
	out, _, err := execute(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "Available Commands:")
	assert.Contains(t, out, "render")
}

func TestRootCommandVersion(t *testing.T) {
	out, _, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, Version)
}

func TestRender(t *testing.T) {
	t.Chdir(t.TempDir())

	_, stderr, err := execute(t, "render", "ean13", "590123412345",
		"-o", "out/ean.png", "--report", "ean.yaml", "--debug", "plan.json",
		"--width", "400", "--position", "bottom-left", "--log-format", "text")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Barcode written")

	f, err := os.Open(filepath.Join("out", "ean.png"))
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 400, img.Bounds().Dx())
	assert.Equal(t, 150, img.Bounds().Dy())

	raw, err := os.ReadFile("ean.yaml")
	require.NoError(t, err)
	report, err := barcode.ParseReport(raw)
	require.NoError(t, err)
	assert.Equal(t, "EAN13", report.Type)
	assert.Equal(t, "5901234123457", report.Data)
	assert.Equal(t, "bottom-left", report.LabelPosition)
	assert.Equal(t, "png", report.ImageFormat)

	raw, err = os.ReadFile("plan.json")
	require.NoError(t, err)
	var plan map[string]any
	require.NoError(t, json.Unmarshal(raw, &plan))
	assert.NotEmpty(t, plan)
}

func TestRenderStdoutPDF(t *testing.T) {
	t.Chdir(t.TempDir())

	out, _, err := execute(t, "render", "code128", "HELLO", "-o", "-", "--format", "pdf")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "%PDF"))
}

func TestRenderUsesConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile("barlabel.yaml", []byte(`
render:
  width: 500
  height: 100
  include_label: false
`), 0o644))

	_, _, err := execute(t, "render", "code39", "ABC", "-o", "a.png", "--report", "a.json")
	require.NoError(t, err)

	raw, err := os.ReadFile("a.json")
	require.NoError(t, err)
	var report barcode.Report
	require.NoError(t, json.Unmarshal(raw, &report))
	assert.Equal(t, 500, report.ImageWidth)
	assert.Equal(t, 100, report.ImageHeight)
	assert.False(t, report.IncludeLabel)
}

func TestRenderErrors(t *testing.T) {
	t.Chdir(t.TempDir())

	_, _, err := execute(t, "render", "qr", "x")
	assert.Error(t, err)

	_, _, err = execute(t, "render", "ean13", "abc", "-o", "x.png")
	assert.Error(t, err)

	_, _, err = execute(t, "render", "code128", "x", "--rotate", "45")
	assert.Error(t, err)

	_, _, err = execute(t, "render", "code128")
	assert.Error(t, err)

	_, _, err = execute(t, "--config", "missing.yaml", "render", "code128", "x")
	assert.Error(t, err)
}

func TestBatch(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile("labels.barlabel", []byte(`
batch Retail {
  defaults { width: 300  height: 120  size: 9 }
  barcode EAN13 "590123412345" { out: "ean.png" }
  each "items" as item {
    barcode CODE128 "${item.sku}" { label: "${item.name|unnamed}"  out: "${item.sku}.png" }
  }
}
`), 0o644))
	require.NoError(t, os.WriteFile("items.yaml", []byte(`
items:
  - sku: A100
    name: Apple
  - sku: B200
`), 0o644))

	out, _, err := execute(t, "batch", "labels.barlabel", "--data", "items.yaml", "--out-dir", "out", "--workers", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Retail: 3/3 barcodes written")
	for _, name := range []string{"ean.png", "A100.png", "B200.png"} {
		assert.FileExists(t, filepath.Join("out", name))
	}
}

func TestBatchDryRun(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile("b.barlabel", []byte(`batch Demo {
  barcode CODE128 "${id}"
}
`), 0o644))
	require.NoError(t, os.WriteFile("d.json", []byte(`{"id": 42}`), 0o644))

	out, _, err := execute(t, "batch", "b.barlabel", "--data", "d.json", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "CODE128\t42\tdemo-001.png")
	assert.NoFileExists(t, "demo-001.png")
}

func TestBatchFailure(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile("b.barlabel", []byte(`batch Bad {
  barcode EAN13 "not-digits"
  barcode CODE128 "ok"
}
`), 0o644))

	out, _, err := execute(t, "batch", "b.barlabel", "--continue-on-error", "--workers", "1")
	require.Error(t, err)
	assert.Contains(t, out, "1/2 barcodes written (1 failed, 0 skipped)")
	assert.FileExists(t, "bad-002.png")

	_, _, err = execute(t, "batch", "b.barlabel", "--data", "missing.json")
	assert.Error(t, err)
}

func TestServeFlags(t *testing.T) {
	cmd := NewRootCommand()
	serve, _, err := cmd.Find([]string{"serve"})
	require.NoError(t, err)
	for _, name := range []string{"host", "port", "timeout"} {
		assert.NotNil(t, serve.Flags().Lookup(name), name)
	}
}

func TestRenderFromReport(t *testing.T) {
	t.Chdir(t.TempDir())

	_, _, err := execute(t, "render", "upca", "03600029145", "--rotate", "90", "--size", "8", "-o", "a.png", "--report", "a.json")
	require.NoError(t, err)

	_, _, err = execute(t, "render", "--from-report", "a.json", "-o", "b.png", "--report", "b.json")
	require.NoError(t, err)

	a, err := os.ReadFile("a.json")
	require.NoError(t, err)
	b, err := os.ReadFile("b.json")
	require.NoError(t, err)
	ra, err := barcode.ParseReport(a)
	require.NoError(t, err)
	rb, err := barcode.ParseReport(b)
	require.NoError(t, err)
	ra.EncodingTime, rb.EncodingTime = 0, 0
	assert.Equal(t, ra, rb)

	_, _, err = execute(t, "render", "code128", "x", "--from-report", "a.json")
	assert.Error(t, err)
}

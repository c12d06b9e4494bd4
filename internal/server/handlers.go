package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ByLCY/barlabel/barcode"
	"github.com/ByLCY/barlabel/layout"
	"github.com/ByLCY/barlabel/symbology"
)

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := HealthResponse{
		Status:  "healthy",
		Version: s.version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("Error encoding health response", "error", err)
	}
}

// barcodeHandler renders one barcode described by query parameters.
// type and data are required; every other parameter overrides the server defaults.
func (s *Server) barcodeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	sym, err := symbology.Parse(q.Get("type"))
	if err != nil {
		barcodesTotal.WithLabelValues("unknown", "invalid").Inc()
		writeErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	data := q.Get("data")
	if data == "" {
		barcodesTotal.WithLabelValues(string(sym), "invalid").Inc()
		writeErrorResponse(w, "missing data parameter", http.StatusBadRequest)
		return
	}

	opts, err := s.requestOptions(r)
	if err != nil {
		barcodesTotal.WithLabelValues(string(sym), "invalid").Inc()
		writeErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	start := time.Now()
	res, err := s.gen.Encode(data, sym, opts)
	renderDuration.WithLabelValues(string(sym)).Observe(time.Since(start).Seconds())
	if err != nil {
		status := statusForError(err)
		if status == http.StatusBadRequest {
			barcodesTotal.WithLabelValues(string(sym), "invalid").Inc()
		} else {
			barcodesTotal.WithLabelValues(string(sym), "failed").Inc()
		}
		var lre *layout.LabelRenderingError
		if errors.As(err, &lre) {
			labelFailures.WithLabelValues(string(sym)).Inc()
		}
		slog.Warn("Barcode generation failed", "type", sym, "status", status, "error", err)
		writeErrorResponse(w, err.Error(), status)
		return
	}

	// 先写入缓冲区，编码失败时仍能返回 JSON 错误。
	var buf bytes.Buffer
	if err := s.gen.Write(&buf, res, opts.Format); err != nil {
		barcodesTotal.WithLabelValues(string(sym), "failed").Inc()
		writeErrorResponse(w, err.Error(), http.StatusInternalServerError)
		return
	}
	barcodesTotal.WithLabelValues(string(sym), "ok").Inc()

	w.Header().Set("Content-Type", barcode.ContentType(opts.Format))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("Error writing barcode response", "error", err)
	}
}

// requestOptions merges query parameters over the server defaults.
// dpi is applied first so that unit lengths convert at the requested resolution.
func (s *Server) requestOptions(r *http.Request) (barcode.Options, error) {
	opts := s.defaults
	q := r.URL.Query()
	if v := q.Get("dpi"); v != "" {
		if err := opts.Set("dpi", v); err != nil {
			return opts, fmt.Errorf("dpi: %w", err)
		}
	}
	for key, values := range q {
		switch key {
		case "type", "data", "dpi":
			continue
		}
		if len(values) == 0 {
			continue
		}
		value := values[len(values)-1]
		if strings.EqualFold(strings.TrimSpace(key), "font") && !serverFont(value) {
			return opts, errFontNotAllowed
		}
		if err := opts.Set(key, value); err != nil {
			return opts, fmt.Errorf("%s: %w", key, err)
		}
	}
	if opts.Format != barcode.FormatPDF {
		if _, err := barcode.ParseFormat(opts.Format); err != nil {
			return opts, err
		}
	}
	if opts.Width > s.maxWidth || opts.Height > s.maxHeight {
		return opts, fmt.Errorf("image size %dx%d exceeds limit %dx%d", opts.Width, opts.Height, s.maxWidth, s.maxHeight)
	}
	return opts, opts.Validate()
}

// errFontNotAllowed does not echo the requested value back to the client.
var errFontNotAllowed = errors.New("font: only embed: and builtin: fonts are allowed")

// serverFont reports whether a client-supplied font refers to a bundled or configured font.
func serverFont(src string) bool {
	src = strings.ToLower(strings.TrimSpace(src))
	for _, prefix := range []string{"embed:", "builtin:", "built-in:"} {
		if strings.HasPrefix(src, prefix) {
			return true
		}
	}
	return false
}

// statusForError maps generation errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, symbology.ErrInvalidData),
		errors.Is(err, symbology.ErrUnsupported),
		errors.Is(err, layout.ErrTooNarrow):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeErrorResponse writes a JSON error body with the given status.
func writeErrorResponse(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: message, Code: status}); err != nil {
		slog.Error("Error encoding error response", "error", err)
	}
}

package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
)

// ColorTextHandler implements slog.Handler with single-line, optionally
// colored text output: "[time] [LEVEL] message key=value ...".
type ColorTextHandler struct {
	opts     *slog.HandlerOptions
	w        io.Writer
	mu       *sync.Mutex
	attrs    []slog.Attr
	prefix   string // dotted group prefix applied to record attrs
	useColor bool
}

// NewColorTextHandler creates a new ColorTextHandler
func NewColorTextHandler(w io.Writer, opts *slog.HandlerOptions, useColor bool) *ColorTextHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return &ColorTextHandler{
		opts:     opts,
		w:        w,
		mu:       &sync.Mutex{},
		useColor: useColor,
	}
}

// Enabled reports whether the handler handles records at the given level
func (h *ColorTextHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

// Handle formats and writes a log record
func (h *ColorTextHandler) Handle(_ context.Context, r slog.Record) error {
	var buf []byte
	buf = fmt.Appendf(buf, "[%s] [%s] %s", r.Time.Format("2006-01-02 15:04:05"), h.formatLevel(r.Level), r.Message)

	for _, attr := range h.attrs {
		buf = h.appendAttr(buf, "", attr)
	}
	r.Attrs(func(a slog.Attr) bool {
		buf = h.appendAttr(buf, h.prefix, a)
		return true
	})

	buf = append(buf, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf)
	return err
}

func (h *ColorTextHandler) formatLevel(level slog.Level) string {
	var levelStr, color string
	switch {
	case level < slog.LevelInfo:
		levelStr, color = "DEBUG", colorGray
	case level < slog.LevelWarn:
		levelStr, color = "INFO", colorGreen
	case level < slog.LevelError:
		levelStr, color = "WARN", colorYellow
	default:
		levelStr, color = "ERROR", colorRed
	}

	if h.useColor {
		return color + levelStr + colorReset
	}
	return levelStr
}

func (h *ColorTextHandler) appendAttr(buf []byte, prefix string, a slog.Attr) []byte {
	if a.Equal(slog.Attr{}) {
		return buf
	}
	a.Value = a.Value.Resolve()

	key := a.Key
	if prefix != "" {
		key = prefix + "." + key
	}

	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			buf = h.appendAttr(buf, key, ga)
		}
		return buf
	}

	val := formatValue(a.Value)
	if h.useColor {
		return fmt.Appendf(buf, " %s%s%s=%s", colorCyan, key, colorReset, val)
	}
	return fmt.Appendf(buf, " %s=%s", key, val)
}

// formatValue formats a slog.Value for text output. Strings containing
// spaces are quoted so lines stay machine-splittable.
func formatValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		s := v.String()
		if strings.ContainsAny(s, " \t\"=") {
			return strconv.Quote(s)
		}
		return s
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', 3, 64)
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	case slog.KindAny:
		return fmt.Sprintf("%v", v.Any())
	default:
		return v.String()
	}
}

// WithAttrs returns a new handler with additional attrs
func (h *ColorTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	nh := *h
	nh.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	nh.attrs = append(nh.attrs, h.attrs...)
	for _, a := range attrs {
		if h.prefix != "" {
			a.Key = h.prefix + "." + a.Key
		}
		nh.attrs = append(nh.attrs, a)
	}
	return &nh
}

// WithGroup returns a new handler whose subsequent attrs are prefixed by name
func (h *ColorTextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	nh := *h
	if nh.prefix == "" {
		nh.prefix = name
	} else {
		nh.prefix = nh.prefix + "." + name
	}
	return &nh
}

package logger

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

// Redacted replaces the value of every masked attribute.
const Redacted = "[REDACTED]"

// DefaultRedactedKeys are masked by every logger built with New.
var DefaultRedactedKeys = []string{
	"authorization",
	"x-api-key",
	"secret_key",
	"api_key",
	"webhook_secret",
	"password",
}

// ContextExtractor extracts a slog attribute from context.
type ContextExtractor func(ctx context.Context) (slog.Attr, bool)

// LogHandlerDecorator wraps a slog.Handler, masks sensitive attributes
// (including inside groups) and injects attributes from context.
type LogHandlerDecorator struct {
	next       slog.Handler
	redact     map[string]struct{}
	extractors []ContextExtractor
}

// NewLogHandlerDecorator creates a new decorated handler. Nil extractors are dropped.
func NewLogHandlerDecorator(next slog.Handler, redactKeys []string, extractors ...ContextExtractor) slog.Handler {
	clean := make([]ContextExtractor, 0, len(extractors))
	for _, ex := range extractors {
		if ex != nil {
			clean = append(clean, ex)
		}
	}
	redact := make(map[string]struct{}, len(redactKeys))
	for _, k := range redactKeys {
		redact[strings.ToLower(k)] = struct{}{}
	}
	return &LogHandlerDecorator{next: next, redact: redact, extractors: clean}
}

func (h *LogHandlerDecorator) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle masks the record attributes, adds context attributes and delegates.
func (h *LogHandlerDecorator) Handle(ctx context.Context, rec slog.Record) error {
	out := slog.NewRecord(rec.Time, rec.Level, rec.Message, rec.PC)
	rec.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(h.mask(a))
		return true
	})
	for _, ex := range h.extractors {
		if attr, ok := ex(ctx); ok {
			out.AddAttrs(h.mask(attr))
		}
	}
	return h.next.Handle(ctx, out)
}

func (h *LogHandlerDecorator) WithAttrs(attrs []slog.Attr) slog.Handler {
	masked := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		masked[i] = h.mask(a)
	}
	return &LogHandlerDecorator{
		next:       h.next.WithAttrs(masked),
		redact:     h.redact,
		extractors: h.extractors,
	}
}

func (h *LogHandlerDecorator) WithGroup(name string) slog.Handler {
	return &LogHandlerDecorator{
		next:       h.next.WithGroup(name),
		redact:     h.redact,
		extractors: h.extractors,
	}
}

func (h *LogHandlerDecorator) mask(a slog.Attr) slog.Attr {
	if _, ok := h.redact[strings.ToLower(a.Key)]; ok {
		return slog.String(a.Key, Redacted)
	}

	v := a.Value.Resolve()
	switch v.Kind() {
	case slog.KindGroup:
		group := v.Group()
		masked := make([]slog.Attr, len(group))
		for i, ga := range group {
			masked[i] = h.mask(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(masked...)}
	case slog.KindAny:
		switch m := v.Any().(type) {
		case http.Header:
			return slog.Any(a.Key, h.maskHeaderMap(m))
		case map[string][]string:
			return slog.Any(a.Key, h.maskHeaderMap(m))
		}
	}
	return slog.Attr{Key: a.Key, Value: v}
}

// maskHeaderMap covers http.Header values logged with slog.Any.
func (h *LogHandlerDecorator) maskHeaderMap(m map[string][]string) map[string][]string {
	out := make(map[string][]string, len(m))
	for k, vs := range m {
		if _, ok := h.redact[strings.ToLower(k)]; ok {
			out[k] = []string{Redacted}
			continue
		}
		out[k] = vs
	}
	return out
}

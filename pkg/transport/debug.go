package transport

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrymomot/magpie/pkg/apierror"
	"github.com/dmitrymomot/magpie/pkg/logger"
)

const redacted = "[REDACTED]"

// sensitiveHeaders are never written to logs.
var sensitiveHeaders = []string{"authorization", "x-api-key"}

// SanitizeHeaders returns a copy of h with credential-bearing headers masked.
func SanitizeHeaders(h http.Header) http.Header {
	out := make(http.Header, len(h))
	for name, values := range h {
		if isSensitiveHeader(name) {
			out[name] = []string{redacted}
			continue
		}
		out[name] = append([]string(nil), values...)
	}
	return out
}

func isSensitiveHeader(name string) bool {
	for _, s := range sensitiveHeaders {
		if strings.EqualFold(name, s) {
			return true
		}
	}
	return false
}

func (c *Client) logRequest(ctx context.Context, req *http.Request, body []byte, attempt int) {
	if !c.cfg.Debug {
		return
	}
	c.logger.DebugContext(ctx, "http request",
		logger.Method(req.Method),
		logger.URL(req.URL.String()),
		logger.Attempt(attempt+1),
		slog.Any("headers", SanitizeHeaders(req.Header)),
		slog.String("body", string(body)),
	)
}

func (c *Client) logResponse(ctx context.Context, resp *http.Response, body []byte) {
	if !c.cfg.Debug || resp == nil {
		return
	}
	c.logger.DebugContext(ctx, "http response",
		logger.StatusCode(resp.StatusCode),
		logger.RequestID(apierror.RequestID(resp.Header)),
		slog.Any("headers", SanitizeHeaders(resp.Header)),
		slog.String("body", string(body)),
	)
}

func (c *Client) logRetry(ctx context.Context, method, url string, attempt int, delay time.Duration, err error) {
	if !c.cfg.Debug {
		return
	}
	c.logger.DebugContext(ctx, "retrying request",
		logger.Method(method),
		logger.URL(url),
		logger.Attempt(attempt+1),
		logger.Delay(delay),
		logger.Error(err),
	)
}

// Package logger builds the *slog.Logger used by the Magpie client.
//
// New returns a logger whose handler is wrapped by LogHandlerDecorator. The
// decorator masks credential-bearing attributes (Authorization, X-API-Key,
// secret keys) wherever they appear, including inside groups and logged
// http.Header values, and injects attributes taken from context.Context.
//
// # Usage
//
//	log := logger.New(
//	    logger.WithFormat(logger.FormatText),
//	    logger.WithLevel(slog.LevelDebug),
//	    logger.WithContextValue("trace_id", traceKey{}),
//	)
//	log.DebugContext(ctx, "http response",
//	    logger.StatusCode(200),
//	    logger.RequestID("req_123"),
//	)
//
// Formats and levels can be parsed from configuration strings with
// ParseFormat and ParseLevel.
//
// Helper constructors such as Error and RequestID return an empty Attr for
// empty input, so they can be passed without a nil check.
package logger

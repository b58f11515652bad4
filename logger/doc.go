// Package logger provides structured logging on top of zerolog.
//
// A Logger carries a service name and optional component tag; fields are
// passed as maps, usually built with Fields:
//
//	log := logger.New(&logger.Config{Level: "debug", Format: "json"}, "intersect")
//	log.WithComponent("sources").Info("loaded", logger.Fields("count", 3))
//
// Request-scoped ids placed on a context with ContextWithRequestID (or the
// trace helpers) are attached by WithContext.
//
// Libraries that accept a *Logger default to Nop so they stay silent unless
// the caller opts in.
package logger

// Package obs provides the structured logging used across the analysis
// pipeline: a plain log.Printf sink plus optional Sentry breadcrumbs/error
// capture when a DSN is configured. Sentry is entirely optional: with no
// client installed every call degrades to the plain log line, so the
// pipeline never depends on a network call succeeding.
package obs

import (
	"fmt"
	"log"

	"github.com/getsentry/sentry-go"
)

// Fields is a structured log-field bag, the same shape used throughout the
// pack for ad hoc structured logging.
type Fields map[string]interface{}

// Info logs an informational message with structured fields and, if a
// Sentry client is active, records it as a breadcrumb.
func Info(msg string, fields Fields) {
	log.Printf("[INFO] %s %s", msg, formatFields(fields))
	breadcrumb(sentry.LevelInfo, msg, fields)
}

// Warn logs a warning and records a matching breadcrumb. The pipeline's
// AnalysisWarning.* values are returned in Result.Warnings and are not
// logged through Warn.
func Warn(msg string, fields Fields) {
	log.Printf("[WARN] %s %s", msg, formatFields(fields))
	breadcrumb(sentry.LevelWarning, msg, fields)
}

// Error logs an error with structured fields and, if a Sentry client is
// active, captures it as an exception event. Called at the
// per-candidate-key recover() boundary; load-time failures (LibraryError.*)
// are returned to the caller and are not logged through Error.
func Error(msg string, err error, fields Fields) {
	log.Printf("[ERROR] %s: %v %s", msg, err, formatFields(fields))

	hub := sentry.CurrentHub()
	if hub == nil || hub.Client() == nil {
		return
	}
	hub.WithScope(func(scope *sentry.Scope) {
		for k, v := range fields {
			scope.SetContext(k, map[string]interface{}{"value": v})
		}
		hub.CaptureException(err)
	})
}

func breadcrumb(level sentry.Level, msg string, fields Fields) {
	hub := sentry.CurrentHub()
	if hub == nil || hub.Client() == nil {
		return
	}
	sentry.AddBreadcrumb(&sentry.Breadcrumb{
		Type:     "default",
		Category: "analysis",
		Message:  msg,
		Data:     map[string]interface{}(fields),
		Level:    level,
	})
}

func formatFields(fields Fields) string {
	if len(fields) == 0 {
		return ""
	}
	out := "{"
	first := true
	for k, v := range fields {
		if !first {
			out += ", "
		}
		out += fmt.Sprintf("%s=%v", k, v)
		first = false
	}
	return out + "}"
}

// Init configures the global Sentry hub from a DSN. An empty dsn leaves
// Sentry disabled (CurrentHub().Client() == nil), which every logging call
// above already treats as a no-op.
func Init(dsn string) error {
	if dsn == "" {
		return nil
	}
	return sentry.Init(sentry.ClientOptions{Dsn: dsn})
}

package logger

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// LogFetch logs the outcome of a single remote request attempt.
// A nil err means the resource was retrieved.
func LogFetch(l Logger, url string, attempt, maxAttempts int, err error) {
	fields := map[string]interface{}{
		"url":          url,
		"attempt":      attempt,
		"max_attempts": maxAttempts,
	}

	switch {
	case err == nil:
		l.DebugWithFields("Fetched resource", fields)
	case attempt < maxAttempts:
		l.WithError(err).WarnWithFields("Request failed, retrying", fields)
	default:
		l.WithError(err).ErrorWithFields("Request failed, giving up", fields)
	}
}

// LogRecord logs the result of assembling one identifier
func LogRecord(l Logger, id int, name string, added bool) {
	fields := map[string]interface{}{"id": id}
	if name != "" {
		fields["name"] = name
	}

	if added {
		l.InfoWithFields("Record added", fields)
	} else {
		l.WarnWithFields("Record skipped", fields)
	}
}

// LogCheckpoint logs a durable checkpoint write
func LogCheckpoint(l Logger, path string, lastID, records int) {
	l.InfoWithFields("Checkpoint saved", map[string]interface{}{
		"path":    path,
		"last_id": lastID,
		"records": records,
	})
}

// LogComponentStart logs when a component starts
func LogComponentStart(component string, config map[string]interface{}) {
	logger := GetLogger().WithField("component", component)
	if len(config) > 0 {
		logger = logger.WithFields(config)
	}
	logger.Info("Component started")
}

// LogComponentStop logs when a component stops
func LogComponentStop(component string, reason string) {
	GetLogger().WithFields(map[string]interface{}{
		"component": component,
		"reason":    reason,
	}).Info("Component stopped")
}

// LogMetrics logs run metrics such as totals and elapsed time
func LogMetrics(operation string, metrics map[string]interface{}) {
	fields := map[string]interface{}{
		"operation": operation,
		"type":      "metrics",
	}
	for k, v := range metrics {
		fields[k] = v
	}
	GetLogger().InfoWithFields("Run metrics", fields)
}

// Percent formats done/total as a percentage string
func Percent(done, total int) string {
	if total <= 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(done)/float64(total)*100)
}

// NewNopLogger creates a no-operation logger for testing
func NewNopLogger() Logger {
	return &nopLogger{}
}

type nopLogger struct{}

func (n *nopLogger) Debug(msg string)                                          {}
func (n *nopLogger) Info(msg string)                                           {}
func (n *nopLogger) Warn(msg string)                                           {}
func (n *nopLogger) Error(msg string)                                          {}
func (n *nopLogger) Fatal(msg string)                                          {}
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) WithContext(ctx context.Context) Logger                    { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) FatalWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) GetZerolog() *zerolog.Logger                               { return nil }

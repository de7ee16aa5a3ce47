// Package logger provides structured logging for the Pokédex builder.
//
// It wraps zerolog behind a small Logger interface so components can be
// handed a logger explicitly and tests can swap in NewTestLogger or
// NewNopLogger.
//
//	logger.Initialize(&cfg.Logging)
//	log := logger.GetLogger().WithField("component", "pipeline")
//	log.InfoWithFields("Checkpoint saved", map[string]interface{}{"last_id": 25})
//
// Console output is written to stderr and colored only when stderr is a
// terminal. Setting logging.file additionally appends JSON lines to that file.
package logger

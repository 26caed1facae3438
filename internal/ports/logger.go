package ports

import "context"

// Logger is the structured logger every store and the simulator write to.
// Fields are free-form key/value pairs; adapters decide how to render them.
type Logger interface {
	// Debug logs a message at Debug level.
	Debug(ctx context.Context, msg string, fields ...map[string]interface{})
	// Info logs a message at Info level.
	Info(ctx context.Context, msg string, fields ...map[string]interface{})
	// Warn logs a message at Warning level.
	Warn(ctx context.Context, msg string, fields ...map[string]interface{})
	// Error logs an error message at Error level. err may be nil.
	Error(ctx context.Context, err error, msg string, fields ...map[string]interface{})
}

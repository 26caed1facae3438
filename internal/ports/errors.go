package ports

import "errors"

// Standard application-level errors.
// Adapters and stores wrap underlying failures with these so callers can use errors.Is.
var (
	// General Errors
	ErrNotFound           = errors.New("resource not found")
	ErrConfigurationError = errors.New("invalid or missing configuration")

	// Trading Errors
	ErrInvalidTradeInput = errors.New("invalid trade input")
	ErrTradeNotFound     = errors.New("trade not found among open trades")
	ErrInvalidSettings   = errors.New("invalid settings")
	ErrInvalidAmount     = errors.New("amount must be a finite number")

	// Persistence Errors
	// These are logged by the persistence layer and never returned from store operations.
	ErrPersistenceRead  = errors.New("persisted value could not be read")
	ErrPersistenceWrite = errors.New("value could not be persisted")

	// Database Specific Errors
	ErrDBConnection = errors.New("database connection error")
	ErrQueryFailed  = errors.New("database query failed")
	ErrUpdateFailed = errors.New("database update failed")
)

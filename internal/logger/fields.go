package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldDriver is the structured log field key for the salary store driver.
	FieldDriver = "store_driver"
	// FieldTable is the structured log field key for the salary store table.
	FieldTable = "store_table"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields safely attaches the provided fields to the logger.
// If the logger is nil or no fields are supplied, the input logger is returned
// unchanged, defaulting to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// StoreFields returns the fields that describe which salary store is queried.
func StoreFields(driver, table string) []zap.Field {
	return StringFields(
		StringField{Key: FieldDriver, Value: driver},
		StringField{Key: FieldTable, Value: table},
	)
}

// WithStoreFields attaches the store fields to the provided logger.
func WithStoreFields(logger *zap.Logger, driver, table string) *zap.Logger {
	return WithFields(logger, StoreFields(driver, table)...)
}

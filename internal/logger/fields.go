package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldProvider is the structured log field key for the text generation provider.
	FieldProvider = "ai_provider"
	// FieldModel is the structured log field key for the text generation model.
	FieldModel = "ai_model"
	// FieldEmbeddingProvider names the embedding backend in use.
	FieldEmbeddingProvider = "embedding_provider"
	// FieldEmbeddingModel names the embedding model in use.
	FieldEmbeddingModel = "embedding_model"
	// FieldIndexLocation is where the vector index artifact lives.
	FieldIndexLocation = "index_location"
	// FieldSessionID correlates the log lines of one interview session.
	FieldSessionID = "session_id"
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

// WithFields attaches fields to logger, falling back to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// CommonFields describes a text generation backend.
func CommonFields(provider, model string) []zap.Field {
	return StringFields(
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)
}

// WithCommonFields attaches the text generation provider and model to logger.
func WithCommonFields(logger *zap.Logger, provider, model string) *zap.Logger {
	return WithFields(logger, CommonFields(provider, model)...)
}

// WithEmbeddingFields attaches the embedding provider and model to logger.
func WithEmbeddingFields(logger *zap.Logger, provider, model string) *zap.Logger {
	return WithFields(logger, StringFields(
		StringField{Key: FieldEmbeddingProvider, Value: provider},
		StringField{Key: FieldEmbeddingModel, Value: model},
	)...)
}

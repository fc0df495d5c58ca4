package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	FieldCompanyID    = "company_id"
	FieldCompanyName  = "company_name"
	FieldTier         = "tier"
	FieldMatchesUsed  = "matches_used"
	FieldMatchesLimit = "matches_limit"
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

// WithFields attaches the fields to the logger, defaulting to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// CompanyFields describes a sponsor. Empty values are skipped.
func CompanyFields(id, name string) []zap.Field {
	return StringFields(
		StringField{Key: FieldCompanyID, Value: id},
		StringField{Key: FieldCompanyName, Value: name},
	)
}

// QuotaFields describes the unlock allowance of a profile.
func QuotaFields(tier string, used, limit int) []zap.Field {
	fields := StringFields(StringField{Key: FieldTier, Value: tier})
	return append(fields,
		zap.Int(FieldMatchesUsed, used),
		zap.Int(FieldMatchesLimit, limit),
	)
}

func WithCompany(logger *zap.Logger, id, name string) *zap.Logger {
	return WithFields(logger, CompanyFields(id, name)...)
}

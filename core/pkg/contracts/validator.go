package contracts

import (
	"strings"
	"unicode"
)

// Validator validates tagged structs and single values
type Validator interface {
	// Validate validates a struct based on tags
	Validate(data any) error

	// ValidateField validates a single value against a tag expression
	ValidateField(field any, tag string) error

	// RegisterValidation registers a custom validation tag
	RegisterValidation(tag string, fn ValidationFunc) error

	// RegisterTranslation registers the message template used for a tag
	RegisterTranslation(tag string, message string) error

	// RegisterFieldTranslation registers a message template for one field/tag pair.
	// It takes precedence over the tag-wide template.
	RegisterFieldTranslation(field, tag, message string) error
}

// ValidationFunc is a custom validation rule
type ValidationFunc func(field any) bool

// ValidationError represents a single failed rule
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Value   any    `json:"value,omitempty"`
	Message string `json:"message"`
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements error interface
func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	msgs := make([]string, 0, len(v))
	for _, e := range v {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, "; ")
}

// FirstByField maps each field to its first message.
// Struct validation stops at the first failing tag per field, so this is lossless there.
func (v ValidationErrors) FirstByField() map[string]string {
	result := make(map[string]string, len(v))
	for _, e := range v {
		if _, ok := result[e.Field]; !ok {
			result[e.Field] = e.Message
		}
	}
	return result
}

// IsBlank reports whether r is whitespace for the notblank rule. The set is the
// Unicode space separators plus \t \n \v \f \r, U+2028, U+2029 and U+FEFF,
// which is what browsers strip from form input.
func IsBlank(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', '\u2028', '\u2029', '\ufeff':
		return true
	}
	return unicode.Is(unicode.Zs, r)
}

// TrimBlank strips leading and trailing IsBlank runes
func TrimBlank(s string) string {
	return strings.TrimFunc(s, IsBlank)
}

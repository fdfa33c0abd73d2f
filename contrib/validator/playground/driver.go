// Package playground provides a go-playground/validator implementation of the contracts.Validator interface.
//
// Usage:
//
//	driver := playground.NewDriver()
//	_ = driver.RegisterValidation("ugphone", func(v any) bool { ... })
//	_ = driver.RegisterFieldTranslation("phone", "ugphone", "Invalid phone number")
//
//	if err := driver.Validate(input); err != nil {
//	    errs := err.(contracts.ValidationErrors)
//	}
package playground

import (
	"reflect"
	"strconv"
	"strings"
	"sync"
	"unicode/utf16"

	"github.com/agroguard/agroguard/core/pkg/contracts"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// Driver implements contracts.Validator using go-playground/validator
type Driver struct {
	validate     *validator.Validate
	translations map[string]string
	mu           sync.RWMutex
}

// Config for the validator driver
type Config struct {
	// UseJSONNames uses JSON tag names in error fields and messages
	UseJSONNames bool

	// Custom messages keyed by tag, or by "field.tag" for a single field
	Messages map[string]string
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		UseJSONNames: true,
		Messages:     defaultMessages(),
	}
}

func defaultMessages() map[string]string {
	return map[string]string{
		"required": "{field} is required",
		"notblank": "{field} is required",
		"min":      "{field} must be at least {param} characters",
		"max":      "{field} must be at most {param} characters",
		"maxutf16": "{field} must be at most {param} characters",
		"len":      "{field} must be exactly {param} characters",
		"oneof":    "{field} must be one of: {param}",
		"url":      "{field} must be a valid URL",
		"uuid":     "{field} must be a valid UUID",
		"numeric":  "{field} must be a valid number",
	}
}

// NewDriver creates a new validator driver with default settings
func NewDriver() *Driver {
	return NewDriverWithConfig(DefaultConfig())
}

// NewDriverWithConfig creates a new validator driver with custom config
func NewDriverWithConfig(cfg *Config) *Driver {
	v := validator.New(validator.WithRequiredStructEnabled())

	if cfg.UseJSONNames {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
	}

	// Built-in rules shared by every form in the module.
	_ = v.RegisterValidation("notblank", notBlank)
	_ = v.RegisterValidation("maxutf16", maxUTF16)

	translations := defaultMessages()
	for k, msg := range cfg.Messages {
		translations[k] = msg
	}

	return &Driver{
		validate:     v,
		translations: translations,
	}
}

// notBlank trims strings with contracts.TrimBlank and leaves other kinds to
// the go-playground rule.
func notBlank(fl validator.FieldLevel) bool {
	if fl.Field().Kind() == reflect.String {
		return contracts.TrimBlank(fl.Field().String()) != ""
	}
	return validators.NotBlank(fl)
}

// maxUTF16 limits the trimmed length of a string in UTF-16 code units,
// the unit SMS gateways and HTML maxlength count in.
func maxUTF16(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil || fl.Field().Kind() != reflect.String {
		return false
	}
	return utf16Len(contracts.TrimBlank(fl.Field().String())) <= limit
}

// utf16Len counts s in UTF-16 code units. Runes outside the BMP count twice.
func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// Validator returns the underlying validator instance
func (d *Driver) Validator() *validator.Validate {
	return d.validate
}

// Validate validates a struct based on tags
func (d *Driver) Validate(data any) error {
	err := d.validate.Struct(data)
	if err == nil {
		return nil
	}
	return d.convert(err, "")
}

// ValidateField validates a single field value
func (d *Driver) ValidateField(field any, tag string) error {
	err := d.validate.Var(field, tag)
	if err == nil {
		return nil
	}
	return d.convert(err, "value")
}

func (d *Driver) convert(err error, fieldName string) error {
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	validationErrors := make(contracts.ValidationErrors, 0, len(errs))
	for _, e := range errs {
		field := e.Field()
		if fieldName != "" {
			field = fieldName
		}
		validationErrors = append(validationErrors, contracts.ValidationError{
			Field:   field,
			Tag:     e.Tag(),
			Value:   e.Value(),
			Message: d.formatMessage(field, e),
		})
	}
	return validationErrors
}

// RegisterValidation registers a custom validation function
func (d *Driver) RegisterValidation(tag string, fn contracts.ValidationFunc) error {
	return d.validate.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return fn(fl.Field().Interface())
	})
}

// RegisterTranslation registers a custom error message for a tag
func (d *Driver) RegisterTranslation(tag string, message string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.translations[tag] = message
	return nil
}

// RegisterFieldTranslation registers a custom error message for one field and tag
func (d *Driver) RegisterFieldTranslation(field, tag, message string) error {
	return d.RegisterTranslation(field+"."+tag, message)
}

// formatMessage formats the error message for a validation error
func (d *Driver) formatMessage(field string, e validator.FieldError) string {
	d.mu.RLock()
	template, ok := d.translations[field+"."+e.Tag()]
	if !ok {
		template, ok = d.translations[e.Tag()]
	}
	d.mu.RUnlock()

	if !ok {
		template = "{field} failed validation for '{tag}'"
	}

	message := template
	message = strings.ReplaceAll(message, "{field}", field)
	message = strings.ReplaceAll(message, "{tag}", e.Tag())
	message = strings.ReplaceAll(message, "{param}", e.Param())
	message = strings.ReplaceAll(message, "{value}", formatValue(e.Value()))

	return message
}

func formatValue(v any) string {
	if v == nil {
		return "nil"
	}
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// Ensure Driver implements contracts.Validator
var _ contracts.Validator = (*Driver)(nil)

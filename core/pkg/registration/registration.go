// Package registration validates and normalizes farmer registrations
// before they are submitted to the farmers API.
package registration

import (
	"fmt"
	"strings"
)

// Language is the preferred language for SMS advisories
type Language string

const (
	LanguageEnglish    Language = "english"
	LanguageLuganda    Language = "luganda"
	LanguageRunyankole Language = "runyankole"
	LanguageAteso      Language = "ateso"
	LanguageAcholi     Language = "acholi"
)

// DefaultLanguage is used for new forms and after a successful submission
const DefaultLanguage = LanguageEnglish

// ParseLanguage maps a case-insensitive name onto a Language
func ParseLanguage(s string) (Language, error) {
	l := Language(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Languages {
		if known.Value == l {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown language %q", s)
}

// Field names a registration form field. Values match the JSON field names.
type Field string

const (
	FieldName      Field = "name"
	FieldPhone     Field = "phone"
	FieldDistrict  Field = "district"
	FieldSubCounty Field = "subCounty"
	FieldCrop      Field = "crop"
	FieldLanguage  Field = "language"
)

// Fields lists every form field in display order
var Fields = []Field{FieldName, FieldPhone, FieldDistrict, FieldSubCounty, FieldCrop, FieldLanguage}

// Input is the registration form's field set prior to backend acceptance
type Input struct {
	Name      string   `json:"name" validate:"notblank"`
	Phone     string   `json:"phone" validate:"notblank,ugphone"`
	District  string   `json:"district" validate:"required"`
	SubCounty string   `json:"subCounty,omitempty"`
	Crop      string   `json:"crop" validate:"required"`
	Language  Language `json:"language"`
}

// NewInput returns an empty form with the default language selected
func NewInput() Input {
	return Input{Language: DefaultLanguage}
}

// Status is the backend lifecycle state of a farmer
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Farmer is a registration accepted and persisted by the backend
type Farmer struct {
	ID string `json:"id"`
	Input
	Status Status `json:"status"`
}

// Result is the outcome of one validation pass
type Result struct {
	IsValid bool              `json:"isValid"`
	Errors  map[string]string `json:"errors"`
}

// Error returns the message recorded for a field, if any
func (r Result) Error(f Field) (string, bool) {
	msg, ok := r.Errors[string(f)]
	return msg, ok
}

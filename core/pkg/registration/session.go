package registration

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnknownField is returned by FormSession.Set for a field outside Fields
var ErrUnknownField = errors.New("registration: unknown field")

// Registrar submits a validated registration to the backend
type Registrar interface {
	RegisterFarmer(ctx context.Context, in Input) (*Farmer, error)
}

// FormSession is the caller-owned state of one registration form.
// It is not safe for concurrent use.
type FormSession struct {
	input     Input
	validator *Validator
	last      *Result
}

// NewFormSession starts an empty form. A nil validator selects DefaultValidator.
func NewFormSession(v *Validator) *FormSession {
	if v == nil {
		v = DefaultValidator()
	}
	return &FormSession{input: NewInput(), validator: v}
}

// Input returns a copy of the current field values
func (s *FormSession) Input() Input {
	return s.input
}

// Set changes one field. Phone values pass through FormatPhoneNumber
// and languages must be one of Languages.
func (s *FormSession) Set(field Field, value string) error {
	switch field {
	case FieldName:
		s.input.Name = value
	case FieldPhone:
		s.input.Phone = FormatPhoneNumber(value)
	case FieldDistrict:
		s.input.District = value
	case FieldSubCounty:
		s.input.SubCounty = value
	case FieldCrop:
		s.input.Crop = value
	case FieldLanguage:
		lang, err := ParseLanguage(value)
		if err != nil {
			return err
		}
		s.input.Language = lang
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	s.last = nil
	return nil
}

// Validate runs a validation pass over the current values and remembers it
func (s *FormSession) Validate() Result {
	res := s.validator.Validate(s.input)
	s.last = &res
	return res
}

// Submittable reports whether the latest validation pass covers the
// current values and succeeded.
func (s *FormSession) Submittable() bool {
	return s.last != nil && s.last.IsValid
}

// Submit validates the form and, when valid, hands it to r.
// On success the form is reset; on any failure the fields are kept
// so they can be corrected and resubmitted.
func (s *FormSession) Submit(ctx context.Context, r Registrar) (*Farmer, error) {
	if res := s.Validate(); !res.IsValid {
		return nil, &ValidationError{Result: res}
	}

	farmer, err := r.RegisterFarmer(ctx, s.input)
	if err != nil {
		return nil, fmt.Errorf("register farmer: %w", err)
	}

	s.Reset()
	return farmer, nil
}

// Reset clears every field back to a new form
func (s *FormSession) Reset() {
	s.input = NewInput()
	s.last = nil
}

// Restore replaces the field values, e.g. from a saved draft
func (s *FormSession) Restore(in Input) {
	if in.Language == "" {
		in.Language = DefaultLanguage
	}
	s.input = in
	s.last = nil
}

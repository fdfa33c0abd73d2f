package registration

import (
	"errors"
	"fmt"
	"sync"

	"github.com/agroguard/agroguard/contrib/validator/playground"
	"github.com/agroguard/agroguard/core/pkg/contracts"
)

// Field error messages shown next to the form inputs
const (
	MsgNameRequired     = "Name is required"
	MsgPhoneRequired    = "Phone number is required"
	MsgPhoneInvalid     = "Invalid phone number format. Use format: +256 7XX XXX XXX"
	MsgDistrictRequired = "District is required"
	MsgCropRequired     = "Primary crop is required"
)

// PhoneTag is the validation tag bound to the phone number rule
const PhoneTag = "ugphone"

// ErrInvalid is returned when a submission is attempted on an invalid form
var ErrInvalid = errors.New("registration: form is invalid")

// ValidationError carries the failed Result of a submission attempt
type ValidationError struct {
	Result Result
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %d field(s) failed", ErrInvalid, len(e.Result.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrInvalid }

// Validator checks registration inputs. It is safe for concurrent use.
type Validator struct {
	v contracts.Validator
}

// NewValidator binds the registration rules onto v.
// The phone rule defaults to ValidatePhoneNumber; pass a different rule
// to accept another national format.
func NewValidator(v contracts.Validator, phoneRule func(string) bool) (*Validator, error) {
	if phoneRule == nil {
		phoneRule = ValidatePhoneNumber
	}
	err := v.RegisterValidation(PhoneTag, func(field any) bool {
		s, ok := field.(string)
		return ok && phoneRule(s)
	})
	if err != nil {
		return nil, fmt.Errorf("register %s rule: %w", PhoneTag, err)
	}

	messages := []struct {
		field Field
		tag   string
		msg   string
	}{
		{FieldName, "notblank", MsgNameRequired},
		{FieldPhone, "notblank", MsgPhoneRequired},
		{FieldPhone, PhoneTag, MsgPhoneInvalid},
		{FieldDistrict, "required", MsgDistrictRequired},
		{FieldCrop, "required", MsgCropRequired},
	}
	for _, m := range messages {
		if err := v.RegisterFieldTranslation(string(m.field), m.tag, m.msg); err != nil {
			return nil, fmt.Errorf("register message for %s: %w", m.field, err)
		}
	}
	return &Validator{v: v}, nil
}

// Validate runs every field rule over in. It has no side effects.
func (val *Validator) Validate(in Input) Result {
	res := Result{Errors: map[string]string{}}

	err := val.v.Validate(in)
	var errs contracts.ValidationErrors
	switch {
	case err == nil:
	case errors.As(err, &errs):
		res.Errors = errs.FirstByField()
	default:
		res.Errors["form"] = err.Error()
	}

	res.IsValid = len(res.Errors) == 0
	return res
}

var (
	defaultOnce      sync.Once
	defaultValidator *Validator
)

// DefaultValidator returns the shared validator with the Ugandan phone rule
func DefaultValidator() *Validator {
	defaultOnce.Do(func() {
		v, err := NewValidator(playground.NewDriver(), nil)
		if err != nil {
			panic(err)
		}
		defaultValidator = v
	})
	return defaultValidator
}

// ValidateForm validates in with the default rules
func ValidateForm(in Input) Result {
	return DefaultValidator().Validate(in)
}

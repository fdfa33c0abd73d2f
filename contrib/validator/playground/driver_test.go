package playground

import (
	"errors"
	"strings"
	"testing"

	"github.com/agroguard/agroguard/core/pkg/contracts"
)

func TestNewDriver(t *testing.T) {
	driver := NewDriver()

	if driver == nil {
		t.Fatal("driver should not be nil")
	}
	if driver.validate == nil {
		t.Error("validate should not be nil")
	}
	if driver.translations == nil {
		t.Error("translations should not be nil")
	}
	if driver.Validator() == nil {
		t.Error("Validator() should return underlying validator")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if !cfg.UseJSONNames {
		t.Error("UseJSONNames should be true by default")
	}
	if cfg.Messages == nil {
		t.Error("Messages should not be nil")
	}
}

type plot struct {
	Owner    string `json:"owner" validate:"notblank"`
	District string `json:"district" validate:"required"`
	Note     string `json:"note" validate:"maxutf16=5"`
	Internal string `json:"-"`
}

func TestDriver_Validate(t *testing.T) {
	driver := NewDriver()

	t.Run("valid struct", func(t *testing.T) {
		if err := driver.Validate(plot{Owner: "Jane", District: "Gulu", Note: "ok"}); err != nil {
			t.Errorf("valid struct should not error: %v", err)
		}
	})

	t.Run("blank is treated as missing", func(t *testing.T) {
		err := driver.Validate(plot{Owner: "   ", District: "Gulu"})

		var errs contracts.ValidationErrors
		if !errors.As(err, &errs) {
			t.Fatalf("error should be ValidationErrors, got %T", err)
		}
		if len(errs) != 1 {
			t.Fatalf("expected 1 error, got %d", len(errs))
		}
		if errs[0].Field != "owner" {
			t.Errorf("expected field 'owner', got %s", errs[0].Field)
		}
		if errs[0].Message != "owner is required" {
			t.Errorf("unexpected message %q", errs[0].Message)
		}
	})

	t.Run("unicode blanks are treated as missing", func(t *testing.T) {
		for _, owner := range []string{"\ufeff", "\u00a0\u2009", "\v", "\u2028\u3000"} {
			if err := driver.Validate(plot{Owner: owner, District: "Gulu"}); err == nil {
				t.Errorf("owner %q should be blank", owner)
			}
		}
	})

	t.Run("maxutf16 counts UTF-16 code units", func(t *testing.T) {
		tests := []struct {
			note string
			ok   bool
		}{
			{"abcde", true},
			{"abcdef", false},
			{"🌱abc", true},
			{"🌱abcd", false},
			{"ééééé", true},
			{"  abcde\u00a0", true},
		}
		for _, tt := range tests {
			err := driver.Validate(plot{Owner: "a", District: "b", Note: tt.note})
			if (err == nil) != tt.ok {
				t.Errorf("note %q: err = %v, want ok=%v", tt.note, err, tt.ok)
			}
		}
	})

	t.Run("notblank on non-string kinds", func(t *testing.T) {
		if err := driver.ValidateField([]string{"Maize"}, "notblank"); err != nil {
			t.Errorf("non-empty slice should pass: %v", err)
		}
		if err := driver.ValidateField([]string{}, "notblank"); err == nil {
			t.Error("empty slice should fail")
		}
	})
}

func TestUTF16Len(t *testing.T) {
	tests := map[string]int{
		"":       0,
		"abc":    3,
		"Gulu é": 6,
		"🌤 rain": 7,
		"🐛🐛":     4,
	}
	for in, want := range tests {
		if got := utf16Len(in); got != want {
			t.Errorf("utf16Len(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestDriver_RegisterFieldTranslation(t *testing.T) {
	driver := NewDriver()
	if err := driver.RegisterFieldTranslation("district", "required", "District is required"); err != nil {
		t.Fatal(err)
	}

	err := driver.Validate(plot{})
	errs := err.(contracts.ValidationErrors)
	byField := errs.FirstByField()

	if byField["district"] != "District is required" {
		t.Errorf("field translation not applied: %q", byField["district"])
	}
	if byField["owner"] != "owner is required" {
		t.Errorf("tag translation should still apply to other fields: %q", byField["owner"])
	}
}

func TestDriver_RegisterValidation(t *testing.T) {
	driver := NewDriver()

	err := driver.RegisterValidation("startsseven", func(v any) bool {
		s, _ := v.(string)
		return strings.HasPrefix(s, "7")
	})
	if err != nil {
		t.Fatal(err)
	}
	_ = driver.RegisterTranslation("startsseven", "{field} must start with 7, got '{value}'")

	if err := driver.ValidateField("701", "startsseven"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	err = driver.ValidateField("801", "startsseven")
	errs, ok := err.(contracts.ValidationErrors)
	if !ok {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}
	if errs[0].Field != "value" {
		t.Errorf("expected field 'value', got %s", errs[0].Field)
	}
	if errs[0].Message != "value must start with 7, got '801'" {
		t.Errorf("unexpected message %q", errs[0].Message)
	}
}

func TestDriver_UnknownTagFallbackMessage(t *testing.T) {
	driver := NewDriver()

	err := driver.ValidateField("abc", "email")
	errs := err.(contracts.ValidationErrors)
	if errs[0].Message != "value failed validation for 'email'" {
		t.Errorf("unexpected fallback message %q", errs[0].Message)
	}
}

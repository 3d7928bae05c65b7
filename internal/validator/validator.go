package validator

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/fairyhunter13/restoboost/internal/model"
	"github.com/fairyhunter13/restoboost/internal/timeslot"
)

var (
	phonePattern    = regexp.MustCompile(`^\+?[0-9]{7,20}$`)
	phoneSeparators = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")
)

// New creates a new validator instance with custom validations registered.
// This ensures consistent validation across the application and tests.
func New() *validator.Validate {
	v := validator.New()

	// Report fields by their JSON names so messages match the request body
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Register custom "notblank" validator - rejects whitespace-only strings
	_ = v.RegisterValidation("notblank", stringRule(func(s string) bool {
		return strings.TrimSpace(s) != ""
	}))

	// "clock" accepts HH:MM or HH:MM:SS
	_ = v.RegisterValidation("clock", stringRule(func(s string) bool {
		_, err := timeslot.ParseClock(s)
		return err == nil
	}))

	// "isodate" accepts YYYY-MM-DD
	_ = v.RegisterValidation("isodate", stringRule(func(s string) bool {
		_, err := model.ParseDate(s)
		return err == nil
	}))

	// "phone" accepts digits with an optional leading +; spaces, dashes and
	// parentheses are ignored
	_ = v.RegisterValidation("phone", stringRule(IsPhone))

	_ = v.RegisterValidation("bookingstatus", stringRule(func(s string) bool {
		return model.BookingStatus(s).Valid()
	}))

	return v
}

// IsPhone reports whether s looks like a phone number.
func IsPhone(s string) bool {
	return phonePattern.MatchString(NormalizePhone(s))
}

// NormalizePhone strips formatting characters from a phone number.
func NormalizePhone(s string) string {
	return phoneSeparators.Replace(strings.TrimSpace(s))
}

func stringRule(fn func(string) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		str, ok := fl.Field().Interface().(string)
		if !ok {
			return true // Not a string, let other validators handle it
		}
		return fn(str)
	}
}

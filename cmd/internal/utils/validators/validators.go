package validators

import (
	"clinic/cmd/internal/schedule"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

func HasUpper(fl validator.FieldLevel) bool {
	return strings.IndexFunc(fl.Field().String(), unicode.IsUpper) >= 0
}

func HasLower(fl validator.FieldLevel) bool {
	return strings.IndexFunc(fl.Field().String(), unicode.IsLower) >= 0
}

func HasDigit(fl validator.FieldLevel) bool {
	return strings.IndexFunc(fl.Field().String(), unicode.IsDigit) >= 0
}

func HasSpecial(fl validator.FieldLevel) bool {
	return strings.IndexFunc(fl.Field().String(), func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSymbol(r)
	}) >= 0
}

func NoWhiteSpaces(fl validator.FieldLevel) bool {
	return strings.IndexFunc(fl.Field().String(), unicode.IsSpace) < 0
}

// NoDupes rejects slices holding the same element twice, e.g. a provider
// listed twice on the day grid.
func NoDupes(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.Slice && field.Kind() != reflect.Array {
		return false
	}

	seen := make(map[any]struct{}, field.Len())
	for i := 0; i < field.Len(); i++ {
		v := field.Index(i).Interface()
		if _, dup := seen[v]; dup {
			return false
		}
		seen[v] = struct{}{}
	}
	return true
}

// IsClock accepts "HH:MM" and "HH:MM:SS".
func IsClock(fl validator.FieldLevel) bool {
	_, err := schedule.ParseClock(fl.Field().String())
	return err == nil
}

// IsDate accepts calendar dates as YYYY-MM-DD.
func IsDate(fl validator.FieldLevel) bool {
	_, err := schedule.ParseDate(fl.Field().String())
	return err == nil
}

func IsStatus(fl validator.FieldLevel) bool {
	_, err := schedule.ParseStatus(fl.Field().String())
	return err == nil
}

// Register installs every custom tag on v.
func Register(v *validator.Validate) {
	_ = v.RegisterValidation("hasupper", HasUpper)
	_ = v.RegisterValidation("haslower", HasLower)
	_ = v.RegisterValidation("hasdigit", HasDigit)
	_ = v.RegisterValidation("hasspecial", HasSpecial)
	_ = v.RegisterValidation("nodupes", NoDupes)
	_ = v.RegisterValidation("nospaces", NoWhiteSpaces)
	_ = v.RegisterValidation("clock", IsClock)
	_ = v.RegisterValidation("isodate", IsDate)
	_ = v.RegisterValidation("apptstatus", IsStatus)
}

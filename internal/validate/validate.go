// Package validate wraps go-playground/validator with the catalog's custom
// tags and converts failures into *apperr.ValidationError.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"libraryapi/internal/apperr"
)

var (
	validate *validator.Validate

	isbn13Pattern  = regexp.MustCompile(`^\d{13}$`)
	upperPattern   = regexp.MustCompile(`[A-Z]`)
	lowerPattern   = regexp.MustCompile(`[a-z]`)
	numberPattern  = regexp.MustCompile(`[0-9]`)
	specialPattern = regexp.MustCompile(`[!@#$%^&*()_+\-=\[\]{};':"\\|,.<>\/?]`)
)

// now is swapped in tests that pin the current year.
var now = time.Now

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	_ = validate.RegisterValidation("isbn13", validateISBN13)
	_ = validate.RegisterValidation("notfuture", validateNotFuture)
	_ = validate.RegisterValidation("password_strength", validatePasswordStrength)
}

func validateISBN13(fl validator.FieldLevel) bool {
	return IsISBN13(fl.Field().String())
}

func validateNotFuture(fl validator.FieldLevel) bool {
	return !YearInFuture(int(fl.Field().Int()))
}

func validatePasswordStrength(fl validator.FieldLevel) bool {
	return PasswordStrong(fl.Field().String())
}

// IsISBN13 reports whether s is exactly 13 ASCII digits.
func IsISBN13(s string) bool {
	return isbn13Pattern.MatchString(s)
}

func CurrentYear() int {
	return now().Year()
}

func YearInFuture(year int) bool {
	return year > CurrentYear()
}

// PasswordStrong: at least 8 characters with upper, lower, digit and special.
func PasswordStrong(p string) bool {
	return len(p) >= 8 &&
		upperPattern.MatchString(p) &&
		lowerPattern.MatchString(p) &&
		numberPattern.MatchString(p) &&
		specialPattern.MatchString(p)
}

// Struct validates s and returns nil or a *apperr.ValidationError keyed by
// JSON field name.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := apperr.NewValidation()
	for _, fe := range verrs {
		out.Add(fe.Field(), message(fe))
	}
	return out.Err()
}

func message(fe validator.FieldError) string {
	field, param := fe.Field(), fe.Param()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, param)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, param)
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, param)
	case "isbn13":
		return "ISBN must be exactly 13 digits"
	case "notfuture":
		return "Publication year cannot be in the future"
	case "password_strength":
		return fmt.Sprintf("%s must be at least 8 characters with uppercase, lowercase, number, and special character", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, param)
	}
	return fmt.Sprintf("%s is invalid", field)
}

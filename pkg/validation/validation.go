// Package validation checks and sanitizes caller input before it reaches the
// remote gateway or the offline queue.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/alfanzaky/sitecomply/internal/domain"
	"github.com/alfanzaky/sitecomply/pkg/clock"
	"github.com/alfanzaky/sitecomply/pkg/utils"
)

var (
	tagPattern        = regexp.MustCompile(`<[^>]*>`)
	whitespacePattern = regexp.MustCompile(`[ \t]+`)
)

// Messages overrides the default error text. Keys are "<field>.<tag>" or
// "<field>", where field is the json name.
type Messages map[string]string

// Validator wraps a configured go-playground validator.
type Validator struct {
	validate *validator.Validate
	clock    clock.Clock
}

// New creates a Validator. Date checks that compare against today use c.
func New(c clock.Clock) *Validator {
	if c == nil {
		c = clock.RealClock{}
	}

	v := &Validator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		clock:    c,
	}

	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.validate.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := utils.ParseDate(fl.Field().String())
		return err == nil
	})
	_ = v.validate.RegisterValidation("notfuture", v.notFuture)
	_ = v.validate.RegisterValidation("severity", func(fl validator.FieldLevel) bool {
		return domain.IsValidSeverity(fl.Field().String())
	})
	_ = v.validate.RegisterValidation("asset_status", func(fl validator.FieldLevel) bool {
		return domain.IsValidAssetStatus(fl.Field().String())
	})
	_ = v.validate.RegisterValidation("verification_status", func(fl validator.FieldLevel) bool {
		return domain.IsValidVerificationStatus(fl.Field().String())
	})

	return v
}

func (v *Validator) notFuture(fl validator.FieldLevel) bool {
	d, err := utils.ParseDate(fl.Field().String())
	if err != nil {
		return false
	}
	today := utils.FormatDate(v.clock.Now())
	return utils.FormatDate(d) <= today
}

// Check validates s and returns the first failure as user-facing text,
// or "" when s is valid.
func (v *Validator) Check(s interface{}, overrides Messages) string {
	err := v.validate.Struct(s)
	if err == nil {
		return ""
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return "Invalid input."
	}

	fe := fieldErrs[0]
	if msg, ok := overrides[fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}
	if msg, ok := overrides[fe.Field()]; ok {
		return msg
	}
	return defaultMessage(fe)
}

func defaultMessage(fe validator.FieldError) string {
	label := Label(fe.Field())
	if isNumber(fe.Kind()) {
		switch fe.Tag() {
		case "min", "gte":
			return fmt.Sprintf("%s must be at least %s.", label, fe.Param())
		case "max", "lte":
			return fmt.Sprintf("%s must be at most %s.", label, fe.Param())
		}
	}

	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required.", label)
	case "max":
		return fmt.Sprintf("%s is too long.", label)
	case "min":
		return fmt.Sprintf("%s is too short.", label)
	case "isodate":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format.", label)
	case "notfuture":
		return fmt.Sprintf("%s cannot be in the future.", label)
	default:
		return fmt.Sprintf("%s is not a valid value.", label)
	}
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// Label turns a json field name into a sentence-case label.
func Label(field string) string {
	words := strings.ReplaceAll(field, "_", " ")
	if words == "" {
		return "Value"
	}
	r := []rune(words)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// SanitizeText strips markup and control characters from multi-line free text.
func SanitizeText(s string) string {
	s = tagPattern.ReplaceAllString(s, "")
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}

// SanitizeLine is SanitizeText for single-line fields: newlines become
// spaces and runs of blanks collapse to one.
func SanitizeLine(s string) string {
	s = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
	s = SanitizeText(s)
	return whitespacePattern.ReplaceAllString(s, " ")
}

// SanitizeOptional applies SanitizeLine to a non-nil pointer in place.
func SanitizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	clean := SanitizeLine(*s)
	return &clean
}

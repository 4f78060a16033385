package core

import (
	"reflect"
	"regexp"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	// custom validation tags & texts
	noSpaceTag   = "nospace"
	noSpaceText  = "{0} must not contain whitespace"
	noSpaceRegex = regexp.MustCompile(`^\S*$`)

	semesterTag  = "semester"
	semesterText = "{0} must be 1 or 2"
	monthTag     = "month"
	monthText    = "{0} must be a month number between 1 and 12"

	requiredTag     = "required"
	requiredWithTag = "required_with"
	requiredText    = "this field is required"
)

// InitValidators instantiates the validator for use.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// register custom validators
	_ = validate.RegisterValidation(noSpaceTag, noSpaceValidation)
	RegisterCustomTranslation(validate, translator, noSpaceTag, noSpaceText)
	_ = validate.RegisterValidation(semesterTag, intRangeValidation(1, 2))
	RegisterCustomTranslation(validate, translator, semesterTag, semesterText)
	_ = validate.RegisterValidation(monthTag, intRangeValidation(1, 12))
	RegisterCustomTranslation(validate, translator, monthTag, monthText)

	RegisterCustomTranslation(validate, translator, requiredTag, requiredText, true)
	RegisterCustomTranslation(validate, translator, requiredWithTag, requiredText, true)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Custom Global Validators

// noSpaceValidation rejects values containing any whitespace.
func noSpaceValidation(fl validator.FieldLevel) bool {
	return noSpaceRegex.MatchString(fl.Field().String())
}

func intRangeValidation(min, max int64) validator.Func {
	return func(fl validator.FieldLevel) bool {
		v := fl.Field().Int()
		return min <= v && v <= max
	}
}

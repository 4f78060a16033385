package user

import (
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/trezcool/madrasa/core"
)

var (
	requiredText = "this field is required"

	pwdMaxSim      = .7
	pwdAttrSimTag  = "pwdtoosim"
	pwdAttrSimText = "password cannot be similar to user attributes"
)

// InitValidators registers the user validators & their translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(userStructValidation, NewUser{}, UpdateUser{}, ChangePassword{})
	core.RegisterCustomTranslation(validate, translator, pwdAttrSimTag, pwdAttrSimText)
}

// userStructValidation does struct level validation on NewUser, UpdateUser and ChangePassword structs.
func userStructValidation(sl validator.StructLevel) {
	switch usr := sl.Current().Interface().(type) {
	case NewUser:
		validatePassword(usr.Password, "password", sl, usr.Username, usr.FirstName, usr.LastName)
	case UpdateUser:
		if usr.Password != "" {
			validatePassword(usr.Password, "password", sl, usr.Username, usr.FirstName, usr.LastName)
		}
	case ChangePassword:
		validatePassword(usr.NewPassword, "new_password", sl, usr.username)
	}
}

// validatePassword rejects passwords too similar to the user attributes.
func validatePassword(pwd, field string, sl validator.StructLevel, attrs ...string) {
	if pwd == "" {
		return
	}
	lpwd := strings.ToLower(pwd)
	for _, attr := range attrs {
		if attr == "" {
			continue
		}
		ratio := difflib.NewMatcher(strings.Split(lpwd, ""), strings.Split(strings.ToLower(attr), "")).Ratio()
		if ratio >= pwdMaxSim {
			sl.ReportError(pwd, field, field, pwdAttrSimTag, "")
			return
		}
	}
}

package user_test

import (
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/madrasa/apps/shared"
	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/user"
)

func newUser(uname, pwd string) user.NewUser {
	male := true
	return user.NewUser{
		Profile: user.Profile{
			FirstName:     " Linus ",
			FatherName:    "Nils",
			GFatherName:   "Ole",
			LastName:      "Torvalds",
			Gender:        &male,
			DateOfBirth:   core.NewDate(1969, time.December, 28),
			NationalityID: 1,
			Username:      uname,
		},
		Password: pwd,
	}
}

func fieldErrors(t *testing.T, translator ut.Translator, err error) map[string]string {
	t.Helper()
	var vErrs validator.ValidationErrors
	require.ErrorAs(t, err, &vErrs)
	flds := make(map[string]string, len(vErrs))
	for _, fe := range vErrs {
		flds[fe.Field()] = fe.Translate(translator)
	}
	return flds
}

func TestNewUser_Validate(t *testing.T) {
	validate, translator := shared.NewValidator()

	t.Run("valid", func(t *testing.T) {
		nu := newUser(" LTorvalds ", "Kernel#1991")
		require.NoError(t, nu.Validate(validate))
		assert.Equal(t, "ltorvalds", nu.Username)
		assert.Equal(t, "Linus", nu.FirstName)
	})

	tests := []struct {
		name  string
		nu    user.NewUser
		field string
		want  string
	}{
		{name: "password like username", nu: newUser("ltorvalds", "ltorvalds!"), field: "password", want: "password cannot be similar to user attributes"},
		{name: "password like last name", nu: newUser("linus", "torvalds1"), field: "password", want: "password cannot be similar to user attributes"},
		{name: "short password", nu: newUser("linus", "abc"), field: "password", want: "password must be at least 6 characters in length"},
		{name: "username with spaces", nu: newUser("li nus", "Kernel#1991"), field: "username", want: "username must not contain whitespace"},
		{name: "required", nu: newUser("", "Kernel#1991"), field: "username", want: "this field is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nu := tt.nu
			err := nu.Validate(validate)
			assert.Equal(t, tt.want, fieldErrors(t, translator, err)[tt.field])
		})
	}

	t.Run("date of birth required", func(t *testing.T) {
		nu := newUser("linus", "Kernel#1991")
		nu.DateOfBirth = core.Date{}
		var vErr *core.ValidationError
		require.ErrorAs(t, nu.Validate(validate), &vErr)
		require.Len(t, vErr.Fields, 1)
		assert.Equal(t, "date_of_birth", vErr.Fields[0].Field)
	})
}

func TestUpdateUser_Validate_emptyPassword(t *testing.T) {
	validate, _ := shared.NewValidator()
	uu := user.UpdateUser{Profile: newUser("linus", "").Profile}
	assert.NoError(t, uu.Validate(validate))
}

func TestChangePassword_Validate(t *testing.T) {
	validate, translator := shared.NewValidator()
	usr := user.User{Username: "linus"}

	cp := user.ChangePassword{OldPassword: "old", NewPassword: "linus1"}
	assert.Equal(t, "password cannot be similar to user attributes", fieldErrors(t, translator, cp.Validate(validate, usr))["new_password"])

	cp.NewPassword = "Kernel#1991"
	assert.NoError(t, cp.Validate(validate, usr))
}

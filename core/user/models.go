package user

import (
	"encoding/json"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/nationality"
)

type Role string

const (
	RoleAdmin   Role = "a"
	RoleTeacher Role = "t"
	RoleStudent Role = "s"
)

var Roles = []Role{RoleAdmin, RoleTeacher, RoleStudent}

func (r Role) IsValid() bool {
	for _, role := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleTeacher:
		return "teacher"
	case RoleStudent:
		return "student"
	}
	return string(r)
}

type User struct {
	ID            int                      `json:"id" db:"id"`
	FirstName     string                   `json:"first_name" db:"first_name"`
	FatherName    string                   `json:"father_name" db:"father_name"`
	GFatherName   string                   `json:"gfather_name" db:"gfather_name"`
	LastName      string                   `json:"last_name" db:"last_name"`
	Gender        bool                     `json:"gender" db:"gender"` // true: male
	DateOfBirth   core.Date                `json:"date_of_birth" db:"date_of_birth"`
	NationalityID int                      `json:"nationality_id" db:"nationality_id"`
	Username      string                   `json:"username" db:"username"`
	PasswordHash  []byte                   `json:"-" db:"password"`
	IsActive      bool                     `json:"is_active" db:"is_active"`
	Role          Role                     `json:"role" db:"role"`
	Nationality   *nationality.Nationality `json:"nationality,omitempty" db:"-"`
}

// FullName joins the 4 names of the User, like it is written on official documents.
func (u User) FullName() string {
	return strings.Join([]string{u.FirstName, u.FatherName, u.GFatherName, u.LastName}, " ")
}

func (u User) MarshalJSON() ([]byte, error) {
	type alias User
	return json.Marshal(struct {
		alias
		FullName string `json:"full_name"`
	}{alias(u), u.FullName()})
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u User) IsAdmin() bool   { return u.Role == RoleAdmin }
func (u User) IsTeacher() bool { return u.Role == RoleTeacher }
func (u User) IsStudent() bool { return u.Role == RoleStudent }

// Profile holds the personal information shared by NewUser and UpdateUser.
type Profile struct {
	FirstName     string    `json:"first_name" validate:"required"`
	FatherName    string    `json:"father_name" validate:"required"`
	GFatherName   string    `json:"gfather_name" validate:"required"`
	LastName      string    `json:"last_name" validate:"required"`
	Gender        *bool     `json:"gender" validate:"required"`
	DateOfBirth   core.Date `json:"date_of_birth"`
	NationalityID int       `json:"nationality_id" validate:"required"`
	Username      string    `json:"username" validate:"required,min=2,nospace"`
	IsActive      *bool     `json:"is_active"`
}

func (p *Profile) clean() {
	p.FirstName = core.CleanString(p.FirstName)
	p.FatherName = core.CleanString(p.FatherName)
	p.GFatherName = core.CleanString(p.GFatherName)
	p.LastName = core.CleanString(p.LastName)
	p.Username = core.CleanString(p.Username, true /* lower */)
}

func (p Profile) checkDateOfBirth() error {
	if p.DateOfBirth.IsZero() {
		return core.NewValidationError(nil, core.FieldError{Field: "date_of_birth", Error: requiredText})
	}
	return nil
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Profile
	Password string `json:"password" validate:"required,min=6"`
}

func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.clean()
	if err := validate.Struct(nu); err != nil {
		return err
	}
	return nu.checkDateOfBirth()
}

// UpdateUser defines what information may be provided to modify an existing User.
// An empty Password keeps the current one.
type UpdateUser struct {
	Profile
	Password string `json:"password" validate:"omitempty,min=6"`
}

func (uu *UpdateUser) Validate(validate *validator.Validate) error {
	uu.clean()
	if err := validate.Struct(uu); err != nil {
		return err
	}
	return uu.checkDateOfBirth()
}

type ChangePassword struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
	username    string // for the similarity check
}

func (cp *ChangePassword) Validate(validate *validator.Validate, usr User) error {
	cp.username = usr.Username
	return validate.Struct(cp)
}

package user

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/nationality"
)

var (
	// errors
	ErrNotFound           = core.NewNotFoundError("user not found")
	ErrTeacherNotFound    = core.NewNotFoundError("teacher not found")
	ErrStudentNotFound    = core.NewNotFoundError("student not found")
	ErrUsernameExists     = core.NewConflictError("a user with this username already exists")
	ErrInvalidCredentials = core.NewInvalidError("incorrect username or password")
	ErrInactive           = core.NewInvalidError("inactive user")
	ErrWrongPassword      = core.NewInvalidError("old password does not match the current password")
	ErrTeacherReferenced  = core.NewConflictError("cannot delete: there is data depending on this teacher")
	ErrStudentReferenced  = core.NewConflictError("cannot delete: there is data depending on this student")
	ErrReferenced         = core.NewConflictError("cannot delete: there is data depending on this user")
)

type Repository interface {
	Get(ctx context.Context, id int) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
	// List returns users having role. q.Search does a case-insensitive match on the full name.
	List(ctx context.Context, role Role, q core.PageQuery) ([]User, int, error)
	Create(ctx context.Context, usr User) (User, error)
	Update(ctx context.Context, usr User) (User, error)
	SetPassword(ctx context.Context, id int, hash []byte) error
	Delete(ctx context.Context, id int) error
	Count(ctx context.Context, role Role) (int, error)
	HasAssignments(ctx context.Context, teacherID int) (bool, error)
	HasRegistrations(ctx context.Context, studentID int) (bool, error)
}

type Service struct {
	repo    Repository
	natRepo nationality.Repository
}

func NewService(repo Repository, natRepo nationality.Repository) *Service {
	return &Service{repo: repo, natRepo: natRepo}
}

// expand loads the Nationality of each user.
func (svc *Service) expand(ctx context.Context, users ...*User) error {
	cache := make(map[int]*nationality.Nationality)
	for _, usr := range users {
		nat, ok := cache[usr.NationalityID]
		if !ok {
			n, err := svc.natRepo.Get(ctx, usr.NationalityID)
			if err != nil {
				if errors.Cause(err) == nationality.ErrNotFound {
					continue
				}
				return errors.Wrap(err, "getting user nationality")
			}
			nat = &n
			cache[usr.NationalityID] = nat
		}
		usr.Nationality = nat
	}
	return nil
}

func (svc *Service) checkNationality(ctx context.Context, id int) error {
	if _, err := svc.natRepo.Get(ctx, id); err != nil {
		if errors.Cause(err) == nationality.ErrNotFound {
			return err
		}
		return errors.Wrap(err, "getting nationality")
	}
	return nil
}

func (svc *Service) checkUsername(ctx context.Context, uname string, exclID int) error {
	usr, err := svc.repo.GetByUsername(ctx, uname)
	switch {
	case errors.Cause(err) == ErrNotFound:
		return nil
	case err != nil:
		return errors.Wrap(err, "getting user by username")
	case usr.ID != exclID:
		return ErrUsernameExists
	}
	return nil
}

func applyProfile(usr *User, p Profile) {
	usr.FirstName = p.FirstName
	usr.FatherName = p.FatherName
	usr.GFatherName = p.GFatherName
	usr.LastName = p.LastName
	if p.Gender != nil {
		usr.Gender = *p.Gender
	}
	usr.DateOfBirth = p.DateOfBirth
	usr.NationalityID = p.NationalityID
	usr.Username = p.Username
	if p.IsActive != nil {
		usr.IsActive = *p.IsActive
	}
}

// Create creates a User with the given role (teachers from /users, students from /students).
func (svc *Service) Create(ctx context.Context, role Role, nu NewUser) (User, error) {
	if err := svc.checkNationality(ctx, nu.NationalityID); err != nil {
		return User{}, err
	}
	if err := svc.checkUsername(ctx, nu.Username, 0); err != nil {
		return User{}, err
	}

	usr := User{Role: role, IsActive: true}
	applyProfile(&usr, nu.Profile)
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	usr, err := svc.repo.Create(ctx, usr)
	if err != nil {
		return User{}, errors.Wrap(err, "inserting user")
	}
	return usr, svc.expand(ctx, &usr)
}

func (svc *Service) get(ctx context.Context, id int, role Role, notFound error) (User, error) {
	usr, err := svc.repo.Get(ctx, id)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return User{}, notFound
		}
		return User{}, errors.Wrap(err, "getting user")
	}
	if role != "" && usr.Role != role {
		return User{}, notFound
	}
	return usr, nil
}

// Update updates the profile of the User identified by id, if it has the given role (any role when empty).
func (svc *Service) Update(ctx context.Context, id int, role Role, uu UpdateUser) (User, error) {
	notFound := ErrNotFound
	if role == RoleStudent {
		notFound = ErrStudentNotFound
	}
	usr, err := svc.get(ctx, id, role, notFound)
	if err != nil {
		return User{}, err
	}
	if err = svc.checkNationality(ctx, uu.NationalityID); err != nil {
		return User{}, err
	}
	if err = svc.checkUsername(ctx, uu.Username, id); err != nil {
		return User{}, err
	}

	applyProfile(&usr, uu.Profile)
	if uu.Password != "" {
		if err = usr.SetPassword(uu.Password); err != nil {
			return User{}, errors.Wrap(err, "hashing password")
		}
	}
	if usr, err = svc.repo.Update(ctx, usr); err != nil {
		return User{}, errors.Wrap(err, "updating user")
	}
	return usr, svc.expand(ctx, &usr)
}

func (svc *Service) Get(ctx context.Context, id int) (User, error) {
	usr, err := svc.get(ctx, id, "", ErrNotFound)
	if err != nil {
		return User{}, err
	}
	return usr, svc.expand(ctx, &usr)
}

func (svc *Service) GetStudent(ctx context.Context, id int) (User, error) {
	usr, err := svc.get(ctx, id, RoleStudent, ErrStudentNotFound)
	if err != nil {
		return User{}, err
	}
	return usr, svc.expand(ctx, &usr)
}

func (svc *Service) GetTeacher(ctx context.Context, id int) (User, error) {
	usr, err := svc.get(ctx, id, RoleTeacher, ErrTeacherNotFound)
	if err != nil {
		return User{}, err
	}
	return usr, svc.expand(ctx, &usr)
}

func (svc *Service) GetByUsername(ctx context.Context, uname string) (User, error) {
	return svc.repo.GetByUsername(ctx, core.CleanString(uname, true /* lower */))
}

func (svc *Service) List(ctx context.Context, role Role, q core.PageQuery) ([]User, int, error) {
	q.Search = core.CleanString(q.Search)
	users, total, err := svc.repo.List(ctx, role, q)
	if err != nil {
		return nil, 0, errors.Wrap(err, "listing users")
	}
	ptrs := make([]*User, 0, len(users))
	for i := range users {
		ptrs = append(ptrs, &users[i])
	}
	return users, total, svc.expand(ctx, ptrs...)
}

func (svc *Service) Count(ctx context.Context, role Role) (int, error) {
	return svc.repo.Count(ctx, role)
}

// Authenticate finds the active User matching the credentials.
func (svc *Service) Authenticate(ctx context.Context, uname, pwd string) (User, error) {
	usr, err := svc.GetByUsername(ctx, uname)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return User{}, ErrInvalidCredentials
		}
		return User{}, errors.Wrap(err, "getting user by username")
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return User{}, ErrInvalidCredentials
	}
	if !usr.IsActive {
		return User{}, ErrInactive
	}
	return usr, nil
}

func (svc *Service) ChangePassword(ctx context.Context, usr User, cp ChangePassword) (User, error) {
	if err := usr.CheckPassword(cp.OldPassword); err != nil {
		return User{}, ErrWrongPassword
	}
	if err := usr.SetPassword(cp.NewPassword); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	if err := svc.repo.SetPassword(ctx, usr.ID, usr.PasswordHash); err != nil {
		return User{}, errors.Wrap(err, "saving password")
	}
	return usr, svc.expand(ctx, &usr)
}

// ResetPassword sets a new password without checking the old one.
func (svc *Service) ResetPassword(ctx context.Context, uname, pwd string) error {
	usr, err := svc.GetByUsername(ctx, uname)
	if err != nil {
		return err
	}
	if err = usr.SetPassword(pwd); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	return svc.repo.SetPassword(ctx, usr.ID, usr.PasswordHash)
}

func (svc *Service) DeleteTeacher(ctx context.Context, id int) error {
	if _, err := svc.get(ctx, id, RoleTeacher, ErrTeacherNotFound); err != nil {
		return err
	}
	referenced, err := svc.repo.HasAssignments(ctx, id)
	if err != nil {
		return errors.Wrap(err, "checking teacher assignments")
	}
	if referenced {
		return ErrTeacherReferenced
	}
	return trapReferenced(svc.repo.Delete(ctx, id), ErrTeacherReferenced)
}

func (svc *Service) DeleteStudent(ctx context.Context, id int) error {
	if _, err := svc.get(ctx, id, RoleStudent, ErrStudentNotFound); err != nil {
		return err
	}
	referenced, err := svc.repo.HasRegistrations(ctx, id)
	if err != nil {
		return errors.Wrap(err, "checking student registrations")
	}
	if referenced {
		return ErrStudentReferenced
	}
	return trapReferenced(svc.repo.Delete(ctx, id), ErrStudentReferenced)
}

// trapReferenced names the role of a user the repository could not delete.
func trapReferenced(err, roleErr error) error {
	if errors.Cause(err) == ErrReferenced {
		return roleErr
	}
	return err
}

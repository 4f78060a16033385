package inmemdb

import (
	"context"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/user"
)

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *DB) *userRepository {
	return &userRepository{db: db}
}

func (repo *userRepository) Get(_ context.Context, id int) (user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if usr, ok := repo.db.users[id]; ok {
		return usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetByUsername(_ context.Context, username string) (user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, usr := range repo.db.users {
		if usr.Username == username {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) List(_ context.Context, role user.Role, q core.PageQuery) ([]user.User, int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	users := filter(byID(repo.db.users), func(usr user.User) bool {
		return usr.Role == role && matches(q.Search, usr.FullName())
	})
	users, total := page(users, q)
	return users, total, nil
}

func (repo *userRepository) usernameTaken(usr user.User) bool {
	for _, u := range repo.db.users {
		if u.Username == usr.Username && u.ID != usr.ID {
			return true
		}
	}
	return false
}

func (repo *userRepository) Create(_ context.Context, usr user.User) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if repo.usernameTaken(usr) {
		return user.User{}, user.ErrUsernameExists
	}
	usr.ID = repo.db.nextID("users")
	usr.Nationality = nil
	repo.db.users[usr.ID] = usr
	return usr, nil
}

func (repo *userRepository) Update(_ context.Context, usr user.User) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.users[usr.ID]; !ok {
		return user.User{}, user.ErrNotFound
	}
	if repo.usernameTaken(usr) {
		return user.User{}, user.ErrUsernameExists
	}
	usr.Nationality = nil
	repo.db.users[usr.ID] = usr
	return usr, nil
}

func (repo *userRepository) SetPassword(_ context.Context, id int, hash []byte) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	usr, ok := repo.db.users[id]
	if !ok {
		return user.ErrNotFound
	}
	usr.PasswordHash = hash
	repo.db.users[id] = usr
	return nil
}

func (repo *userRepository) Delete(_ context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.users[id]; !ok {
		return user.ErrNotFound
	}
	delete(repo.db.users, id)
	return nil
}

func (repo *userRepository) Count(_ context.Context, role user.Role) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var n int
	for _, usr := range repo.db.users {
		if usr.Role == role {
			n++
		}
	}
	return n, nil
}

func (repo *userRepository) HasAssignments(_ context.Context, teacherID int) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, asgmt := range repo.db.assignments {
		if asgmt.TeacherID == teacherID {
			return true, nil
		}
	}
	return false, nil
}

func (repo *userRepository) HasRegistrations(_ context.Context, studentID int) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, reg := range repo.db.registrations {
		if reg.StudentID == studentID {
			return true, nil
		}
	}
	return false, nil
}

package shared

import (
	"github.com/jmoiron/sqlx"

	"github.com/trezcool/madrasa/core/assignment"
	"github.com/trezcool/madrasa/core/dashboard"
	"github.com/trezcool/madrasa/core/grade"
	"github.com/trezcool/madrasa/core/gradingscale"
	"github.com/trezcool/madrasa/core/level"
	"github.com/trezcool/madrasa/core/mark"
	"github.com/trezcool/madrasa/core/nationality"
	"github.com/trezcool/madrasa/core/registration"
	"github.com/trezcool/madrasa/core/schoolyear"
	"github.com/trezcool/madrasa/core/subject"
	"github.com/trezcool/madrasa/core/user"
	inmemdb "github.com/trezcool/madrasa/storage/database/inmem"
	sqlxrepos "github.com/trezcool/madrasa/storage/database/sqlx"
)

type Repositories struct {
	Nationality  nationality.Repository
	User         user.Repository
	Level        level.Repository
	Subject      subject.Repository
	Grade        grade.Repository
	GradingScale gradingscale.Repository
	SchoolYear   schoolyear.Repository
	Registration registration.Repository
	Assignment   assignment.Repository
	Mark         mark.Repository
}

// SQLRepositories returns the postgres repositories.
func SQLRepositories(db *sqlx.DB) Repositories {
	return Repositories{
		Nationality:  sqlxrepos.NewNationalityRepository(db),
		User:         sqlxrepos.NewUserRepository(db),
		Level:        sqlxrepos.NewLevelRepository(db),
		Subject:      sqlxrepos.NewSubjectRepository(db),
		Grade:        sqlxrepos.NewGradeRepository(db),
		GradingScale: sqlxrepos.NewGradingScaleRepository(db),
		SchoolYear:   sqlxrepos.NewSchoolYearRepository(db),
		Registration: sqlxrepos.NewRegistrationRepository(db),
		Assignment:   sqlxrepos.NewAssignmentRepository(db),
		Mark:         sqlxrepos.NewMarkRepository(db),
	}
}

// InMemRepositories returns the in-memory repositories, for tests.
func InMemRepositories(db *inmemdb.DB) Repositories {
	return Repositories{
		Nationality:  inmemdb.NewNationalityRepository(db),
		User:         inmemdb.NewUserRepository(db),
		Level:        inmemdb.NewLevelRepository(db),
		Subject:      inmemdb.NewSubjectRepository(db),
		Grade:        inmemdb.NewGradeRepository(db),
		GradingScale: inmemdb.NewGradingScaleRepository(db),
		SchoolYear:   inmemdb.NewSchoolYearRepository(db),
		Registration: inmemdb.NewRegistrationRepository(db),
		Assignment:   inmemdb.NewAssignmentRepository(db),
		Mark:         inmemdb.NewMarkRepository(db),
	}
}

type Services struct {
	User         *user.Service
	Nationality  *nationality.Service
	Level        *level.Service
	Subject      *subject.Service
	Grade        *grade.Service
	GradingScale *gradingscale.Service
	SchoolYear   *schoolyear.Service
	Registration *registration.Service
	Assignment   *assignment.Service
	Mark         *mark.Service
	Dashboard    *dashboard.Service
}

// NewServices wires the services on top of repos.
func NewServices(repos Repositories) Services {
	var svcs Services
	svcs.User = user.NewService(repos.User, repos.Nationality)
	svcs.Nationality = nationality.NewService(repos.Nationality)
	svcs.Level = level.NewService(repos.Level)
	svcs.Subject = subject.NewService(repos.Subject)
	svcs.Grade = grade.NewService(repos.Grade, repos.Level, repos.Subject)
	svcs.GradingScale = gradingscale.NewService(repos.GradingScale)
	svcs.SchoolYear = schoolyear.NewService(repos.SchoolYear)
	svcs.Registration = registration.NewService(repos.Registration, repos.User, svcs.Grade, svcs.SchoolYear)
	svcs.Assignment = assignment.NewService(repos.Assignment, repos.User, repos.Grade, svcs.SchoolYear)
	svcs.Mark = mark.NewService(repos.Mark, repos.Registration, svcs.Assignment, svcs.SchoolYear, repos.GradingScale)
	svcs.Dashboard = dashboard.NewService(svcs.User, svcs.Grade, svcs.Registration)
	return svcs
}

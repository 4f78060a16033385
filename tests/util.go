package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/madrasa/apps/shared"
	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/grade"
	"github.com/trezcool/madrasa/core/gradingscale"
	"github.com/trezcool/madrasa/core/level"
	"github.com/trezcool/madrasa/core/nationality"
	"github.com/trezcool/madrasa/core/registration"
	"github.com/trezcool/madrasa/core/schoolyear"
	"github.com/trezcool/madrasa/core/subject"
	"github.com/trezcool/madrasa/core/user"
	"github.com/trezcool/madrasa/storage/database"
)

const Password = "Xq7!vLm29z"

// Config returns the configuration the test servers run with.
func Config() *core.Config {
	return &core.Config{
		AppName:   "Madrasa",
		Build:     "test",
		Env:       "TEST",
		TestMode:  true,
		SecretKey: "test-secret-key",
		Server: core.ServerConfig{
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: 24 * time.Hour,
			CORSAllowOrigins:          []string{"*"},
		},
	}
}

// PrepareDB opens the postgres database at TEST_DATABASE_URL with a fresh schema.
// The test is skipped when the variable is not set.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}
	db, err := database.OpenURL(dsn)
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db.DB, "reset"))
	require.NoError(t, database.Migrate(db.DB))
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func CreateNationality(t *testing.T, svcs shared.Services, masculine, feminine string) nationality.Nationality {
	t.Helper()
	nat, err := svcs.Nationality.Create(context.Background(), nationality.Input{MasculineForm: masculine, FeminineForm: feminine})
	require.NoError(t, err)
	return nat
}

// UserOption customizes the profile of the users created by CreateUser.
type UserOption func(nu *user.NewUser)

func Female() UserOption {
	return func(nu *user.NewUser) {
		male := false
		nu.Gender = &male
	}
}

func Inactive() UserOption {
	return func(nu *user.NewUser) {
		inactive := false
		nu.IsActive = &inactive
	}
}

// Names sets the first & last names of the user.
func Names(first, last string) UserOption {
	return func(nu *user.NewUser) {
		nu.FirstName, nu.LastName = first, last
	}
}

// CreateUser creates a male active user with Password, born on 2000-01-01.
func CreateUser(t *testing.T, svcs shared.Services, role user.Role, uname string, natID int, opts ...UserOption) user.User {
	t.Helper()
	male := true
	nu := user.NewUser{
		Profile: user.Profile{
			FirstName:     "First",
			FatherName:    "Father",
			GFatherName:   "Grandfather",
			LastName:      "Last",
			Gender:        &male,
			DateOfBirth:   core.NewDate(2000, time.January, 1),
			NationalityID: natID,
			Username:      uname,
		},
		Password: Password,
	}
	for _, opt := range opts {
		opt(&nu)
	}
	usr, err := svcs.User.Create(context.Background(), role, nu)
	require.NoError(t, err)
	return usr
}

func CreateLevel(t *testing.T, svcs shared.Services, name string) level.Level {
	t.Helper()
	lvl, err := svcs.Level.Create(context.Background(), level.Input{Name: name})
	require.NoError(t, err)
	return lvl
}

func CreateGrade(t *testing.T, svcs shared.Services, name string, numericValue, levelID int) grade.Grade {
	t.Helper()
	grd, err := svcs.Grade.Create(context.Background(), grade.Input{Name: name, NumericValue: &numericValue, LevelID: levelID})
	require.NoError(t, err)
	return grd
}

func CreateSubject(t *testing.T, svcs shared.Services, name string) subject.Subject {
	t.Helper()
	sub, err := svcs.Subject.Create(context.Background(), subject.Input{Name: name})
	require.NoError(t, err)
	return sub
}

func AssignSubject(t *testing.T, svcs shared.Services, gradeID, subjectID int) {
	t.Helper()
	_, err := svcs.Grade.AssignSubject(context.Background(), grade.SubjectLink{GradeID: gradeID, SubjectID: subjectID})
	require.NoError(t, err)
}

func CreateGradingScale(t *testing.T, svcs shared.Services, name string, lowest, highest float64) gradingscale.GradingScale {
	t.Helper()
	gs, err := svcs.GradingScale.Create(context.Background(), gradingscale.Input{
		Name:              name,
		LowestPercentage:  &lowest,
		HighestPercentage: &highest,
	})
	require.NoError(t, err)
	return gs
}

// CreateSchoolYear creates the school year starting on September 1st of startYear, active if requested.
func CreateSchoolYear(t *testing.T, svcs shared.Services, startYear int, active bool) schoolyear.SchoolYear {
	t.Helper()
	ctx := context.Background()
	sy, err := svcs.SchoolYear.Create(ctx, schoolyear.Input{
		Title:     fmt.Sprintf("%d-%d", startYear, startYear+1),
		StartDate: core.NewDate(startYear, time.September, 1),
		EndDate:   core.NewDate(startYear+1, time.June, 30),
	})
	require.NoError(t, err)
	if active {
		sy, err = svcs.SchoolYear.Activate(ctx, sy.ID)
		require.NoError(t, err)
	}
	return sy
}

// Register registers the student in the grade for the current school year.
func Register(t *testing.T, svcs shared.Services, studentID, gradeID int) registration.Item {
	t.Helper()
	item, err := svcs.Registration.Create(context.Background(), registration.Input{StudentID: studentID, GradeID: gradeID})
	require.NoError(t, err)
	return item
}

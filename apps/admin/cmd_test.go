package main

import (
	"bytes"
	"context"
	"database/sql"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/madrasa/apps/shared"
	"github.com/trezcool/madrasa/core/nationality"
	"github.com/trezcool/madrasa/core/user"
	inmemdb "github.com/trezcool/madrasa/storage/database/inmem"
)

func setup(t *testing.T) (*commandLine, shared.Services) {
	t.Helper()
	svcs := shared.NewServices(shared.InMemRepositories(inmemdb.Open()))
	validate, _ := shared.NewValidator()
	return &commandLine{usrSvc: svcs.User, natSvc: svcs.Nationality, validate: validate}, svcs
}

func mockPassword(t *testing.T, pwd string) {
	t.Helper()
	orig := readPasswordFunc
	readPasswordFunc = func(int) ([]byte, error) { return []byte(pwd), nil }
	t.Cleanup(func() { readPasswordFunc = orig })
}

func createNationality(t *testing.T, svc *nationality.Service) nationality.Nationality {
	t.Helper()
	nat, err := svc.Create(context.Background(), nationality.Input{MasculineForm: "Congolais", FeminineForm: "Congolaise"})
	require.NoError(t, err)
	return nat
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _ := setup(t)

	var gotCmd string
	var gotArgs []string
	orig := migrateFunc
	migrateFunc = func(_ *sql.DB, command string, args ...string) error {
		gotCmd, gotArgs = command, args
		return nil
	}
	t.Cleanup(func() { migrateFunc = orig })

	tests := []struct {
		name     string
		args     []string
		wantErr  bool
		wantCmd  string
		wantArgs []string
	}{
		{name: "no command", args: []string{"migrate"}, wantErr: true},
		{name: "up", args: []string{"migrate", "up"}, wantCmd: "up", wantArgs: []string{}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}, wantCmd: "up-to", wantArgs: []string{"2"}},
		{name: "status", args: []string{"migrate", "status"}, wantCmd: "status", wantArgs: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotCmd, gotArgs = "", nil
			err := cli.run(tt.args)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCmd, gotCmd)
			assert.Equal(t, tt.wantArgs, gotArgs)
		})
	}
}

func Test_commandLine_addNationality(t *testing.T) {
	cli, svcs := setup(t)

	err := cli.run([]string{"addnationality", "--masculine", "Congolais"})
	assert.Error(t, err, "feminine form is required")

	require.NoError(t, cli.run([]string{"addnationality", "--masculine", "Congolais", "--feminine", "Congolaise"}))
	nats, total, err := svcs.Nationality.List(context.Background(), nationalityQuery)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Congolaise", nats[0].FeminineForm)

	err = cli.run([]string{"addnationality", "--masculine", "Congolais", "--feminine", "Congolaise"})
	assert.Equal(t, nationality.ErrExists, errors.Cause(err))
}

func Test_commandLine_addUser(t *testing.T) {
	cli, svcs := setup(t)
	nat := createNationality(t, svcs.Nationality)
	ctx := context.Background()

	args := func(extra ...string) []string {
		return append([]string{
			"adduser", "-u", "Admin", "--first-name", "Jean", "--father-name", "Paul",
			"--gfather-name", "Marc", "--last-name", "Kabila", "--date-of-birth", "1990-01-31",
			"--nationality-id", itoa(nat.ID),
		}, extra...)
	}

	t.Run("empty password", func(t *testing.T) {
		mockPassword(t, "")
		assert.Equal(t, errEmptyPassword, errors.Cause(cli.run(args())))
	})

	t.Run("invalid role", func(t *testing.T) {
		mockPassword(t, "Xq7!vLm29z")
		assert.Error(t, cli.run(args("--role", "x")))
	})

	t.Run("unknown nationality", func(t *testing.T) {
		mockPassword(t, "Xq7!vLm29z")
		err := cli.run([]string{
			"adduser", "-u", "other", "--first-name", "Jean", "--father-name", "Paul",
			"--gfather-name", "Marc", "--last-name", "Kabila", "--date-of-birth", "1990-01-31",
			"--nationality-id", "999",
		})
		assert.Equal(t, nationality.ErrNotFound, errors.Cause(err))
	})

	mockPassword(t, "Xq7!vLm29z")
	require.NoError(t, cli.run(args()))
	usr, err := svcs.User.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.True(t, usr.IsAdmin())
	assert.True(t, usr.IsActive)
	assert.True(t, usr.Gender)
	assert.NoError(t, usr.CheckPassword("Xq7!vLm29z"))

	t.Run("update existing", func(t *testing.T) {
		mockPassword(t, "Rt5#wNb83k")
		require.NoError(t, cli.run(args("--last-name", "Tshisekedi", "--female")))

		updated, err := svcs.User.GetByUsername(ctx, "admin")
		require.NoError(t, err)
		assert.Equal(t, usr.ID, updated.ID)
		assert.Equal(t, "Tshisekedi", updated.LastName)
		assert.False(t, updated.Gender)
		assert.NoError(t, updated.CheckPassword("Rt5#wNb83k"))
	})
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli, svcs := setup(t)
	nat := createNationality(t, svcs.Nationality)
	ctx := context.Background()

	male := true
	usr, err := svcs.User.Create(ctx, user.RoleTeacher, user.NewUser{
		Profile: user.Profile{
			FirstName: "Jean", FatherName: "Paul", GFatherName: "Marc", LastName: "Kabila",
			Gender: &male, DateOfBirth: mustDate("1985-06-30"), NationalityID: nat.ID, Username: "teacher",
		},
		Password: "Xq7!vLm29z",
	})
	require.NoError(t, err)

	t.Run("username required", func(t *testing.T) {
		mockPassword(t, "Rt5#wNb83k")
		assert.Error(t, cli.run([]string{"resetpassword"}))
	})

	t.Run("user not found", func(t *testing.T) {
		mockPassword(t, "Rt5#wNb83k")
		assert.Equal(t, user.ErrNotFound, errors.Cause(cli.run([]string{"resetpassword", "-u", "lol"})))
	})

	t.Run("reset", func(t *testing.T) {
		mockPassword(t, "Rt5#wNb83k")
		out := new(bytes.Buffer)
		root := cli.rootCmd()
		root.SetOut(out)
		root.SetArgs([]string{"resetpassword", "-u", "Teacher"})
		require.NoError(t, root.Execute())
		assert.Contains(t, out.String(), `password of "Teacher" reset`)

		refreshed, err := svcs.User.Get(ctx, usr.ID)
		require.NoError(t, err)
		assert.NotEqual(t, usr.PasswordHash, refreshed.PasswordHash)
		assert.NoError(t, refreshed.CheckPassword("Rt5#wNb83k"))
	})
}

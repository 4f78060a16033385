package main

import (
	"database/sql"
	"fmt"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/trezcool/madrasa/core/nationality"
	"github.com/trezcool/madrasa/core/user"
	"github.com/trezcool/madrasa/storage/database"
)

var (
	readPasswordFunc = term.ReadPassword     // mockable
	migrateFunc      = database.RunMigrations // mockable

	errEmptyPassword = errors.New("the password cannot be empty")
)

type commandLine struct {
	db       *sql.DB
	usrSvc   *user.Service
	natSvc   *nationality.Service
	validate *validator.Validate
}

func (cli *commandLine) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Madrasa administration commands",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		cli.migrateCmd(),
		cli.addNationalityCmd(),
		cli.addUserCmd(),
		cli.resetPasswordCmd(),
	)
	return root
}

func (cli *commandLine) run(args []string) error {
	root := cli.rootCmd()
	root.SetArgs(args)
	return root.Execute()
}

// promptPassword reads a password from the terminal without echoing it.
func promptPassword(cmd *cobra.Command) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cmd.OutOrStdout())
	if err != nil {
		return "", errors.Wrap(err, "reading password")
	}
	if len(pwd) == 0 {
		return "", errEmptyPassword
	}
	return string(pwd), nil
}

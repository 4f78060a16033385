package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/nationality"
	"github.com/trezcool/madrasa/core/user"
)

func (cli *commandLine) addNationalityCmd() *cobra.Command {
	var in nationality.Input
	cmd := &cobra.Command{
		Use:   "addnationality",
		Short: "Create a nationality",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := in.Validate(cli.validate); err != nil {
				return err
			}
			nat, err := cli.natSvc.Create(context.Background(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "nationality %q created with id %d\n", nat.MasculineForm, nat.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.MasculineForm, "masculine", "", "masculine form")
	cmd.Flags().StringVar(&in.FeminineForm, "feminine", "", "feminine form")
	return cmd
}

type addUserFlags struct {
	role   string
	female bool
	dob    string
	data   user.NewUser
}

func (cli *commandLine) addUserCmd() *cobra.Command {
	var f addUserFlags
	cmd := &cobra.Command{
		Use:   "adduser",
		Short: "Create a user, or update the profile & password of an existing one. The password is prompted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pwd, err := promptPassword(cmd)
			if err != nil {
				return err
			}
			usr, created, err := cli.addUser(f, pwd)
			if err != nil {
				return err
			}
			verb := "updated"
			if created {
				verb = "created"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %q %s\n", usr.Role, usr.Username, verb)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&f.data.Username, "username", "u", "", "username")
	flags.StringVar(&f.data.FirstName, "first-name", "", "first name")
	flags.StringVar(&f.data.FatherName, "father-name", "", "father's name")
	flags.StringVar(&f.data.GFatherName, "gfather-name", "", "grandfather's name")
	flags.StringVar(&f.data.LastName, "last-name", "", "last name")
	flags.BoolVar(&f.female, "female", false, "the user is a female")
	flags.StringVar(&f.dob, "date-of-birth", "", "date of birth (YYYY-MM-DD)")
	flags.IntVar(&f.data.NationalityID, "nationality-id", 0, "nationality id (see addnationality)")
	flags.StringVar(&f.role, "role", string(user.RoleAdmin), "role: a (admin), t (teacher) or s (student)")
	return cmd
}

func (cli *commandLine) addUser(f addUserFlags, pwd string) (user.User, bool, error) {
	ctx := context.Background()

	role := user.Role(f.role)
	if !role.IsValid() {
		return user.User{}, false, errors.Errorf("invalid role %q", f.role)
	}
	data := f.data
	male := !f.female
	data.Gender = &male
	data.Password = pwd
	if f.dob != "" {
		dob, err := core.ParseDate(f.dob)
		if err != nil {
			return user.User{}, false, errors.Wrap(err, "parsing date of birth")
		}
		data.DateOfBirth = dob
	}
	if err := data.Validate(cli.validate); err != nil {
		return user.User{}, false, err
	}

	existing, err := cli.usrSvc.GetByUsername(ctx, data.Username)
	switch {
	case err == nil:
		upd := user.UpdateUser{Profile: data.Profile, Password: data.Password}
		usr, err := cli.usrSvc.Update(ctx, existing.ID, "" /* any role */, upd)
		return usr, false, err
	case errors.Cause(err) != user.ErrNotFound:
		return user.User{}, false, errors.Wrap(err, "getting user")
	}
	usr, err := cli.usrSvc.Create(ctx, role, data)
	return usr, true, err
}

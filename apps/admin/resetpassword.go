package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func (cli *commandLine) resetPasswordCmd() *cobra.Command {
	var uname string
	cmd := &cobra.Command{
		Use:   "resetpassword",
		Short: "Reset a user's password. The password is prompted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pwd, err := promptPassword(cmd)
			if err != nil {
				return err
			}
			if err = cli.usrSvc.ResetPassword(context.Background(), uname, pwd); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "password of %q reset\n", uname)
			return nil
		},
	}
	cmd.Flags().StringVarP(&uname, "username", "u", "", "the user's username")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

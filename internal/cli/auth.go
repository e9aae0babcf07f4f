package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"ministagram/internal/controller"
)

func (a *App) loginCmd() *cobra.Command {
	form := controller.NewLoginForm(a.deps)
	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Sign in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			form.Username = args[0]
			if err := form.Submit(cmd.Context()); err != nil {
				if len(form.FieldErrors) > 0 {
					return err
				}
				if form.AccountNotFound {
					return failure(form.GeneralError+" Run `ministagram signup`.", err)
				}
				return failure(form.GeneralError, err)
			}
			fmt.Fprintf(a.out, "Signed in as @%s.\n", a.deps.Session.CurrentUser().Username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&form.Password, "password", "p", "", "account password")
	return cmd
}

func (a *App) signupCmd() *cobra.Command {
	form := controller.NewSignupForm(a.deps)
	cmd := &cobra.Command{
		Use:   "signup <username>",
		Short: "Create an account and sign in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			form.Username = args[0]
			if err := form.Submit(cmd.Context()); err != nil {
				if len(form.FieldErrors) > 0 {
					return err
				}
				return failure(form.GeneralError, err)
			}
			fmt.Fprintf(a.out, "Welcome, %s! Signed in as @%s.\n", form.FullName, form.Username)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&form.FullName, "name", "", "full name")
	f.StringVarP(&form.Password, "password", "p", "", "password, at least 6 characters")
	f.StringVar(&form.ProfilePicURL, "picture", "", "profile picture URL")
	f.BoolVar(&form.PrivateAccount, "private", false, "make the account private")
	return cmd
}

func (a *App) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.deps.Session.Logout(cmd.Context())
			fmt.Fprintln(a.out, "Signed out.")
			return nil
		},
	}
}

func (a *App) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: a.authed(func(_ *cobra.Command, _ []string) error {
			renderUser(a.out, *a.deps.Session.CurrentUser())
			return nil
		}),
	}
}

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"libraryapi/internal/access"
	"libraryapi/internal/apperr"
	"libraryapi/internal/user"
)

type usersOpener func(ctx context.Context) (*user.Service, func(), error)

func newRootCmd(open usersOpener) *cobra.Command {
	root := &cobra.Command{
		Use:           "catalogctl",
		Short:         "Manage catalog accounts",
		SilenceUsage:  true,
	}
	userCmd := &cobra.Command{Use: "user", Short: "Create users and change roles"}
	userCmd.AddCommand(newUserCreateCmd(open), newUserSetRoleCmd(open))
	root.AddCommand(userCmd)
	return root
}

func newUserCreateCmd(open usersOpener) *cobra.Command {
	var email, username, role, dob string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user, prompting for the password",
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := access.ParseRole(role)
			if err != nil {
				return err
			}
			password, err := readPassword(cmd, "Password: ")
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}

			svc, closeFn, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			u, err := svc.CreateWithRole(cmd.Context(), user.RegisterInput{
				Email: email, Username: username, Password: password, DateOfBirth: dob,
			}, r)
			if err != nil {
				return describe(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s) id=%s\n", u.Email, u.Role, u.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&username, "username", "", "unique username")
	cmd.Flags().StringVar(&role, "role", string(access.DefaultRole), "Admin, Librarian or Member")
	cmd.Flags().StringVar(&dob, "date-of-birth", "", "optional, YYYY-MM-DD")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func newUserSetRoleCmd(open usersOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "set-role <email> <role>",
		Short: "Change the role of an existing user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			u, err := svc.AssignRole(cmd.Context(), args[0], args[1])
			if err != nil {
				return describe(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", u.Email, u.Role)
			return nil
		},
	}
}

// readPassword masks input on a terminal and reads one line otherwise.
func readPassword(cmd *cobra.Command, prompt string) (string, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), prompt)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// describe flattens validation errors into one readable line.
func describe(err error) error {
	var verr *apperr.ValidationError
	if errors.As(err, &verr) {
		return fmt.Errorf("invalid input: %s", strings.TrimPrefix(verr.Error(), "validation failed: "))
	}
	return err
}

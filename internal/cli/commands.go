package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"hostpanel/internal/session"
)

var errLoginFailed = errors.New("login failed")

func newLoginCmd(opts *options) *cobra.Command {
	var username, password string
	var passwordStdin bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and persist the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if passwordStdin {
				line, err := readLine(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read password: %w", err)
				}
				password = line
			}

			store, err := opts.openStore(cmd.Context(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if user, ok := store.User(); ok && user.Username == username {
				fmt.Fprintf(cmd.OutOrStdout(), "Already signed in as %s\n", user.Username)
				return nil
			}
			if !store.Login(cmd.Context(), username, password) {
				return errLoginFailed
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")
	_ = cmd.MarkFlagRequired("username")
	cmd.MarkFlagsMutuallyExclusive("password", "password-stdin")

	return cmd
}

func newLogoutCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the persisted session",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.openStore(cmd.Context(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if _, ok := store.User(); !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Not signed in.")
				return nil
			}
			store.Logout(cmd.Context())
			return nil
		},
	}
}

func newWhoamiCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.openStore(cmd.Context(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			user, ok := store.User()
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Not signed in.")
				fmt.Fprintln(cmd.OutOrStdout(), "\nSign in with: panelctl login -u <username> --password-stdin")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", user.Username, user.Role)
			return nil
		},
	}
}

func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a bcrypt hash for a users file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var password string
			if len(args) == 1 {
				password = args[0]
			} else {
				line, err := readLine(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read password: %w", err)
				}
				password = line
			}
			if password == "" {
				return errors.New("password must not be empty")
			}

			hash, err := session.HashPassword(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

func newAddUserCmd(opts *options) *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:   "add-user <username>",
		Short: "Add or replace an account in the users file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.credentialsFile == "" {
				return errors.New("--credentials is required")
			}
			password, err := readLine(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}

			creds, err := session.NewFileCredentials(opts.credentialsFile)
			if err != nil {
				return fmt.Errorf("failed to load credentials: %w", err)
			}
			c, err := creds.Put(args[0], password, session.Role(role))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%s)\n", c.Username, c.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", string(session.RoleUser), "Account role (admin or user)")
	return cmd
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

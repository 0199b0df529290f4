// Package cli implements panelctl, a terminal client for the panel session
// store. Sessions persist in a JSON file instead of a browser cookie.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"hostpanel/internal/notify"
	"hostpanel/internal/session"
)

var version = "dev"

type options struct {
	sessionFile     string
	credentialsFile string
}

// NewRootCmd builds the command tree. Tests call it directly with their own
// output writers.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "panelctl",
		Short: "panelctl - manage hostpanel sessions from the terminal",
		Long: `panelctl signs in to hostpanel with the same credentials as the web
login and keeps the session in a local file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.sessionFile, "session-file", defaultSessionFile(), "Path of the persisted session")
	root.PersistentFlags().StringVar(&opts.credentialsFile, "credentials", os.Getenv("CREDENTIALS_FILE"), "Users file with bcrypt hashes (demo accounts when empty)")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "panelctl version %s\n", version)
		},
	})
	root.AddCommand(newLoginCmd(opts))
	root.AddCommand(newLogoutCmd(opts))
	root.AddCommand(newWhoamiCmd(opts))
	root.AddCommand(newHashPasswordCmd())
	root.AddCommand(newAddUserCmd(opts))

	return root
}

func Execute() error {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".hostpanel-session.json"
	}
	return filepath.Join(home, ".hostpanel", "session.json")
}

func (o *options) credentials() (session.CredentialFinder, error) {
	if o.credentialsFile == "" {
		return session.DemoCredentials(), nil
	}
	creds, err := session.NewFileCredentials(o.credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}
	return creds, nil
}

// openStore returns an initialized store over the session file. Notifications
// are printed to out.
func (o *options) openStore(ctx context.Context, out io.Writer) (*session.Store, error) {
	creds, err := o.credentials()
	if err != nil {
		return nil, err
	}

	printer := notify.NotifierFunc(func(_ context.Context, n notify.Notification) {
		if n.Variant == notify.VariantDestructive {
			fmt.Fprintf(out, "✗ %s: %s\n", n.Title, n.Description)
			return
		}
		fmt.Fprintf(out, "✓ %s: %s\n", n.Title, n.Description)
	})

	store := session.NewStore(
		session.NewFileStorage(o.sessionFile),
		creds,
		session.WithNotifier(printer),
		session.WithLoginDelay(0),
	)
	store.Initialize(ctx)
	return store, nil
}

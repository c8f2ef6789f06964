// Package cli provides the command-line interface for the spk tool.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// globalFlags holds flags shared by every subcommand.
type globalFlags struct {
	logLevel string
}

// logger builds the slog logger selected by --log-level. The zero value
// disables logging entirely, matching the quiet default of the tool.
func (f *globalFlags) logger() (*slog.Logger, error) {
	if f.logLevel == "" {
		return slog.New(slog.DiscardHandler), nil
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(f.logLevel)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", f.logLevel, err)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})), nil
}

// newRootCmd creates the root command for the spk CLI.
func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "spk",
		Short: "Build and check signed application packages",
		Long: strings.TrimSpace(`
spk packages are compressed archives prefixed with a header containing a
cryptographic signature, proving that upgrades came from the same source.
This tool creates, signs, verifies and unpacks them.`),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "enable logging at this level (debug, info, warn, error)")

	cmd.AddCommand(
		newKeygenCmd(flags),
		newAppIDCmd(flags),
		newPackCmd(flags),
		newUnpackCmd(flags),
		newVerifyCmd(flags),
	)

	return cmd
}

// Execute runs the spk CLI. Validation failures are printed as
// "*** <file>: <problem>" diagnostics and reported through the error
// return for a non-zero exit.
func Execute(ctx context.Context) error {
	cmd := newRootCmd()
	err := cmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "*** %v\n", err)
	}
	return err
}

// printAppID reports an operation's app ID. Unless onlyID is set, the
// artifact the ID belongs to is named alongside it.
func printAppID(w io.Writer, id fmt.Stringer, filename string, onlyID bool) {
	if onlyID {
		fmt.Fprintf(w, "%s\n", id)
		return
	}
	fmt.Fprintf(w, "%s %s\n", id, filename)
}

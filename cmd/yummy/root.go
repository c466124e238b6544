package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sufield/yummy"
	"github.com/sufield/yummy/internal/debug"
	"github.com/sufield/yummy/internal/logging"
	"github.com/sufield/yummy/internal/ports"
)

// globalFlags are shared by every command.
type globalFlags struct {
	config  string
	timeout time.Duration
}

func newRootCmd() *cobra.Command {
	var flags globalFlags

	root := &cobra.Command{
		Use:   "yummy",
		Short: "Command-line client for the yummy recipe service",
		Long: `yummy logs in to the identity provider, keeps the session between runs,
and calls the recipe backend.

Configuration is read from --config, $YUMMY_CONFIG or ./yummy.yaml, and
environment variables (DFX_NETWORK, CANISTER_ID_YUMMY_BACKEND,
CANISTER_ID_INTERNET_IDENTITY, YUMMY_*) override it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			logging.ConfigureRuntime()
			debug.Init()
			debug.InitLogger()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.config, "config", "c", "", "Config file (YAML or TOML)")
	pf.DurationVar(&flags.timeout, "timeout", 2*time.Minute, "Give up on the command after this long")

	root.AddCommand(
		newLoginCmd(&flags),
		newLogoutCmd(&flags),
		newStatusCmd(&flags),
		newWhoAmICmd(&flags),
		newRegisterCmd(&flags),
		newRecipesCmd(&flags),
		newDeleteRecipeCmd(&flags),
		newDeleteUserCmd(&flags),
		newValidateCmd(),
		newVersionCmd(),
	)

	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return codeError(exitConfigFlag, "%v", err)
	})
	return root
}

// withClient opens the client, runs fn, prints the current notice and
// closes the client.
func withClient(cmd *cobra.Command, flags *globalFlags, fn func(ctx context.Context, c *yummy.Client) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), flags.timeout)
	defer cancel()

	client, shutdown, err := yummy.Open(flags.config, yummy.WithOutput(cmd.ErrOrStderr()))
	if err != nil {
		return codeError(exitConfigFlag, "%v", err)
	}
	defer func() {
		if err := shutdown(); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "Warning: shutdown:", err)
		}
	}()

	err = fn(ctx, client)
	if n, ok := client.Notice(); ok {
		fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", n.Severity, n.Text)
	}
	return classify(err)
}

// classify attaches an exit code to errors from the client.
func classify(err error) error {
	var pe *ports.AuthProviderError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, yummy.ErrNotAuthenticated):
		return codeError(exitNotAuthed, "not logged in; run `yummy login` first")
	case errors.As(err, &pe):
		return codeError(exitNotAuthed, "login failed: %s", pe.Payload)
	case errors.Is(err, context.DeadlineExceeded):
		return codeError(exitFailure, "timed out")
	default:
		return err
	}
}

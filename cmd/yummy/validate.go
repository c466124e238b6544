package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sufield/yummy/internal/config"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [config-file]",
		Short: "Validate a configuration file",
		Long: `Validate a configuration file after environment overrides are applied.

Without an argument the file named by $YUMMY_CONFIG, or ./yummy.yaml, is
checked; a missing default file validates the built-in defaults.`,
		Example: `  yummy validate yummy.yaml

  # Use in CI/CD pipelines
  if yummy validate config/production.toml; then
      echo "Configuration is valid"
  fi`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			cfg, err := config.Resolve(path)
			if err != nil {
				return codeError(exitConfigFlag, "invalid configuration: %v", err)
			}
			policy, err := config.RetryPolicy(cfg)
			if err != nil {
				return codeError(exitConfigFlag, "invalid configuration: %v", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ Configuration is valid: %s\n", config.Path(path))
			fmt.Fprintf(out, "  Network:           %s\n", cfg.Network)
			fmt.Fprintf(out, "  Identity provider: %s\n", config.ProviderKind(cfg))
			if u := config.IdentityProviderURL(cfg); u != "" {
				fmt.Fprintf(out, "  Provider URL:      %s\n", u)
			}
			if h := config.BackendHost(cfg); h != "" {
				fmt.Fprintf(out, "  Backend host:      %s\n", h)
			}
			fmt.Fprintf(out, "  Backend canister:  %s\n", cfg.Backend.CanisterID)
			fmt.Fprintf(out, "  Retry:             %d attempts from %s, other errors: %v\n",
				policy.MaxAttempts, policy.InitialDelay, policy.OtherErrors)
			return nil
		},
	}
}

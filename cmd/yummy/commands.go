package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sufield/yummy"
)

func newLoginCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Log in with the configured identity provider",
		Long: `Log in with the configured identity provider.

For the delegation provider the login page is opened in the browser (or its
URL printed) and the command waits for the provider to answer.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withClient(cmd, flags, func(ctx context.Context, c *yummy.Client) error {
				if c.Session().Authenticated() {
					fmt.Fprintf(cmd.OutOrStdout(), "Already logged in as %s\n", c.Session().Principal)
					return nil
				}
				return c.Login(ctx)
			})
		},
	}
}

func newLogoutCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and forget the stored credential",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withClient(cmd, flags, func(ctx context.Context, c *yummy.Client) error {
				return c.Logout(ctx)
			})
		},
	}
}

func newStatusCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the session state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withClient(cmd, flags, func(_ context.Context, c *yummy.Client) error {
				printStatus(cmd.OutOrStdout(), c.Provider(), c.Session(), time.Now())
				return nil
			})
		},
	}
}

func printStatus(w io.Writer, provider string, st yummy.SessionState, now time.Time) {
	fmt.Fprintf(w, "Provider:      %s\n", provider)
	fmt.Fprintf(w, "Authenticated: %s\n", st.Auth)
	if !st.Authenticated() {
		return
	}
	fmt.Fprintf(w, "Principal:     %s\n", st.Principal)
	if !st.ExpiresAt.IsZero() {
		fmt.Fprintf(w, "Expires:       %s (in %s)\n",
			st.ExpiresAt.Format(time.RFC3339), st.ExpiresAt.Sub(now).Round(time.Second))
	}
}

func newWhoAmICmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the caller's user record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withClient(cmd, flags, func(ctx context.Context, c *yummy.Client) error {
				u, err := c.WhoAmI(ctx)
				if err != nil {
					return err
				}
				if u.Name == "" {
					fmt.Fprintf(cmd.OutOrStdout(), "%s (not registered)\n", u.ID)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", u.Name, u.ID)
				return nil
			})
		},
	}
}

func newRegisterCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "register <name>",
		Short: "Create the caller's user record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, flags, func(ctx context.Context, c *yummy.Client) error {
				index, err := c.Register(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Registered %s (#%d)\n", args[0], index)
				return nil
			})
		},
	}
}

func newRecipesCmd(flags *globalFlags) *cobra.Command {
	var recipeType string

	cmd := &cobra.Command{
		Use:   "recipes",
		Short: "List recipes",
		Long: `List recipe names, or with --type the recipes of one type with their
tags, total time and author.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withClient(cmd, flags, func(ctx context.Context, c *yummy.Client) error {
				if recipeType == "" {
					names, err := c.RecipeNames(ctx)
					if err != nil {
						return err
					}
					for _, n := range names {
						fmt.Fprintln(cmd.OutOrStdout(), n)
					}
					return nil
				}

				recipes, err := c.RecipesOfType(ctx, recipeType)
				if err != nil {
					return err
				}
				table := NewTableWriter([]string{"NAME", "TAGS", "MINUTES", "AUTHOR"})
				for _, r := range recipes {
					table.AddRow([]string{r.Name, strings.Join(r.Tags, ", "), fmt.Sprint(r.TotalMinutes), r.Author})
				}
				table.Print(cmd.OutOrStdout())
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&recipeType, "type", "t", "", "Only recipes of this type")
	return cmd
}

func newDeleteRecipeCmd(flags *globalFlags) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete-recipe <name>",
		Short: "Delete a recipe you wrote",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes && !confirm(cmd, fmt.Sprintf("Delete recipe %q?", args[0])) {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
				return nil
			}
			return withClient(cmd, flags, func(ctx context.Context, c *yummy.Client) error {
				return c.DeleteRecipe(ctx, args[0])
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func newDeleteUserCmd(flags *globalFlags) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete-user",
		Short: "Delete your account and all your recipes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes && !confirm(cmd, "Delete your account and all your recipes?") {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
				return nil
			}
			return withClient(cmd, flags, func(ctx context.Context, c *yummy.Client) error {
				return c.DeleteUser(ctx)
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

// confirm asks a y/N question on the command's input.
func confirm(cmd *cobra.Command, question string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", question)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// Package cli implements ffctl, a command line client for the JSON API.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// state is shared by the commands of one invocation
type state struct {
	cfg    *Config
	client *Client
}

func (s *state) output(cmd *cobra.Command) *Output {
	return NewOutput(s.cfg.Output, cmd.OutOrStdout())
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	s := &state{cfg: DefaultConfig()}

	rootCmd := &cobra.Command{
		Use:   "ffctl",
		Short: "CLI tool for the FlaskFactor API",
		Long: `ffctl is a CLI tool for the FlaskFactor JSON API.

It logs in, keeps the session token in a token file and manages the
player directory.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if s.cfg.Output != "text" && s.cfg.Output != "json" {
				return fmt.Errorf("invalid --output %q: must be text or json", s.cfg.Output)
			}

			// Load token from file if not provided via flag/env
			if err := s.cfg.LoadToken(); err != nil {
				return err
			}

			s.client = NewClient(s.cfg.ServerURL, s.cfg.Token)
			if s.cfg.Verbose {
				fmt.Fprintf(cmd.ErrOrStderr(), "server: %s\n", s.cfg.ServerURL)
			}
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&s.cfg.ServerURL, "server", s.cfg.ServerURL, "Server URL (env: FFCTL_SERVER)")
	rootCmd.PersistentFlags().StringVar(&s.cfg.Token, "token", s.cfg.Token, "Session token (env: FFCTL_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&s.cfg.TokenFile, "token-file", s.cfg.TokenFile, "Token file path (env: FFCTL_TOKEN_FILE)")
	rootCmd.PersistentFlags().StringVarP(&s.cfg.Output, "output", "o", s.cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&s.cfg.Verbose, "verbose", "v", s.cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newLoginCmd(s))
	rootCmd.AddCommand(newLogoutCmd(s))
	rootCmd.AddCommand(newPlayerCmd(s))
	rootCmd.AddCommand(newHealthCmd(s))

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

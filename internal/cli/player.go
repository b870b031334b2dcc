package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newPlayerCmd(s *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "player",
		Short: "Player management commands",
	}

	cmd.AddCommand(newPlayerListCmd(s))
	cmd.AddCommand(newPlayerGetCmd(s))
	cmd.AddCommand(newPlayerMeCmd(s))
	cmd.AddCommand(newPlayerAddCmd(s))
	cmd.AddCommand(newPlayerUpdateCmd(s))
	cmd.AddCommand(newPlayerDeleteCmd(s))

	return cmd
}

// playerPath validates an id argument and returns its API path
func playerPath(arg string) (string, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return "", fmt.Errorf("invalid player id %q", arg)
	}
	return "/players/" + strconv.FormatInt(id, 10), nil
}

func newPlayerListCmd(s *state) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all players",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result PlayerList

			if err := s.client.Get(cmd.Context(), "/players", &result); err != nil {
				return err
			}

			s.output(cmd).Print(result)
			return nil
		},
	}
}

func newPlayerGetCmd(s *state) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := playerPath(args[0])
			if err != nil {
				return err
			}

			var result Player
			if err := s.client.Get(cmd.Context(), path, &result); err != nil {
				return err
			}

			s.output(cmd).Print(result)
			return nil
		},
	}
}

func newPlayerMeCmd(s *state) *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show current player info",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Player

			if err := s.client.Get(cmd.Context(), "/players/me", &result); err != nil {
				return err
			}

			s.output(cmd).Print(result)
			return nil
		},
	}
}

func newPlayerAddCmd(s *state) *cobra.Command {
	var name, email, pass string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a new player",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{
				"name":     name,
				"email":    email,
				"password": pass,
			}
			var result Player

			if err := s.client.Post(cmd.Context(), "/players", req, &result); err != nil {
				return err
			}

			s.output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Name (required)")
	cmd.Flags().StringVar(&email, "email", "", "Email (required)")
	cmd.Flags().StringVar(&pass, "pass", "", "Password (required)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("pass")

	return cmd
}

func newPlayerUpdateCmd(s *state) *cobra.Command {
	var (
		name, email, pass, current   string
		active, reset, clearAttempts bool
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := playerPath(args[0])
			if err != nil {
				return err
			}

			// Only send the flags that were given
			req := map[string]any{}
			flags := cmd.Flags()
			if flags.Changed("name") {
				req["name"] = name
			}
			if flags.Changed("email") {
				req["email"] = email
			}
			if flags.Changed("pass") {
				if current == "" {
					return fmt.Errorf("--pass requires --current-pass")
				}
				req["password"] = pass
				req["current_password"] = current
			}
			if clearAttempts {
				req["password_attempts"] = 0
			}
			if flags.Changed("active") {
				req["is_active"] = active
			}
			if flags.Changed("reset-password") {
				req["reset_password"] = reset
			}
			if len(req) == 0 {
				return fmt.Errorf("nothing to update: pass at least one of --name, --email, --pass, --active, --reset-password, --clear-attempts")
			}

			var result Player
			if err := s.client.Patch(cmd.Context(), path, req, &result); err != nil {
				return err
			}

			s.output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&email, "email", "", "New email")
	cmd.Flags().StringVar(&pass, "pass", "", "New password")
	cmd.Flags().StringVar(&current, "current-pass", "", "The player's current password (required with --pass)")
	cmd.Flags().BoolVar(&clearAttempts, "clear-attempts", false, "Clear the failed login count")
	cmd.Flags().BoolVar(&active, "active", true, "Whether the player may log in")
	cmd.Flags().BoolVar(&reset, "reset-password", false, "Require a password change")

	return cmd
}

func newPlayerDeleteCmd(s *state) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := playerPath(args[0])
			if err != nil {
				return err
			}

			if err := s.client.Delete(cmd.Context(), path); err != nil {
				return err
			}

			s.output(cmd).PrintMessage("Player " + args[0] + " deleted")
			return nil
		},
	}
}

package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newLoginCmd(s *state) *cobra.Command {
	var email, pass string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and save the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{
				"email":    email,
				"password": pass,
			}
			var result AuthResult

			if err := s.client.Post(cmd.Context(), "/session", req, &result); err != nil {
				return err
			}

			if err := s.cfg.SaveToken(result.SessionToken); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			s.output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email (required)")
	cmd.Flags().StringVar(&pass, "pass", "", "Password (required)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("pass")

	return cmd
}

func newLogoutCmd(s *state) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and remove the saved token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if s.cfg.Token == "" {
				return errors.New("not logged in")
			}

			err := s.client.Delete(cmd.Context(), "/session")
			// An expired session still counts as logged out
			if err != nil && !IsAPIError(err, "UNAUTHORIZED") {
				return err
			}

			if err := s.cfg.ClearToken(); err != nil {
				return fmt.Errorf("failed to remove token: %w", err)
			}

			s.output(cmd).PrintMessage("Logged out")
			return nil
		},
	}
}

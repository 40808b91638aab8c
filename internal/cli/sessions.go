package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

func newSessionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List live login sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result SessionsResult

			if err := client.Get("/api/v1/sessions", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newUserCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "user <fingerprint>",
		Short: "Show the profile for a key fingerprint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fingerprint := args[0]
			if fingerprint == "" {
				return fmt.Errorf("fingerprint is required")
			}

			var result ProfileResult
			path := "/api/v1/users/" + url.PathEscape(fingerprint)
			if err := client.Get(path, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

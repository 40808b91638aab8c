package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sshpoker/sshpoker/internal/transport"
)

func newKeygenCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "keygen <path>",
		Short: "Generate an ed25519 host key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			if !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("%s already exists, use --force to overwrite", path)
				}
			}

			if err := transport.GenerateHostKey(path); err != nil {
				return fmt.Errorf("generate host key: %w", err)
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage(fmt.Sprintf("Host key written to %s", path))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing key")

	return cmd
}

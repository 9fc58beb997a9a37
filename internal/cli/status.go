package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show deployment and approval status",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		identity := a.client.Identity()
		deployed, err := a.relay.IsDeployed(cmd.Context(), identity.Address)
		if err != nil {
			return fmt.Errorf("deployment check failed: %w", err)
		}
		fmt.Printf("wallet %s deployed=%t\n", identity.Address.Hex(), deployed)

		requirements, err := a.client.ApprovalStatus(cmd.Context())
		if err != nil {
			return fmt.Errorf("approval check failed: %w", err)
		}
		for _, req := range requirements {
			mark := " "
			if req.Satisfied {
				mark = "x"
			}
			fmt.Printf("[%s] %-30s %s -> %s\n", mark, req.Name, req.Token.Hex(), req.Spender.Hex())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

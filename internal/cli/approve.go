package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var approveCmd = &cobra.Command{
	Use:   "approve",
	Short: "Grant any missing exchange approvals in one batched transaction",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.client.EnsureApproved(cmd.Context()); err != nil {
			return fmt.Errorf("approve failed: %w", err)
		}
		fmt.Println("all approvals satisfied")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(approveCmd)
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Deploy the wallet contract if it does not exist yet",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.client.EnsureDeployed(cmd.Context()); err != nil {
			return fmt.Errorf("deploy failed: %w", err)
		}
		fmt.Printf("wallet %s is deployed\n", a.client.WalletAddress().Hex())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deployCmd)
}

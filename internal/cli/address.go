package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var addressCmd = &cobra.Command{
	Use:   "address",
	Short: "Print the owner and counterfactual wallet addresses",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		identity := a.client.Identity()
		deployed, err := a.relay.IsDeployed(cmd.Context(), identity.Address)
		if err != nil {
			a.log.Warn("could not query deployment state", "error", err)
		}

		fmt.Printf("owner:    %s\n", identity.Owner.Hex())
		fmt.Printf("wallet:   %s\n", identity.Address.Hex())
		fmt.Printf("deployed: %t\n", deployed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addressCmd)
}

package cmd

import (
	"fmt"

	"github.com/frahmantamala/expense-tracker-client/internal/contract"
	"github.com/spf13/cobra"
)

var contractCmd = &cobra.Command{
	Use:   "contract",
	Short: "Inspect the expense API contract this client is built against",
}

var contractCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the embedded OpenAPI document and list its operations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		validator, err := contract.Load(cmd.Context())
		if err != nil {
			return err
		}
		ops := validator.Operations()
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %d operations\n", validator.Spec().Info.Title, validator.Spec().Info.Version, len(ops))
		for _, op := range ops {
			fmt.Fprintln(cmd.OutOrStdout(), "  "+op)
		}
		return nil
	},
}

var contractDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the embedded OpenAPI document",
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, err := cmd.OutOrStdout().Write(contract.Document())
		return err
	},
}

func init() {
	contractCmd.AddCommand(contractCheckCmd, contractDumpCmd)
}

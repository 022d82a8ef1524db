package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List expense categories",
	RunE: withDependencies(func(cmd *cobra.Command, deps *Dependencies, _ []string) error {
		categories, err := deps.Categories.List(cmd.Context())
		if err != nil {
			return err
		}
		if outputJSON {
			return writeJSON(cmd.OutOrStdout(), categories)
		}

		rows := make([][]string, 0, len(categories))
		for _, c := range categories {
			rows = append(rows, []string{strconv.FormatInt(c.ID, 10), c.Name, c.Description})
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "Name", "Description"}, rows))
		return nil
	}),
}

func init() {
	categoriesCmd.Flags().BoolVar(&outputJSON, "json", false, "print JSON")
}

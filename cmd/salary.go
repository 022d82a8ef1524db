package cmd

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/frahmantamala/expense-tracker-client/internal/aggregate"
	"github.com/frahmantamala/expense-tracker-client/internal/salary"
	"github.com/spf13/cobra"
)

var (
	salaryAmount      string
	salaryDescription string
	salaryAllMonths   bool
)

var salaryCmd = &cobra.Command{
	Use:     "salary",
	Aliases: []string{"income", "salaries"},
	Short:   "Record and manage income",
}

var salaryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List income of a month",
	RunE: withDependencies(func(cmd *cobra.Command, deps *Dependencies, _ []string) error {
		if err := deps.requireSession(); err != nil {
			return err
		}
		month, err := selectedMonth()
		if err != nil {
			return err
		}

		all, err := deps.Salaries.List(cmd.Context())
		if err != nil {
			return err
		}
		items := all
		if !salaryAllMonths {
			items = slices.AppendSeq([]salary.Salary{}, aggregate.FilterByMonth(all, month))
		}

		if outputJSON {
			return writeJSON(cmd.OutOrStdout(), items)
		}
		if !salaryAllMonths {
			fmt.Fprintln(cmd.OutOrStdout(), titleStyle.Render("Income, "+month.String()))
		}
		if len(items) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No income")
			return nil
		}

		rows := make([][]string, 0, len(items))
		for _, s := range items {
			rows = append(rows, []string{
				strconv.FormatInt(s.ID, 10),
				formatDate(s.Date),
				s.Description,
				aggregate.FormatAmount(s.Amount),
			})
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "Date", "Description", "Amount"}, rows))
		fmt.Fprintf(cmd.OutOrStdout(), "Total: %s\n", aggregate.FormatAmount(aggregate.SumAmounts(aggregate.All(items))))
		return nil
	}),
}

var salaryAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record income",
	RunE: withDependencies(func(cmd *cobra.Command, deps *Dependencies, _ []string) error {
		if err := deps.requireSession(); err != nil {
			return err
		}
		amount, err := parseAmount(salaryAmount)
		if err != nil {
			return err
		}

		created, err := deps.Salaries.Create(cmd.Context(), salary.SalaryDTO{
			Description: salaryDescription,
			Amount:      amount,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Income %d recorded: %s\n", created.ID, aggregate.FormatAmount(created.Amount))
		return nil
	}),
}

var salaryEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change an income entry's description or amount",
	Args:  cobra.ExactArgs(1),
	RunE: withDependencies(func(cmd *cobra.Command, deps *Dependencies, args []string) error {
		if err := deps.requireSession(); err != nil {
			return err
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		current, err := deps.Salaries.Get(cmd.Context(), id)
		if err != nil {
			return err
		}
		dto := salary.SalaryDTO{Description: current.Description, Amount: current.Amount}
		if cmd.Flags().Changed("amount") {
			if dto.Amount, err = parseAmount(salaryAmount); err != nil {
				return err
			}
		}
		if cmd.Flags().Changed("description") {
			dto.Description = salaryDescription
		}

		updated, err := deps.Salaries.Update(cmd.Context(), id, dto)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Income %d updated: %s\n", updated.ID, aggregate.FormatAmount(updated.Amount))
		return nil
	}),
}

var salaryDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete an income entry",
	Args:    cobra.ExactArgs(1),
	RunE: withDependencies(func(cmd *cobra.Command, deps *Dependencies, args []string) error {
		if err := deps.requireSession(); err != nil {
			return err
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := deps.Salaries.Delete(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Income %d deleted\n", id)
		return nil
	}),
}

func init() {
	salaryListCmd.Flags().StringVarP(&monthFlag, "month", "m", "", "month to list, e.g. 2024-01 (default current month)")
	salaryListCmd.Flags().BoolVar(&salaryAllMonths, "all", false, "list every month")
	salaryListCmd.Flags().BoolVar(&outputJSON, "json", false, "print JSON")

	for _, c := range []*cobra.Command{salaryAddCmd, salaryEditCmd} {
		c.Flags().StringVarP(&salaryAmount, "amount", "a", "", "amount, e.g. 2500")
		c.Flags().StringVarP(&salaryDescription, "description", "d", "", "optional description")
	}
	_ = salaryAddCmd.MarkFlagRequired("amount")

	salaryCmd.AddCommand(salaryListCmd, salaryAddCmd, salaryEditCmd, salaryDeleteCmd)
}

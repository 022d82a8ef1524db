package cmd

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/frahmantamala/expense-tracker-client/internal/aggregate"
	"github.com/frahmantamala/expense-tracker-client/internal/expense"
	"github.com/spf13/cobra"
)

var (
	expenseAmount      string
	expenseCategory    string
	expenseDescription string
	expenseAllMonths   bool
)

var expenseCmd = &cobra.Command{
	Use:     "expense",
	Aliases: []string{"expenses"},
	Short:   "Record and manage expenses",
}

var expenseListCmd = &cobra.Command{
	Use:   "list",
	Short: "List expenses of a month",
	RunE: withDependencies(func(cmd *cobra.Command, deps *Dependencies, _ []string) error {
		if err := deps.requireSession(); err != nil {
			return err
		}
		month, err := selectedMonth()
		if err != nil {
			return err
		}

		all, err := deps.Expenses.List(cmd.Context())
		if err != nil {
			return err
		}
		items := all
		if !expenseAllMonths {
			items = slices.AppendSeq([]expense.Expense{}, aggregate.FilterByMonth(all, month))
		}

		if outputJSON {
			return writeJSON(cmd.OutOrStdout(), items)
		}
		if !expenseAllMonths {
			fmt.Fprintln(cmd.OutOrStdout(), titleStyle.Render("Expenses, "+month.String()))
		}
		if len(items) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No expenses")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderExpenses(items))
		fmt.Fprintf(cmd.OutOrStdout(), "Total: %s\n", aggregate.FormatAmount(aggregate.SumAmounts(aggregate.All(items))))
		return nil
	}),
}

var expenseAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record an expense",
	RunE: withDependencies(func(cmd *cobra.Command, deps *Dependencies, _ []string) error {
		if err := deps.requireSession(); err != nil {
			return err
		}
		amount, err := parseAmount(expenseAmount)
		if err != nil {
			return err
		}
		cat, err := deps.Categories.Resolve(cmd.Context(), expenseCategory)
		if err != nil {
			return invalidFlag("category", err.Error())
		}

		created, err := deps.Expenses.Create(cmd.Context(), expense.ExpenseDTO{
			Description: expenseDescription,
			Amount:      amount,
			CategoryID:  cat.ID,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Expense %d recorded: %s in %s\n", created.ID, aggregate.FormatAmount(created.Amount), cat.Name)
		return nil
	}),
}

var expenseEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change an expense's description, amount or category",
	Args:  cobra.ExactArgs(1),
	RunE: withDependencies(func(cmd *cobra.Command, deps *Dependencies, args []string) error {
		if err := deps.requireSession(); err != nil {
			return err
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		current, err := deps.Expenses.Get(cmd.Context(), id)
		if err != nil {
			return err
		}

		// the API replaces all three fields, so start from the stored values
		dto := expense.ExpenseDTO{
			Description: current.Description,
			Amount:      current.Amount,
			CategoryID:  current.CategoryID,
		}
		if cmd.Flags().Changed("amount") {
			if dto.Amount, err = parseAmount(expenseAmount); err != nil {
				return err
			}
		}
		if cmd.Flags().Changed("category") {
			cat, err := deps.Categories.Resolve(cmd.Context(), expenseCategory)
			if err != nil {
				return invalidFlag("category", err.Error())
			}
			dto.CategoryID = cat.ID
		}
		if cmd.Flags().Changed("description") {
			dto.Description = expenseDescription
		}

		updated, err := deps.Expenses.Update(cmd.Context(), id, dto)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Expense %d updated: %s\n", updated.ID, aggregate.FormatAmount(updated.Amount))
		return nil
	}),
}

var expenseDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete an expense",
	Args:    cobra.ExactArgs(1),
	RunE: withDependencies(func(cmd *cobra.Command, deps *Dependencies, args []string) error {
		if err := deps.requireSession(); err != nil {
			return err
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := deps.Expenses.Delete(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Expense %d deleted\n", id)
		return nil
	}),
}

func renderExpenses(items []expense.Expense) string {
	rows := make([][]string, 0, len(items))
	for _, e := range items {
		name, ok := e.CategoryName()
		if !ok {
			name = aggregate.OtherCategory
		}
		rows = append(rows, []string{
			strconv.FormatInt(e.ID, 10),
			formatDate(e.Date),
			name,
			e.Description,
			aggregate.FormatAmount(e.Amount),
		})
	}
	return renderTable([]string{"ID", "Date", "Category", "Description", "Amount"}, rows)
}

func init() {
	expenseListCmd.Flags().StringVarP(&monthFlag, "month", "m", "", "month to list, e.g. 2024-01 (default current month)")
	expenseListCmd.Flags().BoolVar(&expenseAllMonths, "all", false, "list every month")
	expenseListCmd.Flags().BoolVar(&outputJSON, "json", false, "print JSON")

	for _, c := range []*cobra.Command{expenseAddCmd, expenseEditCmd} {
		c.Flags().StringVarP(&expenseAmount, "amount", "a", "", "amount, e.g. 12.50")
		c.Flags().StringVarP(&expenseCategory, "category", "k", "", "category name or id")
		c.Flags().StringVarP(&expenseDescription, "description", "d", "", "optional description")
	}
	_ = expenseAddCmd.MarkFlagRequired("amount")
	_ = expenseAddCmd.MarkFlagRequired("category")

	expenseCmd.AddCommand(expenseListCmd, expenseAddCmd, expenseEditCmd, expenseDeleteCmd)
}

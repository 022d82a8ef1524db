package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/frahmantamala/expense-tracker-client/internal"
	"github.com/frahmantamala/expense-tracker-client/internal/aggregate"
	"github.com/frahmantamala/expense-tracker-client/internal/dashboard"
	"github.com/spf13/cobra"
)

var (
	barSVGPath string
	pieSVGPath string
	chartWidth int
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show the monthly summary and charts",
	RunE: withDependencies(func(cmd *cobra.Command, deps *Dependencies, _ []string) error {
		if err := deps.requireSession(); err != nil {
			return err
		}
		month, err := selectedMonth()
		if err != nil {
			return err
		}

		board := deps.newDashboard(month)
		board.Load(cmd.Context())
		if board.SessionExpired() || !deps.Store.Authenticated() {
			return internal.ErrSessionExpired
		}
		snapshot := board.Snapshot()

		if barSVGPath != "" {
			if err := writeSVGFile(barSVGPath, snapshot.Bar.WriteSVG); err != nil {
				return err
			}
		}
		if pieSVGPath != "" {
			if err := writeSVGFile(pieSVGPath, snapshot.Pie.WriteSVG); err != nil {
				return err
			}
		}

		if outputJSON {
			return writeJSON(cmd.OutOrStdout(), snapshot)
		}
		printReport(cmd.OutOrStdout(), board, snapshot)
		return nil
	}),
}

func printReport(out io.Writer, board *dashboard.Dashboard, snapshot dashboard.Snapshot) {
	summary := snapshot.Summary

	fmt.Fprintln(out, titleStyle.Render(summary.Month.String()))
	fmt.Fprintln(out, renderTable([]string{"", "Amount", "Entries"}, [][]string{
		{"Income", aggregate.FormatAmount(summary.IncomeTotal), fmt.Sprint(summary.IncomeCount)},
		{"Expenses", aggregate.FormatAmount(summary.ExpenseTotal), fmt.Sprint(summary.ExpenseCount)},
		{"Net balance", formatBalance(summary.NetBalance), ""},
		{"All-time expenses", aggregate.FormatAmount(summary.AllTimeExpenseTotal), ""},
	}))

	fmt.Fprintln(out)
	fmt.Fprintln(out, titleStyle.Render("Expenses by category"))
	fmt.Fprintln(out, snapshot.Bar.RenderText(chartWidth))

	fmt.Fprintln(out)
	fmt.Fprintln(out, titleStyle.Render("Share of spending"))
	fmt.Fprintln(out, snapshot.Pie.RenderLegend())

	for _, failed := range []error{board.Expenses().Err, board.Salaries().Err} {
		if failed != nil && verbose {
			fmt.Fprintln(out, warnStyle.Render("warning: "+failed.Error()))
		}
	}
}

func writeSVGFile(path string, render func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := render(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to render %s: %w", path, err)
	}
	return f.Close()
}

func init() {
	reportCmd.Flags().StringVarP(&monthFlag, "month", "m", "", "month to report, e.g. 2024-01 (default current month)")
	reportCmd.Flags().BoolVar(&outputJSON, "json", false, "print the snapshot as JSON")
	reportCmd.Flags().StringVar(&barSVGPath, "bar-svg", "", "also write the bar chart to this SVG file")
	reportCmd.Flags().StringVar(&pieSVGPath, "pie-svg", "", "also write the pie chart to this SVG file")
	reportCmd.Flags().IntVar(&chartWidth, "width", 40, "width of the terminal bar chart")
}

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"payplan/internal/cli"
)

var payCmd = &cobra.Command{
	Use:   "pay <expense-id>",
	Short: "Mark a planned expense paid",
	Args:  cobra.ExactArgs(1),
	RunE:  runPay,
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "List matched and unmatched transactions",
	RunE:  runReconcile,
}

func init() {
	rootCmd.AddCommand(payCmd, reconcileCmd)
}

func runPay(cmd *cobra.Command, args []string) error {
	expenseID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || expenseID <= 0 {
		return fmt.Errorf("expense id must be a positive integer, got %q", args[0])
	}
	app, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	out, err := app.Reconciler.MarkPaid(cmd.Context(), flagUser, expenseID)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(out)
	}
	if out.AlreadyPaid {
		fmt.Printf("Expense %d was already paid (transaction %d)\n", out.ExpenseID, out.TransactionID)
		return nil
	}
	fmt.Printf("Expense %d paid: %s on %s, transaction %d\n", out.ExpenseID, out.Amount, out.Posted, out.TransactionID)
	return nil
}

func runReconcile(cmd *cobra.Command, _ []string) error {
	app, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	c, err := app.Reconciler.Reconciliation(cmd.Context(), flagUser)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(c)
	}

	rows := make([][]string, 0, len(c.Matched)+len(c.Unmatched)+1)
	for _, m := range c.Matched {
		names := ""
		for i, e := range m.Expenses {
			if i > 0 {
				names += ", "
			}
			names += e.Name
		}
		rows = append(rows, []string{m.Transaction.Name, m.Transaction.Posted.String(), m.Transaction.Amount.String(), m.Matched.String(), names})
	}
	if len(c.Unmatched) > 0 {
		rows = append(rows, []string{"---"})
	}
	for _, t := range c.Unmatched {
		rows = append(rows, []string{t.Name, t.Posted.String(), t.Amount.String(), cli.Muted("unmatched"), ""})
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "RECONCILIATION",
		Headers: []string{"Transaction", "Posted", "Amount", "Matched", "Expenses"},
		Rows:    rows,
	}))
	return nil
}

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"payplan/internal/calendar"
	"payplan/internal/cli"
	"payplan/internal/core"
	"payplan/internal/forecast"
)

var (
	flagDate      string
	flagPlanStart string
	flagPlanEnd   string
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Forecast the pay period containing --date",
	RunE:  runForecast,
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Income, expenses and net for every pay period in a range",
	RunE:  runPlan,
}

func init() {
	forecastCmd.Flags().StringVar(&flagDate, "date", time.Now().Format(time.DateOnly), "Any date inside the period (YYYY-MM-DD)")
	rootCmd.AddCommand(forecastCmd)

	now := time.Now()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	planCmd.Flags().StringVar(&flagPlanStart, "start", first.Format(time.DateOnly), "Range start (YYYY-MM-DD)")
	planCmd.Flags().StringVar(&flagPlanEnd, "end", first.AddDate(0, 1, -1).Format(time.DateOnly), "Range end (YYYY-MM-DD)")
	rootCmd.AddCommand(planCmd)
}

func runForecast(cmd *cobra.Command, _ []string) error {
	day, err := parseDateFlag("date", flagDate)
	if err != nil {
		return err
	}
	app, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	periods, err := app.Calendar.Periods(cmd.Context(), day.AddDays(-31), day)
	if err != nil {
		return err
	}
	period, ok := calendar.PeriodContaining(periods, day)
	if !ok {
		return fmt.Errorf("no pay period contains %s", day)
	}
	res, err := app.Forecast.Forecast(cmd.Context(), flagUser, period)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(res)
	}
	printForecast(res)
	return nil
}

func runPlan(cmd *cobra.Command, _ []string) error {
	start, err := parseDateFlag("start", flagPlanStart)
	if err != nil {
		return err
	}
	end, err := parseDateFlag("end", flagPlanEnd)
	if err != nil {
		return err
	}
	app, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	results, err := app.Forecast.Plan(cmd.Context(), flagUser, start, end)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(results)
	}

	rows := make([][]string, 0, len(results))
	for _, res := range results {
		income, expenses := res.Totals()
		net := income.Sub(expenses)
		rows = append(rows, []string{res.Period.Label, res.Period.Start.String(), income.String(), expenses.String(), cli.SignedAmount(net.Cents, net.String())})
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "PLAN",
		Headers: []string{"Period", "Start", "Income", "Expenses", "Net"},
		Rows:    rows,
	}))
	return nil
}

func printForecast(res forecast.Result) {
	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("FORECAST  %s  (%s to %s)", res.Period.Label, res.Period.Start, res.Period.End)))

	rows := make([][]string, 0, len(res.Income)+len(res.Expenses)+2)
	for _, i := range res.Income {
		rows = append(rows, []string{i.Name, "income", joinDates(i.Dates), i.Amount.String()})
	}
	rows = append(rows, []string{"---"})
	for _, e := range res.Expenses {
		kind := "fixed"
		switch {
		case e.IsOneOff:
			kind = "one-off"
		case e.IsDeferred:
			kind = "deferred from " + e.DeferredFrom
		case e.IsOverridden:
			kind = "override"
		}
		rows = append(rows, []string{e.Name, kind, joinDates(e.Dates), e.Amount.String()})
	}
	income, expenses := res.Totals()
	net := income.Sub(expenses)
	rows = append(rows, []string{"---"}, []string{"Net", "", "", cli.SignedAmount(net.Cents, net.String())})

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Item", "Kind", "Dates", "Amount"},
		Rows:    rows,
	}))
}

func joinDates(ds []core.Date) string {
	parts := make([]string, len(ds))
	for i, d := range ds {
		parts[i] = d.String()[5:]
	}
	return strings.Join(parts, " ")
}

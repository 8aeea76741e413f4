package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"payplan/internal/cli"
)

var (
	flagStart string
	flagEnd   string
)

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Paycheck dates with weekend and holiday adjustments",
	RunE:  runCalendar,
}

var periodsCmd = &cobra.Command{
	Use:   "periods",
	Short: "Pay periods between adjusted paycheck dates",
	RunE:  runPeriods,
}

func init() {
	now := time.Now()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	for _, c := range []*cobra.Command{calendarCmd, periodsCmd} {
		c.Flags().StringVar(&flagStart, "start", first.Format(time.DateOnly), "Range start (YYYY-MM-DD)")
		c.Flags().StringVar(&flagEnd, "end", first.AddDate(0, 3, -1).Format(time.DateOnly), "Range end (YYYY-MM-DD)")
		rootCmd.AddCommand(c)
	}
}

func runCalendar(cmd *cobra.Command, _ []string) error {
	start, err := parseDateFlag("start", flagStart)
	if err != nil {
		return err
	}
	end, err := parseDateFlag("end", flagEnd)
	if err != nil {
		return err
	}

	app, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	paychecks, err := app.Calendar.Generate(cmd.Context(), start, end)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(paychecks)
	}

	rows := make([][]string, 0, len(paychecks))
	for _, pc := range paychecks {
		note := ""
		if !pc.Adjusted.Equal(pc.Official) {
			note = fmt.Sprintf("%d days early", pc.Adjusted.DaysUntil(pc.Official))
		}
		rows = append(rows, []string{pc.Label, pc.Official.String(), pc.Official.Weekday().String()[:3], pc.Adjusted.String(), note})
	}
	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("PAYCHECKS  %s to %s", start, end)))
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Paycheck", "Official", "Day", "Paid", "Shift"},
		Rows:    rows,
	}))
	return nil
}

func runPeriods(cmd *cobra.Command, _ []string) error {
	start, err := parseDateFlag("start", flagStart)
	if err != nil {
		return err
	}
	end, err := parseDateFlag("end", flagEnd)
	if err != nil {
		return err
	}

	app, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	periods, err := app.Calendar.Periods(cmd.Context(), start, end)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(periods)
	}

	rows := make([][]string, 0, len(periods))
	for _, p := range periods {
		rows = append(rows, []string{p.Label, p.Start.String(), p.End.String(), fmt.Sprint(p.Start.DaysUntil(p.End) + 1)})
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "PAY PERIODS",
		Headers: []string{"Period", "Start", "End", "Days"},
		Rows:    rows,
	}))
	return nil
}

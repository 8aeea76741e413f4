package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"payplan/internal/cli"
	"payplan/internal/core"
	"payplan/internal/holidays"
)

var flagYear int

var holidaysCmd = &cobra.Command{
	Use:   "holidays",
	Short: "List and edit the holidays paychecks roll back from",
}

var holidaysListCmd = &cobra.Command{
	Use:   "list",
	Short: "All holidays of --year from every configured source",
	RunE:  runHolidaysList,
}

var holidaysAddCmd = &cobra.Command{
	Use:   "add <YYYY-MM-DD> <name...>",
	Short: "Add a custom holiday",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runHolidaysAdd,
}

var holidaysDeleteCmd = &cobra.Command{
	Use:   "delete <YYYY-MM-DD>",
	Short: "Remove the custom holidays on a date",
	Args:  cobra.ExactArgs(1),
	RunE:  runHolidaysDelete,
}

func init() {
	holidaysListCmd.Flags().IntVar(&flagYear, "year", time.Now().Year(), "Calendar year")
	holidaysCmd.AddCommand(holidaysListCmd, holidaysAddCmd, holidaysDeleteCmd)
	rootCmd.AddCommand(holidaysCmd)
}

func runHolidaysList(cmd *cobra.Command, _ []string) error {
	app, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	list, err := holidays.List(cmd.Context(), app.Holidays, flagYear)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(list)
	}
	rows := make([][]string, 0, len(list))
	for _, h := range list {
		rows = append(rows, []string{h.Date.String(), h.Date.Weekday().String(), h.Name})
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "HOLIDAYS " + strconv.Itoa(flagYear),
		Headers: []string{"Date", "Weekday", "Name"},
		Rows:    rows,
	}))
	return nil
}

func runHolidaysAdd(cmd *cobra.Command, args []string) error {
	d, err := parseDateFlag("date", args[0])
	if err != nil {
		return err
	}
	name := strings.TrimSpace(strings.Join(args[1:], " "))
	if name == "" {
		return fmt.Errorf("holiday name is required")
	}
	app, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.Repo.UpsertHoliday(cmd.Context(), core.Holiday{Date: d, Name: name}); err != nil {
		return err
	}
	app.InvalidateHolidays(d.Year())
	fmt.Printf("Added %s %q\n", d, name)
	return nil
}

func runHolidaysDelete(cmd *cobra.Command, args []string) error {
	d, err := parseDateFlag("date", args[0])
	if err != nil {
		return err
	}
	app, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	n, err := app.Repo.DeleteHoliday(cmd.Context(), d)
	if err != nil {
		return err
	}
	app.InvalidateHolidays(d.Year())
	if n == 0 {
		fmt.Println(cli.Muted("No custom holiday on " + d.String()))
		return nil
	}
	fmt.Printf("Removed %d holiday(s) on %s\n", n, d)
	return nil
}

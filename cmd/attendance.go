package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"daybook/internal/report"
	"daybook/internal/utils"
)

var attendanceCmd = &cobra.Command{
	Use:   "attendance",
	Short: "Inspect check-in/check-out records",
}

var attendanceStatusCmd = &cobra.Command{
	Use:   "status <user> [YYYY-MM-DD]",
	Short: "Show a user's day: attendance and open to-dos",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		quietLogger()

		date, err := dayArg(args, 1)
		if err != nil {
			return err
		}

		d := newDomain(cfg, provider)
		defer d.Close()

		r, err := d.Reports().Build(cmd.Context(), args[0], date)
		if err != nil {
			return err
		}

		output, _ := cmd.Flags().GetString("output")
		switch output {
		case "yaml":
			enc := yaml.NewEncoder(os.Stdout)
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(r)
		case "table", "":
			printStatusTable(r)
			return nil
		}
		return fmt.Errorf("unknown output format %q", output)
	},
}

// dayArg parses args[i] as a day, defaulting to today.
func dayArg(args []string, i int) (time.Time, error) {
	if len(args) <= i {
		return utils.StartOfDay(time.Now()), nil
	}
	date, err := utils.ParseDay(args[i])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", err, args[i])
	}
	return date, nil
}

func formatClock(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format("15:04:05")
}

func printStatusTable(r *report.DailyReport) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "USER\tDATE\tCHECK IN\tCHECK OUT\n")
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.UserID, r.Day, formatClock(r.Status.CheckInTime), formatClock(r.Status.CheckOutTime))
	w.Flush()

	if len(r.Todos) == 0 {
		fmt.Println("\nNo to-dos due.")
		return
	}

	fmt.Println()
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDONE\tTITLE")
	for _, t := range r.Todos {
		done := " "
		if t.Completed {
			done = "x"
		}
		fmt.Fprintf(w, "%s\t[%s]\t%s\n", t.ID, done, t.Title)
	}
	w.Flush()
	fmt.Printf("\n%d/%d done\n", r.Completed(), len(r.Todos))
}

func init() {
	rootCmd.AddCommand(attendanceCmd)
	attendanceCmd.AddCommand(attendanceStatusCmd)
	attendanceStatusCmd.Flags().StringP("output", "o", "table", "Output format (table, yaml)")
}

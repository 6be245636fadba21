package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"daybook/internal/email"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Daily reports",
}

var reportEmailCmd = &cobra.Command{
	Use:   "email <user> <address> [YYYY-MM-DD]",
	Short: "Email a user's daily report",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, address := args[0], args[1]
		date, err := dayArg(args, 2)
		if err != nil {
			return err
		}

		client, err := email.NewClient(cfg.Email)
		if err != nil {
			return err
		}

		d := newDomain(cfg, provider)
		defer d.Close()

		r, err := d.Reports().Build(cmd.Context(), userID, date)
		if err != nil {
			return err
		}
		msg, err := r.Message(address)
		if err != nil {
			return err
		}

		if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
			raw, err := client.Render(msg)
			if err != nil {
				return err
			}
			fmt.Print(string(raw))
			return nil
		}
		return client.Send(cmd.Context(), msg)
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.AddCommand(reportEmailCmd)
	reportEmailCmd.Flags().Bool("dry-run", false, "Print the message instead of sending it")
}

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var todosCmd = &cobra.Command{
	Use:   "todos",
	Short: "Manage to-dos",
}

var todosImportCmd = &cobra.Command{
	Use:   "import <user> <file.csv>",
	Short: "Import to-dos from a CSV export",
	Long: `Import to-dos for a user from a CSV file. Columns: title, description,
due date and optionally link. UTF-8 and UTF-16 files with a BOM are accepted,
as are tab separated exports.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		quietLogger()
		userID, path := args[0], args[1]

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		d := newDomain(cfg, provider)
		defer d.Close()

		res, err := d.Todos.Import(cmd.Context(), userID, f)
		if err != nil {
			return err
		}

		for _, rowErr := range res.Errors {
			fmt.Fprintln(os.Stderr, rowErr)
		}
		fmt.Printf("Imported %d to-dos (%d rows skipped)\n", res.Imported, len(res.Errors))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(todosCmd)
	todosCmd.AddCommand(todosImportCmd)
}

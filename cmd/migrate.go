package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:         "migrate",
	Short:       "Manage the database schema",
	Annotations: map[string]string{"storage": "raw"},
}

var migrateUpCmd = &cobra.Command{
	Use:         "up [version]",
	Short:       "Migrate the schema to the latest or given version",
	Args:        cobra.MaximumNArgs(1),
	Annotations: map[string]string{"storage": "raw"},
	RunE: func(cmd *cobra.Command, args []string) error {
		target := -1
		if len(args) == 1 {
			v, err := strconv.Atoi(args[0])
			if err != nil || v < 0 {
				return fmt.Errorf("invalid version %q", args[0])
			}
			target = v
		}

		if err := provider.Migrate(cmd.Context(), target); err != nil {
			return err
		}

		version, err := provider.GetSchemaVersion(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Schema is at version %d\n", version)
		return nil
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print the current schema version",
	Annotations: map[string]string{"storage": "raw"},
	RunE: func(cmd *cobra.Command, args []string) error {
		version, err := provider.GetSchemaVersion(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(version)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd, migrateVersionCmd)
}

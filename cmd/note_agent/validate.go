package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/note-harvester/internal/schemas"
)

var validateCmd = &cobra.Command{
	Use:   "validate <schema> <file>",
	Short: "Validate a cookie export or manifest against its JSON schema",
	Long: fmt.Sprintf(`Validates a JSON file against one of the embedded schemas.

Available schemas: %s`, strings.Join(schemas.Names(), ", ")),
	Args: cobra.ExactArgs(2),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	name, path := args[0], args[1]
	if err := schemas.ValidateFile(name, path); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s is a valid %s document\n", path, name)
	return nil
}

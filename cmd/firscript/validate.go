package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/firscript-run/firscript"
)

var validateCmd = &cobra.Command{
	Use:   "validate <script>",
	Short: "Parse and classify a script without running it",
	Long:  "Parses a script file, classifies it as strategy, indicator, or library, and reports any validation errors with their source location.",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	path := args[0]
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	script, err := firscript.Parse(string(source), path)
	if err != nil {
		errorHandled = true
		fmt.Fprintf(os.Stderr, "%s\n", err)
		return err
	}

	fmt.Printf("%s: %s\n", path, script.Kind())
	if len(script.Metadata.Exports) > 0 {
		fmt.Println("exports:")
		for name := range script.Metadata.Exports {
			fmt.Printf("  %s\n", name)
		}
	}
	if len(script.Metadata.Imports) > 0 {
		fmt.Println("imports:")
		for alias, name := range script.Metadata.Imports {
			fmt.Printf("  %s -> %s\n", alias, name)
		}
	}
	return nil
}

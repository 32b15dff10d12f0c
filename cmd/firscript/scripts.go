package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/firscript-run/firscript"
	"github.com/firscript-run/firscript/internal/scriptstore"
)

var scriptsCmd = &cobra.Command{
	Use:   "scripts",
	Short: "Manage the durable script registry",
	Long:  "Add, list, and remove named scripts in the SQLite registry that `run --registry` resolves imports from.",
}

func init() {
	scriptsCmd.AddCommand(scriptsAddCmd)
	scriptsCmd.AddCommand(scriptsListCmd)
	scriptsCmd.AddCommand(scriptsRmCmd)
}

var scriptsAddCmd = &cobra.Command{
	Use:   "add <name> <file>",
	Short: "Validate a script and register it under name",
	Args:  cobra.ExactArgs(2),
	RunE:  runScriptsAdd,
}

func runScriptsAdd(cmd *cobra.Command, args []string) error {
	name, path := args[0], args[1]
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	script, err := firscript.Parse(string(source), name)
	if err != nil {
		errorHandled = true
		fmt.Fprintf(os.Stderr, "%s\n", err)
		return err
	}

	dbPath, err := openRegistryDB()
	if err != nil {
		return err
	}
	store, err := scriptstore.Open(dbPath)
	if err != nil {
		return fmt.Errorf("opening registry: %w", err)
	}
	defer store.Close()

	if err := store.Put(name, string(source), script.Kind().String(), time.Now()); err != nil {
		return err
	}

	fmt.Printf("registered %q (%s)\n", name, script.Kind())
	return nil
}

var scriptsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered scripts",
	Args:  cobra.NoArgs,
	RunE:  runScriptsList,
}

func runScriptsList(cmd *cobra.Command, args []string) error {
	dbPath, err := openRegistryDB()
	if err != nil {
		return err
	}
	store, err := scriptstore.Open(dbPath)
	if err != nil {
		return fmt.Errorf("opening registry: %w", err)
	}
	defer store.Close()

	records, err := store.List()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tREGISTERED")
	for _, rec := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", rec.Name, rec.Kind, rec.RegisteredAt.Format(time.RFC3339))
	}
	return tw.Flush()
}

var scriptsRmCmd = &cobra.Command{
	Use:   "rm <name>",
	Short: "Remove a registered script",
	Args:  cobra.ExactArgs(1),
	RunE:  runScriptsRm,
}

func runScriptsRm(cmd *cobra.Command, args []string) error {
	dbPath, err := openRegistryDB()
	if err != nil {
		return err
	}
	store, err := scriptstore.Open(dbPath)
	if err != nil {
		return fmt.Errorf("opening registry: %w", err)
	}
	defer store.Close()

	if err := store.Remove(args[0]); err != nil {
		return err
	}
	fmt.Printf("removed %q\n", args[0])
	return nil
}

package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/firscript-run/firscript"
	"github.com/firscript-run/firscript/internal/namespaces"
	"github.com/firscript-run/firscript/internal/scriptstore"
)

var (
	flagDataPath string
	flagInputs   []string
	flagImports  []string
	flagMain     string
	flagRegistry bool
)

var runCmd = &cobra.Command{
	Use:   "run [script]",
	Short: "Run a strategy or indicator script over a CSV of bars",
	Long:  "Builds the main script's execution context, runs setup() once, then feeds each CSV row through data.set_current_bar and process(), finally printing the export, outputs, and metadata as JSON.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRun,
}

func init() {
	runCmd.Flags().StringVar(&flagDataPath, "data", "", "path to a CSV of OHLCV bars (required)")
	runCmd.Flags().StringArrayVar(&flagInputs, "input", nil, "override an input, as name=value (repeatable)")
	runCmd.Flags().StringArrayVar(&flagImports, "import", nil, "additional script to register, as name=path (repeatable)")
	runCmd.Flags().StringVar(&flagMain, "main", "", "name of the main script to load from the registry (with --registry)")
	runCmd.Flags().BoolVar(&flagRegistry, "registry", false, "also resolve scripts from the registry database (see --db)")
	runCmd.MarkFlagRequired("data")
}

func runRun(cmd *cobra.Command, args []string) error {
	registry := firscript.NewNamespaceRegistry()
	registry.RegisterDefaults(parseInputOverrides(flagInputs), nil)
	importer := firscript.NewImporter(registry)

	var store *scriptstore.Store
	if flagRegistry {
		dbPath, err := openRegistryDB()
		if err != nil {
			return err
		}
		store, err = scriptstore.Open(dbPath)
		if err != nil {
			return fmt.Errorf("opening registry: %w", err)
		}
		defer store.Close()

		records, err := store.List()
		if err != nil {
			return fmt.Errorf("listing registry: %w", err)
		}
		for _, rec := range records {
			isMain := len(args) == 0 && rec.Name == flagMain
			if _, err := importer.AddScript(rec.Name, rec.Source, isMain, nil); err != nil {
				return fmt.Errorf("loading registry script %q: %w", rec.Name, err)
			}
		}
	}

	for _, spec := range flagImports {
		name, path, ok := strings.Cut(spec, "=")
		if !ok {
			return fmt.Errorf("invalid --import %q: expected name=path", spec)
		}
		source, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading import %q: %w", path, err)
		}
		if _, err := importer.AddScript(name, string(source), false, nil); err != nil {
			return fmt.Errorf("registering import %q: %w", name, err)
		}
	}

	mainName, err := loadMainScript(importer, args)
	if err != nil {
		return err
	}

	ctx, err := importer.BuildMainScript()
	if err != nil {
		errorHandled = true
		fmt.Fprintf(os.Stderr, "%s\n", err)
		return err
	}
	if err := ctx.RunSetup(); err != nil {
		errorHandled = true
		fmt.Fprintf(os.Stderr, "%s\n", err)
		return err
	}

	dataNS, ok := ctx.Namespace("data")
	if !ok {
		return fmt.Errorf("internal error: no data namespace registered")
	}
	data, ok := dataNS.(*namespaces.Data)
	if !ok {
		return fmt.Errorf("internal error: data namespace has unexpected type")
	}

	bars, err := readBarsCSV(flagDataPath)
	if err != nil {
		return err
	}
	for _, bar := range bars {
		data.SetCurrentBar(bar)
		if _, err := ctx.RunProcess(); err != nil {
			errorHandled = true
			fmt.Fprintf(os.Stderr, "%s\n", err)
			return err
		}
	}

	out := map[string]any{
		"main":      mainName,
		"export":    ctx.GetExport(),
		"outputs":   ctx.GenerateOutputs(),
		"metadatas": ctx.GenerateMetadatas(),
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// loadMainScript registers the main script from a positional file path. When
// no path is given, the main script must already have been loaded as main
// from the registry (via --registry --main <name>).
func loadMainScript(importer *firscript.Importer, args []string) (string, error) {
	if len(args) == 1 {
		path := args[0]
		source, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", path, err)
		}
		name := strings.TrimSuffix(path, ".fir")
		if _, err := importer.AddScript(name, string(source), true, nil); err != nil {
			return "", err
		}
		return name, nil
	}
	if flagMain == "" || !flagRegistry {
		return "", fmt.Errorf("provide either a script path or --registry --main <name>")
	}
	return flagMain, nil
}

// parseInputOverrides converts repeated name=value flags into the map
// ExecutionContext's input namespace reads from. Values are parsed as int64,
// then float64, then bool, falling back to string.
func parseInputOverrides(specs []string) map[string]any {
	overrides := map[string]any{}
	for _, spec := range specs {
		name, raw, ok := strings.Cut(spec, "=")
		if !ok {
			continue
		}
		overrides[name] = parseInputValue(raw)
	}
	return overrides
}

func parseInputValue(raw string) any {
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}

// readBarsCSV reads a header-having CSV of OHLCV bars into one map per row,
// values parsed as float64 where possible.
func readBarsCSV(path string) ([]map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header from %s: %w", path, err)
	}
	for i, h := range header {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}

	var bars []map[string]any
	for {
		row, err := r.Read()
		if err != nil {
			break
		}
		bar := map[string]any{}
		for i, col := range header {
			if i >= len(row) {
				continue
			}
			if f, err := strconv.ParseFloat(row[i], 64); err == nil {
				bar[col] = f
			} else {
				bar[col] = row[i]
			}
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

// Package main contains the cli implementation of the tool. It uses cobra
// package for cli tool implementation.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"chunkdb"
	"chunkdb/internal/chunkerr"
	"chunkdb/internal/types"
)

type rootFlags struct {
	schemaFile string
	verbose    bool
}

type createTableFlags struct {
	columns   []string
	chunkSize int
}

func main() {
	flags := &rootFlags{}
	engine := (*chunkdb.Engine)(nil)

	rootCmd := &cobra.Command{
		Use:   "chunkdb",
		Short: "In-memory columnar SQL engine",
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			e, err := newEngine(flags)
			if err != nil {
				return err
			}
			engine = e
			if flags.schemaFile != "" {
				if err := engine.LoadSchema(flags.schemaFile); err != nil {
					return fmt.Errorf("failed to load schema: %w", err)
				}
			}
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVarP(&flags.schemaFile, "schema", "s", "", "Path to a TOML schema file to load at startup")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Log operator execution at debug level")

	rootCmd.AddCommand(createTableCmd(&engine))
	rootCmd.AddCommand(queryCmd(&engine))
	rootCmd.AddCommand(showCmd(&engine))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newEngine(flags *rootFlags) (*chunkdb.Engine, error) {
	if !flags.verbose {
		return chunkdb.New(), nil
	}
	cfg := zap.NewDevelopmentConfig()
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return chunkdb.NewWithLogger(logger.Sugar()), nil
}

func createTableCmd(engine **chunkdb.Engine) *cobra.Command {
	flags := &createTableFlags{}
	cmd := &cobra.Command{
		Use:   "create-table <name>",
		Short: "Register a new table (name:type columns)",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runCreateTable(*engine, args[0], flags)
		},
	}
	cmd.Flags().StringSliceVarP(&flags.columns, "column", "c", nil, "name:type, repeatable (e.g. -c id:int -c name:varchar(64))")
	cmd.Flags().IntVar(&flags.chunkSize, "chunk-size", 0, "Rows per chunk (0 means the default of 100000)")
	return cmd
}

func runCreateTable(engine *chunkdb.Engine, name string, flags *createTableFlags) error {
	if len(flags.columns) == 0 {
		return fmt.Errorf("--column is required at least once")
	}
	names := make([]string, len(flags.columns))
	elemTypes := make([]types.ElementType, len(flags.columns))
	for i, col := range flags.columns {
		parts := strings.SplitN(col, ":", 2)
		if len(parts) != 2 {
			return fmt.Errorf("--column %q must be name:type", col)
		}
		elemType, err := types.FromSQLTypeName(parts[1])
		if err != nil {
			return fmt.Errorf("--column %q: %w", col, err)
		}
		names[i] = parts[0]
		elemTypes[i] = elemType
	}
	if err := engine.CreateTable(name, names, elemTypes, flags.chunkSize); err != nil {
		return err
	}
	fmt.Printf("table %s created with %d column(s)\n", name, len(names))
	return nil
}

func queryCmd(engine **chunkdb.Engine) *cobra.Command {
	return &cobra.Command{
		Use:   "query <sql>",
		Short: "Run a single SQL statement and print its result",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runQuery(*engine, args[0])
		},
	}
}

func runQuery(engine *chunkdb.Engine, sql string) error {
	result, err := engine.Query(context.Background(), sql)
	if err != nil {
		return annotateError(err)
	}
	printResult(result)
	return nil
}

// annotateError gives schema/translation mistakes a distinct prefix from a
// runtime evaluation failure, so a user can tell "this statement was never
// going to work" apart from "something went wrong while running it".
func annotateError(err error) error {
	switch {
	case chunkerr.Is(err, chunkerr.Schema):
		return fmt.Errorf("schema error: %w", err)
	case chunkerr.Is(err, chunkerr.Translation):
		return fmt.Errorf("invalid statement: %w", err)
	default:
		return err
	}
}

func showCmd(engine **chunkdb.Engine) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [table]",
		Short: "SHOW TABLES, or SHOW COLUMNS FROM a table",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			sql := "SHOW TABLES"
			if len(args) == 1 {
				sql = fmt.Sprintf("SHOW COLUMNS FROM %s", args[0])
			}
			return runQuery(*engine, sql)
		},
	}
	return cmd
}

func printResult(r *chunkdb.Result) {
	if len(r.Columns) == 0 {
		fmt.Println("OK")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(r.Columns, "\t"))
	for _, row := range r.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			if v.IsNull() {
				cells[i] = "NULL"
				continue
			}
			cells[i] = v.String()
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	_ = w.Flush()
}

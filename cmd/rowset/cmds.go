package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"goRowSet/internal/config"
	"goRowSet/internal/engine"
	"goRowSet/internal/logger"
	"goRowSet/internal/rowset"
	"goRowSet/internal/sql"
)

// loadedName is the catalog name of the row set built from --query.
const loadedName = "query"

type app struct {
	cfgFile    string
	driver     string
	dsn        string
	query      string
	keyColumns []string
	initStmts  []string
	columns    []string
	rows       []string
	ignoreCase bool
	trim       bool
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "rowset",
		Short:         "Filter, order and aggregate query results in memory",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (yaml, json or toml)")
	pf.StringVar(&a.driver, "driver", "", "database driver, overrides the config")
	pf.StringVar(&a.dsn, "dsn", "", "database DSN, overrides the config")
	pf.StringVarP(&a.query, "query", "q", "", "query producing the row set")
	pf.StringSliceVarP(&a.keyColumns, "key", "k", nil, "key columns")
	pf.StringArrayVar(&a.initStmts, "exec", nil, "statement to run before the query (repeatable)")
	pf.StringArrayVar(&a.columns, "column", nil, "inline column as name[:TYPE], used instead of --query (repeatable)")
	pf.StringArrayVar(&a.rows, "row", nil, "comma-separated values of one inline row (repeatable)")

	root.AddCommand(
		a.showCmd(),
		a.filterCmd(),
		a.matchCmd(),
		a.orderCmd(),
		a.groupCmd(),
		a.jsonCmd(),
		a.shellCmd(),
	)
	return root
}

// open starts an engine from the configuration and loads the query result,
// or the inline rows when columns are given.
func (a *app) open(ctx context.Context) (*engine.Engine, error) {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return nil, err
	}
	if a.driver != "" {
		cfg.Database.Driver = a.driver
	}
	if a.dsn != "" {
		cfg.Database.DSN = a.dsn
	}
	if a.ignoreCase {
		cfg.Filter.CaseSensitive = false
	}
	if a.trim {
		cfg.Filter.Trimmed = true
	}
	logger.Init(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	sql.SetClauseCacheSize(cfg.Filter.CacheSize)

	if a.query == "" && len(a.columns) == 0 {
		return nil, errors.New("--query or --column is required")
	}

	eng := engine.New(*cfg)
	if err := eng.Start(ctx); err != nil {
		return nil, err
	}
	if len(a.initStmts) > 0 {
		if err := eng.Exec(ctx, a.initStmts...); err != nil {
			eng.Close()
			return nil, err
		}
	}
	if len(a.columns) > 0 {
		err = a.loadInline(ctx, eng)
	} else {
		_, err = eng.Load(ctx, loadedName, a.query, a.keyColumns...)
	}
	if err != nil {
		eng.Close()
		return nil, err
	}
	return eng, nil
}

// run opens the engine, evaluates q and prints the resulting rows.
func (a *app) run(cmd *cobra.Command, q engine.Query) error {
	eng, err := a.open(cmd.Context())
	if err != nil {
		return err
	}
	defer eng.Close()

	rs, err := eng.Select(loadedName, q)
	if err != nil {
		return err
	}
	printRowSet(cmd.OutOrStdout(), rs)
	return nil
}

func (a *app) showCmd() *cobra.Command {
	var fields []string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the loaded rows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, engine.Query{Fields: fields})
		},
	}
	cmd.Flags().StringSliceVar(&fields, "fields", nil, "fields to print, in order")
	return cmd
}

func (a *app) filterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "filter <clause>",
		Short:   "Keep rows matching a WHERE-like clause",
		Example: `  rowset filter "STATE = 'NM' AND POP > 1000" -q "SELECT * FROM cities"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, engine.Query{Where: args[0]})
		},
	}
	cmd.Flags().BoolVar(&a.ignoreCase, "ignore-case", false, "compare strings case-insensitively")
	cmd.Flags().BoolVar(&a.trim, "trim", false, "trim strings before comparing")
	return cmd
}

const matchHelp = `Each argument constrains one field. A value starting with "regex:" must
fully match the field; "cond:" introduces a comparison such as "cond:>=10";
any other value must equal the field.`

func (a *app) matchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "match <field=value>...",
		Short: "Keep rows matching a template",
		Long:  matchHelp,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer eng.Close()

			rs, err := eng.RowSet(loadedName)
			if err != nil {
				return err
			}
			tmpl, err := templateRow(rs, args)
			if err != nil {
				return err
			}
			out, err := eng.Select(loadedName, engine.Query{Template: tmpl})
			if err != nil {
				return err
			}
			printRowSet(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func (a *app) orderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "order <clause>",
		Short: "Order rows, e.g. \"NAME, FIRST_NAME DESC\"",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, engine.Query{OrderBy: args[0]})
		},
	}
}

func (a *app) groupCmd() *cobra.Command {
	var (
		sumField string
		label    string
		sortMode int
		top      int
	)
	cmd := &cobra.Command{
		Use:   "group <field>",
		Short: "Count or sum rows per distinct field value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := rowset.ParseSortMode(sortMode)
			if err != nil {
				return err
			}
			eng, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer eng.Close()

			rs, err := eng.RowSet(loadedName)
			if err != nil {
				return err
			}
			opts := []rowset.GroupOption{rowset.WithSort(mode), rowset.WithTop(top)}
			if label != "" {
				opts = append(opts, rowset.WithLabel(label))
			}

			var acc *sql.Row
			if sumField != "" {
				acc, err = rs.SumByGroup(args[0], sumField, opts...)
			} else {
				acc, err = rs.CountByGroup(args[0], opts...)
			}
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for _, name := range acc.Names() {
				v, _ := acc.AsString(name)
				fmt.Fprintf(w, "%s | %s | %s\n", name, acc.Attribute(name, rowset.LabelAttribute), v)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&sumField, "sum", "", "field to sum instead of counting rows")
	cmd.Flags().StringVar(&label, "label", "", "field holding each group's label")
	cmd.Flags().IntVar(&sortMode, "sort", 0, "sort mode: 0 none, 1 group, 2 label, 3 result; add 10 for descending")
	cmd.Flags().IntVar(&top, "top", 0, "keep only the first n groups")
	return cmd
}

func (a *app) jsonCmd() *cobra.Command {
	var (
		meta        bool
		indexColumn string
		trim        bool
	)
	cmd := &cobra.Command{
		Use:   "json",
		Short: "Print the loaded rows as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer eng.Close()

			rs, err := eng.RowSet(loadedName)
			if err != nil {
				return err
			}
			var opts []rowset.JSONOption
			if meta {
				opts = append(opts, rowset.WithMeta())
			}
			if indexColumn != "" {
				opts = append(opts, rowset.WithIndexColumn(indexColumn))
			}
			if trim {
				opts = append(opts, rowset.WithTrimmedStrings())
			}
			data, err := rs.ToJSON(opts...)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
	cmd.Flags().BoolVar(&meta, "meta", false, "include field types and attributes")
	cmd.Flags().StringVar(&indexColumn, "index-column", "", "write each row key under this field")
	cmd.Flags().BoolVar(&trim, "trim", false, "trim string values")
	return cmd
}

// templateRow builds a template from field=value arguments, typing plain
// values after the row set's columns.
func templateRow(rs *rowset.RowSet, args []string) (*sql.Row, error) {
	tmpl := sql.NewRow()
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, errors.Errorf("expected field=value, got %q", arg)
		}
		c, err := rs.ColumnByName(name)
		if err != nil || strings.HasPrefix(value, "regex:") || strings.HasPrefix(value, "cond:") {
			tmpl.Set(name, sql.Str(value))
			continue
		}
		v, err := sql.ParseValue(value, c.Type)
		if err != nil {
			return nil, errors.Wrapf(err, "field %q", name)
		}
		tmpl.SetField(name, c.Type, v)
	}
	return tmpl, nil
}

// printRowSet writes a header of column names and one line per row.
func printRowSet(w io.Writer, rs *rowset.RowSet) {
	cols := rs.ColumnNames()
	fmt.Fprintln(w, strings.Join(cols, " | "))
	for _, r := range rs.All() {
		parts := make([]string, len(cols))
		for i, name := range cols {
			parts[i] = formatField(r, name)
		}
		fmt.Fprintln(w, strings.Join(parts, " | "))
	}
}

// formatField converts a field to a human-readable string.
func formatField(r *sql.Row, name string) string {
	f, ok := r.Field(name)
	if !ok || f.IsNull() {
		return "NULL"
	}
	return f.String()
}

// Command goquery is a small demonstration CLI over the engine: scan a flat
// parquet file, optionally project a column subset and filter on a single
// equality predicate, and print the result (or just the plan, with
// --explain). It exists to exercise the public API end to end, not as a
// general-purpose query tool — there is no expression parser, so filters are
// limited to "column=value".
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/spf13/cobra"

	"github.com/arrowquery/goquery"
	"github.com/arrowquery/goquery/datasource"
	"github.com/arrowquery/goquery/logicalplan"
)

var (
	columnsFlag string
	whereFlag   string
	explainFlag bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "goquery:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "goquery <parquet-file>",
	Short: "Scan, project and filter a parquet file with the goquery engine",
	Args:  cobra.ExactArgs(1),
	RunE:  run,
}

func init() {
	rootCmd.Flags().StringVar(&columnsFlag, "columns", "", "comma-separated column projection (default: all columns)")
	rootCmd.Flags().StringVar(&whereFlag, "where", "", `equality filter, e.g. --where "country=US"`)
	rootCmd.Flags().BoolVar(&explainFlag, "explain", false, "print the logical plan instead of executing it")
}

func run(cmd *cobra.Command, args []string) error {
	path := args[0]

	source, err := datasource.OpenParquet(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}

	engine := goquery.NewEngine()
	frame := engine.Scan(source)

	if columnsFlag != "" {
		cols := strings.Split(columnsFlag, ",")
		exprs := make([]logicalplan.Expr, len(cols))
		for i, c := range cols {
			exprs[i] = logicalplan.Col(strings.TrimSpace(c))
		}
		frame = frame.Project(exprs...)
	}

	if whereFlag != "" {
		predicate, err := parseEqualityFilter(whereFlag)
		if err != nil {
			return err
		}
		frame = frame.Filter(predicate)
	}

	if explainFlag {
		plan, err := frame.Explain()
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), plan)
		return nil
	}

	return frame.Execute(cmd.Context(), func(r arrow.Record) error {
		printRecord(cmd, r)
		return nil
	})
}

// parseEqualityFilter turns "column=value" into Col(column).Eq(literal),
// guessing the literal's logical type from its textual form: an integer
// parses as LitInt, a float as LitFloat, "true"/"false" as LitBool, anything
// else as a LitString.
func parseEqualityFilter(expr string) (logicalplan.Expr, error) {
	parts := strings.SplitN(expr, "=", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid --where expression %q, want column=value", expr)
	}
	column := strings.TrimSpace(parts[0])
	value := strings.TrimSpace(parts[1])

	var literal logicalplan.Expr
	switch {
	case value == "true" || value == "false":
		literal = logicalplan.LitBool(value == "true")
	default:
		if iv, err := strconv.ParseInt(value, 10, 32); err == nil {
			literal = logicalplan.LitInt(int32(iv))
		} else if fv, err := strconv.ParseFloat(value, 64); err == nil {
			literal = logicalplan.LitFloat(fv)
		} else {
			literal = logicalplan.LitString(value)
		}
	}

	return logicalplan.Eq(logicalplan.Col(column), literal), nil
}

func printRecord(cmd *cobra.Command, r arrow.Record) {
	out := cmd.OutOrStdout()
	sc := r.Schema()
	names := make([]string, len(sc.Fields()))
	for i, f := range sc.Fields() {
		names[i] = f.Name
	}
	fmt.Fprintln(out, strings.Join(names, "\t"))

	for row := 0; row < int(r.NumRows()); row++ {
		values := make([]string, r.NumCols())
		for col := 0; col < int(r.NumCols()); col++ {
			values[col] = formatValue(r.Column(col), row)
		}
		fmt.Fprintln(out, strings.Join(values, "\t"))
	}
}

func formatValue(arr arrow.Array, row int) string {
	if arr.IsNull(row) {
		return "NULL"
	}
	switch a := arr.(type) {
	case *array.Int32:
		return strconv.FormatInt(int64(a.Value(row)), 10)
	case *array.Int64:
		return strconv.FormatInt(a.Value(row), 10)
	case *array.Float64:
		return strconv.FormatFloat(a.Value(row), 'g', -1, 64)
	case *array.String:
		return a.Value(row)
	case *array.Boolean:
		return strconv.FormatBool(a.Value(row))
	default:
		return fmt.Sprintf("%v", arr)
	}
}

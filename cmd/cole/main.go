// Command cole writes, inspects and queries columnar files.
package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/alexflint/go-arg"
	"go.uber.org/zap"

	"github.com/wzqhbustb/cole/cole"
	"github.com/wzqhbustb/cole/storage/column"
)

type writeCmd struct {
	Path string `arg:"positional,required" help:"output file"`
	Rows int    `arg:"positional,required" help:"number of rows to generate"`
	Seed int64  `arg:"--seed" default:"42" help:"RNG seed"`
}

type scanCmd struct {
	Path string `arg:"positional,required" help:"input file"`
}

type queryCmd struct {
	Path    string   `arg:"positional,required" help:"input file"`
	Select  string   `arg:"--select" help:"comma-separated projection"`
	Where   []string `arg:"--where,separate" help:"filter: \"col op value\" (op: eq ne lt le gt ge)"`
	Agg     string   `arg:"--agg" help:"aggregation: \"fn col\" (fn: count sum min max)"`
	GroupBy string   `arg:"--groupby" help:"group by a string column"`
}

type cliArgs struct {
	Write   *writeCmd `arg:"subcommand:write" help:"generate and write a synthetic dataset"`
	Scan    *scanCmd  `arg:"subcommand:scan" help:"display file metadata and stats"`
	Query   *queryCmd `arg:"subcommand:query" help:"execute a query"`
	Verbose bool      `arg:"-v,--verbose" help:"enable debug logging"`
}

func (cliArgs) Description() string {
	return "cole - columnar storage and analytical query engine"
}

func main() {
	var args cliArgs
	p := arg.MustParse(&args)

	logger := zap.NewNop()
	if args.Verbose {
		dev, err := zap.NewDevelopment()
		if err == nil {
			logger = dev
		}
	}
	defer logger.Sync()

	var err error
	switch {
	case args.Write != nil:
		err = runWrite(args.Write, logger)
	case args.Scan != nil:
		err = runScan(args.Scan)
	case args.Query != nil:
		err = runQuery(args.Query, logger)
	default:
		p.WriteUsage(os.Stderr)
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runWrite(cmd *writeCmd, logger *zap.Logger) error {
	start := time.Now()
	if err := generateDataset(cmd.Path, cmd.Rows, cmd.Seed, logger); err != nil {
		return err
	}
	logger.Info("dataset written",
		zap.String("path", cmd.Path),
		zap.Int("rows", cmd.Rows),
		zap.Duration("elapsed", time.Since(start)))
	fmt.Printf("Generated %d rows in %s\n", cmd.Rows, cmd.Path)
	return nil
}

func runScan(cmd *scanCmd) error {
	reader, err := column.NewReader(cmd.Path)
	if err != nil {
		return err
	}
	defer reader.Close()

	meta := reader.Metadata()
	fmt.Printf("File: %s\n", cmd.Path)
	fmt.Printf("Total rows: %d\n", meta.TotalRows)
	fmt.Printf("Row groups: %d\n\n", len(meta.RowGroups))

	fmt.Println("Schema:")
	for _, col := range meta.Schema.Columns {
		fmt.Printf("  - %s (type=%s, encoding=%s)\n", col.Name, col.Type, col.Encoding)
	}

	fmt.Println("\nRow Groups:")
	for i, rg := range meta.RowGroups {
		fmt.Printf("  Row Group %d: %d rows\n", i, rg.NumRows)
		for j, chunk := range rg.ColumnChunks {
			fmt.Printf("    Column %s:\n", meta.Schema.Columns[j].Name)
			fmt.Printf("      Offset: %d\n", chunk.FileOffset)
			fmt.Printf("      Size: %d bytes\n", chunk.TotalSize)
			for k, ph := range chunk.PageHeaders {
				fmt.Printf("      Page %d: %s\n", k, ph.Describe())
			}
		}
	}
	return nil
}

func runQuery(cmd *queryCmd, logger *zap.Logger) error {
	reader, err := column.NewReader(cmd.Path)
	if err != nil {
		return err
	}
	defer reader.Close()

	executor := cole.NewQueryExecutor(reader)

	if cmd.Select != "" {
		executor.SetProjection(splitList(cmd.Select))
	}

	for _, where := range cmd.Where {
		pred, err := parseWhere(where)
		if err != nil {
			return err
		}
		executor.AddFilter(pred)
	}

	hasAgg := cmd.Agg != ""
	if hasAgg {
		fn, col, err := parseAgg(cmd.Agg)
		if err != nil {
			return err
		}
		executor.SetAggregation(fn, col)
	}

	start := time.Now()
	switch {
	case cmd.GroupBy != "":
		executor.SetGroupBy(cmd.GroupBy)
		results, err := executor.ExecuteGroupBy()
		if err != nil {
			return err
		}
		// Library order is unspecified; sort for stable CLI output
		sort.Slice(results, func(i, j int) bool { return results[i].Key < results[j].Key })
		fmt.Printf("GROUP BY %s:\n", cmd.GroupBy)
		for _, r := range results {
			fmt.Printf("  %s: count=%d", r.Key, r.Agg.Count)
			if hasAgg {
				fmt.Printf(", sum=%d", r.Agg.Sum)
			}
			fmt.Println()
		}

	case hasAgg:
		result, err := executor.ExecuteAggregate()
		if err != nil {
			return err
		}
		fmt.Println("Aggregation result:")
		fmt.Printf("  count: %d\n", result.Count)
		if !strings.HasPrefix(cmd.Agg, "count") {
			if strings.HasPrefix(cmd.Agg, "sum") {
				fmt.Printf("  sum: %d\n", result.Sum)
			}
			if result.Min != nil {
				fmt.Printf("  min: %d\n", *result.Min)
			}
			if result.Max != nil {
				fmt.Printf("  max: %d\n", *result.Max)
			}
		}

	default:
		batches, err := executor.ExecuteQuery()
		if err != nil {
			return err
		}
		totalRows := 0
		for _, b := range batches {
			totalRows += b.NumRows
		}
		fmt.Printf("Query returned %d rows in %d batches\n", totalRows, len(batches))
		if totalRows > 0 && totalRows <= 20 {
			fmt.Println("\nFirst rows:")
			for _, b := range batches {
				printBatch(b)
			}
		}
	}
	logger.Debug("query done", zap.Duration("elapsed", time.Since(start)))
	return nil
}

func printBatch(b *cole.Batch) {
	for row := 0; row < b.NumRows; row++ {
		for i, name := range b.ColumnNames {
			if i > 0 {
				fmt.Print(", ")
			}
			fmt.Printf("%s=", name)
			col := b.Columns[i]
			switch {
			case col.Int32s != nil:
				fmt.Print(col.Int32s[row])
			case col.Int64s != nil:
				fmt.Print(col.Int64s[row])
			default:
				fmt.Print(col.Strings[row])
			}
		}
		fmt.Println()
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseWhere parses "col op value"
func parseWhere(s string) (cole.Predicate, error) {
	fields := strings.Fields(s)
	if len(fields) != 3 {
		return cole.Predicate{}, fmt.Errorf("invalid filter %q, want \"col op value\"", s)
	}
	op, err := cole.ParseCompareOp(fields[1])
	if err != nil {
		return cole.Predicate{}, err
	}
	value, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return cole.Predicate{}, fmt.Errorf("invalid filter value %q: %v", fields[2], err)
	}
	return cole.Predicate{Column: fields[0], Op: op, Value: value}, nil
}

// parseAgg parses "fn col"
func parseAgg(s string) (cole.AggFunc, string, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return 0, "", fmt.Errorf("invalid aggregation %q, want \"fn col\"", s)
	}
	fn, err := cole.ParseAggFunc(fields[0])
	if err != nil {
		return 0, "", err
	}
	return fn, fields[1], nil
}

package cole

import (
	"fmt"

	"github.com/wzqhbustb/cole/storage/column"
	serrors "github.com/wzqhbustb/cole/storage/errors"
	"github.com/wzqhbustb/cole/storage/format"
)

// AggFunc is an aggregation function
type AggFunc int

const (
	AggCount AggFunc = iota
	AggSum
	AggMin
	AggMax
)

func (f AggFunc) String() string {
	switch f {
	case AggCount:
		return "count"
	case AggSum:
		return "sum"
	case AggMin:
		return "min"
	case AggMax:
		return "max"
	default:
		return fmt.Sprintf("AggFunc(%d)", int(f))
	}
}

// ParseAggFunc parses the CLI spelling of an aggregation function
func ParseAggFunc(s string) (AggFunc, error) {
	switch s {
	case "count":
		return AggCount, nil
	case "sum":
		return AggSum, nil
	case "min":
		return AggMin, nil
	case "max":
		return AggMax, nil
	default:
		return 0, serrors.InvalidArg("parse_agg_func",
			fmt.Sprintf("invalid aggregation function %q", s))
	}
}

// AggResult is the outcome of an aggregation. Count always holds the
// number of aggregated rows; for SUM/MIN/MAX ExecuteAggregate fills only
// the corresponding field and the other two stay zero or absent. Sum wraps
// two's-complement.
type AggResult struct {
	Count int64
	Sum   int64
	Min   *int64
	Max   *int64
}

// fold accumulates one value into the result
func (a *AggResult) fold(v int64) {
	a.Sum += v
	if a.Min == nil || v < *a.Min {
		min := v
		a.Min = &min
	}
	if a.Max == nil || v > *a.Max {
		max := v
		a.Max = &max
	}
}

// GroupResult pairs one group key with its aggregate
type GroupResult struct {
	Key string
	Agg AggResult
}

// QueryExecutor composes the Scanner with projection, filter, aggregation
// and group-by operators. Aggregation and group-by stream the scanner
// once and never materialize the full relation.
type QueryExecutor struct {
	reader     *column.Reader
	projection []string
	filters    []Predicate
	aggFunc    AggFunc
	aggColumn  string
	hasAgg     bool
	groupBy    string
	hasGroupBy bool
}

// NewQueryExecutor builds an executor over an open reader
func NewQueryExecutor(reader *column.Reader) *QueryExecutor {
	return &QueryExecutor{reader: reader}
}

// SetProjection restricts output columns. Empty means all columns.
func (e *QueryExecutor) SetProjection(columns []string) {
	e.projection = columns
}

// AddFilter appends an AND-conjoined predicate
func (e *QueryExecutor) AddFilter(pred Predicate) {
	e.filters = append(e.filters, pred)
}

// SetAggregation configures a single aggregation. COUNT may target any
// column; SUM/MIN/MAX require an integer column.
func (e *QueryExecutor) SetAggregation(fn AggFunc, col string) {
	e.aggFunc = fn
	e.aggColumn = col
	e.hasAgg = true
}

// SetGroupBy groups by a string column. Combined with the configured
// aggregation if one is set, else COUNT.
func (e *QueryExecutor) SetGroupBy(col string) {
	e.groupBy = col
	e.hasGroupBy = true
}

func (e *QueryExecutor) newScanner(columns []string) (*Scanner, error) {
	s, err := NewScanner(e.reader, columns, DefaultBatchSize)
	if err != nil {
		return nil, err
	}
	for _, pred := range e.filters {
		if err := s.AddFilter(pred); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// ExecuteQuery scans, filters and projects, returning one batch per
// surviving row group.
func (e *QueryExecutor) ExecuteQuery() ([]*Batch, error) {
	s, err := e.newScanner(e.projection)
	if err != nil {
		return nil, err
	}

	var batches []*Batch
	for s.HasNext() {
		batch, err := s.Next()
		if err != nil {
			return nil, err
		}
		batches = append(batches, batch)
	}
	return batches, nil
}

// aggColumnType validates the aggregation target and returns its type
func (e *QueryExecutor) aggColumnType() (format.ColumnType, error) {
	schema := e.reader.Schema()
	pos := schema.ColumnIndex(e.aggColumn)
	if pos < 0 {
		return 0, serrors.ColumnNotFound("set_aggregation", e.aggColumn, schema.ColumnNames())
	}
	t := schema.Columns[pos].Type
	if e.aggFunc != AggCount && t == format.TypeString {
		return 0, serrors.TypeMismatch("set_aggregation", e.aggColumn,
			"INT32 or INT64", t.String())
	}
	return t, nil
}

// ExecuteAggregate streams the scanner once and folds the aggregation
// column. Sum wraps modulo 2^64.
func (e *QueryExecutor) ExecuteAggregate() (AggResult, error) {
	if !e.hasAgg {
		return AggResult{}, serrors.InvalidArg("execute_aggregate", "no aggregation configured")
	}
	t, err := e.aggColumnType()
	if err != nil {
		return AggResult{}, err
	}

	s, err := e.newScanner([]string{e.aggColumn})
	if err != nil {
		return AggResult{}, err
	}

	var result AggResult
	for s.HasNext() {
		batch, err := s.Next()
		if err != nil {
			return AggResult{}, err
		}
		result.Count += int64(batch.NumRows)

		if e.aggFunc == AggCount {
			continue
		}
		switch t {
		case format.TypeInt32:
			for _, v := range batch.Columns[0].Int32s {
				result.fold(int64(v))
			}
		case format.TypeInt64:
			for _, v := range batch.Columns[0].Int64s {
				result.fold(v)
			}
		}
	}

	// fold tracks every statistic; clear the ones not requested
	switch e.aggFunc {
	case AggSum:
		result.Min, result.Max = nil, nil
	case AggMin:
		result.Sum, result.Max = 0, nil
	case AggMax:
		result.Sum, result.Min = 0, nil
	}
	return result, nil
}

// ExecuteGroupBy streams the scanner once, hashing rows by the group
// column's full string value. When an aggregation on an integer column is
// configured, that column is folded (sum, min and max) into every group's
// accumulator whatever the function; with none, or with COUNT on a string
// column, groups carry counts only. Result order is unspecified.
func (e *QueryExecutor) ExecuteGroupBy() ([]GroupResult, error) {
	if !e.hasGroupBy {
		return nil, serrors.InvalidArg("execute_group_by", "no group-by column configured")
	}

	schema := e.reader.Schema()
	pos := schema.ColumnIndex(e.groupBy)
	if pos < 0 {
		return nil, serrors.ColumnNotFound("set_group_by", e.groupBy, schema.ColumnNames())
	}
	if schema.Columns[pos].Type != format.TypeString {
		return nil, serrors.TypeMismatch("set_group_by", e.groupBy,
			format.TypeString.String(), schema.Columns[pos].Type.String())
	}

	scanColumns := []string{e.groupBy}
	var aggType format.ColumnType
	aggIdx := -1
	if e.hasAgg {
		t, err := e.aggColumnType()
		if err != nil {
			return nil, err
		}
		aggType = t
		if t != format.TypeString {
			scanColumns = append(scanColumns, e.aggColumn)
			aggIdx = 1
		}
	}

	s, err := e.newScanner(scanColumns)
	if err != nil {
		return nil, err
	}

	groups := make(map[string]*AggResult)
	for s.HasNext() {
		batch, err := s.Next()
		if err != nil {
			return nil, err
		}

		keys := batch.Columns[0].Strings
		for row, key := range keys {
			g, ok := groups[key]
			if !ok {
				g = &AggResult{}
				groups[key] = g
			}
			g.Count++

			if aggIdx >= 0 {
				switch aggType {
				case format.TypeInt32:
					g.fold(int64(batch.Columns[aggIdx].Int32s[row]))
				case format.TypeInt64:
					g.fold(batch.Columns[aggIdx].Int64s[row])
				}
			}
		}
	}

	results := make([]GroupResult, 0, len(groups))
	for key, agg := range groups {
		results = append(results, GroupResult{Key: key, Agg: *agg})
	}
	return results, nil
}

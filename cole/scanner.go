package cole

import (
	"github.com/wzqhbustb/cole/storage/column"
	serrors "github.com/wzqhbustb/cole/storage/errors"
	"github.com/wzqhbustb/cole/storage/format"
)

// DefaultBatchSize is the advisory batch size. The Scanner currently
// emits one batch per row group; batchSize is kept for future
// sub-row-group paging and does not split.
const DefaultBatchSize = 4096

// Scanner streams column-oriented batches from a Reader, honoring a
// projection and AND-conjoined pushdown filters. Row groups whose page
// stats prove a filter unsatisfiable are skipped without materializing
// any column.
type Scanner struct {
	reader          *column.Reader
	projected       []string
	projectedIdx    []int
	filters         []Predicate
	batchSize       int
	currentRowGroup int
	skipDisabled    bool
}

// NewScanner builds a scanner over the given columns, in the given order.
// An empty column list projects every column. batchSize <= 0 selects
// DefaultBatchSize.
func NewScanner(reader *column.Reader, columns []string, batchSize int) (*Scanner, error) {
	schema := reader.Schema()

	if len(columns) == 0 {
		columns = schema.ColumnNames()
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	idx := make([]int, len(columns))
	for i, name := range columns {
		pos := schema.ColumnIndex(name)
		if pos < 0 {
			return nil, serrors.ColumnNotFound("new_scanner", name, schema.ColumnNames())
		}
		idx[i] = pos
	}

	return &Scanner{
		reader:       reader,
		projected:    columns,
		projectedIdx: idx,
		batchSize:    batchSize,
	}, nil
}

// AddFilter appends an AND-conjoined predicate. The filter column must be
// an integer column; it does not need to be projected.
func (s *Scanner) AddFilter(pred Predicate) error {
	schema := s.reader.Schema()
	pos := schema.ColumnIndex(pred.Column)
	if pos < 0 {
		return serrors.ColumnNotFound("add_filter", pred.Column, schema.ColumnNames())
	}
	t := schema.Columns[pos].Type
	if t != format.TypeInt32 && t != format.TypeInt64 {
		return serrors.TypeMismatch("add_filter", pred.Column, "INT32 or INT64", t.String())
	}
	s.filters = append(s.filters, pred)
	return nil
}

// DisableSkipping turns off stats-based row-group elimination. Filters
// are still applied row-wise; results must be identical. Used to verify
// skip soundness.
func (s *Scanner) DisableSkipping() {
	s.skipDisabled = true
}

// canSkipRowGroup reports whether some filter is provably unsatisfiable
// on every page of its column's chunk in this row group.
func (s *Scanner) canSkipRowGroup(rg int) bool {
	if s.skipDisabled || len(s.filters) == 0 {
		return false
	}
	meta := s.reader.Metadata()
	schema := s.reader.Schema()

	for _, pred := range s.filters {
		colIdx := schema.ColumnIndex(pred.Column)
		pages := meta.RowGroups[rg].ColumnChunks[colIdx].PageHeaders
		if len(pages) == 0 {
			continue
		}
		skippable := true
		for _, ph := range pages {
			if !pred.CanSkipPage(ph.Stats) {
				skippable = false
				break
			}
		}
		if skippable {
			return true
		}
	}
	return false
}

// advance moves the cursor past skippable row groups
func (s *Scanner) advance() {
	for s.currentRowGroup < s.reader.NumRowGroups() && s.canSkipRowGroup(s.currentRowGroup) {
		s.currentRowGroup++
	}
}

// HasNext reports whether another batch remains
func (s *Scanner) HasNext() bool {
	s.advance()
	return s.currentRowGroup < s.reader.NumRowGroups()
}

// Next materializes the current row group as one batch and advances the
// cursor. Filter columns outside the projection are read for evaluation
// but not emitted.
func (s *Scanner) Next() (*Batch, error) {
	if !s.HasNext() {
		return nil, serrors.InvalidArg("scanner_next", "no more batches")
	}

	rg := s.currentRowGroup
	s.currentRowGroup++

	// Materialize each needed column once, projection first
	materialized := make(map[int]Column)
	for _, colIdx := range s.projectedIdx {
		if _, ok := materialized[colIdx]; ok {
			continue
		}
		col, err := s.readColumn(rg, colIdx)
		if err != nil {
			return nil, err
		}
		materialized[colIdx] = col
	}

	schema := s.reader.Schema()
	for _, pred := range s.filters {
		colIdx := schema.ColumnIndex(pred.Column)
		if _, ok := materialized[colIdx]; ok {
			continue
		}
		col, err := s.readColumn(rg, colIdx)
		if err != nil {
			return nil, err
		}
		materialized[colIdx] = col
	}

	numRows := int(s.reader.Metadata().RowGroups[rg].NumRows)
	batch := &Batch{
		ColumnNames: append([]string(nil), s.projected...),
		NumRows:     numRows,
	}

	if len(s.filters) == 0 {
		for _, colIdx := range s.projectedIdx {
			batch.Columns = append(batch.Columns, materialized[colIdx])
		}
		return batch, nil
	}

	// Row-wise evaluation into a selection vector, then gather
	selection := make([]bool, numRows)
	for i := range selection {
		selection[i] = true
	}
	keep := numRows

	for _, pred := range s.filters {
		col := materialized[schema.ColumnIndex(pred.Column)]
		switch col.Type {
		case format.TypeInt32:
			for i, v := range col.Int32s {
				if selection[i] && !pred.EvaluateInt32(v) {
					selection[i] = false
					keep--
				}
			}
		case format.TypeInt64:
			for i, v := range col.Int64s {
				if selection[i] && !pred.EvaluateInt64(v) {
					selection[i] = false
					keep--
				}
			}
		}
	}

	for _, colIdx := range s.projectedIdx {
		batch.Columns = append(batch.Columns, materialized[colIdx].gather(selection, keep))
	}
	batch.NumRows = keep

	return batch, nil
}

func (s *Scanner) readColumn(rg, colIdx int) (Column, error) {
	col := s.reader.Schema().Columns[colIdx]
	out := Column{Type: col.Type}

	switch col.Type {
	case format.TypeInt32:
		values, err := s.reader.ReadInt32Column(rg, colIdx)
		if err != nil {
			return Column{}, err
		}
		out.Int32s = values
	case format.TypeInt64:
		values, err := s.reader.ReadInt64Column(rg, colIdx)
		if err != nil {
			return Column{}, err
		}
		out.Int64s = values
	default:
		values, err := s.reader.ReadStringColumn(rg, colIdx)
		if err != nil {
			return Column{}, err
		}
		out.Strings = values
	}

	return out, nil
}

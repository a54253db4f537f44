// Package cole is the query surface of the columnar engine: batches,
// predicates, the Scanner and the QueryExecutor.
package cole

import (
	serrors "github.com/wzqhbustb/cole/storage/errors"
	"github.com/wzqhbustb/cole/storage/format"
)

// Column is a tagged vector: exactly one of the three slices is populated,
// matching Type. Accessors type-check on the caller's behalf.
type Column struct {
	Type    format.ColumnType
	Int32s  []int32
	Int64s  []int64
	Strings []string
}

// Len returns the number of values in the column
func (c Column) Len() int {
	switch c.Type {
	case format.TypeInt32:
		return len(c.Int32s)
	case format.TypeInt64:
		return len(c.Int64s)
	default:
		return len(c.Strings)
	}
}

// gather keeps only the rows whose selection bit is set
func (c Column) gather(selection []bool, keep int) Column {
	out := Column{Type: c.Type}
	switch c.Type {
	case format.TypeInt32:
		out.Int32s = make([]int32, 0, keep)
		for i, v := range c.Int32s {
			if selection[i] {
				out.Int32s = append(out.Int32s, v)
			}
		}
	case format.TypeInt64:
		out.Int64s = make([]int64, 0, keep)
		for i, v := range c.Int64s {
			if selection[i] {
				out.Int64s = append(out.Int64s, v)
			}
		}
	default:
		out.Strings = make([]string, 0, keep)
		for i, v := range c.Strings {
			if selection[i] {
				out.Strings = append(out.Strings, v)
			}
		}
	}
	return out
}

// Batch is a transient column-parallel slice of rows. All column vectors
// have length NumRows; once returned from a Scanner a batch shares no
// mutable state with the Reader.
type Batch struct {
	Columns     []Column
	ColumnNames []string
	NumRows     int
}

// ColumnIndex returns the position of the named column, -1 when absent
func (b *Batch) ColumnIndex(name string) int {
	for i, n := range b.ColumnNames {
		if n == name {
			return i
		}
	}
	return -1
}

// Int32Column returns the values of an INT32 column by position
func (b *Batch) Int32Column(idx int) ([]int32, error) {
	if idx < 0 || idx >= len(b.Columns) {
		return nil, serrors.IndexOutOfRange("batch_int32_column", "column", idx, len(b.Columns))
	}
	col := b.Columns[idx]
	if col.Type != format.TypeInt32 {
		return nil, serrors.TypeMismatch("batch_int32_column", b.ColumnNames[idx],
			format.TypeInt32.String(), col.Type.String())
	}
	return col.Int32s, nil
}

// Int64Column returns the values of an INT64 column by position
func (b *Batch) Int64Column(idx int) ([]int64, error) {
	if idx < 0 || idx >= len(b.Columns) {
		return nil, serrors.IndexOutOfRange("batch_int64_column", "column", idx, len(b.Columns))
	}
	col := b.Columns[idx]
	if col.Type != format.TypeInt64 {
		return nil, serrors.TypeMismatch("batch_int64_column", b.ColumnNames[idx],
			format.TypeInt64.String(), col.Type.String())
	}
	return col.Int64s, nil
}

// StringColumn returns the values of a STRING column by position
func (b *Batch) StringColumn(idx int) ([]string, error) {
	if idx < 0 || idx >= len(b.Columns) {
		return nil, serrors.IndexOutOfRange("batch_string_column", "column", idx, len(b.Columns))
	}
	col := b.Columns[idx]
	if col.Type != format.TypeString {
		return nil, serrors.TypeMismatch("batch_string_column", b.ColumnNames[idx],
			format.TypeString.String(), col.Type.String())
	}
	return col.Strings, nil
}

package column

import (
	"bytes"
	"fmt"
	"os"

	"github.com/wzqhbustb/cole/storage/encoding"
	serrors "github.com/wzqhbustb/cole/storage/errors"
	"github.com/wzqhbustb/cole/storage/format"
)

// Writer produces a columnar file: header, row groups of column-chunk
// pages, metadata, footer. It owns the output file from construction
// until Close; after Close the file is immutable.
//
// A Writer is not safe for concurrent use.
type Writer struct {
	file       *os.File
	path       string
	schema     format.Schema
	currentPos uint64
	staged     []columnBuffer
	rowGroups  []format.RowGroupMeta
	totalRows  uint64
	closed     bool
}

// columnBuffer stages one column's values for the current row group.
// Only the slice matching the column's type is ever populated.
type columnBuffer struct {
	int32s  []int32
	int64s  []int64
	strings []string
}

func (b *columnBuffer) numRows(t format.ColumnType) int {
	switch t {
	case format.TypeInt32:
		return len(b.int32s)
	case format.TypeInt64:
		return len(b.int64s)
	default:
		return len(b.strings)
	}
}

func (b *columnBuffer) reset() {
	b.int32s = nil
	b.int64s = nil
	b.strings = nil
}

// NewWriter opens path for writing and emits the file header. The schema
// is validated up front: unique non-empty names and legal (type, encoding)
// pairings.
func NewWriter(path string, schema format.Schema) (*Writer, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, serrors.IO("new_writer", path, err)
	}

	w := &Writer{
		file:   file,
		path:   path,
		schema: schema,
		staged: make([]columnBuffer, schema.NumColumns()),
	}

	header := make([]byte, 0, format.HeaderSize)
	header = format.ByteOrder.AppendUint32(header, format.FileMagic)
	header = format.ByteOrder.AppendUint16(header, format.VersionMajor)
	header = format.ByteOrder.AppendUint16(header, format.VersionMinor)
	if _, err := file.Write(header); err != nil {
		file.Close()
		return nil, serrors.IO("write_header", path, err)
	}
	w.currentPos = format.HeaderSize

	return w, nil
}

// Schema returns the writer's schema
func (w *Writer) Schema() format.Schema {
	return w.schema
}

func (w *Writer) checkColumn(op string, colIdx int, want format.ColumnType) error {
	if w.closed {
		return serrors.InvalidArg(op, "writer is closed")
	}
	if colIdx < 0 || colIdx >= w.schema.NumColumns() {
		return serrors.IndexOutOfRange(op, "column", colIdx, w.schema.NumColumns())
	}
	col := w.schema.Columns[colIdx]
	if col.Type != want {
		return serrors.TypeMismatch(op, col.Name, want.String(), col.Type.String())
	}
	return nil
}

// WriteInt32Column appends values to the column's staging buffer for the
// current row group.
func (w *Writer) WriteInt32Column(colIdx int, values []int32) error {
	if err := w.checkColumn("write_int32_column", colIdx, format.TypeInt32); err != nil {
		return err
	}
	w.staged[colIdx].int32s = append(w.staged[colIdx].int32s, values...)
	return nil
}

// WriteInt64Column appends values to the column's staging buffer for the
// current row group.
func (w *Writer) WriteInt64Column(colIdx int, values []int64) error {
	if err := w.checkColumn("write_int64_column", colIdx, format.TypeInt64); err != nil {
		return err
	}
	w.staged[colIdx].int64s = append(w.staged[colIdx].int64s, values...)
	return nil
}

// WriteStringColumn appends values to the column's staging buffer for the
// current row group.
func (w *Writer) WriteStringColumn(colIdx int, values []string) error {
	if err := w.checkColumn("write_string_column", colIdx, format.TypeString); err != nil {
		return err
	}
	w.staged[colIdx].strings = append(w.staged[colIdx].strings, values...)
	return nil
}

// dirty reports whether any column has staged values
func (w *Writer) dirty() bool {
	for i := range w.staged {
		if w.staged[i].numRows(w.schema.Columns[i].Type) > 0 {
			return true
		}
	}
	return false
}

// FlushRowGroup encodes every staged column into one page per chunk,
// writes the pages at the current file offset and records the row group's
// metadata. All columns must hold the same number of staged values.
func (w *Writer) FlushRowGroup() error {
	if w.closed {
		return serrors.InvalidArg("flush_row_group", "writer is closed")
	}
	if !w.dirty() {
		return nil
	}

	numRows := w.staged[0].numRows(w.schema.Columns[0].Type)
	for i := range w.staged {
		got := w.staged[i].numRows(w.schema.Columns[i].Type)
		if got != numRows {
			return serrors.ShapeMismatch("flush_row_group",
				w.schema.Columns[i].Name, numRows, got)
		}
	}

	rg := format.RowGroupMeta{NumRows: uint32(numRows)}

	for i, col := range w.schema.Columns {
		payload, stats, err := w.encodeStaged(i, col)
		if err != nil {
			return err
		}

		header := format.PageHeader{
			UncompressedSize: uncompressedSize(col.Type, &w.staged[i]),
			CompressedSize:   uint32(len(payload)),
			NumValues:        uint32(numRows),
			Encoding:         col.Encoding,
			Stats:            stats,
		}

		buf := new(bytes.Buffer)
		if _, err := header.WriteTo(buf); err != nil {
			return serrors.IO("write_page_header", w.path, err)
		}
		buf.Write(payload)

		chunk := format.ColumnChunkMeta{
			FileOffset:  w.currentPos,
			TotalSize:   uint64(buf.Len()),
			PageHeaders: []format.PageHeader{header},
		}

		if _, err := w.file.Write(buf.Bytes()); err != nil {
			return serrors.IO("write_page", w.path, err)
		}
		w.currentPos += uint64(buf.Len())

		rg.ColumnChunks = append(rg.ColumnChunks, chunk)
	}

	w.rowGroups = append(w.rowGroups, rg)
	w.totalRows += uint64(numRows)
	for i := range w.staged {
		w.staged[i].reset()
	}

	return nil
}

func (w *Writer) encodeStaged(i int, col format.ColumnSchema) ([]byte, format.PageStats, error) {
	switch col.Type {
	case format.TypeInt32:
		return encoding.EncodeInt32Page(col.Encoding, w.staged[i].int32s)
	case format.TypeInt64:
		return encoding.EncodeInt64Page(col.Encoding, w.staged[i].int64s)
	default:
		return encoding.EncodeStringPage(col.Encoding, w.staged[i].strings)
	}
}

// uncompressedSize is the raw width of the staged values: fixed width for
// integers, offset table plus bytes for strings.
func uncompressedSize(t format.ColumnType, buf *columnBuffer) uint32 {
	switch t {
	case format.TypeInt32:
		return uint32(len(buf.int32s) * 4)
	case format.TypeInt64:
		return uint32(len(buf.int64s) * 8)
	default:
		total := (len(buf.strings) + 1) * 4
		for _, s := range buf.strings {
			total += len(s)
		}
		return uint32(total)
	}
}

// Close flushes a dirty row-group buffer, writes the metadata block and
// footer, syncs and closes the file. Double-close is a no-op.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}

	if w.dirty() {
		if err := w.FlushRowGroup(); err != nil {
			return err
		}
	}

	if w.totalRows > 0xFFFFFFFF {
		return serrors.InvalidArg("close_writer",
			fmt.Sprintf("total row count %d exceeds the format limit", w.totalRows))
	}

	meta := format.FileMetadata{
		Schema:    w.schema,
		RowGroups: w.rowGroups,
		TotalRows: uint32(w.totalRows),
	}

	metadataOffset := w.currentPos
	buf := new(bytes.Buffer)
	if _, err := meta.WriteTo(buf); err != nil {
		return serrors.IO("write_metadata", w.path, err)
	}

	footer := format.ByteOrder.AppendUint32(nil, format.FooterMagic)
	footer = format.ByteOrder.AppendUint64(footer, metadataOffset)
	buf.Write(footer)

	if _, err := w.file.Write(buf.Bytes()); err != nil {
		return serrors.IO("write_footer", w.path, err)
	}

	if err := w.file.Sync(); err != nil {
		return serrors.IO("sync", w.path, err)
	}
	if err := w.file.Close(); err != nil {
		return serrors.IO("close", w.path, err)
	}

	w.closed = true
	return nil
}

package format

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"unicode/utf8"

	serrors "github.com/wzqhbustb/cole/storage/errors"
)

// ColumnChunkMeta locates one column's pages within a row group
type ColumnChunkMeta struct {
	FileOffset  uint64
	TotalSize   uint64
	PageHeaders []PageHeader
}

// RowGroupMeta describes one horizontal partition of the table
type RowGroupMeta struct {
	NumRows      uint32
	ColumnChunks []ColumnChunkMeta
}

// FileMetadata is the table of contents serialized once on close and
// never rewritten.
type FileMetadata struct {
	Schema    Schema
	RowGroups []RowGroupMeta
	TotalRows uint32
}

// WriteTo serializes the metadata block
func (m *FileMetadata) WriteTo(w io.Writer) (int64, error) {
	buf := new(bytes.Buffer)

	binary.Write(buf, ByteOrder, uint32(len(m.Schema.Columns)))
	for _, col := range m.Schema.Columns {
		binary.Write(buf, ByteOrder, uint32(len(col.Name)))
		buf.WriteString(col.Name)
		buf.WriteByte(byte(col.Type))
		buf.WriteByte(byte(col.Encoding))
	}

	binary.Write(buf, ByteOrder, uint32(len(m.RowGroups)))
	for _, rg := range m.RowGroups {
		binary.Write(buf, ByteOrder, rg.NumRows)
		binary.Write(buf, ByteOrder, uint32(len(rg.ColumnChunks)))
		for _, chunk := range rg.ColumnChunks {
			binary.Write(buf, ByteOrder, chunk.FileOffset)
			binary.Write(buf, ByteOrder, chunk.TotalSize)
			binary.Write(buf, ByteOrder, uint32(len(chunk.PageHeaders)))
			for _, ph := range chunk.PageHeaders {
				if _, err := ph.WriteTo(buf); err != nil {
					return 0, err
				}
			}
		}
	}

	binary.Write(buf, ByteOrder, m.TotalRows)

	n, err := w.Write(buf.Bytes())
	return int64(n), err
}

// metaCursor is a bounds-checked reader over the raw metadata bytes.
// Every read failure surfaces as CorruptMetadata: a truncated metadata
// block means the footer offset pointed at garbage.
type metaCursor struct {
	buf  []byte
	pos  int
	path string
}

func (c *metaCursor) fail(reason string) error {
	return serrors.CorruptMetadata(c.path,
		fmt.Sprintf("%s at byte %d", reason, c.pos))
}

func (c *metaCursor) remaining() int {
	return len(c.buf) - c.pos
}

func (c *metaCursor) u8(what string) (uint8, error) {
	if c.remaining() < 1 {
		return 0, c.fail("truncated " + what)
	}
	v := c.buf[c.pos]
	c.pos++
	return v, nil
}

func (c *metaCursor) u32(what string) (uint32, error) {
	if c.remaining() < 4 {
		return 0, c.fail("truncated " + what)
	}
	v := ByteOrder.Uint32(c.buf[c.pos : c.pos+4])
	c.pos += 4
	return v, nil
}

func (c *metaCursor) u64(what string) (uint64, error) {
	if c.remaining() < 8 {
		return 0, c.fail("truncated " + what)
	}
	v := ByteOrder.Uint64(c.buf[c.pos : c.pos+8])
	c.pos += 8
	return v, nil
}

func (c *metaCursor) str(n int, what string) (string, error) {
	if n < 0 || c.remaining() < n {
		return "", c.fail("truncated " + what)
	}
	s := string(c.buf[c.pos : c.pos+n])
	c.pos += n
	return s, nil
}

// ParseFileMetadata decodes and validates a metadata block. metadataOffset
// is the absolute file position of the block, used to verify that every
// column chunk lies entirely before it.
func ParseFileMetadata(buf []byte, metadataOffset uint64, path string) (*FileMetadata, error) {
	c := &metaCursor{buf: buf, path: path}
	m := &FileMetadata{}

	numColumns, err := c.u32("column count")
	if err != nil {
		return nil, err
	}
	// Each column needs at least 6 bytes (name_len + type + encoding)
	if int(numColumns) > c.remaining()/6+1 {
		return nil, c.fail(fmt.Sprintf("column count %d exceeds metadata size", numColumns))
	}

	for i := uint32(0); i < numColumns; i++ {
		nameLen, err := c.u32("column name length")
		if err != nil {
			return nil, err
		}
		name, err := c.str(int(nameLen), "column name")
		if err != nil {
			return nil, err
		}
		if name == "" || !utf8.ValidString(name) {
			return nil, c.fail(fmt.Sprintf("column %d has an invalid name", i))
		}
		typeTag, err := c.u8("column type")
		if err != nil {
			return nil, err
		}
		encTag, err := c.u8("column encoding")
		if err != nil {
			return nil, err
		}
		col := ColumnSchema{Name: name, Type: ColumnType(typeTag), Encoding: EncodingType(encTag)}
		if !col.Type.Valid() {
			return nil, c.fail(fmt.Sprintf("column %q has unknown type tag %d", name, typeTag))
		}
		if !LegalPairing(col.Type, col.Encoding) {
			return nil, c.fail(fmt.Sprintf("column %q pairs type %s with encoding %s",
				name, col.Type, col.Encoding))
		}
		m.Schema.Columns = append(m.Schema.Columns, col)
	}

	if err := m.Schema.Validate(); err != nil {
		return nil, serrors.CorruptMetadata(path, fmt.Sprintf("invalid schema: %v", err))
	}

	numRowGroups, err := c.u32("row group count")
	if err != nil {
		return nil, err
	}
	if int(numRowGroups) > c.remaining()/8+1 {
		return nil, c.fail(fmt.Sprintf("row group count %d exceeds metadata size", numRowGroups))
	}

	var rowSum uint64
	for g := uint32(0); g < numRowGroups; g++ {
		var rg RowGroupMeta
		rg.NumRows, err = c.u32("row group row count")
		if err != nil {
			return nil, err
		}
		rgColumns, err := c.u32("row group column count")
		if err != nil {
			return nil, err
		}
		if rgColumns != numColumns {
			return nil, c.fail(fmt.Sprintf("row group %d has %d column chunks, schema has %d columns",
				g, rgColumns, numColumns))
		}

		for col := uint32(0); col < rgColumns; col++ {
			var chunk ColumnChunkMeta
			chunk.FileOffset, err = c.u64("chunk file offset")
			if err != nil {
				return nil, err
			}
			chunk.TotalSize, err = c.u64("chunk total size")
			if err != nil {
				return nil, err
			}
			numPages, err := c.u32("chunk page count")
			if err != nil {
				return nil, err
			}
			if int(numPages) > c.remaining()/pageHeaderBaseSize+1 {
				return nil, c.fail(fmt.Sprintf("page count %d exceeds metadata size", numPages))
			}

			var chunkBytes uint64
			var chunkValues uint64
			for p := uint32(0); p < numPages; p++ {
				ph, n, err := ParsePageHeader(c.buf[c.pos:])
				if err != nil {
					return nil, serrors.CorruptMetadata(path,
						fmt.Sprintf("row group %d column %d page %d: %v", g, col, p, err))
				}
				c.pos += n
				chunk.PageHeaders = append(chunk.PageHeaders, ph)
				chunkBytes += uint64(n) + uint64(ph.CompressedSize)
				chunkValues += uint64(ph.NumValues)
			}

			if chunkBytes != chunk.TotalSize {
				return nil, c.fail(fmt.Sprintf(
					"row group %d column %d: pages cover %d bytes, chunk declares %d",
					g, col, chunkBytes, chunk.TotalSize))
			}
			if chunkValues != uint64(rg.NumRows) {
				return nil, c.fail(fmt.Sprintf(
					"row group %d column %d: pages hold %d values, row group declares %d rows",
					g, col, chunkValues, rg.NumRows))
			}
			if chunk.FileOffset < HeaderSize ||
				chunk.FileOffset+chunk.TotalSize > metadataOffset ||
				chunk.FileOffset+chunk.TotalSize < chunk.FileOffset {
				return nil, c.fail(fmt.Sprintf(
					"row group %d column %d: chunk [%d,+%d) escapes the data region",
					g, col, chunk.FileOffset, chunk.TotalSize))
			}

			rg.ColumnChunks = append(rg.ColumnChunks, chunk)
		}

		rowSum += uint64(rg.NumRows)
		m.RowGroups = append(m.RowGroups, rg)
	}

	m.TotalRows, err = c.u32("total row count")
	if err != nil {
		return nil, err
	}
	if rowSum != uint64(m.TotalRows) {
		return nil, c.fail(fmt.Sprintf("row groups sum to %d rows, metadata declares %d",
			rowSum, m.TotalRows))
	}
	if c.remaining() != 0 {
		return nil, c.fail(fmt.Sprintf("%d trailing bytes after metadata", c.remaining()))
	}

	return m, nil
}

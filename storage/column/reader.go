package column

import (
	"fmt"
	"os"

	"github.com/wzqhbustb/cole/storage/encoding"
	serrors "github.com/wzqhbustb/cole/storage/errors"
	"github.com/wzqhbustb/cole/storage/format"
)

// Reader opens an existing columnar file, validates footer, header and
// metadata up front, and serves per-chunk column reads. The parsed
// metadata is immutable after construction; the file handle is the only
// mutable state, so concurrent reads on one Reader are not supported.
type Reader struct {
	file           *os.File
	path           string
	size           int64
	meta           *format.FileMetadata
	metadataOffset uint64
	closed         bool
}

// NewReader opens and validates path. The whole metadata block is parsed
// and checked here so that later column reads cannot produce lies about
// a corrupt file.
func NewReader(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, serrors.IO("new_reader", path, err)
	}

	r := &Reader{file: file, path: path}
	if err := r.open(); err != nil {
		file.Close()
		return nil, err
	}
	return r, nil
}

func (r *Reader) open() error {
	info, err := r.file.Stat()
	if err != nil {
		return serrors.IO("stat", r.path, err)
	}
	r.size = info.Size()

	if r.size < format.FooterSize {
		return serrors.FileTooSmall(r.path, r.size)
	}

	// Footer first: it locates the metadata
	footer := make([]byte, format.FooterSize)
	if _, err := r.file.ReadAt(footer, r.size-format.FooterSize); err != nil {
		return serrors.IO("read_footer", r.path, err)
	}
	if err := format.ValidateFooterMagic(r.path, format.ByteOrder.Uint32(footer[0:4])); err != nil {
		return err
	}
	r.metadataOffset = format.ByteOrder.Uint64(footer[4:12])
	if r.metadataOffset == 0 || r.metadataOffset > uint64(r.size-format.FooterSize) {
		return serrors.BadMetadataOffset(r.path, r.metadataOffset, r.size)
	}

	header := make([]byte, format.HeaderSize)
	if _, err := r.file.ReadAt(header, 0); err != nil {
		return serrors.IO("read_header", r.path, err)
	}
	if err := format.ValidateFileMagic(r.path, format.ByteOrder.Uint32(header[0:4])); err != nil {
		return err
	}

	metaBuf := make([]byte, uint64(r.size-format.FooterSize)-r.metadataOffset)
	if _, err := r.file.ReadAt(metaBuf, int64(r.metadataOffset)); err != nil {
		return serrors.IO("read_metadata", r.path, err)
	}

	r.meta, err = format.ParseFileMetadata(metaBuf, r.metadataOffset, r.path)
	return err
}

// Schema returns the file's schema
func (r *Reader) Schema() format.Schema {
	return r.meta.Schema
}

// Metadata returns the parsed file metadata
func (r *Reader) Metadata() *format.FileMetadata {
	return r.meta
}

// NumRowGroups returns the row-group count
func (r *Reader) NumRowGroups() int {
	return len(r.meta.RowGroups)
}

func (r *Reader) checkRead(op string, rowGroup, colIdx int, want format.ColumnType) error {
	if r.closed {
		return serrors.InvalidArg(op, "reader is closed")
	}
	if rowGroup < 0 || rowGroup >= len(r.meta.RowGroups) {
		return serrors.IndexOutOfRange(op, "row group", rowGroup, len(r.meta.RowGroups))
	}
	if colIdx < 0 || colIdx >= r.meta.Schema.NumColumns() {
		return serrors.IndexOutOfRange(op, "column", colIdx, r.meta.Schema.NumColumns())
	}
	col := r.meta.Schema.Columns[colIdx]
	if col.Type != want {
		return serrors.TypeMismatch(op, col.Name, want.String(), col.Type.String())
	}
	return nil
}

// readChunk loads a column chunk into memory and yields each page's
// header and payload in file order. The payload handed to the callback is
// exactly compressed_size bytes.
func (r *Reader) readChunk(rowGroup, colIdx int,
	decode func(hdr format.PageHeader, payload []byte) error) error {

	chunk := r.meta.RowGroups[rowGroup].ColumnChunks[colIdx]

	buf := make([]byte, chunk.TotalSize)
	if _, err := r.file.ReadAt(buf, int64(chunk.FileOffset)); err != nil {
		return serrors.IO("read_chunk", r.path, err)
	}

	pos := 0
	for page := 0; page < len(chunk.PageHeaders); page++ {
		hdr, n, err := format.ParsePageHeader(buf[pos:])
		if err != nil {
			return serrors.New(serrors.ErrMalformedPage).
				Op("read_chunk").
				Path(r.path).
				Offset(int64(chunk.FileOffset) + int64(pos)).
				Context("page", page).
				Wrap(err).
				Build()
		}
		pos += n

		if len(buf)-pos < int(hdr.CompressedSize) {
			return serrors.MalformedPage("page",
				fmt.Sprintf("page %d declares %d payload bytes, chunk has %d left",
					page, hdr.CompressedSize, len(buf)-pos))
		}

		if err := decode(hdr, buf[pos:pos+int(hdr.CompressedSize)]); err != nil {
			return err
		}
		pos += int(hdr.CompressedSize)
	}

	if pos != len(buf) {
		return serrors.MalformedPage("page",
			fmt.Sprintf("%d trailing bytes after last page of chunk", len(buf)-pos))
	}
	return nil
}

// ReadInt32Column decodes one column chunk of an INT32 column,
// concatenating pages in file order.
func (r *Reader) ReadInt32Column(rowGroup, colIdx int) ([]int32, error) {
	if err := r.checkRead("read_int32_column", rowGroup, colIdx, format.TypeInt32); err != nil {
		return nil, err
	}

	values := make([]int32, 0, r.meta.RowGroups[rowGroup].NumRows)
	err := r.readChunk(rowGroup, colIdx, func(hdr format.PageHeader, payload []byte) error {
		page, err := encoding.DecodeInt32Page(hdr.Encoding, payload, int(hdr.NumValues))
		if err != nil {
			return err
		}
		values = append(values, page...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return values, nil
}

// ReadInt64Column decodes one column chunk of an INT64 column
func (r *Reader) ReadInt64Column(rowGroup, colIdx int) ([]int64, error) {
	if err := r.checkRead("read_int64_column", rowGroup, colIdx, format.TypeInt64); err != nil {
		return nil, err
	}

	values := make([]int64, 0, r.meta.RowGroups[rowGroup].NumRows)
	err := r.readChunk(rowGroup, colIdx, func(hdr format.PageHeader, payload []byte) error {
		page, err := encoding.DecodeInt64Page(hdr.Encoding, payload, int(hdr.NumValues))
		if err != nil {
			return err
		}
		values = append(values, page...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return values, nil
}

// ReadStringColumn decodes one column chunk of a STRING column
func (r *Reader) ReadStringColumn(rowGroup, colIdx int) ([]string, error) {
	if err := r.checkRead("read_string_column", rowGroup, colIdx, format.TypeString); err != nil {
		return nil, err
	}

	values := make([]string, 0, r.meta.RowGroups[rowGroup].NumRows)
	err := r.readChunk(rowGroup, colIdx, func(hdr format.PageHeader, payload []byte) error {
		page, err := encoding.DecodeStringPage(hdr.Encoding, payload, int(hdr.NumValues))
		if err != nil {
			return err
		}
		values = append(values, page...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return values, nil
}

// Close releases the file handle. Double-close is a no-op.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if err := r.file.Close(); err != nil {
		return serrors.IO("close", r.path, err)
	}
	return nil
}

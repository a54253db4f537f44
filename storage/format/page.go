package format

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	serrors "github.com/wzqhbustb/cole/storage/errors"
)

// PageHeader precedes every page payload, both in the data stream and
// inside the file metadata. CompressedSize is the exact byte length the
// decoder must consume; bytes beyond it belong to the next page.
type PageHeader struct {
	UncompressedSize uint32
	CompressedSize   uint32
	NumValues        uint32
	Encoding         EncodingType
	Stats            PageStats
}

const (
	pageHeaderBaseSize  = 4 + 4 + 4 + 1 + 1 // sizes, count, encoding, has_stats
	pageHeaderStatsSize = 1 + 8 + 1 + 8 + 4 // has_min, min, has_max, max, null_count
)

// EncodedSize returns the serialized header size in bytes
func (h PageHeader) EncodedSize() int {
	// has_stats is always written as 1 by this writer, so the stats block
	// is always present on pages we produce
	return pageHeaderBaseSize + pageHeaderStatsSize
}

// WriteTo serializes the header
func (h PageHeader) WriteTo(w io.Writer) (int64, error) {
	buf := new(bytes.Buffer)

	binary.Write(buf, ByteOrder, h.UncompressedSize)
	binary.Write(buf, ByteOrder, h.CompressedSize)
	binary.Write(buf, ByteOrder, h.NumValues)
	buf.WriteByte(byte(h.Encoding))
	buf.WriteByte(1) // has_stats

	var hasMin, hasMax byte
	var minVal, maxVal int64
	if h.Stats.MinInt != nil {
		hasMin = 1
		minVal = *h.Stats.MinInt
	}
	if h.Stats.MaxInt != nil {
		hasMax = 1
		maxVal = *h.Stats.MaxInt
	}
	buf.WriteByte(hasMin)
	binary.Write(buf, ByteOrder, minVal)
	buf.WriteByte(hasMax)
	binary.Write(buf, ByteOrder, maxVal)
	binary.Write(buf, ByteOrder, h.Stats.NullCount)

	n, err := w.Write(buf.Bytes())
	return int64(n), err
}

// ParsePageHeader decodes a header from the start of buf and returns the
// number of bytes consumed. The parse never reads past len(buf).
func ParsePageHeader(buf []byte) (PageHeader, int, error) {
	var h PageHeader

	if len(buf) < pageHeaderBaseSize {
		return h, 0, serrors.TruncatedInput("parse_page_header", pageHeaderBaseSize, len(buf))
	}

	h.UncompressedSize = ByteOrder.Uint32(buf[0:4])
	h.CompressedSize = ByteOrder.Uint32(buf[4:8])
	h.NumValues = ByteOrder.Uint32(buf[8:12])
	h.Encoding = EncodingType(buf[12])
	hasStats := buf[13]
	pos := pageHeaderBaseSize

	if !h.Encoding.Valid() {
		return h, 0, serrors.New(serrors.ErrCorruptMetadata).
			Op("parse_page_header").
			Context("encoding", uint8(h.Encoding)).
			Context("reason", "unknown encoding tag").
			Build()
	}

	if hasStats > 1 {
		return h, 0, serrors.New(serrors.ErrCorruptMetadata).
			Op("parse_page_header").
			Context("has_stats", hasStats).
			Context("reason", "has_stats flag must be 0 or 1").
			Build()
	}

	if hasStats == 1 {
		if len(buf) < pos+pageHeaderStatsSize {
			return h, 0, serrors.TruncatedInput("parse_page_header",
				pos+pageHeaderStatsSize, len(buf))
		}
		hasMin := buf[pos]
		minVal := int64(ByteOrder.Uint64(buf[pos+1 : pos+9]))
		hasMax := buf[pos+9]
		maxVal := int64(ByteOrder.Uint64(buf[pos+10 : pos+18]))
		h.Stats.NullCount = ByteOrder.Uint32(buf[pos+18 : pos+22])
		pos += pageHeaderStatsSize

		if hasMin > 1 || hasMax > 1 {
			return h, 0, serrors.New(serrors.ErrCorruptMetadata).
				Op("parse_page_header").
				Context("reason", "has_min/has_max flags must be 0 or 1").
				Build()
		}
		if hasMin == 1 {
			h.Stats.MinInt = &minVal
		}
		if hasMax == 1 {
			h.Stats.MaxInt = &maxVal
		}
	}

	return h, pos, nil
}

// Describe returns a short human-readable summary used by the CLI
func (h PageHeader) Describe() string {
	s := fmt.Sprintf("%d values, %d bytes, encoding=%s",
		h.NumValues, h.CompressedSize, h.Encoding)
	if h.Stats.HasMinMax() {
		s += fmt.Sprintf(", min=%d, max=%d", *h.Stats.MinInt, *h.Stats.MaxInt)
	}
	return s
}

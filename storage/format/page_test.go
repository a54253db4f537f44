package format

import (
	"bytes"
	"testing"

	serrors "github.com/wzqhbustb/cole/storage/errors"
)

func TestPageHeader_RoundTrip(t *testing.T) {
	hdr := PageHeader{
		UncompressedSize: 400,
		CompressedSize:   120,
		NumValues:        100,
		Encoding:         EncodingRLE,
		Stats:            IntStats(-5, 99),
	}

	buf := new(bytes.Buffer)
	if _, err := hdr.WriteTo(buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if buf.Len() != hdr.EncodedSize() {
		t.Errorf("serialized to %d bytes, EncodedSize says %d", buf.Len(), hdr.EncodedSize())
	}

	got, n, err := ParsePageHeader(buf.Bytes())
	if err != nil {
		t.Fatalf("ParsePageHeader: %v", err)
	}
	if n != buf.Len() {
		t.Errorf("consumed %d of %d bytes", n, buf.Len())
	}
	if got.UncompressedSize != 400 || got.CompressedSize != 120 || got.NumValues != 100 {
		t.Errorf("sizes mismatch: %+v", got)
	}
	if got.Encoding != EncodingRLE {
		t.Errorf("encoding is %s, want RLE", got.Encoding)
	}
	if !got.Stats.HasMinMax() || *got.Stats.MinInt != -5 || *got.Stats.MaxInt != 99 {
		t.Errorf("stats mismatch: %+v", got.Stats)
	}
}

func TestPageHeader_RoundTripWithoutBounds(t *testing.T) {
	hdr := PageHeader{
		CompressedSize: 10,
		NumValues:      3,
		Encoding:       EncodingDictionary,
	}

	buf := new(bytes.Buffer)
	if _, err := hdr.WriteTo(buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	got, _, err := ParsePageHeader(buf.Bytes())
	if err != nil {
		t.Fatalf("ParsePageHeader: %v", err)
	}
	if got.Stats.HasMinMax() {
		t.Error("string page header grew min/max on round trip")
	}
}

func TestParsePageHeader_Truncated(t *testing.T) {
	hdr := PageHeader{NumValues: 1, Encoding: EncodingPlain}
	buf := new(bytes.Buffer)
	hdr.WriteTo(buf)

	for _, cut := range []int{0, 5, 13, buf.Len() - 1} {
		_, _, err := ParsePageHeader(buf.Bytes()[:cut])
		if !serrors.Is(err, serrors.ErrTruncatedInput) {
			t.Errorf("cut at %d: expected TruncatedInput, got %v", cut, err)
		}
	}
}

func TestParsePageHeader_UnknownEncoding(t *testing.T) {
	hdr := PageHeader{NumValues: 1, Encoding: EncodingPlain}
	buf := new(bytes.Buffer)
	hdr.WriteTo(buf)

	raw := buf.Bytes()
	raw[12] = 0xEE // encoding tag
	_, _, err := ParsePageHeader(raw)
	if !serrors.Is(err, serrors.ErrCorruptMetadata) {
		t.Errorf("expected CorruptMetadata, got %v", err)
	}
}

func TestParsePageHeader_BadFlags(t *testing.T) {
	hdr := PageHeader{NumValues: 1, Encoding: EncodingPlain, Stats: IntStats(1, 2)}
	buf := new(bytes.Buffer)
	hdr.WriteTo(buf)

	raw := append([]byte(nil), buf.Bytes()...)
	raw[13] = 7 // has_stats
	if _, _, err := ParsePageHeader(raw); !serrors.Is(err, serrors.ErrCorruptMetadata) {
		t.Errorf("has_stats: expected CorruptMetadata, got %v", err)
	}

	raw = append([]byte(nil), buf.Bytes()...)
	raw[14] = 9 // has_min
	if _, _, err := ParsePageHeader(raw); !serrors.Is(err, serrors.ErrCorruptMetadata) {
		t.Errorf("has_min: expected CorruptMetadata, got %v", err)
	}
}

package column

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	serrors "github.com/wzqhbustb/cole/storage/errors"
	"github.com/wzqhbustb/cole/storage/format"
)

func tempFile(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "test.col")
}

func TestWriterReader_PlainRoundTrip(t *testing.T) {
	path := tempFile(t)

	schema := format.NewSchema(
		format.ColumnSchema{Name: "id", Type: format.TypeInt64, Encoding: format.EncodingPlain},
		format.ColumnSchema{Name: "value", Type: format.TypeInt32, Encoding: format.EncodingPlain},
	)

	w, err := NewWriter(path, schema)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if err := w.WriteInt64Column(0, []int64{1, 2, 3, 4, 5}); err != nil {
		t.Fatalf("WriteInt64Column: %v", err)
	}
	if err := w.WriteInt32Column(1, []int32{10, 20, 30, 40, 50}); err != nil {
		t.Fatalf("WriteInt32Column: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	defer r.Close()

	if r.Metadata().TotalRows != 5 {
		t.Errorf("total rows %d, want 5", r.Metadata().TotalRows)
	}

	ids, err := r.ReadInt64Column(0, 0)
	if err != nil {
		t.Fatalf("ReadInt64Column: %v", err)
	}
	if !reflect.DeepEqual(ids, []int64{1, 2, 3, 4, 5}) {
		t.Errorf("ids: got %v", ids)
	}

	values, err := r.ReadInt32Column(0, 1)
	if err != nil {
		t.Fatalf("ReadInt32Column: %v", err)
	}
	if !reflect.DeepEqual(values, []int32{10, 20, 30, 40, 50}) {
		t.Errorf("values: got %v", values)
	}
}

func TestWriterReader_RLEInt32(t *testing.T) {
	path := tempFile(t)
	schema := format.NewSchema(
		format.ColumnSchema{Name: "v", Type: format.TypeInt32, Encoding: format.EncodingRLE},
	)
	in := []int32{1, 1, 1, 2, 2, 3, 3, 3, 3}

	w, err := NewWriter(path, schema)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if err := w.WriteInt32Column(0, in); err != nil {
		t.Fatalf("WriteInt32Column: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	defer r.Close()

	got, err := r.ReadInt32Column(0, 0)
	if err != nil {
		t.Fatalf("ReadInt32Column: %v", err)
	}
	if !reflect.DeepEqual(got, in) {
		t.Errorf("got %v, want %v", got, in)
	}
}

func TestWriterReader_DeltaInt64(t *testing.T) {
	path := tempFile(t)
	schema := format.NewSchema(
		format.ColumnSchema{Name: "ts", Type: format.TypeInt64, Encoding: format.EncodingDelta},
	)
	in := []int64{1000, 1100, 1200, 1300, 1400}

	w, err := NewWriter(path, schema)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if err := w.WriteInt64Column(0, in); err != nil {
		t.Fatalf("WriteInt64Column: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	defer r.Close()

	got, err := r.ReadInt64Column(0, 0)
	if err != nil {
		t.Fatalf("ReadInt64Column: %v", err)
	}
	if !reflect.DeepEqual(got, in) {
		t.Errorf("got %v, want %v", got, in)
	}
}

func TestWriterReader_DictionaryStrings(t *testing.T) {
	path := tempFile(t)
	schema := format.NewSchema(
		format.ColumnSchema{Name: "region", Type: format.TypeString, Encoding: format.EncodingDictionary},
	)
	in := []string{"north", "south", "north", "east", "south", "north"}

	w, err := NewWriter(path, schema)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if err := w.WriteStringColumn(0, in); err != nil {
		t.Fatalf("WriteStringColumn: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	defer r.Close()

	got, err := r.ReadStringColumn(0, 0)
	if err != nil {
		t.Fatalf("ReadStringColumn: %v", err)
	}
	if !reflect.DeepEqual(got, in) {
		t.Errorf("got %v, want %v", got, in)
	}
}

func TestWriterReader_TwoRowGroups(t *testing.T) {
	path := tempFile(t)
	schema := format.NewSchema(
		format.ColumnSchema{Name: "v", Type: format.TypeInt64, Encoding: format.EncodingPlain},
	)

	w, err := NewWriter(path, schema)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if err := w.WriteInt64Column(0, []int64{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	if err := w.FlushRowGroup(); err != nil {
		t.Fatalf("FlushRowGroup: %v", err)
	}
	if err := w.WriteInt64Column(0, []int64{4, 5, 6}); err != nil {
		t.Fatal(err)
	}
	if err := w.FlushRowGroup(); err != nil {
		t.Fatalf("FlushRowGroup: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	defer r.Close()

	meta := r.Metadata()
	if len(meta.RowGroups) != 2 {
		t.Fatalf("%d row groups, want 2", len(meta.RowGroups))
	}
	if meta.RowGroups[0].NumRows != 3 || meta.RowGroups[1].NumRows != 3 {
		t.Errorf("row counts %d/%d, want 3/3",
			meta.RowGroups[0].NumRows, meta.RowGroups[1].NumRows)
	}
	if meta.TotalRows != 6 {
		t.Errorf("total rows %d, want 6", meta.TotalRows)
	}

	first, err := r.ReadInt64Column(0, 0)
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.ReadInt64Column(1, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, []int64{1, 2, 3}) || !reflect.DeepEqual(second, []int64{4, 5, 6}) {
		t.Errorf("got %v / %v", first, second)
	}
}

func TestWriterReader_FooterLocatesMetadata(t *testing.T) {
	path := tempFile(t)
	schema := format.NewSchema(
		format.ColumnSchema{Name: "v", Type: format.TypeInt32, Encoding: format.EncodingPlain},
	)

	w, err := NewWriter(path, schema)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.WriteInt32Column(0, []int32{1}); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	footer := raw[len(raw)-format.FooterSize:]
	if format.ByteOrder.Uint32(footer[0:4]) != format.FooterMagic {
		t.Error("footer magic mismatch")
	}
	offset := format.ByteOrder.Uint64(footer[4:12])
	if offset == 0 || offset > uint64(len(raw)-format.FooterSize) {
		t.Fatalf("metadata offset %d out of range", offset)
	}

	meta, err := format.ParseFileMetadata(raw[offset:len(raw)-format.FooterSize], offset, path)
	if err != nil {
		t.Fatalf("metadata at footer offset does not parse: %v", err)
	}
	if meta.TotalRows != 1 {
		t.Errorf("total rows %d, want 1", meta.TotalRows)
	}
}

func TestWriterReader_StatsBoundDecodedValues(t *testing.T) {
	path := tempFile(t)
	schema := format.NewSchema(
		format.ColumnSchema{Name: "v", Type: format.TypeInt64, Encoding: format.EncodingDelta},
	)
	in := []int64{42, -7, 300, 12, 0}

	w, err := NewWriter(path, schema)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.WriteInt64Column(0, in); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	r, err := NewReader(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	hdr := r.Metadata().RowGroups[0].ColumnChunks[0].PageHeaders[0]
	if !hdr.Stats.HasMinMax() {
		t.Fatal("numeric page lost its stats")
	}
	values, err := r.ReadInt64Column(0, 0)
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range values {
		if v < *hdr.Stats.MinInt || v > *hdr.Stats.MaxInt {
			t.Errorf("value %d outside stats [%d,%d]", v, *hdr.Stats.MinInt, *hdr.Stats.MaxInt)
		}
	}
	if *hdr.Stats.MinInt != -7 || *hdr.Stats.MaxInt != 300 {
		t.Errorf("stats [%d,%d], want [-7,300]", *hdr.Stats.MinInt, *hdr.Stats.MaxInt)
	}
}

func TestWriter_ShapeMismatch(t *testing.T) {
	path := tempFile(t)
	schema := format.NewSchema(
		format.ColumnSchema{Name: "a", Type: format.TypeInt32, Encoding: format.EncodingPlain},
		format.ColumnSchema{Name: "b", Type: format.TypeInt32, Encoding: format.EncodingPlain},
	)

	w, err := NewWriter(path, schema)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	w.WriteInt32Column(0, []int32{1, 2, 3})
	w.WriteInt32Column(1, []int32{1})

	if err := w.FlushRowGroup(); !serrors.Is(err, serrors.ErrShapeMismatch) {
		t.Errorf("expected ShapeMismatch, got %v", err)
	}
}

func TestWriter_TypeChecks(t *testing.T) {
	path := tempFile(t)
	schema := format.NewSchema(
		format.ColumnSchema{Name: "v", Type: format.TypeInt32, Encoding: format.EncodingPlain},
	)

	w, err := NewWriter(path, schema)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.WriteInt64Column(0, []int64{1}); !serrors.Is(err, serrors.ErrTypeMismatch) {
		t.Errorf("expected TypeMismatch, got %v", err)
	}
	if err := w.WriteInt32Column(5, []int32{1}); !serrors.Is(err, serrors.ErrInvalidArgument) {
		t.Errorf("expected InvalidArgument, got %v", err)
	}
}

func TestWriter_RejectsInvalidSchema(t *testing.T) {
	path := tempFile(t)

	_, err := NewWriter(path, format.NewSchema(
		format.ColumnSchema{Name: "x", Type: format.TypeInt32, Encoding: format.EncodingPlain},
		format.ColumnSchema{Name: "x", Type: format.TypeInt64, Encoding: format.EncodingPlain},
	))
	if !serrors.Is(err, serrors.ErrInvalidArgument) {
		t.Errorf("duplicate names: expected InvalidArgument, got %v", err)
	}

	_, err = NewWriter(path, format.NewSchema(
		format.ColumnSchema{Name: "s", Type: format.TypeString, Encoding: format.EncodingDelta},
	))
	if !serrors.Is(err, serrors.ErrInvalidArgument) {
		t.Errorf("illegal pairing: expected InvalidArgument, got %v", err)
	}
}

func TestWriter_DoubleCloseIsNoop(t *testing.T) {
	path := tempFile(t)
	schema := format.NewSchema(
		format.ColumnSchema{Name: "v", Type: format.TypeInt32, Encoding: format.EncodingPlain},
	)

	w, err := NewWriter(path, schema)
	if err != nil {
		t.Fatal(err)
	}
	w.WriteInt32Column(0, []int32{1, 2})
	if err := w.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	r, err := NewReader(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	if r.Metadata().TotalRows != 2 {
		t.Errorf("total rows %d, want 2", r.Metadata().TotalRows)
	}
}

func TestWriter_CloseFlushesDirtyBuffer(t *testing.T) {
	path := tempFile(t)
	schema := format.NewSchema(
		format.ColumnSchema{Name: "v", Type: format.TypeInt64, Encoding: format.EncodingPlain},
	)

	w, err := NewWriter(path, schema)
	if err != nil {
		t.Fatal(err)
	}
	w.WriteInt64Column(0, []int64{9})
	// Close without an explicit FlushRowGroup
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	r, err := NewReader(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	got, err := r.ReadInt64Column(0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []int64{9}) {
		t.Errorf("got %v, want [9]", got)
	}
}

func TestReader_AccessorChecks(t *testing.T) {
	path := tempFile(t)
	schema := format.NewSchema(
		format.ColumnSchema{Name: "v", Type: format.TypeInt32, Encoding: format.EncodingPlain},
		format.ColumnSchema{Name: "s", Type: format.TypeString, Encoding: format.EncodingPlain},
	)

	w, err := NewWriter(path, schema)
	if err != nil {
		t.Fatal(err)
	}
	w.WriteInt32Column(0, []int32{1})
	w.WriteStringColumn(1, []string{"a"})
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	r, err := NewReader(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if _, err := r.ReadInt64Column(0, 0); !serrors.Is(err, serrors.ErrTypeMismatch) {
		t.Errorf("wrong accessor: expected TypeMismatch, got %v", err)
	}
	if _, err := r.ReadInt32Column(3, 0); !serrors.Is(err, serrors.ErrInvalidArgument) {
		t.Errorf("bad row group: expected InvalidArgument, got %v", err)
	}
	if _, err := r.ReadInt32Column(0, 9); !serrors.Is(err, serrors.ErrInvalidArgument) {
		t.Errorf("bad column: expected InvalidArgument, got %v", err)
	}
}

func TestWriterReader_EmptyFile(t *testing.T) {
	path := tempFile(t)
	schema := format.NewSchema(
		format.ColumnSchema{Name: "v", Type: format.TypeInt32, Encoding: format.EncodingPlain},
	)

	w, err := NewWriter(path, schema)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	r, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader on empty table: %v", err)
	}
	defer r.Close()
	if r.Metadata().TotalRows != 0 || len(r.Metadata().RowGroups) != 0 {
		t.Errorf("empty table metadata: %+v", r.Metadata())
	}
}

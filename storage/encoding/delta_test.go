package encoding

import (
	"math"
	"reflect"
	"testing"

	serrors "github.com/wzqhbustb/cole/storage/errors"
)

func TestDeltaCodec_RoundTripInt32(t *testing.T) {
	codec := NewDeltaCodec()

	for _, values := range [][]int32{
		nil,
		{100},
		{10, 20, 15, -3, 1000},
	} {
		got, err := codec.DecodeInt32(codec.EncodeInt32(values), len(values))
		if err != nil {
			t.Fatalf("DecodeInt32(%v): %v", values, err)
		}
		if len(got) != len(values) {
			t.Fatalf("got %d values, want %d", len(got), len(values))
		}
		for i := range values {
			if got[i] != values[i] {
				t.Errorf("value %d: got %d, want %d", i, got[i], values[i])
			}
		}
	}
}

func TestDeltaCodec_RoundTripInt64(t *testing.T) {
	codec := NewDeltaCodec()
	values := []int64{1000, 1100, 1200, 1300, 1400}

	got, err := codec.DecodeInt64(codec.EncodeInt64(values), len(values))
	if err != nil {
		t.Fatalf("DecodeInt64: %v", err)
	}
	if !reflect.DeepEqual(got, values) {
		t.Errorf("got %v, want %v", got, values)
	}
}

func TestDeltaCodec_MonotonicSequenceIsCompact(t *testing.T) {
	codec := NewDeltaCodec()

	values := make([]int64, 1000)
	for i := range values {
		values[i] = int64(1000 + i)
	}
	buf := codec.EncodeInt64(values)
	// base(8) + count + one-byte delta per value
	if len(buf) > 8+2+len(values) {
		t.Errorf("monotonic sequence encoded to %d bytes", len(buf))
	}
}

func TestDeltaCodec_ExtremeSwings(t *testing.T) {
	codec := NewDeltaCodec()

	// Deltas wrap two's-complement; extreme values survive the round trip
	values := []int64{math.MinInt64, math.MaxInt64, 0, math.MinInt64}
	got, err := codec.DecodeInt64(codec.EncodeInt64(values), len(values))
	if err != nil {
		t.Fatalf("DecodeInt64: %v", err)
	}
	if !reflect.DeepEqual(got, values) {
		t.Errorf("got %v, want %v", got, values)
	}
}

func TestDeltaCodec_TruncatedBase(t *testing.T) {
	codec := NewDeltaCodec()

	_, err := codec.DecodeInt64(make([]byte, 5), 2)
	if !serrors.Is(err, serrors.ErrTruncatedInput) {
		t.Errorf("expected TruncatedInput, got %v", err)
	}

	_, err = codec.DecodeInt32(make([]byte, 3), 2)
	if !serrors.Is(err, serrors.ErrTruncatedInput) {
		t.Errorf("int32: expected TruncatedInput, got %v", err)
	}
}

func TestDeltaCodec_ValueCountMismatch(t *testing.T) {
	codec := NewDeltaCodec()

	buf := codec.EncodeInt32([]int32{1, 2, 3})
	_, err := codec.DecodeInt32(buf, 5)
	if !serrors.Is(err, serrors.ErrMalformedPage) {
		t.Errorf("expected MalformedPage, got %v", err)
	}
}

func TestDeltaCodec_TrailingBytes(t *testing.T) {
	codec := NewDeltaCodec()

	buf := append(codec.EncodeInt64([]int64{1, 2}), 0x00)
	_, err := codec.DecodeInt64(buf, 2)
	if !serrors.Is(err, serrors.ErrMalformedPage) {
		t.Errorf("expected MalformedPage, got %v", err)
	}
}

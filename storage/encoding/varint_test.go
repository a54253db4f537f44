package encoding

import (
	"bytes"
	"math"
	"testing"

	serrors "github.com/wzqhbustb/cole/storage/errors"
)

func TestVarint_RoundTripUint32(t *testing.T) {
	cases := []uint32{0, 1, 127, 128, 300, 16383, 16384, 1 << 21, math.MaxUint32}

	for _, v := range cases {
		buf := EncodeUint32(v)
		if len(buf) > MaxVarint32Bytes {
			t.Errorf("EncodeUint32(%d) produced %d bytes", v, len(buf))
		}

		got, n, err := DecodeUint32(buf)
		if err != nil {
			t.Fatalf("DecodeUint32(%d): %v", v, err)
		}
		if got != v {
			t.Errorf("round trip %d: got %d", v, got)
		}
		if n != len(buf) {
			t.Errorf("value %d: consumed %d of %d bytes", v, n, len(buf))
		}
	}
}

func TestVarint_RoundTripInt32(t *testing.T) {
	cases := []int32{0, 1, -1, 63, -64, 64, -65, math.MaxInt32, math.MinInt32}

	for _, v := range cases {
		buf := EncodeInt32(v)
		got, n, err := DecodeInt32(buf)
		if err != nil {
			t.Fatalf("DecodeInt32(%d): %v", v, err)
		}
		if got != v || n != len(buf) {
			t.Errorf("round trip %d: got %d, consumed %d/%d", v, got, n, len(buf))
		}
	}
}

func TestVarint_RoundTripInt64(t *testing.T) {
	cases := []int64{0, 1, -1, 1000, -1000, math.MaxInt64, math.MinInt64}

	for _, v := range cases {
		buf := EncodeInt64(v)
		if len(buf) > MaxVarint64Bytes {
			t.Errorf("EncodeInt64(%d) produced %d bytes", v, len(buf))
		}
		got, n, err := DecodeInt64(buf)
		if err != nil {
			t.Fatalf("DecodeInt64(%d): %v", v, err)
		}
		if got != v || n != len(buf) {
			t.Errorf("round trip %d: got %d, consumed %d/%d", v, got, n, len(buf))
		}
	}
}

func TestVarint_SmallMagnitudesStayShort(t *testing.T) {
	// Zigzag keeps small negative values in one byte
	if n := len(EncodeInt32(-1)); n != 1 {
		t.Errorf("EncodeInt32(-1) is %d bytes, want 1", n)
	}
	if n := len(EncodeInt64(-64)); n != 1 {
		t.Errorf("EncodeInt64(-64) is %d bytes, want 1", n)
	}
}

func TestVarint_Truncated(t *testing.T) {
	// Continuation bit set on the last available byte
	_, _, err := DecodeUint32([]byte{0x80})
	if !serrors.Is(err, serrors.ErrTruncatedInput) {
		t.Errorf("expected TruncatedInput, got %v", err)
	}

	_, _, err = DecodeUint32(nil)
	if !serrors.Is(err, serrors.ErrTruncatedInput) {
		t.Errorf("empty buffer: expected TruncatedInput, got %v", err)
	}

	_, _, err = DecodeUint64([]byte{0xFF, 0xFF})
	if !serrors.Is(err, serrors.ErrTruncatedInput) {
		t.Errorf("expected TruncatedInput, got %v", err)
	}
}

func TestVarint_Overflow(t *testing.T) {
	// Six 0xFF bytes exceed the 5-byte limit for 32-bit values
	_, _, err := DecodeUint32(bytes.Repeat([]byte{0xFF}, 6))
	if !serrors.Is(err, serrors.ErrVarintOverflow) {
		t.Errorf("expected VarintOverflow, got %v", err)
	}

	_, _, err = DecodeUint64(bytes.Repeat([]byte{0xFF}, 11))
	if !serrors.Is(err, serrors.ErrVarintOverflow) {
		t.Errorf("expected VarintOverflow, got %v", err)
	}
}

func TestVarint_DecodeStopsAtValueEnd(t *testing.T) {
	// Trailing bytes after a complete varint are not consumed
	buf := append(EncodeUint32(300), 0xAA, 0xBB)
	v, n, err := DecodeUint32(buf)
	if err != nil {
		t.Fatalf("DecodeUint32: %v", err)
	}
	if v != 300 || n != 2 {
		t.Errorf("got value %d consumed %d, want 300 consumed 2", v, n)
	}
}

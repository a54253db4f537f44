package encoding

import (
	"testing"

	serrors "github.com/wzqhbustb/cole/storage/errors"
	"github.com/wzqhbustb/cole/storage/format"
)

func TestEncodePage_IllegalPairings(t *testing.T) {
	if _, _, err := EncodeInt32Page(format.EncodingDictionary, []int32{1}); !serrors.Is(err, serrors.ErrInvalidArgument) {
		t.Errorf("int32/dictionary: expected InvalidArgument, got %v", err)
	}
	if _, _, err := EncodeInt64Page(format.EncodingDictionary, []int64{1}); !serrors.Is(err, serrors.ErrInvalidArgument) {
		t.Errorf("int64/dictionary: expected InvalidArgument, got %v", err)
	}
	if _, _, err := EncodeStringPage(format.EncodingRLE, []string{"a"}); !serrors.Is(err, serrors.ErrInvalidArgument) {
		t.Errorf("string/rle: expected InvalidArgument, got %v", err)
	}
	if _, _, err := EncodeStringPage(format.EncodingDelta, []string{"a"}); !serrors.Is(err, serrors.ErrInvalidArgument) {
		t.Errorf("string/delta: expected InvalidArgument, got %v", err)
	}
}

func TestDecodePage_IllegalPairings(t *testing.T) {
	if _, err := DecodeInt32Page(format.EncodingDictionary, nil, 0); !serrors.Is(err, serrors.ErrInvalidArgument) {
		t.Errorf("expected InvalidArgument, got %v", err)
	}
	if _, err := DecodeStringPage(format.EncodingDelta, nil, 0); !serrors.Is(err, serrors.ErrInvalidArgument) {
		t.Errorf("expected InvalidArgument, got %v", err)
	}
}

func TestEncodePage_RoundTripEveryLegalPairing(t *testing.T) {
	int32Values := []int32{3, 3, 1, 9, 9, 9}
	for _, enc := range []format.EncodingType{format.EncodingPlain, format.EncodingRLE, format.EncodingDelta} {
		buf, stats, err := EncodeInt32Page(enc, int32Values)
		if err != nil {
			t.Fatalf("EncodeInt32Page(%s): %v", enc, err)
		}
		if !stats.HasMinMax() || *stats.MinInt != 1 || *stats.MaxInt != 9 {
			t.Errorf("%s: bad stats %+v", enc, stats)
		}
		got, err := DecodeInt32Page(enc, buf, len(int32Values))
		if err != nil {
			t.Fatalf("DecodeInt32Page(%s): %v", enc, err)
		}
		for i := range int32Values {
			if got[i] != int32Values[i] {
				t.Errorf("%s value %d: got %d, want %d", enc, i, got[i], int32Values[i])
			}
		}
	}

	int64Values := []int64{-10, -10, 500, 500, 500}
	for _, enc := range []format.EncodingType{format.EncodingPlain, format.EncodingRLE, format.EncodingDelta} {
		buf, _, err := EncodeInt64Page(enc, int64Values)
		if err != nil {
			t.Fatalf("EncodeInt64Page(%s): %v", enc, err)
		}
		got, err := DecodeInt64Page(enc, buf, len(int64Values))
		if err != nil {
			t.Fatalf("DecodeInt64Page(%s): %v", enc, err)
		}
		for i := range int64Values {
			if got[i] != int64Values[i] {
				t.Errorf("%s value %d: got %d, want %d", enc, i, got[i], int64Values[i])
			}
		}
	}

	stringValues := []string{"a", "bb", "a", ""}
	for _, enc := range []format.EncodingType{format.EncodingPlain, format.EncodingDictionary} {
		buf, stats, err := EncodeStringPage(enc, stringValues)
		if err != nil {
			t.Fatalf("EncodeStringPage(%s): %v", enc, err)
		}
		if stats.HasMinMax() {
			t.Errorf("%s: string page carries min/max", enc)
		}
		got, err := DecodeStringPage(enc, buf, len(stringValues))
		if err != nil {
			t.Fatalf("DecodeStringPage(%s): %v", enc, err)
		}
		for i := range stringValues {
			if got[i] != stringValues[i] {
				t.Errorf("%s value %d: got %q, want %q", enc, i, got[i], stringValues[i])
			}
		}
	}
}

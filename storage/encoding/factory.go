package encoding

import (
	serrors "github.com/wzqhbustb/cole/storage/errors"
	"github.com/wzqhbustb/cole/storage/format"
)

// Page-level dispatch. Each function pairs the codec matching the encoding
// tag with the page statistics the writer stores alongside the payload.
// Illegal (type, encoding) pairings are configuration errors, not data
// corruption.

// EncodeInt32Page encodes a page of int32 values and computes its stats
func EncodeInt32Page(enc format.EncodingType, values []int32) ([]byte, format.PageStats, error) {
	stats := ComputeInt32Stats(values)
	switch enc {
	case format.EncodingPlain:
		return PlainCodec{}.EncodeInt32(values), stats, nil
	case format.EncodingRLE:
		return RLECodec{}.EncodeInt32(values), stats, nil
	case format.EncodingDelta:
		return DeltaCodec{}.EncodeInt32(values), stats, nil
	default:
		return nil, format.PageStats{}, serrors.IllegalEncoding("encode_int32_page",
			format.TypeInt32.String(), enc.String())
	}
}

// DecodeInt32Page decodes a page payload of exactly len(buf) bytes
func DecodeInt32Page(enc format.EncodingType, buf []byte, numValues int) ([]int32, error) {
	switch enc {
	case format.EncodingPlain:
		return PlainCodec{}.DecodeInt32(buf, numValues)
	case format.EncodingRLE:
		return RLECodec{}.DecodeInt32(buf, numValues)
	case format.EncodingDelta:
		return DeltaCodec{}.DecodeInt32(buf, numValues)
	default:
		return nil, serrors.IllegalEncoding("decode_int32_page",
			format.TypeInt32.String(), enc.String())
	}
}

// EncodeInt64Page encodes a page of int64 values and computes its stats
func EncodeInt64Page(enc format.EncodingType, values []int64) ([]byte, format.PageStats, error) {
	stats := ComputeInt64Stats(values)
	switch enc {
	case format.EncodingPlain:
		return PlainCodec{}.EncodeInt64(values), stats, nil
	case format.EncodingRLE:
		return RLECodec{}.EncodeInt64(values), stats, nil
	case format.EncodingDelta:
		return DeltaCodec{}.EncodeInt64(values), stats, nil
	default:
		return nil, format.PageStats{}, serrors.IllegalEncoding("encode_int64_page",
			format.TypeInt64.String(), enc.String())
	}
}

// DecodeInt64Page decodes a page payload of exactly len(buf) bytes
func DecodeInt64Page(enc format.EncodingType, buf []byte, numValues int) ([]int64, error) {
	switch enc {
	case format.EncodingPlain:
		return PlainCodec{}.DecodeInt64(buf, numValues)
	case format.EncodingRLE:
		return RLECodec{}.DecodeInt64(buf, numValues)
	case format.EncodingDelta:
		return DeltaCodec{}.DecodeInt64(buf, numValues)
	default:
		return nil, serrors.IllegalEncoding("decode_int64_page",
			format.TypeInt64.String(), enc.String())
	}
}

// EncodeStringPage encodes a page of string values. Dictionary pages use
// the dictionary size as their distinct estimate.
func EncodeStringPage(enc format.EncodingType, values []string) ([]byte, format.PageStats, error) {
	stats := ComputeStringStats(values)
	switch enc {
	case format.EncodingPlain:
		return PlainCodec{}.EncodeString(values), stats, nil
	case format.EncodingDictionary:
		buf, dictSize := DictionaryCodec{}.EncodeString(values)
		stats.DistinctCountEstimate = dictSize
		return buf, stats, nil
	default:
		return nil, format.PageStats{}, serrors.IllegalEncoding("encode_string_page",
			format.TypeString.String(), enc.String())
	}
}

// DecodeStringPage decodes a page payload of exactly len(buf) bytes
func DecodeStringPage(enc format.EncodingType, buf []byte, numValues int) ([]string, error) {
	switch enc {
	case format.EncodingPlain:
		return PlainCodec{}.DecodeString(buf, numValues)
	case format.EncodingDictionary:
		return DictionaryCodec{}.DecodeString(buf, numValues)
	default:
		return nil, serrors.IllegalEncoding("decode_string_page",
			format.TypeString.String(), enc.String())
	}
}

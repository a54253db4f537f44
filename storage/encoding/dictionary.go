package encoding

import (
	"fmt"

	serrors "github.com/wzqhbustb/cole/storage/errors"
	"github.com/wzqhbustb/cole/storage/format"
)

// DictionaryCodec stores a shared string table in insertion order followed
// by the index vector compressed with the int32 RLE codec:
// [dict_size: u32][(entry_len: u32, bytes)...][indices: RLE(int32)]
type DictionaryCodec struct{}

func NewDictionaryCodec() DictionaryCodec {
	return DictionaryCodec{}
}

func (DictionaryCodec) Type() format.EncodingType {
	return format.EncodingDictionary
}

// EncodeString builds the dictionary in first-seen order and returns the
// payload together with the dictionary size (the page's distinct estimate).
func (DictionaryCodec) EncodeString(values []string) ([]byte, uint32) {
	dict := make(map[string]uint32, len(values))
	var entries []string
	indices := make([]int32, len(values))

	for i, v := range values {
		idx, ok := dict[v]
		if !ok {
			idx = uint32(len(entries))
			dict[v] = idx
			entries = append(entries, v)
		}
		indices[i] = int32(idx)
	}

	size := 4
	for _, e := range entries {
		size += 4 + len(e)
	}

	buf := make([]byte, 0, size)
	buf = format.ByteOrder.AppendUint32(buf, uint32(len(entries)))
	for _, e := range entries {
		buf = format.ByteOrder.AppendUint32(buf, uint32(len(e)))
		buf = append(buf, e...)
	}

	buf = append(buf, RLECodec{}.EncodeInt32(indices)...)
	return buf, uint32(len(entries))
}

func (DictionaryCodec) DecodeString(buf []byte, numValues int) ([]string, error) {
	if len(buf) < 4 {
		return nil, serrors.TruncatedInput("decode_dictionary", 4, len(buf))
	}

	dictSize := format.ByteOrder.Uint32(buf)
	pos := 4

	entries := make([]string, 0, dictSize)
	for i := uint32(0); i < dictSize; i++ {
		if len(buf)-pos < 4 {
			return nil, serrors.TruncatedInput("decode_dictionary", pos+4, len(buf))
		}
		entryLen := int(format.ByteOrder.Uint32(buf[pos:]))
		pos += 4
		if len(buf)-pos < entryLen {
			return nil, serrors.MalformedPage("dictionary",
				fmt.Sprintf("entry %d of %d bytes escapes the payload", i, entryLen))
		}
		entries = append(entries, string(buf[pos:pos+entryLen]))
		pos += entryLen
	}

	consumed, indices, err := decodeRLEInt32(buf[pos:], numValues)
	if err != nil {
		return nil, err
	}
	if pos+consumed != len(buf) {
		return nil, serrors.MalformedPage("dictionary",
			fmt.Sprintf("%d trailing bytes after index stream", len(buf)-pos-consumed))
	}

	values := make([]string, numValues)
	for i, idx := range indices {
		if idx < 0 || uint32(idx) >= dictSize {
			return nil, serrors.MalformedPage("dictionary",
				fmt.Sprintf("index %d out of range, dictionary has %d entries", idx, dictSize))
		}
		values[i] = entries[idx]
	}
	return values, nil
}

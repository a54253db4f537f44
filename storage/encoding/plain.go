package encoding

import (
	"fmt"

	serrors "github.com/wzqhbustb/cole/storage/errors"
	"github.com/wzqhbustb/cole/storage/format"
)

// PlainCodec stores integers as raw little-endian fixed-width values and
// strings as an offset table followed by concatenated UTF-8 bytes.
type PlainCodec struct{}

func NewPlainCodec() PlainCodec {
	return PlainCodec{}
}

func (PlainCodec) Type() format.EncodingType {
	return format.EncodingPlain
}

func (PlainCodec) EncodeInt32(values []int32) []byte {
	buf := make([]byte, len(values)*4)
	for i, v := range values {
		format.ByteOrder.PutUint32(buf[i*4:], uint32(v))
	}
	return buf
}

func (PlainCodec) DecodeInt32(buf []byte, numValues int) ([]int32, error) {
	if len(buf) != numValues*4 {
		return nil, serrors.MalformedPage("plain_int32",
			fmt.Sprintf("payload is %d bytes, %d values need %d", len(buf), numValues, numValues*4))
	}
	values := make([]int32, numValues)
	for i := range values {
		values[i] = int32(format.ByteOrder.Uint32(buf[i*4:]))
	}
	return values, nil
}

func (PlainCodec) EncodeInt64(values []int64) []byte {
	buf := make([]byte, len(values)*8)
	for i, v := range values {
		format.ByteOrder.PutUint64(buf[i*8:], uint64(v))
	}
	return buf
}

func (PlainCodec) DecodeInt64(buf []byte, numValues int) ([]int64, error) {
	if len(buf) != numValues*8 {
		return nil, serrors.MalformedPage("plain_int64",
			fmt.Sprintf("payload is %d bytes, %d values need %d", len(buf), numValues, numValues*8))
	}
	values := make([]int64, numValues)
	for i := range values {
		values[i] = int64(format.ByteOrder.Uint64(buf[i*8:]))
	}
	return values, nil
}

// EncodeString lays out num_values+1 uint32 byte offsets followed by the
// concatenated string bytes. offsets[i] is the start of string i and
// offsets[n] the total payload length.
func (PlainCodec) EncodeString(values []string) []byte {
	total := 0
	for _, s := range values {
		total += len(s)
	}

	buf := make([]byte, (len(values)+1)*4, (len(values)+1)*4+total)
	offset := uint32(0)
	for i, s := range values {
		format.ByteOrder.PutUint32(buf[i*4:], offset)
		offset += uint32(len(s))
	}
	format.ByteOrder.PutUint32(buf[len(values)*4:], offset)

	for _, s := range values {
		buf = append(buf, s...)
	}
	return buf
}

func (PlainCodec) DecodeString(buf []byte, numValues int) ([]string, error) {
	tableSize := (numValues + 1) * 4
	if len(buf) < tableSize {
		return nil, serrors.MalformedPage("plain_string",
			fmt.Sprintf("payload is %d bytes, offset table needs %d", len(buf), tableSize))
	}

	offsets := make([]uint32, numValues+1)
	for i := range offsets {
		offsets[i] = format.ByteOrder.Uint32(buf[i*4:])
	}

	payload := buf[tableSize:]
	if offsets[0] != 0 {
		return nil, serrors.MalformedPage("plain_string",
			fmt.Sprintf("first offset is %d, want 0", offsets[0]))
	}
	for i := 0; i < numValues; i++ {
		if offsets[i+1] < offsets[i] {
			return nil, serrors.MalformedPage("plain_string",
				fmt.Sprintf("offsets %d and %d are non-monotonic", i, i+1))
		}
	}
	if int(offsets[numValues]) != len(payload) {
		return nil, serrors.MalformedPage("plain_string",
			fmt.Sprintf("final offset %d does not match payload length %d",
				offsets[numValues], len(payload)))
	}

	values := make([]string, numValues)
	for i := range values {
		values[i] = string(payload[offsets[i]:offsets[i+1]])
	}
	return values, nil
}

package encoding

import (
	"fmt"

	serrors "github.com/wzqhbustb/cole/storage/errors"
	"github.com/wzqhbustb/cole/storage/format"
)

// DeltaCodec stores the first value fixed-width, then successive signed
// differences as zigzag varints:
// [base: T][num_deltas: uvarint][delta: zigzag varint]...
// Reconstruction wraps on overflow using two's-complement arithmetic.
type DeltaCodec struct{}

func NewDeltaCodec() DeltaCodec {
	return DeltaCodec{}
}

func (DeltaCodec) Type() format.EncodingType {
	return format.EncodingDelta
}

func (DeltaCodec) EncodeInt32(values []int32) []byte {
	if len(values) == 0 {
		return nil
	}

	buf := make([]byte, 4, 4+len(values)*2)
	format.ByteOrder.PutUint32(buf, uint32(values[0]))
	buf = AppendUvarint32(buf, uint32(len(values)-1))

	prev := values[0]
	for _, v := range values[1:] {
		buf = AppendVarint32(buf, v-prev)
		prev = v
	}
	return buf
}

func (DeltaCodec) DecodeInt32(buf []byte, numValues int) ([]int32, error) {
	if numValues == 0 && len(buf) == 0 {
		return nil, nil
	}
	if len(buf) < 4 {
		return nil, serrors.TruncatedInput("decode_delta_int32", 4, len(buf))
	}

	base := int32(format.ByteOrder.Uint32(buf))
	pos := 4

	numDeltas, n, err := DecodeUint32(buf[pos:])
	if err != nil {
		return nil, err
	}
	pos += n

	if int(numDeltas)+1 != numValues {
		return nil, serrors.ValueCountMismatch("delta_int32", numValues, int(numDeltas)+1)
	}

	values := make([]int32, 0, numValues)
	values = append(values, base)
	current := base
	for i := uint32(0); i < numDeltas; i++ {
		delta, n, err := DecodeInt32(buf[pos:])
		if err != nil {
			return nil, err
		}
		pos += n
		current += delta
		values = append(values, current)
	}

	if pos != len(buf) {
		return nil, serrors.MalformedPage("delta_int32",
			fmt.Sprintf("%d trailing bytes after last delta", len(buf)-pos))
	}
	return values, nil
}

func (DeltaCodec) EncodeInt64(values []int64) []byte {
	if len(values) == 0 {
		return nil
	}

	buf := make([]byte, 8, 8+len(values)*2)
	format.ByteOrder.PutUint64(buf, uint64(values[0]))
	buf = AppendUvarint32(buf, uint32(len(values)-1))

	prev := values[0]
	for _, v := range values[1:] {
		buf = AppendVarint64(buf, v-prev)
		prev = v
	}
	return buf
}

func (DeltaCodec) DecodeInt64(buf []byte, numValues int) ([]int64, error) {
	if numValues == 0 && len(buf) == 0 {
		return nil, nil
	}
	if len(buf) < 8 {
		return nil, serrors.TruncatedInput("decode_delta_int64", 8, len(buf))
	}

	base := int64(format.ByteOrder.Uint64(buf))
	pos := 8

	numDeltas, n, err := DecodeUint32(buf[pos:])
	if err != nil {
		return nil, err
	}
	pos += n

	if int(numDeltas)+1 != numValues {
		return nil, serrors.ValueCountMismatch("delta_int64", numValues, int(numDeltas)+1)
	}

	values := make([]int64, 0, numValues)
	values = append(values, base)
	current := base
	for i := uint32(0); i < numDeltas; i++ {
		delta, n, err := DecodeInt64(buf[pos:])
		if err != nil {
			return nil, err
		}
		pos += n
		current += delta
		values = append(values, current)
	}

	if pos != len(buf) {
		return nil, serrors.MalformedPage("delta_int64",
			fmt.Sprintf("%d trailing bytes after last delta", len(buf)-pos))
	}
	return values, nil
}

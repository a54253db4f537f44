package encoding

import (
	"fmt"

	serrors "github.com/wzqhbustb/cole/storage/errors"
	"github.com/wzqhbustb/cole/storage/format"
)

// RLECodec stores maximal runs of identical values as
// [num_runs: uvarint][(run_len: uvarint, value: zigzag varint)...].
// An empty vector encodes to an empty payload.
type RLECodec struct{}

func NewRLECodec() RLECodec {
	return RLECodec{}
}

func (RLECodec) Type() format.EncodingType {
	return format.EncodingRLE
}

func (RLECodec) EncodeInt32(values []int32) []byte {
	if len(values) == 0 {
		return nil
	}

	type run struct {
		length uint32
		value  int32
	}
	var runs []run

	current := values[0]
	count := uint32(1)
	for _, v := range values[1:] {
		if v == current {
			count++
		} else {
			runs = append(runs, run{count, current})
			current = v
			count = 1
		}
	}
	runs = append(runs, run{count, current})

	buf := AppendUvarint32(nil, uint32(len(runs)))
	for _, r := range runs {
		buf = AppendUvarint32(buf, r.length)
		buf = AppendVarint32(buf, r.value)
	}
	return buf
}

func (RLECodec) DecodeInt32(buf []byte, numValues int) ([]int32, error) {
	consumed, values, err := decodeRLEInt32(buf, numValues)
	if err != nil {
		return nil, err
	}
	if consumed != len(buf) {
		return nil, serrors.MalformedPage("rle_int32",
			fmt.Sprintf("%d trailing bytes after last run", len(buf)-consumed))
	}
	return values, nil
}

// decodeRLEInt32 decodes an RLE stream from the start of buf and reports
// how many bytes it consumed. The dictionary codec embeds an RLE stream
// after its entry table and needs the consumed count.
func decodeRLEInt32(buf []byte, numValues int) (int, []int32, error) {
	if numValues == 0 && len(buf) == 0 {
		return 0, nil, nil
	}

	pos := 0
	numRuns, n, err := DecodeUint32(buf[pos:])
	if err != nil {
		return 0, nil, err
	}
	pos += n

	values := make([]int32, 0, numValues)
	for i := uint32(0); i < numRuns; i++ {
		runLen, n, err := DecodeUint32(buf[pos:])
		if err != nil {
			return 0, nil, err
		}
		pos += n

		value, n, err := DecodeInt32(buf[pos:])
		if err != nil {
			return 0, nil, err
		}
		pos += n

		if runLen == 0 {
			return 0, nil, serrors.MalformedPage("rle_int32",
				fmt.Sprintf("run %d has length 0", i))
		}
		if len(values)+int(runLen) > numValues {
			return 0, nil, serrors.ValueCountMismatch("rle_int32",
				numValues, len(values)+int(runLen))
		}
		for j := uint32(0); j < runLen; j++ {
			values = append(values, value)
		}
	}

	if len(values) != numValues {
		return 0, nil, serrors.ValueCountMismatch("rle_int32", numValues, len(values))
	}
	return pos, values, nil
}

func (RLECodec) EncodeInt64(values []int64) []byte {
	if len(values) == 0 {
		return nil
	}

	type run struct {
		length uint32
		value  int64
	}
	var runs []run

	current := values[0]
	count := uint32(1)
	for _, v := range values[1:] {
		if v == current {
			count++
		} else {
			runs = append(runs, run{count, current})
			current = v
			count = 1
		}
	}
	runs = append(runs, run{count, current})

	buf := AppendUvarint32(nil, uint32(len(runs)))
	for _, r := range runs {
		buf = AppendUvarint32(buf, r.length)
		buf = AppendVarint64(buf, r.value)
	}
	return buf
}

func (RLECodec) DecodeInt64(buf []byte, numValues int) ([]int64, error) {
	if numValues == 0 && len(buf) == 0 {
		return nil, nil
	}

	pos := 0
	numRuns, n, err := DecodeUint32(buf[pos:])
	if err != nil {
		return nil, err
	}
	pos += n

	values := make([]int64, 0, numValues)
	for i := uint32(0); i < numRuns; i++ {
		runLen, n, err := DecodeUint32(buf[pos:])
		if err != nil {
			return nil, err
		}
		pos += n

		value, n, err := DecodeInt64(buf[pos:])
		if err != nil {
			return nil, err
		}
		pos += n

		if runLen == 0 {
			return nil, serrors.MalformedPage("rle_int64",
				fmt.Sprintf("run %d has length 0", i))
		}
		if len(values)+int(runLen) > numValues {
			return nil, serrors.ValueCountMismatch("rle_int64",
				numValues, len(values)+int(runLen))
		}
		for j := uint32(0); j < runLen; j++ {
			values = append(values, value)
		}
	}

	if len(values) != numValues {
		return nil, serrors.ValueCountMismatch("rle_int64", numValues, len(values))
	}
	if pos != len(buf) {
		return nil, serrors.MalformedPage("rle_int64",
			fmt.Sprintf("%d trailing bytes after last run", len(buf)-pos))
	}
	return values, nil
}

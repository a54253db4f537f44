package encoding

import (
	serrors "github.com/wzqhbustb/cole/storage/errors"
)

// Varints are little-endian sequences of 7-bit groups with a continuation
// bit in the MSB. Signed values are zigzag-mapped first so small magnitudes
// stay short. Decoders are bounded: they never read past the buffer and
// enforce the width limit (5 bytes for 32-bit, 10 for 64-bit).

const (
	// MaxVarint32Bytes is the longest encoding of a 32-bit value
	MaxVarint32Bytes = 5

	// MaxVarint64Bytes is the longest encoding of a 64-bit value
	MaxVarint64Bytes = 10
)

// AppendUvarint32 appends the varint encoding of v to dst
func AppendUvarint32(dst []byte, v uint32) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}
	return append(dst, byte(v))
}

// AppendUvarint64 appends the varint encoding of v to dst
func AppendUvarint64(dst []byte, v uint64) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}
	return append(dst, byte(v))
}

// AppendVarint32 appends the zigzag varint encoding of v to dst
func AppendVarint32(dst []byte, v int32) []byte {
	return AppendUvarint32(dst, ZigzagInt32(v))
}

// AppendVarint64 appends the zigzag varint encoding of v to dst
func AppendVarint64(dst []byte, v int64) []byte {
	return AppendUvarint64(dst, ZigzagInt64(v))
}

// EncodeUint32 returns the varint encoding of v (at most 5 bytes)
func EncodeUint32(v uint32) []byte {
	return AppendUvarint32(make([]byte, 0, MaxVarint32Bytes), v)
}

// EncodeInt32 returns the zigzag varint encoding of v (at most 5 bytes)
func EncodeInt32(v int32) []byte {
	return AppendVarint32(make([]byte, 0, MaxVarint32Bytes), v)
}

// EncodeInt64 returns the zigzag varint encoding of v (at most 10 bytes)
func EncodeInt64(v int64) []byte {
	return AppendVarint64(make([]byte, 0, MaxVarint64Bytes), v)
}

// ZigzagInt32 maps a signed value to an unsigned one
func ZigzagInt32(v int32) uint32 {
	return uint32((v << 1) ^ (v >> 31))
}

// ZigzagInt64 maps a signed value to an unsigned one
func ZigzagInt64(v int64) uint64 {
	return uint64((v << 1) ^ (v >> 63))
}

// UnzigzagInt32 reverses ZigzagInt32
func UnzigzagInt32(v uint32) int32 {
	return int32((v >> 1) ^ -(v & 1))
}

// UnzigzagInt64 reverses ZigzagInt64
func UnzigzagInt64(v uint64) int64 {
	return int64((v >> 1) ^ -(v & 1))
}

// DecodeUint32 decodes a varint from the start of buf and returns the
// value and the number of bytes consumed. Fails with TruncatedInput if a
// continuation bit is set at the end of the buffer and with VarintOverflow
// past 5 bytes.
func DecodeUint32(buf []byte) (uint32, int, error) {
	var result uint32
	var shift uint
	pos := 0

	for pos < len(buf) {
		b := buf[pos]
		pos++
		result |= uint32(b&0x7F) << shift
		if b&0x80 == 0 {
			return result, pos, nil
		}
		shift += 7
		if pos >= MaxVarint32Bytes {
			return 0, 0, serrors.VarintOverflow("decode_uvarint32", MaxVarint32Bytes)
		}
	}

	return 0, 0, serrors.TruncatedInput("decode_uvarint32", pos+1, len(buf))
}

// DecodeUint64 decodes a varint from the start of buf
func DecodeUint64(buf []byte) (uint64, int, error) {
	var result uint64
	var shift uint
	pos := 0

	for pos < len(buf) {
		b := buf[pos]
		pos++
		result |= uint64(b&0x7F) << shift
		if b&0x80 == 0 {
			return result, pos, nil
		}
		shift += 7
		if pos >= MaxVarint64Bytes {
			return 0, 0, serrors.VarintOverflow("decode_uvarint64", MaxVarint64Bytes)
		}
	}

	return 0, 0, serrors.TruncatedInput("decode_uvarint64", pos+1, len(buf))
}

// DecodeInt32 decodes a zigzag varint from the start of buf
func DecodeInt32(buf []byte) (int32, int, error) {
	v, n, err := DecodeUint32(buf)
	if err != nil {
		return 0, 0, err
	}
	return UnzigzagInt32(v), n, nil
}

// DecodeInt64 decodes a zigzag varint from the start of buf
func DecodeInt64(buf []byte) (int64, int, error) {
	v, n, err := DecodeUint64(buf)
	if err != nil {
		return 0, 0, err
	}
	return UnzigzagInt64(v), n, nil
}

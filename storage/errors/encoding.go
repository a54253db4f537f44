package errors

import "fmt"

// MalformedPage reports an inconsistency detected by a page codec
func MalformedPage(codec string, reason string) error {
	return New(ErrMalformedPage).
		Op(fmt.Sprintf("decode_%s", codec)).
		Context("codec", codec).
		Context("reason", reason).
		Build()
}

// TruncatedInput reports a decoder that hit the end of the buffer mid-value
func TruncatedInput(op string, need, have int) error {
	return New(ErrTruncatedInput).
		Op(op).
		Context("need_bytes", need).
		Context("have_bytes", have).
		Build()
}

// VarintOverflow reports a varint exceeding its width limit
func VarintOverflow(op string, maxBytes int) error {
	return New(ErrVarintOverflow).
		Op(op).
		Context("max_bytes", maxBytes).
		Build()
}

// ValueCountMismatch reports a decode that produced the wrong number of values
func ValueCountMismatch(codec string, expected, actual int) error {
	return New(ErrMalformedPage).
		Op(fmt.Sprintf("decode_%s", codec)).
		Context("codec", codec).
		Context("expected_values", expected).
		Context("actual_values", actual).
		Context("reason", "value count mismatch").
		Build()
}

// IllegalEncoding reports an encoding that is not valid for a column type
func IllegalEncoding(op string, columnType, encoding string) error {
	return New(ErrInvalidArgument).
		Op(op).
		Context("column_type", columnType).
		Context("encoding", encoding).
		Context("message", fmt.Sprintf("encoding %s is not valid for %s columns", encoding, columnType)).
		Build()
}

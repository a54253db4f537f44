package errors

import "fmt"

// FileTooSmall reports a file shorter than the fixed footer
func FileTooSmall(path string, size int64) error {
	return New(ErrFileTooSmall).
		Op("open_file").
		Path(path).
		Context("file_size", size).
		Build()
}

// InvalidHeader reports a file magic mismatch
func InvalidHeader(path string, got, want uint32) error {
	return New(ErrInvalidHeader).
		Op("validate_header").
		Path(path).
		Context("got", fmt.Sprintf("0x%08X", got)).
		Context("want", fmt.Sprintf("0x%08X", want)).
		Build()
}

// InvalidFooter reports a footer magic mismatch
func InvalidFooter(path string, got, want uint32) error {
	return New(ErrInvalidFooter).
		Op("validate_footer").
		Path(path).
		Context("got", fmt.Sprintf("0x%08X", got)).
		Context("want", fmt.Sprintf("0x%08X", want)).
		Build()
}

// BadMetadataOffset reports a metadata offset outside the file body
func BadMetadataOffset(path string, offset uint64, fileSize int64) error {
	return New(ErrBadMetadataOffset).
		Op("validate_footer").
		Path(path).
		Offset(int64(offset)).
		Context("file_size", fileSize).
		Build()
}

// CorruptMetadata reports metadata that parses but breaks an invariant
func CorruptMetadata(path string, reason string) error {
	return New(ErrCorruptMetadata).
		Op("parse_metadata").
		Path(path).
		Context("reason", reason).
		Severity(SeverityFatal).
		Build()
}

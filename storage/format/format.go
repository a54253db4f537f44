package format

import (
	"encoding/binary"
	"fmt"

	serrors "github.com/wzqhbustb/cole/storage/errors"
)

// Columnar file format constants
const (
	// FileMagic identifies a columnar file ("COLE" little-endian)
	FileMagic uint32 = 0x454C4F43

	// FooterMagic identifies the footer ("FOOT" read as a big-endian word;
	// stored little-endian, the bytes on disk spell "TOOF")
	FooterMagic uint32 = 0x464F4F54

	// VersionMajor is the current format major version
	VersionMajor uint16 = 1

	// VersionMinor is the current format minor version
	VersionMinor uint16 = 0

	// HeaderSize is the fixed size of the file header
	HeaderSize = 8

	// FooterSize is the fixed size of the footer
	FooterSize = 12
)

// ByteOrder is the byte order used throughout columnar files
var ByteOrder = binary.LittleEndian

// ColumnType identifies the value type of a column
type ColumnType uint8

const (
	TypeInt32  ColumnType = 0
	TypeInt64  ColumnType = 1
	TypeString ColumnType = 2
)

func (t ColumnType) String() string {
	switch t {
	case TypeInt32:
		return "INT32"
	case TypeInt64:
		return "INT64"
	case TypeString:
		return "STRING"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(t))
	}
}

// Valid reports whether the tag is a known column type
func (t ColumnType) Valid() bool {
	return t <= TypeString
}

// EncodingType identifies how a page payload is encoded
type EncodingType uint8

const (
	EncodingPlain      EncodingType = 0
	EncodingRLE        EncodingType = 1
	EncodingDelta      EncodingType = 2
	EncodingDictionary EncodingType = 3
)

func (e EncodingType) String() string {
	switch e {
	case EncodingPlain:
		return "PLAIN"
	case EncodingRLE:
		return "RLE"
	case EncodingDelta:
		return "DELTA"
	case EncodingDictionary:
		return "DICTIONARY"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(e))
	}
}

// Valid reports whether the tag is a known encoding
func (e EncodingType) Valid() bool {
	return e <= EncodingDictionary
}

// LegalPairing reports whether an encoding may be applied to a column type.
// Integer columns accept PLAIN, RLE and DELTA; string columns accept PLAIN
// and DICTIONARY.
func LegalPairing(t ColumnType, e EncodingType) bool {
	switch t {
	case TypeInt32, TypeInt64:
		return e == EncodingPlain || e == EncodingRLE || e == EncodingDelta
	case TypeString:
		return e == EncodingPlain || e == EncodingDictionary
	default:
		return false
	}
}

// ValidateFileMagic checks the header magic
func ValidateFileMagic(path string, magic uint32) error {
	if magic != FileMagic {
		return serrors.InvalidHeader(path, magic, FileMagic)
	}
	return nil
}

// ValidateFooterMagic checks the footer magic
func ValidateFooterMagic(path string, magic uint32) error {
	if magic != FooterMagic {
		return serrors.InvalidFooter(path, magic, FooterMagic)
	}
	return nil
}

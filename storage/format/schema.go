package format

import (
	"fmt"

	serrors "github.com/wzqhbustb/cole/storage/errors"
)

// ColumnSchema describes one column: name, value type and default encoding
type ColumnSchema struct {
	Name     string
	Type     ColumnType
	Encoding EncodingType
}

// Schema is the ordered column list of a file. Column position is the
// stable identity used in the on-disk layout.
type Schema struct {
	Columns []ColumnSchema
}

// NewSchema creates a schema from an ordered column list
func NewSchema(columns ...ColumnSchema) Schema {
	return Schema{Columns: columns}
}

// NumColumns returns the column count
func (s Schema) NumColumns() int {
	return len(s.Columns)
}

// ColumnIndex returns the position of the named column, -1 when absent.
// Lookup is linear; schemas are small.
func (s Schema) ColumnIndex(name string) int {
	for i, col := range s.Columns {
		if col.Name == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the schema contains the named column
func (s Schema) HasColumn(name string) bool {
	return s.ColumnIndex(name) >= 0
}

// ColumnNames returns the names in schema order
func (s Schema) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, col := range s.Columns {
		names[i] = col.Name
	}
	return names
}

// Validate checks column names are non-empty and unique (case-sensitive)
// and that every column's encoding is legal for its type.
func (s Schema) Validate() error {
	if len(s.Columns) == 0 {
		return serrors.InvalidArg("validate_schema", "schema has no columns")
	}

	seen := make(map[string]struct{}, len(s.Columns))
	for i, col := range s.Columns {
		if col.Name == "" {
			return serrors.InvalidArg("validate_schema",
				fmt.Sprintf("column %d has an empty name", i))
		}
		if _, dup := seen[col.Name]; dup {
			return serrors.InvalidArg("validate_schema",
				fmt.Sprintf("duplicate column name %q", col.Name))
		}
		seen[col.Name] = struct{}{}

		if !col.Type.Valid() {
			return serrors.InvalidArg("validate_schema",
				fmt.Sprintf("column %q has unknown type %d", col.Name, uint8(col.Type)))
		}
		if !LegalPairing(col.Type, col.Encoding) {
			return serrors.IllegalEncoding("validate_schema",
				col.Type.String(), col.Encoding.String())
		}
	}

	return nil
}

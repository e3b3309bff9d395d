package dataset

import (
	"fmt"
	"strings"
)

// NotFoundError indicates a required input file is absent.
type NotFoundError struct {
	Path string
	Err  error
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("source not found: %s", e.Path)
}

func (e NotFoundError) Unwrap() error {
	return e.Err
}

// SchemaError indicates the input is missing required columns.
type SchemaError struct {
	File    string
	Columns []string
}

func (e SchemaError) Error() string {
	return fmt.Sprintf("schema error in %s: missing required columns: %s", e.File, strings.Join(e.Columns, ", "))
}

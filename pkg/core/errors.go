package core

import (
	"errors"
	"fmt"
)

// ErrNoStructure is returned when an operation needs a current structure and none is selected.
var ErrNoStructure = errors.New("no table or view selected")

// EngineError wraps a failure reported by the SQL engine.
type EngineError struct {
	Op  string
	SQL string
	Err error
}

func (e *EngineError) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *EngineError) Unwrap() error { return e.Err }

// NewEngineError wraps err unless it is nil or already an EngineError.
func NewEngineError(op, sql string, err error) error {
	if err == nil {
		return nil
	}
	var ee *EngineError
	if errors.As(err, &ee) {
		return err
	}
	return &EngineError{Op: op, SQL: sql, Err: err}
}

// SchemaNotFoundError is returned when introspection finds no columns for a name.
type SchemaNotFoundError struct {
	Name string
}

func (e *SchemaNotFoundError) Error() string {
	return fmt.Sprintf("table or view %q not found", e.Name)
}

// IsSchemaNotFound reports whether err is or wraps a SchemaNotFoundError.
func IsSchemaNotFound(err error) bool {
	var nf *SchemaNotFoundError
	return errors.As(err, &nf)
}

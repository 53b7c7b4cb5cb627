package formatting

import "errors"

// Common errors returned by the formatting package.
var (
	// ErrOutOfRange is returned when a resolved row address falls outside
	// the table's row range.
	ErrOutOfRange = errors.New("row index out of range")

	// ErrColumnNotFound is returned when a column name is not present in
	// the table schema.
	ErrColumnNotFound = errors.New("column not found")

	// ErrInvalidKey is returned when a selector is not one of the
	// supported key shapes.
	ErrInvalidKey = errors.New("invalid key type")

	// ErrBackendConstruction is returned when a backend rejects the
	// requested dtype or shape during formatting.
	ErrBackendConstruction = errors.New("backend construction failed")

	// ErrUnknownFormatter is returned when a formatter name is not
	// registered.
	ErrUnknownFormatter = errors.New("unknown formatter")
)

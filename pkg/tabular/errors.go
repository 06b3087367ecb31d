package tabular

import "errors"

var (
	// ErrNilRow indicates an insert or update was attempted with no data.
	ErrNilRow = errors.New("tabular.nil_row")

	// ErrEmptyTable indicates the table name was empty.
	ErrEmptyTable = errors.New("tabular.empty_table")

	// ErrUnsupportedOp indicates a predicate used an operator the store
	// does not understand.
	ErrUnsupportedOp = errors.New("tabular.unsupported_op")

	// ErrIncomparable indicates an ordered predicate compared values of
	// incompatible types.
	ErrIncomparable = errors.New("tabular.incomparable_values")
)

// Package errs collects the engine's closed error taxonomy as sentinel
// values, wrapped with fmt.Errorf at each call site so callers can match on
// the sentinel via errors.Is while still getting a contextual message.
package errs

import "errors"

var (
	// ErrExceedingBounds: positional access out of range.
	ErrExceedingBounds = errors.New("index exceeds bounds")
	// ErrNoField: column resolution failed against a schema.
	ErrNoField = errors.New("field not found in schema")
	// ErrDifferentSizes: binary kernel length mismatch.
	ErrDifferentSizes = errors.New("arrays have different sizes")
	// ErrPhysicalExpressionNotSupported: unlowerable logical expression.
	ErrPhysicalExpressionNotSupported = errors.New("physical expression not supported")
	// ErrPhysicalPlanNotSupported: reserved for future plan variants.
	ErrPhysicalPlanNotSupported = errors.New("physical plan not supported")
	// ErrPhysicalTypeNotSupported: kernel cannot handle a physical type.
	ErrPhysicalTypeNotSupported = errors.New("physical type not supported")
	// ErrPrimitiveTypeNotSupported: kernel cannot handle a primitive type combination.
	ErrPrimitiveTypeNotSupported = errors.New("primitive type not supported")
	// ErrMissingChildren: malformed logical plan tree.
	ErrMissingChildren = errors.New("logical plan is missing children")
	// ErrMissingInput: malformed physical plan tree.
	ErrMissingInput = errors.New("physical plan is missing its input")
	// ErrEmptyHashmapForAggregate: reserved; this engine emits an empty batch
	// instead (see AggregateExec), but the sentinel is kept for hosts that
	// want to detect the zero-group case explicitly via errors.Is.
	ErrEmptyHashmapForAggregate = errors.New("aggregate hashmap is empty")
	// ErrDowncast: invariant violation inside a kernel.
	ErrDowncast = errors.New("could not downcast array to expected physical type")
	// ErrScalarToArray: scalar broadcast failed.
	ErrScalarToArray = errors.New("could not convert scalar to array")
	// ErrNoBooleanArrayForFilter: Selection predicate did not yield Bool.
	ErrNoBooleanArrayForFilter = errors.New("filter expression did not evaluate to a boolean array")
	// ErrIO: I/O failure surfaced from a data source.
	ErrIO = errors.New("io error")
	// ErrDataSource: data-source specific failure (e.g. malformed file).
	ErrDataSource = errors.New("data source error")
)

package patch

import "errors"

// Common errors.
var (
	// ErrShapeMismatch reports incompatible patch, valid, array or restore shapes,
	// or a patch count that does not match the coordinate count.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrOutOfBounds reports a crop whose span leaves the array. Generators
	// guarantee in-bounds centers, so this is carried by a panic.
	ErrOutOfBounds = errors.New("patch out of bounds")

	// ErrInvalidWeights reports a weight map with negative or non-finite values.
	ErrInvalidWeights = errors.New("invalid weight map")

	// ErrInvalidCount reports a request for fewer than one coordinate.
	ErrInvalidCount = errors.New("invalid coordinate count")
)

package tubed

import "errors"

var (
	// ErrMalformedInput indicates that a source mesh had no usable
	// vertices or faces after welding.
	ErrMalformedInput = errors.New("malformed input mesh")

	// ErrInsufficientGeometry indicates that a mesh has too few faces or
	// dual edges for the requested operation.
	ErrInsufficientGeometry = errors.New("insufficient geometry")
)

package domain

import "errors"

// ErrNodeNotFound is returned when an operation references a node that does not exist.
var ErrNodeNotFound = errors.New("node not found")

// ErrEdgeNotFound is returned when an operation references an edge that does not exist.
var ErrEdgeNotFound = errors.New("edge not found")

// ErrSelfLoop is returned when an edge would connect a node to itself.
var ErrSelfLoop = errors.New("cannot connect a node to itself")

// ErrPortDirection is returned when an edge does not go from an output port to an input port.
var ErrPortDirection = errors.New("connections must go from an output port to an input port")

// ErrUnknownPort is returned when a port id is not part of the node's port set.
var ErrUnknownPort = errors.New("unknown port")

// ErrInvalidKind is returned when a node kind is not one of the supported variants.
var ErrInvalidKind = errors.New("invalid node kind")

// ErrKeyNotFound is returned by stores when a key holds no value.
var ErrKeyNotFound = errors.New("key not found")

// ErrQuotaExceeded is returned by stores when a write does not fit in the available space.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// ErrCorruptSnapshot is returned when a stored snapshot cannot be decoded.
var ErrCorruptSnapshot = errors.New("corrupt snapshot")

// IsValidationRejection reports whether err is one of the edge/port validation errors
// that should be surfaced as a rejection notice rather than a failure.
func IsValidationRejection(err error) bool {
	return errors.Is(err, ErrSelfLoop) ||
		errors.Is(err, ErrPortDirection) ||
		errors.Is(err, ErrUnknownPort)
}

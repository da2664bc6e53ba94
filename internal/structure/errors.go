package structure

import "errors"

var (
	// ErrInvalidTopology indicates bad connectivity or degenerate geometry.
	ErrInvalidTopology = errors.New("structure: invalid topology")

	// ErrInvalidMaterial indicates a negative or non-finite area/modulus.
	ErrInvalidMaterial = errors.New("structure: invalid material")

	// ErrInvalidKind indicates an element kind other than strut or cable.
	ErrInvalidKind = errors.New("structure: invalid element kind")
)

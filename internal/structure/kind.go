package structure

import (
	"fmt"
	"math"
	"strings"
)

// Kind declares whether an element is meant to work as a strut or a cable.
type Kind int8

const (
	Strut Kind = -1
	Cable Kind = 1
)

// Indices into the (compression, tension) material pairs.
const (
	Compression = 0
	Tension     = 1
)

const (
	// DefaultSlackFlexibility is returned by Flexibility for elements with
	// no axial stiffness.
	DefaultSlackFlexibility = 1e6

	stiffnessEpsilon = 1e-9
)

func (k Kind) String() string {
	switch k {
	case Strut:
		return "strut"
	case Cable:
		return "cable"
	default:
		return fmt.Sprintf("kind(%d)", int8(k))
	}
}

func (k Kind) Valid() bool { return k == Strut || k == Cable }

// ParseKind accepts "strut"/"cable" as well as the numeric "-1"/"1" encoding.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "strut", "-1":
		return Strut, nil
	case "cable", "1", "+1":
		return Cable, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidKind, s)
}

func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidKind, int8(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ActiveProperties returns the (area, modulus) pair an element works with,
// given the tension it carried at the previous step.
func ActiveProperties(tension float64, kind Kind, area, modulus [2]float64) (float64, float64) {
	side := Tension
	switch {
	case tension > 0:
		side = Tension
	case tension < 0:
		side = Compression
	case kind == Strut:
		side = Compression
	}
	return area[side], modulus[side]
}

// Flexibility is freeLength/(area*modulus). Elements without stiffness get
// the slack sentinel, so the result is always finite and positive.
func Flexibility(freeLength, area, modulus, slack float64) float64 {
	ea := area * modulus
	if math.Abs(ea) < stiffnessEpsilon || math.IsNaN(ea) || math.IsInf(ea, 0) {
		return slack
	}
	f := math.Abs(freeLength) / math.Abs(ea)
	if f <= 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return slack
	}
	return f
}

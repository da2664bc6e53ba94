package relax

import (
	"fmt"
	"math"

	"github.com/san-kum/tensegrity/internal/structure"
)

const (
	DefaultDt                     = 0.01
	DefaultMassAmplification      = 1.0
	DefaultMinMass                = 0.005
	DefaultHugeMass               = 1e15
	DefaultMaxTimeSteps           = 10000
	DefaultMaxKineticEnergyResets = 1000
	DefaultAbsTolerance           = 1e-4
	DefaultRelTolerance           = 1e-6
)

// Config controls a relaxation run.
type Config struct {
	Dt                float64
	MassAmplification float64
	// MinMass is the floor applied to the mass of free DOFs.
	MinMass float64
	// HugeMass is given to supported DOFs so they never move.
	HugeMass float64
	// SlackFlexibility is used for elements whose active EA vanishes.
	SlackFlexibility float64

	MaxTimeSteps           int
	MaxKineticEnergyResets int

	// The structure is in equilibrium when the residual norm over free DOFs
	// is at most max(AbsTolerance, RelTolerance*|load|).
	AbsTolerance float64
	RelTolerance float64

	// Workers used for matrix assembly within one run.
	Workers int
}

func DefaultConfig() Config {
	return Config{
		Dt:                     DefaultDt,
		MassAmplification:      DefaultMassAmplification,
		MinMass:                DefaultMinMass,
		HugeMass:               DefaultHugeMass,
		SlackFlexibility:       structure.DefaultSlackFlexibility,
		MaxTimeSteps:           DefaultMaxTimeSteps,
		MaxKineticEnergyResets: DefaultMaxKineticEnergyResets,
		AbsTolerance:           DefaultAbsTolerance,
		RelTolerance:           DefaultRelTolerance,
		Workers:                1,
	}
}

// Validate rejects values the relaxation cannot work with. Nothing is
// replaced silently.
func (c Config) Validate() error {
	positive := []struct {
		name string
		v    float64
	}{
		{"dt", c.Dt},
		{"mass amplification", c.MassAmplification},
		{"min mass", c.MinMass},
		{"huge mass", c.HugeMass},
		{"slack flexibility", c.SlackFlexibility},
	}
	for _, p := range positive {
		if !(p.v > 0) || math.IsInf(p.v, 0) {
			return fmt.Errorf("%w: %s must be positive and finite, got %g", ErrInvalidConfig, p.name, p.v)
		}
	}

	nonNegative := []struct {
		name string
		v    float64
	}{
		{"absolute tolerance", c.AbsTolerance},
		{"relative tolerance", c.RelTolerance},
	}
	for _, p := range nonNegative {
		if !(p.v >= 0) || math.IsInf(p.v, 0) {
			return fmt.Errorf("%w: %s must be non-negative, got %g", ErrInvalidConfig, p.name, p.v)
		}
	}

	if c.MaxTimeSteps <= 0 {
		return fmt.Errorf("%w: max time steps must be positive, got %d", ErrInvalidConfig, c.MaxTimeSteps)
	}
	if c.MaxKineticEnergyResets <= 0 {
		return fmt.Errorf("%w: max kinetic energy resets must be positive, got %d", ErrInvalidConfig, c.MaxKineticEnergyResets)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalidConfig, c.Workers)
	}
	return nil
}

package structure

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActiveProperties(t *testing.T) {
	area := [2]float64{1, 2}
	modulus := [2]float64{10, 20}

	tests := []struct {
		name    string
		tension float64
		kind    Kind
		wantA   float64
		wantE   float64
	}{
		{"tension cable", 5, Cable, 2, 20},
		{"tension strut", 5, Strut, 2, 20},
		{"compression cable", -5, Cable, 1, 10},
		{"compression strut", -5, Strut, 1, 10},
		{"zero cable", 0, Cable, 2, 20},
		{"zero strut", 0, Strut, 1, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, e := ActiveProperties(tt.tension, tt.kind, area, modulus)
			assert.Equal(t, tt.wantA, a)
			assert.Equal(t, tt.wantE, e)
		})
	}
}

func TestFlexibilityAlwaysFinitePositive(t *testing.T) {
	lengths := []float64{0, 1e-3, 1, 100}
	values := []float64{0, 1e-20, 1, 7e10}

	for _, l := range lengths {
		for _, a := range values {
			for _, e := range values {
				f := Flexibility(l, a, e, DefaultSlackFlexibility)
				assert.Greater(t, f, 0.0, "l=%g a=%g e=%g", l, a, e)
				assert.False(t, math.IsInf(f, 0) || math.IsNaN(f), "l=%g a=%g e=%g", l, a, e)
			}
		}
	}
}

func TestFlexibilitySlack(t *testing.T) {
	assert.Equal(t, DefaultSlackFlexibility, Flexibility(2, 5e-5, 0, DefaultSlackFlexibility))
	assert.Equal(t, 42.0, Flexibility(2, 0, 7e10, 42))
	assert.InDelta(t, 2/(5e-5*7e10), Flexibility(2, 5e-5, 7e10, DefaultSlackFlexibility), 1e-18)
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{"strut": Strut, "-1": Strut, "Cable": Cable, "1": Cable, " +1 ": Cable} {
		got, err := ParseKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseKind("beam")
	assert.ErrorIs(t, err, ErrInvalidKind)
}

func TestKindText(t *testing.T) {
	b, err := Strut.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "strut", string(b))

	var k Kind
	require.NoError(t, k.UnmarshalText([]byte("cable")))
	assert.Equal(t, Cable, k)

	_, err = Kind(3).MarshalText()
	assert.ErrorIs(t, err, ErrInvalidKind)
}

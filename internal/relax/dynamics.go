package relax

import (
	"math"

	"github.com/san-kum/tensegrity/internal/assembly"
	"github.com/san-kum/tensegrity/internal/structure"
)

// relaxation holds what one run needs besides its current state.
type relaxation struct {
	cfg       Config
	assembler *assembly.Assembler
	free      []bool
}

// initial evaluates the start state and primes the half-step velocity.
func (r *relaxation) initial(base *structure.State) *State {
	st := newState(base.Clone())
	r.evaluate(st)
	r.restartVelocity(st)
	return st
}

// evaluate updates tensions from the geometry of st, then resisting
// forces, reactions, residual and masses.
func (r *relaxation) evaluate(st *State) {
	flex := st.UpdateTensions(r.cfg.SlackFlexibility)
	sys := r.assembler.Assemble(st.State, flex)

	resisting := sys.Resisting(st.Tension)
	diag := sys.StiffnessDiagonal()
	scale := 2 * r.cfg.Dt * r.cfg.Dt * r.cfg.MassAmplification

	for i, free := range r.free {
		st.Resisting[i] = resisting[i]
		if free {
			st.Reaction[i] = 0
			st.Residual[i] = st.Load[i] - resisting[i]
			st.Mass[i] = math.Max(scale*diag[i], r.cfg.MinMass)
			continue
		}
		// support force balancing the load: residual vanishes on fixed DOFs
		st.Reaction[i] = resisting[i] - st.Load[i]
		st.Residual[i] = 0
		st.Mass[i] = r.cfg.HugeMass
	}
}

// restartVelocity sets the half-step velocity dt/2·R/m and zeroes the
// kinetic energy.
func (r *relaxation) restartVelocity(st *State) {
	half := r.cfg.Dt / 2
	for i, free := range r.free {
		if free {
			st.Velocity[i] = half * st.Residual[i] / st.Mass[i]
		} else {
			st.Velocity[i] = 0
		}
	}
	st.KineticEnergy = 0
	st.restart = true
}

// step advances cur by one time step and returns the new state.
func (r *relaxation) step(cur *State) *State {
	dt := r.cfg.Dt
	next := cur.Clone()
	ke := 0.0

	for i, free := range r.free {
		if !free {
			next.Velocity[i] = 0
			continue
		}
		v := cur.Velocity[i]
		if !cur.restart {
			v += dt * cur.Residual[i] / cur.Mass[i]
		}
		next.Velocity[i] = v
		next.Displacement[i] += dt * v
		ke += 0.5 * cur.Mass[i] * v * v
	}

	next.KineticEnergy = ke
	next.Time = cur.Time + dt
	next.restart = false
	r.evaluate(next)
	return next
}

// peak extrapolates the kinetic-energy peak crossed between cur and next
// and restarts the motion from there.
func (r *relaxation) peak(cur, next *State) *State {
	dt := r.cfg.Dt
	p := next.Clone()

	for i, free := range r.free {
		if !free {
			continue
		}
		prev := cur.Velocity[i]
		if cur.restart {
			prev = 0
		}
		dv := next.Velocity[i] - prev
		p.Displacement[i] = next.Displacement[i] - 1.5*dt*next.Velocity[i] + 0.5*dt*dv
	}

	r.evaluate(p)
	r.restartVelocity(p)
	return p
}

func (r *relaxation) residualNorm(st *State) float64 {
	return maskedNorm(st.Residual, r.free)
}

func (r *relaxation) inEquilibrium(st *State) bool {
	tol := math.Max(r.cfg.AbsTolerance, r.cfg.RelTolerance*maskedNorm(st.Load, r.free))
	return r.residualNorm(st) <= tol
}

package relax_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/tensegrity/internal/relax"
	"github.com/san-kum/tensegrity/internal/structure"
)

var _ = Describe("Dynamic relaxation", func() {
	var (
		ctx    context.Context
		solver *relax.Solver
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		solver, err = relax.New(relax.DefaultConfig())
		Expect(err).NotTo(HaveOccurred())
	})

	solve := func(s *structure.Structure, loads, shortening []float64) *relax.Result {
		start, err := relax.FromStructure(s, loads, shortening)
		Expect(err).NotTo(HaveOccurred())
		res, err := solver.Run(ctx, start)
		Expect(err).NotTo(HaveOccurred())
		return res
	}

	Describe("two cables with mid-span prestress", func() {
		var res *relax.Result

		BeforeEach(func() {
			res = solve(twoCables(), nil, []float64{-0.007984, 0})
		})

		It("reaches equilibrium", func() {
			Expect(res.InEquilibrium).To(BeTrue())
			Expect(res.TimeSteps).To(BeNumerically(">", 0))
			Expect(res.KineticEnergyResets).To(BeNumerically(">", 0))
		})

		It("tensions both cables equally", func() {
			Expect(res.Final.Tension[0]).To(BeNumerically("~", 7037.17, 0.1))
			Expect(res.Final.Tension[1]).To(BeNumerically("~", 7037.17, 0.1))
		})

		It("moves the middle node towards the shortened cable", func() {
			Expect(res.Final.Displacement[structure.DOF(1, 0)]).To(BeNumerically("~", -0.004, 1e-5))
			Expect(res.Final.Displacement[structure.DOF(1, 2)]).To(BeNumerically("~", 0, 1e-12))
		})

		It("reports the support reactions", func() {
			Expect(res.Final.Reaction[structure.DOF(0, 0)]).To(BeNumerically("~", -7037.17, 0.1))
			Expect(res.Final.Reaction[structure.DOF(2, 0)]).To(BeNumerically("~", 7037.17, 0.1))
		})

		It("terminates immediately when relaxed again without increments", func() {
			start, err := res.Continue(nil, nil)
			Expect(err).NotTo(HaveOccurred())

			again, err := solver.Run(ctx, start)
			Expect(err).NotTo(HaveOccurred())
			Expect(again.InEquilibrium).To(BeTrue())
			Expect(again.TimeSteps).To(BeNumerically("<=", 1))
			Expect(again.Final.Tension[0]).To(BeNumerically("~", res.Final.Tension[0], 1e-3))
			Expect(again.Final.Positions()).To(Equal(res.Final.Positions()))
		})
	})

	Describe("Y-shaped three cable structure", func() {
		var res *relax.Result

		BeforeEach(func() {
			res = solve(yCables(r3.Vec{X: 2}, modulus), nil, []float64{-0.126775, 0, 0})
		})

		It("lifts the apex", func() {
			Expect(res.InEquilibrium).To(BeTrue())
			apex := res.Final.Position(3)
			Expect(apex.Z).To(BeNumerically("~", 0.126554, 1e-6))
			Expect(apex.X).To(BeNumerically("~", 2, 1e-9))
		})

		It("finds the expected tensions", func() {
			Expect(res.Final.Tension[0]).To(BeNumerically("~", 888.81, 0.1))
			Expect(res.Final.Tension[1]).To(BeNumerically("~", 7037.17, 0.1))
			Expect(res.Final.Tension[2]).To(BeNumerically("~", 7037.17, 0.1))
		})

		It("keeps symmetric elements equal", func() {
			Expect(res.Final.Tension[1]).To(BeNumerically("~", res.Final.Tension[2], 1e-6))
		})
	})

	Describe("slack cable", func() {
		var res *relax.Result

		BeforeEach(func() {
			// the sides pull the apex up into the tension-only top cable
			res = solve(yCables(r3.Vec{X: 2, Z: -0.1}, 0), nil, []float64{0, -0.004, -0.004})
		})

		It("drops the compressed cable out", func() {
			Expect(res.InEquilibrium).To(BeTrue())
			Expect(res.Final.Tension[0]).To(BeNumerically("~", 0, 1e-3))
			Expect(res.Final.Position(3).Z).To(BeNumerically("~", 0, 1e-6))
		})

		It("shares the prestress between the remaining cables", func() {
			l0 := math.Sqrt(4.01) - 0.004
			want := area * modulus * (2 - l0) / l0
			Expect(res.Final.Tension[1]).To(BeNumerically("~", want, 1e-2))
			Expect(res.Final.Tension[2]).To(BeNumerically("~", res.Final.Tension[1], 1e-6))
		})
	})

	Describe("invariants along the run", func() {
		It("moves only free DOFs and reacts only on supports", func() {
			s := yCables(r3.Vec{X: 2}, modulus)
			free := s.FreeMask()
			violations := 0

			solver.AddObserver(relax.ObserverFunc(func(ev relax.StepEvent) {
				st := ev.State
				for i, f := range free {
					if f && st.Reaction[i] != 0 {
						violations++
					}
					if !f && (st.Velocity[i] != 0 || st.Displacement[i] != 0 || st.Residual[i] != 0) {
						violations++
					}
				}
				for e := range st.Tension {
					flex := st.Flexibility(e, structure.DefaultSlackFlexibility)
					if !(flex > 0) || math.IsInf(flex, 0) {
						violations++
					}
				}
			}))

			res := solve(s, []float64{0, 0, 0, 0, 0, 0, 0, 0, 0, 50, 0, -200}, []float64{-0.1, 0, 0})
			Expect(res.InEquilibrium).To(BeTrue())
			Expect(violations).To(BeZero())
		})
	})

	Describe("iteration caps", func() {
		It("returns a non-equilibrium result instead of failing", func() {
			cfg := relax.DefaultConfig()
			cfg.MaxTimeSteps = 5
			capped, err := relax.New(cfg)
			Expect(err).NotTo(HaveOccurred())

			start, err := relax.FromStructure(twoCables(), nil, []float64{-0.007984, 0})
			Expect(err).NotTo(HaveOccurred())

			res, err := capped.Run(ctx, start)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.InEquilibrium).To(BeFalse())
			Expect(res.TimeSteps).To(Equal(5))
			Expect(res.Final).NotTo(BeNil())
		})

		It("stops after the kinetic energy reset budget", func() {
			cfg := relax.DefaultConfig()
			cfg.MaxKineticEnergyResets = 2
			capped, err := relax.New(cfg)
			Expect(err).NotTo(HaveOccurred())

			start, err := relax.FromStructure(twoCables(), nil, []float64{-0.007984, 0})
			Expect(err).NotTo(HaveOccurred())

			res, err := capped.Run(ctx, start)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.InEquilibrium).To(BeFalse())
			Expect(res.KineticEnergyResets).To(Equal(2))
		})
	})
})

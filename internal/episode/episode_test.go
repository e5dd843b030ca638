package episode_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/cruisectl/internal/acc"
	"github.com/san-kum/cruisectl/internal/episode"
	"github.com/san-kum/cruisectl/internal/integrators"
	"github.com/san-kum/cruisectl/internal/sim"
)

// scripted completes after len(gaps)-1 steps, replaying one gap per tick.
type scripted struct {
	gaps     []acc.Gap
	tick     int
	commands []float64
	err      error
}

func (s *scripted) obs() acc.Observation {
	return acc.Observation{EgoVelocity: 20, Lead: s.gaps[s.tick], DesiredSpeed: 25}
}

func (s *scripted) Reset() acc.Observation { s.tick = 0; return s.obs() }
func (s *scripted) Step(a float64) acc.Observation {
	s.commands = append(s.commands, a)
	s.tick++
	return s.obs()
}
func (s *scripted) Completed() bool       { return s.tick >= len(s.gaps)-1 }
func (s *scripted) LeadVelocity() float64 { return 22 }
func (s *scripted) Dt() float64           { return 0.1 }
func (s *scripted) Err() error            { return s.err }

type constant float64

func (c constant) Step(acc.Observation) float64 { return float64(c) }

type recorder struct {
	ticks    []episode.Tick
	finished *episode.Trace
	failAt   int
}

func (r *recorder) OnTick(t episode.Tick) error {
	if r.failAt > 0 && t.Index == r.failAt {
		return errors.New("sink full")
	}
	r.ticks = append(r.ticks, t)
	return nil
}

func (r *recorder) Finish(tr *episode.Trace) error {
	r.finished = tr
	return nil
}

var _ = Describe("Run", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Context("against the lane simulator", func() {
		var world *sim.World

		BeforeEach(func() {
			var err error
			world, err = sim.New(sim.DefaultConfig(), integrators.NewEuler())
			Expect(err).NotTo(HaveOccurred())
			world.SetSpawnPoints(sim.Vehicle{Position: 0, Velocity: 20}, sim.Vehicle{Position: 100, Velocity: 22})
		})

		It("records one row per tick plus the initial observation", func() {
			world.SetLeadActions([]float64{0, 0, 0})
			tr, err := episode.Run(ctx, world, acc.New(25, 30))

			Expect(err).NotTo(HaveOccurred())
			Expect(tr.Rows).To(HaveLen(4))
			Expect(tr.Commands).To(HaveLen(3))
			Expect(tr.Dt).To(Equal(0.1))
			Expect(tr.Duration()).To(BeNumerically("~", 0.3, 1e-9))

			first := tr.Rows[0]
			Expect(first.EgoVelocity).To(Equal(20.0))
			Expect(first.TargetSpeed).To(Equal(25.0))
			Expect(first.LeadVelocity).To(Equal(22.0))
			gap, ok := first.DistanceToLead.Distance()
			Expect(ok).To(BeTrue())
			Expect(gap).To(BeNumerically("~", 96, 1e-9))
		})

		It("always takes at least one tick", func() {
			world.SetLeadActions(nil)
			tr, err := episode.Run(ctx, world, acc.New(25, 30))

			Expect(err).NotTo(HaveOccurred())
			Expect(tr.Rows).To(HaveLen(2))
		})

		It("keeps every command within the actuator limits", func() {
			world.SetLeadActions(make([]float64, 200))
			tr, err := episode.Run(ctx, world, acc.New(25, 30))

			Expect(err).NotTo(HaveOccurred())
			for _, a := range tr.Commands {
				Expect(a).To(BeNumerically(">=", acc.DefaultMaxDeceleration))
				Expect(a).To(BeNumerically("<=", acc.DefaultMaxAcceleration))
			}
		})

		It("stops on collision", func() {
			world.SetSpawnPoints(sim.Vehicle{Position: 0, Velocity: 30}, sim.Vehicle{Position: 10, Velocity: 0})
			world.SetLeadActions(make([]float64, 100))
			tr, err := episode.Run(ctx, world, constant(0))

			Expect(err).NotTo(HaveOccurred())
			Expect(world.Collided()).To(BeTrue())
			Expect(tr.Rows).To(HaveLen(3))
		})
	})

	Context("with observers", func() {
		var world *scripted

		BeforeEach(func() {
			world = &scripted{gaps: []acc.Gap{acc.LeadAt(200), acc.LeadAt(199), acc.NoLead()}}
		})

		It("delivers one tick per row and the trace at the end", func() {
			rec := &recorder{}
			tr, err := episode.Run(ctx, world, constant(1.5), rec)

			Expect(err).NotTo(HaveOccurred())
			Expect(rec.ticks).To(HaveLen(len(tr.Rows)))
			Expect(rec.finished).To(BeIdenticalTo(tr))

			for i, t := range rec.ticks[:len(rec.ticks)-1] {
				Expect(t.Index).To(Equal(i))
				Expect(t.Applied).To(BeTrue())
				Expect(t.Command).To(Equal(1.5))
				Expect(t.Row).To(Equal(tr.Rows[i]))
			}

			last := rec.ticks[len(rec.ticks)-1]
			Expect(last.Applied).To(BeFalse())
			Expect(last.Row.DistanceToLead.Present()).To(BeFalse())
			Expect(world.commands).To(Equal([]float64{1.5, 1.5}))
		})

		It("passes decisions through when the controller reports them", func() {
			rec := &recorder{}
			_, err := episode.Run(ctx, world, acc.New(25, 30), rec)

			Expect(err).NotTo(HaveOccurred())
			Expect(rec.ticks[0].Decision).NotTo(BeNil())
			Expect(rec.ticks[0].Decision.Zone).To(Equal(acc.ZoneClear))
			Expect(rec.ticks[0].Command).To(Equal(rec.ticks[0].Decision.Acceleration))
			Expect(rec.ticks[len(rec.ticks)-1].Decision).To(BeNil())
		})

		It("aborts when an observer fails", func() {
			tr, err := episode.Run(ctx, world, constant(0), &recorder{failAt: 1})

			Expect(tr).To(BeNil())
			var tickErr *episode.TickError
			Expect(errors.As(err, &tickErr)).To(BeTrue())
			Expect(tickErr.Index).To(Equal(1))
		})
	})

	It("returns no trace when the context is cancelled", func() {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		world := &scripted{gaps: []acc.Gap{acc.LeadAt(50), acc.LeadAt(50)}}
		tr, err := episode.Run(cancelled, world, constant(0))

		Expect(tr).To(BeNil())
		Expect(err).To(MatchError(context.Canceled))
		Expect(world.commands).To(BeEmpty())
	})

	It("surfaces world faults", func() {
		world := &scripted{gaps: []acc.Gap{acc.LeadAt(50), acc.LeadAt(50), acc.LeadAt(50)}}
		world.err = errors.New("integrator diverged")

		_, err := episode.Run(ctx, world, constant(0))
		Expect(err).To(MatchError(ContainSubstring("integrator diverged")))
	})

	It("enforces the tick limit", func() {
		world := &scripted{gaps: make([]acc.Gap, 10)}
		d := episode.Driver{MaxTicks: 3}

		_, err := d.Run(ctx, world, constant(0))
		Expect(err).To(MatchError(episode.ErrTickLimit))
	})

	It("rejects nil collaborators", func() {
		_, err := episode.Run(ctx, nil, constant(0))
		Expect(err).To(MatchError(episode.ErrNilWorld))

		_, err = episode.Run(ctx, &scripted{gaps: []acc.Gap{acc.NoLead()}}, nil)
		Expect(err).To(MatchError(episode.ErrNilController))
	})
})

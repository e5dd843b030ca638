// Package metrics scores finished or running episodes.
package metrics

import (
	"sort"

	"github.com/san-kum/cruisectl/internal/episode"
)

type Metric interface {
	Name() string
	Observe(t episode.Tick)
	Value() float64
	Reset()
}

// Set feeds every tick to its metrics. It is an episode.Observer.
type Set struct {
	metrics []Metric
}

func NewSet(ms ...Metric) *Set {
	return &Set{metrics: ms}
}

// Standard is the metric set reported for every episode.
func Standard(distanceThreshold float64) *Set {
	return NewSet(
		NewMinGap(),
		NewThresholdViolations(distanceThreshold),
		NewSpeedRMSE(),
		NewControlEffort(),
		NewMaxJerk(),
		NewCollision(),
	)
}

func (s *Set) OnTick(t episode.Tick) error {
	for _, m := range s.metrics {
		m.Observe(t)
	}
	return nil
}

func (s *Set) Reset() {
	for _, m := range s.metrics {
		m.Reset()
	}
}

func (s *Set) Values() map[string]float64 {
	out := make(map[string]float64, len(s.metrics))
	for _, m := range s.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

func (s *Set) Names() []string {
	names := make([]string, len(s.metrics))
	for i, m := range s.metrics {
		names[i] = m.Name()
	}
	sort.Strings(names)
	return names
}

// Evaluate replays a recorded trace through the set after resetting it.
func (s *Set) Evaluate(tr *episode.Trace) map[string]float64 {
	s.Reset()
	for i, row := range tr.Rows {
		t := episode.Tick{Index: i, Time: tr.Time(i), Row: row}
		if i < len(tr.Commands) {
			t.Command = tr.Commands[i]
			t.Applied = true
		}
		s.OnTick(t)
	}
	return s.Values()
}

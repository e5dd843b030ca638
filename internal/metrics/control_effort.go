package metrics

import (
	"math"

	"github.com/san-kum/cruisectl/internal/episode"
)

// ControlEffort is the mean absolute commanded acceleration.
type ControlEffort struct {
	name    string
	sum     float64
	samples int
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{
		name: "control_effort",
	}
}

func (c *ControlEffort) Name() string {
	return c.name
}

func (c *ControlEffort) Observe(t episode.Tick) {
	if !t.Applied {
		return
	}
	c.sum += math.Abs(t.Command)
	c.samples++
}

func (c *ControlEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ControlEffort) Reset() {
	c.sum = 0
	c.samples = 0
}

// MaxJerk is the largest change in command between consecutive ticks, m/s³.
type MaxJerk struct {
	name     string
	prev     float64
	prevTime float64
	seen     bool
	max      float64
}

func NewMaxJerk() *MaxJerk {
	return &MaxJerk{name: "max_jerk"}
}

func (j *MaxJerk) Name() string { return j.name }

func (j *MaxJerk) Observe(t episode.Tick) {
	if !t.Applied {
		return
	}
	if j.seen {
		if dt := t.Time - j.prevTime; dt > 0 {
			j.max = math.Max(j.max, math.Abs(t.Command-j.prev)/dt)
		}
	}
	j.prev, j.prevTime, j.seen = t.Command, t.Time, true
}

func (j *MaxJerk) Value() float64 { return j.max }

func (j *MaxJerk) Reset() {
	j.prev, j.prevTime, j.seen, j.max = 0, 0, false, 0
}

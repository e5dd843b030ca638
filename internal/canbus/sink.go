package canbus

import (
	"context"
	"errors"

	"github.com/san-kum/cruisectl/internal/acc"
	"github.com/san-kum/cruisectl/internal/episode"
)

// Sink is an episode observer that sends one ACC_CMD frame per applied
// command to every writer.
type Sink struct {
	ctx     context.Context
	tuning  acc.Tuning
	writers []Writer
	counter uint8
}

func NewSink(ctx context.Context, tuning acc.Tuning, writers ...Writer) *Sink {
	return &Sink{ctx: ctx, tuning: tuning, writers: writers}
}

func (s *Sink) OnTick(t episode.Tick) error {
	if !t.Applied {
		return nil
	}

	zone := acc.ZoneOf(t.Observation, s.tuning)
	if t.Decision != nil {
		zone = t.Decision.Zone
	}
	frame := Encode(Command{
		Acceleration: t.Command,
		EgoSpeed:     t.Observation.EgoVelocity,
		Gap:          t.Observation.Lead,
		Zone:         zone,
		Counter:      s.counter,
	})
	s.counter++

	for _, w := range s.writers {
		if err := w.WriteFrame(s.ctx, frame); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sink) Close() error {
	var errs []error
	for _, w := range s.writers {
		errs = append(errs, w.Close())
	}
	return errors.Join(errs...)
}

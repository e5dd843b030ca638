package canbus

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.einride.tech/can"

	"github.com/san-kum/cruisectl/internal/acc"
	"github.com/san-kum/cruisectl/internal/episode"
)

func TestEncodeDecode(t *testing.T) {
	tests := []struct {
		name string
		cmd  Command
	}{
		{"braking", Command{Acceleration: -10, EgoSpeed: 22.5, Gap: acc.LeadAt(35.27), Zone: acc.ZoneCritical, Counter: 7}},
		{"accelerating", Command{Acceleration: 4.321, EgoSpeed: 0, Gap: acc.LeadAt(120), Zone: acc.ZoneClear, Counter: 255}},
		{"no lead", Command{Acceleration: -10, EgoSpeed: 3, Gap: acc.NoLead(), Zone: acc.ZoneNoLead}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Encode(tt.cmd)
			assert.Equal(t, CommandID, f.ID)
			assert.Equal(t, uint8(8), f.Length)

			got, err := Decode(f)
			require.NoError(t, err)
			assert.InDelta(t, tt.cmd.Acceleration, got.Acceleration, 0.0005)
			assert.InDelta(t, tt.cmd.EgoSpeed, got.EgoSpeed, 0.005)
			assert.Equal(t, tt.cmd.Zone, got.Zone)
			assert.Equal(t, tt.cmd.Counter, got.Counter)

			want, wantOK := tt.cmd.Gap.Distance()
			d, ok := got.Gap.Distance()
			assert.Equal(t, wantOK, ok)
			assert.InDelta(t, want, d, 0.005)
		})
	}
}

func TestEncodeSaturates(t *testing.T) {
	got, err := Decode(Encode(Command{Acceleration: 99, EgoSpeed: -5, Gap: acc.LeadAt(1e6)}))
	require.NoError(t, err)
	assert.InDelta(t, 32.767, got.Acceleration, 1e-9)
	assert.Equal(t, 0.0, got.EgoSpeed)
	assert.True(t, got.Gap.Present())

	got, _ = Decode(Encode(Command{Gap: acc.LeadAt(-3)}))
	d, ok := got.Gap.Distance()
	assert.True(t, ok)
	assert.Equal(t, 0.0, d)
}

func TestDecodeRejectsOtherFrames(t *testing.T) {
	_, err := Decode(can.Frame{ID: 0x100, Length: 8})
	assert.ErrorIs(t, err, ErrUnexpectedFrame)
}

func TestFormatLogLine(t *testing.T) {
	f := can.Frame{ID: CommandID, Length: 2, Data: can.Data{0x10, 0xFF}}
	line := FormatLogLine(time.Unix(1700000000, 250000000), "vcan0", f)
	assert.Equal(t, "(1700000000.250000) vcan0 2A0#10FF", line)
}

type memWriter struct {
	frames []can.Frame
	closed bool
}

func (m *memWriter) WriteFrame(_ context.Context, f can.Frame) error {
	m.frames = append(m.frames, f)
	return nil
}

func (m *memWriter) Close() error { m.closed = true; return nil }

func TestSink(t *testing.T) {
	mem := &memWriter{}
	var log bytes.Buffer
	lw := NewLogWriter(&log, "vcan0")
	lw.now = func() time.Time { return time.Unix(0, 0) }

	sink := NewSink(context.Background(), acc.DefaultTuning(), mem, lw)
	obs := acc.Observation{EgoVelocity: 20, Lead: acc.LeadAt(40), DesiredSpeed: 25}

	require.NoError(t, sink.OnTick(episode.Tick{Observation: obs, Command: -2, Applied: true}))
	dec := acc.Decision{Acceleration: 1, Zone: acc.ZoneClear}
	require.NoError(t, sink.OnTick(episode.Tick{Observation: obs, Command: 1, Decision: &dec, Applied: true}))
	require.NoError(t, sink.OnTick(episode.Tick{Observation: obs}))

	require.Len(t, mem.frames, 2)
	first, _ := Decode(mem.frames[0])
	second, _ := Decode(mem.frames[1])
	assert.Equal(t, acc.ZoneCritical, first.Zone)
	assert.Equal(t, acc.ZoneClear, second.Zone)
	assert.Equal(t, uint8(1), second.Counter)

	lines := strings.Split(strings.TrimSpace(log.String()), "\n")
	assert.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "(0.000000) vcan0 2A0#"))

	require.NoError(t, sink.Close())
	assert.True(t, mem.closed)
}

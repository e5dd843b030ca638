// Package canbus publishes controller commands as CAN frames, either to a
// candump-style log or to a SocketCAN interface.
package canbus

import (
	"errors"
	"fmt"
	"math"

	"github.com/samber/lo"
	"go.einride.tech/can"

	"github.com/san-kum/cruisectl/internal/acc"
)

// CommandID is the ACC_CMD frame.
const CommandID uint32 = 0x2A0

// ACC_CMD layout, little endian:
//
//	bits  0-15  acceleration, signed, 0.001 m/s²
//	bits 16-31  ego speed, 0.01 m/s
//	bits 32-47  gap, 0.01 m, 0xFFFF when no lead
//	bits 48-51  zone
//	bits 56-63  rolling counter
const (
	accelScale = 0.001
	speedScale = 0.01
	gapScale   = 0.01
	gapNone    = 0xFFFF
)

var ErrUnexpectedFrame = errors.New("canbus: unexpected frame")

type Command struct {
	Acceleration float64
	EgoSpeed     float64
	Gap          acc.Gap
	Zone         acc.Zone
	Counter      uint8
}

func Encode(c Command) can.Frame {
	f := can.Frame{ID: CommandID, Length: 8}

	accel := lo.Clamp(math.Round(c.Acceleration/accelScale), math.MinInt16, math.MaxInt16)
	f.Data.SetSignedBitsLittleEndian(0, 16, int64(accel))

	speed := lo.Clamp(math.Round(c.EgoSpeed/speedScale), 0, math.MaxUint16)
	f.Data.SetUnsignedBitsLittleEndian(16, 16, uint64(speed))

	gap := uint64(gapNone)
	if d, ok := c.Gap.Distance(); ok {
		gap = uint64(lo.Clamp(math.Round(d/gapScale), 0, gapNone-1))
	}
	f.Data.SetUnsignedBitsLittleEndian(32, 16, gap)

	f.Data.SetUnsignedBitsLittleEndian(48, 4, uint64(c.Zone)&0xF)
	f.Data.SetUnsignedBitsLittleEndian(56, 8, uint64(c.Counter))
	return f
}

func Decode(f can.Frame) (Command, error) {
	if f.ID != CommandID || f.Length != 8 {
		return Command{}, fmt.Errorf("%w: id 0x%X length %d", ErrUnexpectedFrame, f.ID, f.Length)
	}

	c := Command{
		Acceleration: float64(f.Data.SignedBitsLittleEndian(0, 16)) * accelScale,
		EgoSpeed:     float64(f.Data.UnsignedBitsLittleEndian(16, 16)) * speedScale,
		Zone:         acc.Zone(f.Data.UnsignedBitsLittleEndian(48, 4)),
		Counter:      uint8(f.Data.UnsignedBitsLittleEndian(56, 8)),
	}
	if raw := f.Data.UnsignedBitsLittleEndian(32, 16); raw != gapNone {
		c.Gap = acc.LeadAt(float64(raw) * gapScale)
	}
	return c, nil
}

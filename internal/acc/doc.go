// Package acc implements the adaptive cruise control decision function.
//
// A [Controller] turns one [Observation] per control tick into a longitudinal
// acceleration command. The decision combines discrete gap zones with PD
// speed regulation:
//
//   - [ZoneNoLead]: no usable gap, full braking
//   - [ZoneCritical]: gap inside the reaction envelope, full braking
//   - [ZoneCaution]: braking blended by how far the gap is into the buffer
//   - [ZoneClear]: PD tracking of the target speed
//
// # Usage
//
//	ctrl := acc.New(25.0, 30.0)
//	a := ctrl.Step(acc.Observation{EgoVelocity: 20, Lead: acc.LeadAt(200), DesiredSpeed: 25})
//
// A Controller carries the previous speed error and gap between ticks, so one
// instance must drive exactly one episode and is not safe for concurrent use.
package acc

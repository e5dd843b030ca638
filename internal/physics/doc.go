// Package physics provides the vehicle dynamics the world simulator integrates.
//
// Each model implements the [dynamo.System] interface:
//
//   - [Longitudinal]: ego and lead vehicle on one lane, acceleration inputs
package physics

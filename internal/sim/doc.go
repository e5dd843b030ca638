// Package sim is the world the controller drives: an ego vehicle following a
// scripted lead vehicle on a single lane.
//
// The lead vehicle replays one acceleration per tick from its action list.
// The world completes when the script is exhausted, when the vehicles touch,
// or when the configured maximum duration elapses.
package sim

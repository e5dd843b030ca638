// Package episode drives one controller against one world until the world
// reports completion, recording a trace row per observation.
//
// A run is all or nothing: a cancelled context, a world fault or an observer
// failure aborts the episode and no trace is returned.
package episode

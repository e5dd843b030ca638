// Package viz renders episodes in the terminal.
//
//   - [Replay]: Bubble Tea replay of a finished trace with a road strip,
//     the current zone and speed and gap charts
//   - [SpeedChart], [GapChart]: static asciigraph charts for a trace
//   - [Canvas]: Braille pixel canvas used for the road strip
//
// # Key Bindings
//
//	Space - Pause/Resume playback
//	[ ]   - Step back/forward one second
//	+ -   - Change playback speed
//	T     - Cycle color themes
//	?     - Show help overlay
//	Q     - Quit
package viz

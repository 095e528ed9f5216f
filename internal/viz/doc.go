// Package viz renders ensemble results in the terminal.
//
//   - [PlotTrajectories]: asciigraph line plot of allele frequencies
//   - [Summary]: styled ensemble statistics
//   - [GenotypeBars]: AA / Aa / aa proportions as horizontal bars
//   - [Animation]: Bubble Tea player stepping through a selection run
//
// # Key Bindings
//
//	Space - Pause/Resume playback
//	[ ]   - Step back / forward one generation
//	R     - Restart from generation 0
//	T     - Cycle colour themes
//	Q     - Quit
package viz

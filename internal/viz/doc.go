// Package viz draws a regolith bed in the terminal and lets the user drive
// the tool interactively with Bubble Tea.
//
// Grains and the tool are rasterised onto a braille [Canvas] in a side, top
// or orbiting 3D view. The live [Model] steps the engine at the frame rate,
// charts the tool load with asciigraph and exposes the tunable parameters.
//
// # Key Bindings
//
//	W/A/S/D - Move the tool in the horizontal plane
//	Q/E     - Lower/raise the tool
//	Arrows  - Tilt the tool
//	Space   - Pause/Resume simulation
//	R       - Reset to the initial bed
//	V       - Cycle views
//	T       - Cycle color themes
//	G       - Toggle GIF recording
//	[ ]     - Replay recent history
//	?       - Show help overlay
//
// Recordings are written to regolith.gif in the working directory.
package viz

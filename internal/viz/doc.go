// Package viz draws a running soft body in the terminal.
//
// The live view is a Bubble Tea program:
//
//   - [Model]: steps a body in real time and renders it
//   - [Canvas]: braille pixel canvas, 2x4 dots per character
//   - [Camera]: orbit camera projecting through mgl64 matrices, eased
//     with harmonica springs
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Rebuild the body from its configuration
//	A/D   - Orbit, W/S tilt, +/- zoom
//	E     - Cycle spring display (nearest, all, none)
//	F     - Toggle per-particle force vectors
//	T     - Cycle color themes
//	G     - Toggle GIF recording
//	?     - Show help overlay
//	[]    - Time travel (rewind/forward)
//
// # Recording
//
// Recordings are written to softsim.gif in the current directory.
package viz

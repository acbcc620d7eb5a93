// Package viz is the terminal view of running scenarios, built on Bubble
// Tea.
//
//   - [Model]: live top-down view of one scenario with heading and ball
//     speed plots
//   - [Canvas]: braille pixel canvas the field is drawn on
//   - a scenario menu started by [RunInteractive]
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Restart the scenario
//	Tab   - Focus the next robot
//	T     - Cycle color themes
//	+/-   - Zoom
//	[]    - Step through the replay buffer
//	?     - Show help overlay
package viz

// Package viz renders force field results in the terminal.
//
// The package has two halves:
//
//   - [Model]: a Bubble Tea program that runs velocity Verlet live and
//     plots the energy trace next to a Braille projection of the atoms
//   - [EnergyTable] and [ConvergencePlot]: static reports for the CLI
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Restart from the initial configuration
//	+/-   - More or fewer steps per frame
//	?     - Toggle the full key help
//	Q     - Quit
package viz

// Package viz renders simulation results in the terminal.
//
//   - [Report]: the parameter and flux summary of one run
//   - [EnergyPlot], [SteadyStatePlot], [FluxPlot], [MSDPlot], [LoadPlot]: ASCII charts of the profiles
//   - [Explorer]: a Bubble Tea program that re-solves the model as constants are tuned
//
// # Key Bindings
//
//	↑/↓ - Select a constant
//	←/→ - Decrease/increase the selected constant
//	T   - Cycle color themes
//	R   - Restore the starting constants
//	Q   - Quit
package viz

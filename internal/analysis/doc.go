// Package analysis inspects recorded series from stored runs.
//
//   - [AnalyzeStep]: rise time, overshoot, settling time and steady state
//     error of a response towards a target
//   - [UnwrapDegrees]: removes wrap jumps from heading columns first
//   - [PowerSpectrum] and [DominantFrequency]: oscillation in a series,
//     such as a heading loop ringing around its target
//
// A typical heading check on robot 0 of a stored turn run:
//
//	times, dirs, _ := store.LoadSeries(id, "r0_dir")
//	resp, err := analysis.AnalyzeStep(times, analysis.UnwrapDegrees(dirs), 90)
package analysis

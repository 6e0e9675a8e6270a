// Package kinetics builds and solves the discrete kinetic model of a
// two-state conformational motor.
//
// The pipeline is a chain of pure functions over value types:
//
//   - [DeriveEnergy]: population histogram to free-energy profile
//   - [IntrasurfaceRates]: nearest-neighbor hopping rates on one surface
//   - [IntersurfaceRates]: binding, unbinding and catalytic rates
//   - [AssembleTransitionMatrix]: block rate matrix scaled to one timestep
//   - [SolveSteadyState]: stationary distribution by eigen-decomposition
//   - [ComputeFlux]: net probability currents per bin
//   - [RelaxIteratively]: power iteration from a localized pulse
//
// The first bins entries of every distribution belong to the unbound
// surface and the remaining bins entries to the bound surface.
//
// # Example
//
//	u, _ := kinetics.DeriveEnergy(unboundHist, kT)
//	b, _ := kinetics.DeriveEnergy(boundHist, kT)
//	b = b.Shift(offset)
//	cIntra := kinetics.IntrasurfacePrefactor(d, u.Bins())
//	uRates, _ := kinetics.IntrasurfaceRates(u, cIntra, kT, nil)
//	bRates, _ := kinetics.IntrasurfaceRates(b, cIntra, kT, nil)
//	ub, bu, _ := kinetics.IntersurfaceRates(u, b, coupling)
//	tm, _ := kinetics.AssembleTransitionMatrix(uRates, bRates, ub, bu)
//	ss, _ := kinetics.SolveSteadyState(tm)
//	flux, _ := kinetics.ComputeFlux(ss.Distribution, tm)
//
// # Thread Safety
//
// Every function allocates its own outputs and never retains its inputs,
// so independent runs may proceed in parallel without locking.
package kinetics

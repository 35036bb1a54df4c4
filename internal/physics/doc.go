// Package physics implements the granular engine that advances a
// [dynamo.World] by one tick.
//
// A tick runs five stages in a fixed order:
//
//   - [MoveTool]: applies the input intent to the tool pose
//   - [ResetAccelerations]: overwrites every acceleration with gravity
//   - pairwise cohesion, repulsion and friction, computed for all pairs
//     before any of them is committed
//   - tool contact: viscoelastic push, surface cohesion and tool reaction
//   - [Integrate]: explicit velocity/position update with floor contact
//
// Both force solvers read positions and velocities from before the
// integration stage, so their relative order does not matter.
//
// # Usage
//
//	engine := physics.NewEngine(params)
//	for tick := 0; tick < n; tick++ {
//	    stats := engine.Step(world.Particles, world.Tool, params.TimeStep, input)
//	    _ = stats
//	}
//
// Pair enumeration is brute force, O(n²), on the calling goroutine.
package physics

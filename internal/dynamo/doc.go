// Package dynamo provides the core data model of the granular simulator.
//
// The package defines the state that the physics engine mutates every tick:
//
//   - [Particle]: kinematic and material state of one regolith grain
//   - [Tool]: the single rigid manipulator and its reaction accumulators
//   - [Params]: physical constants, read-only for the lifetime of a run
//   - [ToolInput]: movement and rotation intents supplied by the input layer
//   - [World]: the particle collection plus an optional tool
//
// # Example
//
//	params := dynamo.DefaultParams()
//	world := scenario.Build(params)
//	engine := physics.NewEngine(params)
//	stats := engine.Step(world.Particles, world.Tool, params.TimeStep, dynamo.ToolInput{})
//
// # Thread Safety
//
// World values are NOT thread-safe. A world is owned by exactly one stepping
// driver; readers take a [Snapshot] between ticks.
package dynamo

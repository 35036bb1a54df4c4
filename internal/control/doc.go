// Package control supplies the tool intent for each tick.
//
// Controllers implement [sim.Controller]:
//
//   - [None]: no input, the tool stays where it is
//   - [Hold]: a constant key combination, parsed from "wasdqe"
//   - [Manual]: intent set from outside, one tick at a time
//   - [Plunge]: PID on tool height, then an optional drag
//
// # Usage
//
//	ctrl := control.NewPlunge(0.02, dynamo.ToolInput{Forward: true})
//	s := sim.New(physics.NewEngine(p), ctrl)
package control

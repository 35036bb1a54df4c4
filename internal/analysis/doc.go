// Package analysis inspects recorded telemetry after a run.
//
//   - [Spectrum] and [DominantFrequency] find periodic loading on the tool,
//     such as stick-slip while dragging through a cohesive bed.
//   - [NewScatter] pairs two telemetry columns, typically tool depth against
//     tool force, and [Scatter.ASCII] draws the result in a terminal.
//
// A load curve for a plunge run:
//
//	sc, err := analysis.NewScatter(samples, "tool_y", "force")
//	if err != nil {
//		return err
//	}
//	fmt.Print(sc.ASCII(72, 20))
package analysis

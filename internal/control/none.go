package control

import "github.com/san-kum/regolith/internal/dynamo"

type None struct{}

func NewNone() *None {
	return &None{}
}

func (n *None) Compute(w *dynamo.World, t float64) dynamo.ToolInput {
	return dynamo.ToolInput{}
}

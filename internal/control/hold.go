package control

import (
	"fmt"
	"strings"

	"github.com/san-kum/regolith/internal/dynamo"
)

// Hold presses the same keys on every tick.
type Hold struct {
	Input dynamo.ToolInput
}

func NewHold(in dynamo.ToolInput) *Hold {
	return &Hold{Input: in}
}

func (h *Hold) Compute(w *dynamo.World, t float64) dynamo.ToolInput {
	return h.Input
}

// ParseKeys maps a key string to an intent: w/s forward/back, a/d left/right,
// q/e down/up. Case is ignored; any other character is an error.
func ParseKeys(keys string) (dynamo.ToolInput, error) {
	var in dynamo.ToolInput
	for _, r := range strings.ToLower(keys) {
		if !applyKey(&in, r) {
			return dynamo.ToolInput{}, fmt.Errorf("unknown tool key %q in %q", r, keys)
		}
	}
	return in, nil
}

// FormatKeys is the inverse of ParseKeys for the movement part of in.
func FormatKeys(in dynamo.ToolInput) string {
	var b strings.Builder
	for _, k := range []struct {
		on  bool
		key byte
	}{
		{in.Forward, 'w'}, {in.Left, 'a'}, {in.Back, 's'}, {in.Right, 'd'}, {in.Down, 'q'}, {in.Up, 'e'},
	} {
		if k.on {
			b.WriteByte(k.key)
		}
	}
	return b.String()
}

func applyKey(in *dynamo.ToolInput, r rune) bool {
	switch r {
	case 'w':
		in.Forward = true
	case 's':
		in.Back = true
	case 'a':
		in.Left = true
	case 'd':
		in.Right = true
	case 'q':
		in.Down = true
	case 'e':
		in.Up = true
	default:
		return false
	}
	return true
}

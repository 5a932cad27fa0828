package subdivide

import (
	"fmt"

	"github.com/gre/shattered/pkg/errors"
)

// FillStyle selects how the route composer fills a leaf polygon.
type FillStyle int

const (
	Plain FillStyle = iota
	Spiral
	Web
	PingPong
	Scratches
	Hatch
	Stippling
	Zigzag
	Full
	Concentric
)

var fillStyleNames = [...]string{
	Plain:      "plain",
	Spiral:     "spiral",
	Web:        "web",
	PingPong:   "pingpong",
	Scratches:  "scratches",
	Hatch:      "hatch",
	Stippling:  "stippling",
	Zigzag:     "zigzag",
	Full:       "full",
	Concentric: "concentric",
}

// FillStyles lists every fill style in declaration order.
var FillStyles = []FillStyle{Plain, Spiral, Web, PingPong, Scratches, Hatch, Stippling, Zigzag, Full, Concentric}

func (s FillStyle) String() string {
	if s < 0 || int(s) >= len(fillStyleNames) {
		return fmt.Sprintf("FillStyle(%d)", int(s))
	}
	return fillStyleNames[s]
}

// ParseFillStyle returns the style named s.
func ParseFillStyle(s string) (FillStyle, error) {
	for i, name := range fillStyleNames {
		if name == s {
			return FillStyle(i), nil
		}
	}
	return Plain, errors.New(errors.ErrCodeInvalidInput, "unknown fill style %q", s)
}

func (s FillStyle) MarshalText() ([]byte, error) {
	if s < 0 || int(s) >= len(fillStyleNames) {
		return nil, fmt.Errorf("invalid fill style %d", int(s))
	}
	return []byte(fillStyleNames[s]), nil
}

func (s *FillStyle) UnmarshalText(b []byte) error {
	v, err := ParseFillStyle(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

package dshow

import (
	"errors"
	"reflect"
	"strings"

	"github.com/reusee/e5"
)

var ErrBadComposite = errors.New("bad composite")

var ErrNoConversion = errors.New("no value conversion")

var ErrBadArgument = errors.New("bad argument")

var ErrBadConfig = errors.New("bad config")

var ErrAlreadyConfigured = errors.New("already configured")

// Path locates a member inside a type being checked or derived.
type Path struct {
	Prev *Path
	Step string
}

func (p *Path) String() string {
	if p == nil {
		return "."
	}
	var steps []string
	for ; p != nil; p = p.Prev {
		steps = append(steps, p.Step)
	}
	buf := new(strings.Builder)
	for i := len(steps) - 1; i >= 0; i-- {
		buf.WriteString(steps[i])
	}
	return buf.String()
}

func (p Path) Error() string {
	return p.String()
}

func (p *Path) append(step string) *Path {
	return &Path{
		Prev: p,
		Step: step,
	}
}

func errNoConversion(t reflect.Type, path *Path) error {
	return we.With(
		e5.Info("no conversion for %v", t),
		e5.Info("path: %v", path),
	)(
		ErrNoConversion,
	)
}

package converter

import (
	"errors"
	"fmt"

	"github.com/yuanying/sketch2penpot/internal/host"
)

// ErrNoClass is the skip reason of a layer without a discriminator tag.
var ErrNoClass = errors.New("layer has no class")

// LayerError records why one layer could not be imported.
type LayerError struct {
	Class string
	Name  string
	Err   error
}

func (e *LayerError) Error() string {
	return fmt.Sprintf("layer %s %q: %v", e.Class, e.Name, e.Err)
}

func (e *LayerError) Unwrap() error { return e.Err }

// Outcome is the result of dispatching one layer: the created shape, or
// the reason the layer was skipped.
type Outcome struct {
	Class    string
	Name     string
	Shape    host.Shape
	Err      error
	Children []Outcome
}

// Created reports whether the layer produced a shape.
func (o Outcome) Created() bool {
	return o.Err == nil
}

// Tally counts created and skipped layers in outcomes and their children.
func Tally(outcomes []Outcome) (created, skipped int) {
	for _, o := range outcomes {
		if o.Created() {
			created++
		} else {
			skipped++
		}
		c, s := Tally(o.Children)
		created += c
		skipped += s
	}
	return created, skipped
}

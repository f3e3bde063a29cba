package core

import (
	"slices"

	"github.com/go-drift/may/pkg/errors"
	"github.com/go-drift/may/pkg/graphics"
	"github.com/go-drift/may/pkg/layout"
	"github.com/go-drift/may/pkg/theme"
)

// Render walks root and its layout tree in lock-step and returns the frame:
// each widget's sketches, self before children, in pre-order. Each widget
// is rendered with the scheme th resolves for it. A layout tree whose shape
// differs from the widget tree yields a *errors.CongruenceError and no
// sketches.
func Render[S any](root Widget[S], node *layout.Node, th theme.Theme) ([]graphics.Sketch, error) {
	var out []graphics.Sketch
	if err := render(root, node, th, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func render[S any](w Widget[S], node *layout.Node, th theme.Theme, path []int, out *[]graphics.Sketch) error {
	children := w.Children()
	if node == nil {
		return &errors.CongruenceError{Path: slices.Clone(path), Widget: string(w.ID()), Want: len(children), Got: -1}
	}
	if len(node.Children) != len(children) {
		return &errors.CongruenceError{Path: slices.Clone(path), Widget: string(w.ID()), Want: len(children), Got: len(node.Children)}
	}
	scheme := theme.Resolve(th, w.ID(), w.WidgetType())
	*out = append(*out, w.Render(scheme, node)...)
	for i, c := range children {
		if err := render(c, node.Children[i], th, append(path, i), out); err != nil {
			return err
		}
	}
	return nil
}

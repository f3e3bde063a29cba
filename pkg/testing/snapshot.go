package testing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-drift/may/pkg/core"
	"github.com/go-drift/may/pkg/graphics"
	"github.com/go-drift/may/pkg/layout"
)

// UpdateSnapshotsEnv is the environment variable that rewrites golden
// files instead of comparing against them.
const UpdateSnapshotsEnv = "MAY_UPDATE_SNAPSHOTS"

// TestingT is the subset of *testing.T used by MatchesFile, allowing
// test doubles to intercept failures.
type TestingT interface {
	Helper()
	Fatalf(format string, args ...any)
	Errorf(format string, args ...any)
	Name() string
}

// Snapshot captures the laid-out widget tree and the last frame.
type Snapshot struct {
	LayoutTree *LayoutNode `json:"layoutTree"`
	Sketches   []SketchOp  `json:"sketches,omitempty"`
}

// LayoutNode is one widget of the serialized tree with its layout box.
type LayoutNode struct {
	ID       string        `json:"id"`
	Type     string        `json:"type"`
	Size     [2]float64    `json:"size"`
	Offset   [2]float64    `json:"offset"`
	Children []*LayoutNode `json:"children,omitempty"`
}

// SketchOp is one serialized draw primitive.
type SketchOp struct {
	Op     string         `json:"op"`
	Params map[string]any `json:"params,omitempty"`
}

// CaptureSnapshot captures the current widget tree with its layout and the
// sketches of the last frame.
func (t *WidgetTester[S]) CaptureSnapshot() *Snapshot {
	snap := &Snapshot{}
	if t.engine == nil {
		return snap
	}
	counter := &idCounter{}
	snap.LayoutTree = captureLayoutNode(t.engine.Root(), t.engine.Layout(), counter)
	for _, s := range t.Sketches() {
		snap.Sketches = append(snap.Sketches, serializeSketch(s))
	}
	return snap
}

// MatchesFile compares this snapshot against a golden file. On mismatch it
// reports a diff and instructions for updating. When MAY_UPDATE_SNAPSHOTS=1
// is set, the file is silently updated instead.
func (s *Snapshot) MatchesFile(t TestingT, path string) {
	t.Helper()

	if os.Getenv(UpdateSnapshotsEnv) == "1" {
		if err := s.UpdateFile(path); err != nil {
			t.Fatalf("failed to update snapshot: %v", err)
		}
		return
	}

	expected, err := loadSnapshot(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("snapshot file missing: %s\n\nTo create: %s=1 go test -run %s", path, UpdateSnapshotsEnv, t.Name())
			return
		}
		t.Fatalf("failed to load snapshot: %v", err)
		return
	}

	if diff := s.Diff(expected); diff != "" {
		t.Errorf("snapshot mismatch: %s\n%s\n\nTo update: %s=1 go test -run %s", path, diff, UpdateSnapshotsEnv, t.Name())
	}
}

// UpdateFile writes this snapshot to the given path, creating directories
// as needed.
func (s *Snapshot) UpdateFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := marshalSnapshot(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Diff returns a line diff between this snapshot and other. Returns
// empty string if equal.
func (s *Snapshot) Diff(other *Snapshot) string {
	a, _ := marshalSnapshot(s)
	b, _ := marshalSnapshot(other)
	if bytes.Equal(a, b) {
		return ""
	}
	return unifiedDiff(string(b), string(a))
}

// --- Internal ---

// idCounter assigns stable IDs like "may-widgets:Text#0", "may-widgets:Text#1".
type idCounter struct {
	counts map[string]int
}

func (c *idCounter) next(id string) string {
	if c.counts == nil {
		c.counts = make(map[string]int)
	}
	n := c.counts[id]
	c.counts[id] = n + 1
	return fmt.Sprintf("%s#%d", id, n)
}

func captureLayoutNode[S any](w core.Widget[S], n *layout.Node, counter *idCounter) *LayoutNode {
	node := &LayoutNode{
		ID:   counter.next(string(w.ID())),
		Type: w.WidgetType().String(),
	}
	if n != nil {
		node.Size = [2]float64{round2(n.Size.Width), round2(n.Size.Height)}
		node.Offset = [2]float64{round2(n.Location.X), round2(n.Location.Y)}
	}
	for i, c := range w.Children() {
		node.Children = append(node.Children, captureLayoutNode(c, layout.ChildAt(n, i), counter))
	}
	return node
}

func serializeSketch(s graphics.Sketch) SketchOp {
	switch s := s.(type) {
	case graphics.PathSketch:
		op := "fillPath"
		if s.Mode == graphics.PathModeStroke {
			op = "strokePath"
		}
		params := sortedMap(
			"bounds", serializeRect(s.Bounds()),
			"color", serializeColor(s.Paint.Color),
		)
		if s.Mode == graphics.PathModeStroke {
			params["strokeWidth"] = round2(s.Paint.StrokeWidth)
		}
		return SketchOp{Op: op, Params: params}
	case graphics.TextSketch:
		return SketchOp{Op: "text", Params: sortedMap(
			"text", s.Text,
			"x", round2(s.Position.X),
			"y", round2(s.Position.Y),
			"fontSize", round2(s.FontSize),
			"color", serializeColor(s.Paint.Color),
		)}
	default:
		return SketchOp{Op: fmt.Sprintf("%T", s), Params: sortedMap("bounds", serializeRect(s.Bounds()))}
	}
}

func serializeRect(r graphics.Rect) map[string]any {
	return sortedMap(
		"left", round2(r.Left),
		"top", round2(r.Top),
		"right", round2(r.Right),
		"bottom", round2(r.Bottom),
	)
}

func serializeColor(c graphics.Color) string {
	return fmt.Sprintf("0x%08X", uint32(c))
}

// round2 rounds to 2 decimal places.
func round2(f float32) float64 {
	return math.Round(float64(f)*100) / 100
}

// sortedMap creates a map from alternating key-value pairs. JSON encoding
// sorts map keys, so the output is stable.
func sortedMap(kvs ...any) map[string]any {
	m := make(map[string]any, len(kvs)/2)
	for i := 0; i+1 < len(kvs); i += 2 {
		m[kvs[i].(string)] = kvs[i+1]
	}
	return m
}

func loadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("invalid snapshot JSON: %w", err)
	}
	return &snap, nil
}

func marshalSnapshot(s *Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// unifiedDiff produces a simple line-oriented diff.
func unifiedDiff(expected, actual string) string {
	expectedLines := strings.Split(expected, "\n")
	actualLines := strings.Split(actual, "\n")

	var buf strings.Builder
	buf.WriteString("--- expected\n+++ actual\n")

	for i := range max(len(expectedLines), len(actualLines)) {
		var e, a string
		if i < len(expectedLines) {
			e = expectedLines[i]
		}
		if i < len(actualLines) {
			a = actualLines[i]
		}
		if e != a {
			if i < len(expectedLines) {
				fmt.Fprintf(&buf, "-%s\n", e)
			}
			if i < len(actualLines) {
				fmt.Fprintf(&buf, "+%s\n", a)
			}
		}
	}

	return buf.String()
}

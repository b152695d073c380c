package script

import (
	"fmt"
	"io"
	"strings"
)

// OutlineNode is a scope opener and its nested openers, for machine consumers.
type OutlineNode struct {
	Kind     string        `json:"kind"`
	Name     string        `json:"name"`
	Label    string        `json:"label"`
	Line     int           `json:"line"`
	Depth    int           `json:"depth"`
	Private  bool          `json:"private,omitempty"`
	Doc      string        `json:"doc,omitempty"`
	Children []OutlineNode `json:"children,omitempty"`
}

// Outline returns the tree of scope openers. Plain lines are left out.
func (d *Document) Outline() []OutlineNode {
	return d.outline(d.Roots)
}

func (d *Document) outline(indices []int) []OutlineNode {
	var nodes []OutlineNode
	for _, idx := range indices {
		l := &d.Lines[idx]
		if !l.Opens() {
			continue
		}
		nodes = append(nodes, OutlineNode{
			Kind:     l.Kind.String(),
			Name:     l.Name,
			Label:    l.Label(),
			Line:     l.Number,
			Depth:    l.Depth,
			Private:  l.Private,
			Doc:      d.SectionDoc(idx),
			Children: d.outline(l.Children),
		})
	}
	return nodes
}

// WriteOutline prints the outline as an indented list, one opener per line.
func WriteOutline(w io.Writer, nodes []OutlineNode) error {
	for _, n := range nodes {
		name := n.Label
		if name == "" {
			name = "(unnamed)"
		}
		if _, err := fmt.Fprintf(w, "%s%s %s (line %d)\n", strings.Repeat("  ", n.Depth), n.Kind, name, n.Line); err != nil {
			return err
		}
		if err := WriteOutline(w, n.Children); err != nil {
			return err
		}
	}
	return nil
}

package render

import (
	"strings"

	"github.com/mvp-joe/scriptdoc/internal/script"
)

// body writes sections for the visible headings and functions among
// children. Functions have no documented children, so only headings recurse.
func (r *renderer) body(b *strings.Builder, children []int, offset int) {
	for _, idx := range children {
		l := &r.doc.Lines[idx]
		switch l.Kind {
		case script.KindHeading:
			if !r.visible(idx) {
				continue
			}
			r.section(b, idx, offset)
			r.body(b, l.Children, offset)
		case script.KindFunction:
			if !r.visible(idx) {
				continue
			}
			r.section(b, idx, offset)
		}
	}
}

// bodyScript writes a script section at level 2 followed by its members.
func (r *renderer) bodyScript(b *strings.Builder, idx int) {
	l := &r.doc.Lines[idx]
	offset := bodyOffset - l.Depth
	r.section(b, idx, offset)
	r.body(b, l.Children, offset)
}

// section writes the heading line and the doc comment of one scope.
func (r *renderer) section(b *strings.Builder, idx, offset int) {
	l := &r.doc.Lines[idx]
	b.WriteString(strings.Repeat("#", clamp(l.Depth+offset, 1)))
	b.WriteString(" " + r.title(l) + "\n\n")
	if doc := r.doc.SectionDoc(idx); doc != "" {
		b.WriteString(doc + "\n\n")
	}
}

// Sections reports how many sections Render writes for doc, not counting the
// contents and overview.
func Sections(doc *script.Document) int {
	r := &renderer{doc: doc}
	n := 0
	for _, idx := range doc.Scripts() {
		n += 1 + r.count(doc.Lines[idx].Children)
	}
	return n + r.count(doc.Roots)
}

func (r *renderer) count(children []int) int {
	n := 0
	for _, idx := range children {
		l := &r.doc.Lines[idx]
		switch l.Kind {
		case script.KindHeading:
			if r.visible(idx) {
				n += 1 + r.count(l.Children)
			}
		case script.KindFunction:
			if r.visible(idx) {
				n++
			}
		}
	}
	return n
}

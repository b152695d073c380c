package render

import (
	"strings"

	"github.com/mvp-joe/scriptdoc/internal/script"
)

// toc writes bullets for the visible headings and functions among children.
// Indentation comes from structural depth, so offset does not change when
// recursing into a heading.
func (r *renderer) toc(b *strings.Builder, children []int, offset int) {
	for _, idx := range children {
		l := &r.doc.Lines[idx]
		switch l.Kind {
		case script.KindHeading:
			if !r.visible(idx) {
				continue
			}
			r.tocEntry(b, l, offset)
			r.toc(b, l.Children, offset)
		case script.KindFunction:
			if !r.visible(idx) {
				continue
			}
			r.tocEntry(b, l, offset)
		}
	}
}

// tocScript writes a flush-left bullet for a script and indents its members
// one level below it.
func (r *renderer) tocScript(b *strings.Builder, idx int) {
	l := &r.doc.Lines[idx]
	offset := tocOffset - l.Depth
	r.tocEntry(b, l, offset)
	r.toc(b, l.Children, offset)
}

func (r *renderer) tocEntry(b *strings.Builder, l *script.Line, offset int) {
	b.WriteString(strings.Repeat("  ", clamp(l.Depth+offset, 0)))
	b.WriteString("- [" + tocLabel(l) + "](#" + anchor(l) + ")\n")
}

// tocLabel formats function and script names as code in contents entries.
func tocLabel(l *script.Line) string {
	switch l.Kind {
	case script.KindFunction:
		return "`" + l.Label() + "`"
	case script.KindScript:
		return "Script:`" + l.Label() + "`"
	}
	return l.Label()
}

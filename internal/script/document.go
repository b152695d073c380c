package script

import "strings"

// Document owns every Line, Comment and StringLiteral of one source text.
// Lines is an arena: index i holds line number i+1, and tree links are
// arena indices.
type Document struct {
	Lines    []Line
	Comments map[int]Comment
	Strings  map[int][]StringLiteral
	Roots    []int
}

// Parse scans src and builds the scope tree.
func Parse(src string) *Document {
	lines, comments, strs := Scan(src)
	doc := &Document{
		Lines:    lines,
		Comments: comments,
		Strings:  strs,
	}
	doc.build()
	return doc
}

// build assigns depth and parent/children links with a scope stack.
func (d *Document) build() {
	var st scopeStack
	for i := range d.Lines {
		cur := &d.Lines[i]

		if n := closing(st, cur); n > 0 {
			st.pop(n)
		}

		cur.Depth = len(st)
		if top := st.top(); top != nil {
			parent := top.line()
			cur.Parent = parent
			d.Lines[parent].Children = append(d.Lines[parent].Children, i)
		} else {
			cur.Parent = -1
			d.Roots = append(d.Roots, i)
		}

		if cur.Opens() {
			st.push(newScope(i, cur))
		}
	}
}

// Line returns the line with the given 1-based number, or nil.
func (d *Document) Line(number int) *Line {
	if number < 1 || number > len(d.Lines) {
		return nil
	}
	return &d.Lines[number-1]
}

// Comment returns the comment owned by the line at arena index idx.
func (d *Document) Comment(idx int) (Comment, bool) {
	c, ok := d.Comments[d.Lines[idx].Number]
	return c, ok
}

// Blank reports whether the line at idx has no code and owns no comment.
func (d *Document) Blank(idx int) bool {
	if strings.TrimSpace(d.Lines[idx].Code) != "" {
		return false
	}
	_, ok := d.Comment(idx)
	return !ok
}

// DocComment returns the comment content of the first non-blank entry in
// children. Only that one position is considered: if the first non-blank
// child has no comment, the result is empty.
func (d *Document) DocComment(children []int) string {
	for _, idx := range children {
		if d.Blank(idx) {
			continue
		}
		if c, ok := d.Comment(idx); ok {
			return c.Content
		}
		return ""
	}
	return ""
}

// SectionDoc is the doc comment shown under the section opened at idx. A
// heading's first child is skipped: in the usual layout that is the
// heading's own "end" line, with the section comment after it.
func (d *Document) SectionDoc(idx int) string {
	children := d.Lines[idx].Children
	if d.Lines[idx].Kind == KindHeading && len(children) > 0 {
		children = children[1:]
	}
	return d.DocComment(children)
}

// Overview is the doc comment of the document's root-level lines.
func (d *Document) Overview() string {
	return d.DocComment(d.Roots)
}

// Scripts returns the arena index of every script opener, in source order.
func (d *Document) Scripts() []int {
	var out []int
	for i := range d.Lines {
		if d.Lines[i].Kind == KindScript {
			out = append(out, i)
		}
	}
	return out
}

// Path returns the names from the outermost ancestor down to the line at idx.
func (d *Document) Path(idx int) []string {
	var path []string
	for i := idx; i >= 0; i = d.Lines[i].Parent {
		path = append(path, d.Lines[i].PathName())
	}
	for l, r := 0, len(path)-1; l < r; l, r = l+1, r-1 {
		path[l], path[r] = path[r], path[l]
	}
	return path
}

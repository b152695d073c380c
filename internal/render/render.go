// Package render turns a parsed script Document into a markdown page with a
// table of contents, an optional overview and one section per documented
// scope.
//
// Rendering runs two passes over the tree: the first covers root-level
// headings and functions in document order, the second covers every script
// wherever it is nested. Both passes write into a strings.Builder owned by
// the Render call, so the output depends only on the document and options.
package render

import (
	"strconv"
	"strings"

	"github.com/mvp-joe/scriptdoc/internal/script"
)

// Options controls document-level rendering.
type Options struct {
	// Title is written as the top-level "# " heading.
	Title string

	// URLPrefix, when set, turns function and script headings into links to
	// URLPrefix followed by the opener's line number.
	URLPrefix string
}

// Heading-level and indentation offsets. Top-level sections sit one level
// below the "## Contents" heading; scripts restart at level 2 regardless of
// nesting.
const (
	bodyOffset = 2
	tocOffset  = 0
)

type renderer struct {
	doc  *script.Document
	opts Options
}

// Render produces the markdown page for doc.
func Render(doc *script.Document, opts Options) string {
	r := &renderer{doc: doc, opts: opts}
	b := &strings.Builder{}

	overview := doc.Overview()
	scripts := doc.Scripts()

	b.WriteString("# " + opts.Title + "\n")
	b.WriteString("## Contents\n\n")
	if overview != "" {
		b.WriteString("- [Overview](#overview)\n")
	}
	r.toc(b, doc.Roots, tocOffset)
	for _, idx := range scripts {
		r.tocScript(b, idx)
	}
	b.WriteString("\n")

	if overview != "" {
		b.WriteString("## Overview\n\n")
		b.WriteString(overview + "\n\n")
	}

	r.body(b, doc.Roots, bodyOffset)
	for _, idx := range scripts {
		r.bodyScript(b, idx)
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

// visible applies the documentation rules shared by both passes. Scripts are
// always visible but are only ever emitted by the script pass.
func (r *renderer) visible(idx int) bool {
	l := &r.doc.Lines[idx]
	switch l.Kind {
	case script.KindHeading:
		return r.hasPublicContent(l.Children)
	case script.KindFunction:
		return !l.Private
	case script.KindScript:
		return true
	}
	return false
}

// hasPublicContent reports whether a subtree holds a public function, a
// script or a heading.
func (r *renderer) hasPublicContent(children []int) bool {
	for _, idx := range children {
		l := &r.doc.Lines[idx]
		switch l.Kind {
		case script.KindScript, script.KindHeading:
			return true
		case script.KindFunction:
			if !l.Private {
				return true
			}
		}
		if r.hasPublicContent(l.Children) {
			return true
		}
	}
	return false
}

// title is the heading text of a section: a link for functions and scripts
// when a URL prefix is configured, else the label with function names set
// as code.
func (r *renderer) title(l *script.Line) string {
	text := label(l)
	switch {
	case l.Kind == script.KindHeading:
		return text
	case r.opts.URLPrefix != "":
		return "[" + text + "](" + r.opts.URLPrefix + strconv.Itoa(l.Number) + ")"
	case l.Kind == script.KindFunction:
		return "`" + text + "`"
	}
	return text
}

// label is the plain section title. Script sections are prefixed so they
// cannot collide with a function of the same name.
func label(l *script.Line) string {
	if l.Kind == script.KindScript {
		return "Script: " + l.Label()
	}
	return l.Label()
}

// anchor is the id a contents entry links to, derived from the plain title.
func anchor(l *script.Line) string {
	return script.Anchor(label(l))
}

func clamp(n, lo int) int {
	if n < lo {
		return lo
	}
	return n
}

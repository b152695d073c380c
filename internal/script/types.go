// Package script turns decompiled AppleScript source into a tree of
// structural scopes.
//
// The package has three stages, run in order by Parse:
//
//  1. Scan: one forward pass over the characters, separating code from
//     comments and string literals and recording one Line per source line.
//  2. Classify: each Line is tagged as a heading, function, script or plain
//     line from its code and indentation.
//  3. Build: a scope stack assigns depth and parent/children links.
//
// Nothing in this package returns an error. Malformed input degrades to empty
// names, scopes left open until end of input, or dropped comments.
package script

import "strings"

// Marker is the 32-underscore token that turns a function into a heading.
var Marker = strings.Repeat("_", 32)

// Kind is the structural classification of a Line.
type Kind int

const (
	KindNone Kind = iota
	KindHeading
	KindFunction
	KindScript
)

func (k Kind) String() string {
	switch k {
	case KindHeading:
		return "heading"
	case KindFunction:
		return "function"
	case KindScript:
		return "script"
	default:
		return "line"
	}
}

// Line is one source line with its classification and tree links.
type Line struct {
	Number int    // 1-based
	Indent string // leading tab run
	Code   string // text with comments and string literals removed, indentation included

	Kind    Kind
	Name    string // display name
	RawName string // name as written, used to match "end <name>"
	Params  string // function parameter text
	HasArgs bool   // function opener contained "("
	Private bool

	Depth    int
	Parent   int   // arena index of the parent, -1 for root-level lines
	Children []int // arena indices in source order
}

// Opens reports whether the line opens a scope.
func (l *Line) Opens() bool {
	return l.Kind != KindNone
}

// Label is the text used for the line in headings and the table of contents.
func (l *Line) Label() string {
	if l.Kind == KindFunction && l.HasArgs {
		return l.Name + "(" + l.Params + ")"
	}
	return l.Name
}

// PathName is the name a line contributes to a path query.
func (l *Line) PathName() string {
	if l.Kind == KindNone {
		return l.Code
	}
	return l.Name
}

// Comment is a line or block comment anchored to a line.
type Comment struct {
	Line    int    // owning line number
	Raw     string // text including delimiters
	Block   bool
	Content string // trimmed, de-indented text
}

// StringLiteral is a double-quoted literal anchored to the line it opens on.
type StringLiteral struct {
	Line int
	Raw  string // text including quotes
}

package render

import (
	"strings"
	"testing"

	"github.com/mvp-joe/scriptdoc/internal/script"
	"github.com/stretchr/testify/assert"
)

// Test Plan for Render:
// - Full page layout: contents, overview, top-level sections, script sections
// - Function and script headings become links when a URL prefix is set
// - Functions are set as code and scripts carry a "Script:" label; anchors follow the plain title
// - A heading's doc comment lookup skips its first child (its own end line)
// - Headings with only private functions are omitted from contents and body
// - Scripts come after every top-level entry, in order of first appearance
// - Nested scripts are flush left in contents and restart at level 2 in the body
// - Overview is omitted when the document has no leading comment
// - Rendering is deterministic
// - Sections counts the sections the body writes

func join(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}

var mailSource = join(
	"(* Mail helpers *)",
	"on "+script.Marker+"Public()",
	"end "+script.Marker+"Public",
	"",
	"(* Things callers use *)",
	"",
	"on send(msg)",
	"\t-- Sends msg",
	"\treturn msg",
	"end send",
	"on _helper()",
	"end _helper",
	"on run",
	"\tscript Worker",
	"\t\t-- Does work",
	"\t\ton work()",
	"\t\t\t-- Works",
	"\t\tend work",
	"\tend script",
	"end run",
	"on "+script.Marker+"Private()",
	"end "+script.Marker+"Private",
	"on _hidden()",
	"end _hidden",
)

func TestRender_FullPage(t *testing.T) {
	t.Parallel()

	got := Render(script.Parse(mailSource), Options{Title: "Mail"})

	want := join(
		"# Mail",
		"## Contents",
		"",
		"- [Overview](#overview)",
		"- [Public](#public)",
		"  - [`send(msg)`](#sendmsg)",
		"  - [`run`](#run)",
		"- [Script:`Worker`](#script-worker)",
		"  - [`work()`](#work)",
		"",
		"## Overview",
		"",
		"Mail helpers",
		"",
		"## Public",
		"",
		"Things callers use",
		"",
		"### `send(msg)`",
		"",
		"Sends msg",
		"",
		"### `run`",
		"",
		"## Script: Worker",
		"",
		"Does work",
		"",
		"### `work()`",
		"",
		"Works",
	)
	assert.Equal(t, want, got)
}

func TestRender_SourceLinks(t *testing.T) {
	t.Parallel()

	got := Render(script.Parse(mailSource), Options{Title: "Mail", URLPrefix: "https://example.com/mail.applescript#L"})

	assert.Contains(t, got, "## Public\n")
	assert.Contains(t, got, "### [send(msg)](https://example.com/mail.applescript#L7)\n")
	assert.Contains(t, got, "### [run](https://example.com/mail.applescript#L13)\n")
	assert.Contains(t, got, "## [Script: Worker](https://example.com/mail.applescript#L14)\n")
	assert.Contains(t, got, "### [work()](https://example.com/mail.applescript#L16)\n")
	assert.Contains(t, got, "  - [`send(msg)`](#sendmsg)\n", "contents entries stay anchors")
}

func TestRender_HeadingDocSkipsFirstChild(t *testing.T) {
	t.Parallel()

	got := Render(script.Parse(join(
		"on "+script.Marker+"A()",
		"-- first child of heading",
		"on foo()",
		"end foo",
	)), Options{Title: "T"})

	assert.NotContains(t, got, "first child of heading")
	assert.Contains(t, got, "## A\n\n### `foo()`\n")
}

func TestRender_PrivateOnlyHeadingOmitted(t *testing.T) {
	t.Parallel()

	got := Render(script.Parse(join(
		"on "+script.Marker+"Internals()",
		"\t-- not shown",
		"on _a()",
		"end _a",
		"on _b()",
		"end _b",
	)), Options{Title: "T"})

	assert.NotContains(t, got, "Internals")
	assert.NotContains(t, got, "not shown")
	assert.NotContains(t, got, "_a")
	assert.Equal(t, "# T\n## Contents\n", got)
}

func TestRender_ScriptsAfterTopLevelEntries(t *testing.T) {
	t.Parallel()

	got := Render(script.Parse(join(
		"on "+script.Marker+"A()",
		"script S",
		"on inner()",
		"end inner",
		"end script",
		"on f()",
		"end f",
		"on "+script.Marker+"B()",
		"on g()",
		"end g",
	)), Options{Title: "T"})

	want := join(
		"# T",
		"## Contents",
		"",
		"- [A](#a)",
		"  - [`f()`](#f)",
		"- [B](#b)",
		"  - [`g()`](#g)",
		"- [Script:`S`](#script-s)",
		"  - [`inner()`](#inner)",
		"",
		"## A",
		"",
		"### `f()`",
		"",
		"## B",
		"",
		"### `g()`",
		"",
		"## Script: S",
		"",
		"### `inner()`",
	)
	assert.Equal(t, want, got)
}

func TestRender_NestedScripts(t *testing.T) {
	t.Parallel()

	got := Render(script.Parse(join(
		"script Outer",
		"\ton a()",
		"\tend a",
		"\tscript Inner",
		"\t\ton b()",
		"\t\tend b",
		"\tend script",
		"end script",
	)), Options{Title: "T"})

	want := join(
		"# T",
		"## Contents",
		"",
		"- [Script:`Outer`](#script-outer)",
		"  - [`a()`](#a)",
		"- [Script:`Inner`](#script-inner)",
		"  - [`b()`](#b)",
		"",
		"## Script: Outer",
		"",
		"### `a()`",
		"",
		"## Script: Inner",
		"",
		"### `b()`",
	)
	assert.Equal(t, want, got)
}

func TestRender_HeadingWithNestedScriptIsVisible(t *testing.T) {
	t.Parallel()

	got := Render(script.Parse(join(
		"on "+script.Marker+"Section()",
		"on _setup()",
		"\tscript Helper",
		"\tend script",
		"end _setup",
	)), Options{Title: "T"})

	assert.Contains(t, got, "- [Section](#section)\n")
	assert.Contains(t, got, "- [Script:`Helper`](#script-helper)\n")
	assert.NotContains(t, got, "_setup")
}

func TestRender_FirstNonBlankChildOnly(t *testing.T) {
	t.Parallel()

	got := Render(script.Parse(join(
		"on f()",
		"",
		"\tset x to 1",
		"\t-- too late",
		"end f",
	)), Options{Title: "T"})

	assert.NotContains(t, got, "too late")
}

func TestRender_NoOverview(t *testing.T) {
	t.Parallel()

	got := Render(script.Parse(join("on run", "end run")), Options{Title: "T"})

	assert.NotContains(t, got, "Overview")
	assert.Equal(t, "# T\n## Contents\n\n- [`run`](#run)\n\n## `run`\n", got)
}

func TestRender_Deterministic(t *testing.T) {
	t.Parallel()

	doc := script.Parse(mailSource)
	opts := Options{Title: "Mail", URLPrefix: "u#L"}

	assert.Equal(t, Render(doc, opts), Render(doc, opts))
}

func TestRender_EmptyDocument(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "# Empty\n## Contents\n", Render(script.Parse(""), Options{Title: "Empty"}))
}

func TestSections_CountsRenderedSections(t *testing.T) {
	t.Parallel()

	// Public, send(msg), run, Worker, work()
	assert.Equal(t, 5, Sections(script.Parse(mailSource)))
	assert.Equal(t, 0, Sections(script.Parse("")))
}

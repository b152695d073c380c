package script

// scope is one open entry on the hierarchy stack. Each variant carries only
// the fields its closing rule needs.
type scope interface {
	line() int // arena index of the opening line
	kind() Kind
}

// headingScope has no end line of its own: "end <marker>Name" is an
// ordinary child, and the heading stays open until a sibling heading or the
// enclosing script's end.
type headingScope struct {
	idx int
}

type functionScope struct {
	idx    int
	indent string
	name   string
}

type scriptScope struct {
	idx    int
	indent string
}

func (s headingScope) line() int  { return s.idx }
func (s headingScope) kind() Kind { return KindHeading }

func (s functionScope) line() int  { return s.idx }
func (s functionScope) kind() Kind { return KindFunction }

func (s scriptScope) line() int  { return s.idx }
func (s scriptScope) kind() Kind { return KindScript }

// newScope builds the stack entry for an opening line.
func newScope(idx int, l *Line) scope {
	switch l.Kind {
	case KindHeading:
		return headingScope{idx: idx}
	case KindFunction:
		return functionScope{idx: idx, indent: l.Indent, name: l.RawName}
	case KindScript:
		return scriptScope{idx: idx, indent: l.Indent}
	}
	return nil
}

type scopeStack []scope

func (st scopeStack) top() scope {
	if len(st) == 0 {
		return nil
	}
	return st[len(st)-1]
}

func (st scopeStack) below() scope {
	if len(st) < 2 {
		return nil
	}
	return st[len(st)-2]
}

func (st *scopeStack) push(s scope) { *st = append(*st, s) }

func (st *scopeStack) pop(n int) {
	*st = (*st)[:len(*st)-n]
}

// closeRule returns how many entries the current line closes, counted from
// the top of the stack.
type closeRule func(st scopeStack, cur *Line) int

// closeRules is the transition table keyed on the kind of the stack top.
var closeRules = map[Kind]closeRule{
	KindHeading:  closeHeading,
	KindFunction: closeFunction,
	KindScript:   closeScript,
}

// closing looks up the rule for the current stack top.
func closing(st scopeStack, cur *Line) int {
	top := st.top()
	if top == nil {
		return 0
	}
	return closeRules[top.kind()](st, cur)
}

// closeHeading: a sibling heading closes the open one. An "end script" for
// an enclosing script also closes the heading first.
func closeHeading(st scopeStack, cur *Line) int {
	if cur.Kind == KindHeading {
		return 1
	}
	if sc, ok := st.below().(scriptScope); ok && isEnd(cur.Code, sc.indent, "script") {
		return 2
	}
	return 0
}

func closeFunction(st scopeStack, cur *Line) int {
	f := st.top().(functionScope)
	if isEnd(cur.Code, f.indent, f.name) {
		return 1
	}
	return 0
}

func closeScript(st scopeStack, cur *Line) int {
	sc := st.top().(scriptScope)
	if isEnd(cur.Code, sc.indent, "script") {
		return 1
	}
	return 0
}

// isEnd matches "end <name>" at the opener's indentation, allowing one
// trailing space left behind by a stripped trailing comment.
func isEnd(code, indent, name string) bool {
	want := indent + "end " + name
	return code == want || code == want+" "
}

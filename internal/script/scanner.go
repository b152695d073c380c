package script

import "strings"

type scanMode int

const (
	modeNormal scanMode = iota
	modeString
	modeLineComment
	modeBlockComment
)

// scanner holds the state of a single left-to-right pass over the source.
// All delimiters are ASCII, so the source is walked byte by byte; multi-byte
// UTF-8 sequences never collide with them.
type scanner struct {
	src string

	lines    []Line
	comments map[int]Comment
	strs     map[int][]StringLiteral

	mode     scanMode
	escaped  bool
	counting bool // still inside the leading tab run of the line
	line     int
	indent   strings.Builder
	code     strings.Builder
	segLen   int // bytes consumed since the last newline

	tokStart  int    // offset where the open string or comment began
	tokLine   int    // line the open string or block comment began on
	tokIndent string // indentation of tokLine
}

// Scan splits src into classified Lines, a Line->Comment map and a
// Line->StringLiteral map. Unterminated strings and comments at end of input
// are dropped without error.
func Scan(src string) ([]Line, map[int]Comment, map[int][]StringLiteral) {
	s := &scanner{
		src:      src,
		comments: make(map[int]Comment),
		strs:     make(map[int][]StringLiteral),
		counting: true,
		line:     1,
	}
	s.run()
	return s.lines, s.comments, s.strs
}

func (s *scanner) run() {
	for i := 0; i < len(s.src); i++ {
		c := s.src[i]

		if c == '\n' {
			if s.mode == modeLineComment {
				s.emitComment(s.src[s.tokStart:i], false, s.line, "")
				s.mode = modeNormal
			}
			// An escaped newline is the escaped character.
			if s.mode == modeString {
				s.escaped = false
			}
			s.emitLine()
			continue
		}

		s.segLen++
		if s.counting {
			if c == '\t' {
				s.indent.WriteByte(c)
			} else {
				s.counting = false
			}
		}

		switch s.mode {
		case modeNormal:
			i = s.normal(i, c)
		case modeString:
			s.inString(i, c)
		case modeBlockComment:
			if c == '*' && s.peek(i) == ')' {
				s.emitComment(s.src[s.tokStart:i+2], true, s.tokLine, s.tokIndent)
				s.mode = modeNormal
				s.segLen++
				i++
			}
		}
	}

	if s.segLen > 0 {
		s.emitLine()
	}
}

// normal handles one byte in Normal mode and returns the index of the last
// byte it consumed.
func (s *scanner) normal(i int, c byte) int {
	next := s.peek(i)
	switch {
	case c == '"' && next == '"':
		// Empty string: one quote stays in the code, no literal is recorded.
		s.code.WriteByte('"')
		s.segLen++
		return i + 1
	case c == '"':
		s.mode = modeString
		s.escaped = false
		s.tokStart = i
		s.tokLine = s.line
		return i
	case c == '-' && next == '-':
		s.mode = modeLineComment
		s.tokStart = i
		s.segLen++
		return i + 1
	case c == '(' && next == '*':
		s.mode = modeBlockComment
		s.tokStart = i
		s.tokLine = s.line
		s.tokIndent = s.indent.String()
		s.segLen++
		return i + 1
	}
	s.code.WriteByte(c)
	return i
}

func (s *scanner) inString(i int, c byte) {
	switch {
	case s.escaped:
		s.escaped = false
	case c == '\\':
		s.escaped = true
	case c == '"':
		s.strs[s.tokLine] = append(s.strs[s.tokLine], StringLiteral{
			Line: s.tokLine,
			Raw:  s.src[s.tokStart : i+1],
		})
		s.mode = modeNormal
	}
}

func (s *scanner) peek(i int) byte {
	if i+1 < len(s.src) {
		return s.src[i+1]
	}
	return 0
}

func (s *scanner) emitLine() {
	l := Line{
		Number: s.line,
		Indent: s.indent.String(),
		Code:   s.code.String(),
		Parent: -1,
	}
	classify(&l)
	s.lines = append(s.lines, l)

	s.line++
	s.indent.Reset()
	s.code.Reset()
	s.counting = true
	s.segLen = 0
}

// emitComment records a comment for line. A later comment on the same line
// replaces an earlier one.
func (s *scanner) emitComment(raw string, block bool, line int, anchorIndent string) {
	var content string
	if block {
		content = deindent(strings.TrimSpace(raw[2:len(raw)-2]), anchorIndent)
	} else {
		content = strings.TrimSpace(raw[2:])
	}
	s.comments[line] = Comment{
		Line:    line,
		Raw:     raw,
		Block:   block,
		Content: content,
	}
}

// deindent strips the anchor line's indentation from every line of a block
// comment body. One tab beyond the anchor indentation is stripped when
// present, so the usual one-level-deeper comment body comes out flush.
func deindent(text, anchorIndent string) string {
	lines := strings.Split(text, "\n")
	deeper := anchorIndent + "\t"
	for i, l := range lines {
		switch {
		case strings.HasPrefix(l, deeper):
			lines[i] = l[len(deeper):]
		case strings.HasPrefix(l, anchorIndent):
			lines[i] = l[len(anchorIndent):]
		}
	}
	return strings.Join(lines, "\n")
}

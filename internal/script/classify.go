package script

import "strings"

// classify derives Kind, names and privacy from the line's code and
// indentation. The checks are exclusive and run in priority order.
func classify(l *Line) {
	on := l.Indent + "on "

	if strings.HasPrefix(l.Code, on+Marker) {
		rest := l.Code[len(on)+len(Marker):]
		l.Kind = KindHeading
		if p := strings.IndexByte(rest, '('); p >= 0 {
			l.RawName = Marker + rest[:p]
			l.Name = strings.TrimSpace(strings.ReplaceAll(rest[:p], "_", " "))
		} else {
			l.RawName = Marker + strings.TrimRight(rest, " \t")
		}
		return
	}

	if strings.HasPrefix(l.Code, on) && !isErrorHandler(l) {
		rest := l.Code[len(on):]
		l.Kind = KindFunction
		if p := strings.IndexByte(rest, '('); p >= 0 {
			l.Name = rest[:p]
			l.HasArgs = true
			params := rest[p+1:]
			if q := strings.IndexByte(params, ')'); q >= 0 {
				params = params[:q]
			}
			l.Params = params
		} else {
			l.Name = strings.TrimRight(rest, " \t")
		}
		l.RawName = l.Name
		l.Private = strings.HasPrefix(l.Name, "_")
		return
	}

	if strings.HasPrefix(l.Code, l.Indent+"script ") {
		l.Kind = KindScript
		l.Name = strings.TrimSpace(l.Code[len(l.Indent)+len("script "):])
		l.RawName = l.Name
		return
	}

	l.Kind = KindNone
}

// isErrorHandler reports whether the line opens a try block's "on error"
// clause, which shares the "on " prefix with function openers.
func isErrorHandler(l *Line) bool {
	onError := l.Indent + "on error"
	return l.Code == onError || strings.HasPrefix(l.Code, onError+" ")
}

// Anchor derives an HTML-safe fragment id from a display label.
func Anchor(label string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(label) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('-')
		}
	}
	return b.String()
}

package transcript

import "strings"

// Normalize applies the two wire fix-ups some producers require before
// markdown parsing: literal "\n" escape sequences become real newlines, and
// table/row open tags glued to their attribute list get the missing space
// back. Both rewrites are idempotent, so re-normalizing is harmless.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, `\n`, "\n")
	s = repairAttrSpace(s, "<table")
	s = repairAttrSpace(s, "<tr")
	return s
}

// repairAttrSpace inserts the space between a tag name and an attribute list
// glued directly to it, e.g. <trbgcolor="..."> -> <tr bgcolor="...">. The
// repair fires only when an unbroken word-character run leads straight into
// '='; tags that merely share the prefix, like <transition> or <track>, are
// left alone.
func repairAttrSpace(s, tag string) string {
	var b strings.Builder
	for {
		i := strings.Index(s, tag)
		if i < 0 {
			b.WriteString(s)
			break
		}
		cut := i + len(tag)
		b.WriteString(s[:cut])
		s = s[cut:]
		if gluedAttr(s) {
			b.WriteByte(' ')
		}
	}
	return b.String()
}

// gluedAttr reports whether s starts with an attribute name fused to the
// preceding tag name: zero or more word characters terminated by '='.
func gluedAttr(s string) bool {
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '=':
			return true
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_':
			continue
		default:
			return false
		}
	}
	return false
}

package transcript

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
)

// Wire delimiters. Embedded tool blocks arrive as <view ...>{json}</view>
// spans inside the message body; the relation list trails the body after a
// literal tab-separated keyword.
const (
	openTagName       = "<view"
	closeTag          = "</view>"
	RelationSeparator = "\trelations:"

	// PlaceholderTag names the synthetic token substituted for each decoded
	// block: <toolblock>N</toolblock>, N a dense 0-based table index.
	PlaceholderTag = "toolblock"
)

var errNotARecord = errors.New("block content is not a tool record")

// Extractor runs the payload pipeline. The zero value is usable; Logger,
// when set, receives diagnostics for skipped blocks.
type Extractor struct {
	Logger *log.Logger
}

// Extract splits off the trailing relation list, then rewrites every
// well-formed embedded block into a placeholder token while collecting the
// decoded records in source order. Malformed or unterminated blocks pass
// through as literal text. Extract never fails.
func (e Extractor) Extract(raw string) (markdown string, records []Record, relations []string) {
	body, relations := splitRelations(raw)

	var out strings.Builder
	for {
		start, contentStart := findOpenTag(body)
		if start < 0 {
			out.WriteString(body)
			break
		}
		rel := strings.Index(body[contentStart:], closeTag)
		if rel < 0 {
			// Unterminated block: everything from the open tag on is literal.
			out.WriteString(body)
			break
		}
		inner := body[contentStart : contentStart+rel]
		spanEnd := contentStart + rel + len(closeTag)

		rec, err := decodeRecord(inner)
		if err != nil {
			e.logf("tool block at offset %d left verbatim: %v", start, err)
			out.WriteString(body[:spanEnd])
		} else {
			rec.Result = Normalize(rec.Result)
			out.WriteString(body[:start])
			fmt.Fprintf(&out, "<%s>%d</%s>", PlaceholderTag, len(records), PlaceholderTag)
			records = append(records, rec)
		}
		body = body[spanEnd:]
	}
	return out.String(), records, relations
}

// Extract runs the pipeline with a silent zero-value Extractor.
func Extract(raw string) (string, []Record, []string) {
	return Extractor{}.Extract(raw)
}

func (e Extractor) logf(format string, args ...any) {
	if e.Logger != nil {
		e.Logger.Printf(format, args...)
	}
}

// splitRelations cuts the relation segment off the end of the payload. Only
// the last separator occurrence counts, so body text mentioning the token
// earlier survives intact.
func splitRelations(raw string) (string, []string) {
	idx := strings.LastIndex(raw, RelationSeparator)
	if idx < 0 {
		return raw, nil
	}
	var relations []string
	for _, part := range strings.Split(raw[idx+len(RelationSeparator):], ",") {
		if id := strings.TrimSpace(part); id != "" {
			relations = append(relations, id)
		}
	}
	return raw[:idx], relations
}

// findOpenTag locates the next <view> or <view attr...> open tag, returning
// the tag start and the index just past its closing '>'. Both are -1 when no
// complete open tag remains.
func findOpenTag(body string) (start, contentStart int) {
	offset := 0
	for {
		i := strings.Index(body[offset:], openTagName)
		if i < 0 {
			return -1, -1
		}
		i += offset
		after := i + len(openTagName)
		if after >= len(body) {
			return -1, -1
		}
		// Reject longer tag names sharing the prefix, e.g. <viewport>.
		switch body[after] {
		case '>':
			return i, after + 1
		case ' ', '\t', '\n':
			end := strings.IndexByte(body[after:], '>')
			if end < 0 {
				return -1, -1
			}
			return i, after + end + 1
		}
		offset = after
	}
}

// decodeRecord strips any wrapper markup from the block interior and decodes
// the remaining JSON. A decode that yields neither a name nor a status is
// treated as malformed; an unrecognized status value is not.
func decodeRecord(inner string) (Record, error) {
	candidate := stripMarkup(inner)
	var rec Record
	if err := json.Unmarshal([]byte(candidate), &rec); err != nil {
		return Record{}, err
	}
	if rec.Name == "" && rec.Status == "" {
		return Record{}, errNotARecord
	}
	return rec, nil
}

// stripMarkup peels wrapper tag pairs off the block interior. The embedded
// JSON is sometimes shipped inside an extra <pre>/<code> shell; tags inside
// JSON string values are left alone.
func stripMarkup(s string) string {
	s = strings.TrimSpace(s)
	for strings.HasPrefix(s, "<") {
		end := strings.IndexByte(s, '>')
		if end < 0 {
			break
		}
		name := tagName(s[1:end])
		if name == "" {
			break
		}
		closer := "</" + name + ">"
		if !strings.HasSuffix(s, closer) {
			break
		}
		s = strings.TrimSpace(s[end+1 : len(s)-len(closer)])
	}
	return s
}

// tagName returns the leading identifier of a tag interior, or "" when the
// interior does not start with one.
func tagName(s string) string {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' && i > 0 {
			continue
		}
		return s[:i]
	}
	return s
}

// Segment is one piece of an extracted markdown body: either literal text or
// a placeholder reference into the record table.
type Segment struct {
	Text  string
	Index int
	IsRef bool
}

// Segments splits an extracted body around placeholder tokens so a renderer
// can expand each reference. Tokens with a non-numeric interior are returned
// as literal text.
func Segments(markdown string) []Segment {
	openTok := "<" + PlaceholderTag + ">"
	closeTok := "</" + PlaceholderTag + ">"

	var segs []Segment
	for {
		i := strings.Index(markdown, openTok)
		if i < 0 {
			break
		}
		j := strings.Index(markdown[i:], closeTok)
		if j < 0 {
			break
		}
		inner := markdown[i+len(openTok) : i+j]
		if i > 0 {
			segs = append(segs, Segment{Text: markdown[:i]})
		}
		if idx, err := strconv.Atoi(strings.TrimSpace(inner)); err == nil {
			segs = append(segs, Segment{Index: idx, IsRef: true, Text: inner})
		} else {
			segs = append(segs, Segment{Text: markdown[i : i+j+len(closeTok)]})
		}
		markdown = markdown[i+j+len(closeTok):]
	}
	if markdown != "" {
		segs = append(segs, Segment{Text: markdown})
	}
	return segs
}

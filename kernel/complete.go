package kernel

import (
	"strings"
	"unicode"

	"github.com/npillmayer/xterex/terex/terexlang"
)

// CompleteReply is the reply to a completion request. Cursor positions are
// offsets in code points.
type CompleteReply struct {
	Matches     []string `json:"matches"`
	CursorStart int      `json:"cursor_start"`
	CursorEnd   int      `json:"cursor_end"`
}

// Complete looks up keywords starting with the token left of the cursor. The
// token extends back to the nearest whitespace, opening parenthesis or quote.
// Matches are reported in keyword table order.
func Complete(code string, cursor int) CompleteReply {
	runes := []rune(code)
	cursor = clampCursor(cursor, len(runes))
	start := tokenStart(runes, cursor)
	reply := CompleteReply{Matches: []string{}, CursorStart: cursor, CursorEnd: cursor}
	token := string(runes[start:cursor])
	if token == "" {
		return reply
	}
	reply.CursorStart = start
	for _, kw := range terexlang.Keywords {
		if strings.HasPrefix(kw.Name, token) {
			reply.Matches = append(reply.Matches, kw.Name)
		}
	}
	tracer().Debugf("completion of %q: %d matches", token, len(reply.Matches))
	return reply
}

func isDelimiter(r rune) bool {
	return unicode.IsSpace(r) || r == '(' || r == ')' || r == '\''
}

func clampCursor(cursor, n int) int {
	if cursor < 0 {
		return 0
	}
	if cursor > n {
		return n
	}
	return cursor
}

func tokenStart(runes []rune, cursor int) int {
	start := cursor
	for start > 0 && !isDelimiter(runes[start-1]) {
		start--
	}
	return start
}

func tokenEnd(runes []rune, cursor int) int {
	end := cursor
	for end < len(runes) && !isDelimiter(runes[end]) {
		end++
	}
	return end
}

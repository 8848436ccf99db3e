package kernel

import (
	"github.com/cnf/structhash"
	"github.com/npillmayer/xterex/terex/terexlang"
)

// HistoryEntry is an executed request.
type HistoryEntry struct {
	ExecutionCount int    `json:"execution_count"`
	Source         string `json:"source"`
}

// History records executed requests of a kernel.
type History struct {
	entries []HistoryEntry
}

// Add records a request.
func (h *History) Add(count int, source string) {
	h.entries = append(h.entries, HistoryEntry{ExecutionCount: count, Source: source})
}

// Len returns the number of recorded requests.
func (h *History) Len() int {
	return len(h.entries)
}

// Tail returns the last n entries, all of them for n <= 0. With unique set,
// only the latest of several entries with the same source is kept. Sources
// are compared by their parsed form: layout and comments do not count.
func (h *History) Tail(n int, unique bool) []HistoryEntry {
	entries := h.entries
	if unique {
		entries = h.distinct()
	}
	if n > 0 && n < len(entries) {
		entries = entries[len(entries)-n:]
	}
	return append([]HistoryEntry(nil), entries...)
}

func (h *History) distinct() []HistoryEntry {
	seen := make(map[string]bool, len(h.entries))
	var rev []HistoryEntry
	for i := len(h.entries) - 1; i >= 0; i-- {
		e := h.entries[i]
		key := sourceKey(e.Source)
		if seen[key] {
			continue
		}
		seen[key] = true
		rev = append(rev, e)
	}
	for i, j := 0, len(rev)-1; i < j; i, j = i+1, j-1 {
		rev[i], rev[j] = rev[j], rev[i]
	}
	return rev
}

// shape is the layout-free form of a parsed expression.
type shape struct {
	Kind  int
	Num   float64
	Text  string
	Items []shape
}

func shapeOf(n *terexlang.Node) shape {
	sh := shape{Kind: int(n.Kind), Num: n.Num, Text: n.Text}
	for _, item := range n.Items {
		sh.Items = append(sh.Items, shapeOf(item))
	}
	return sh
}

// sourceKey hashes the parsed form of source. Source which does not parse is
// keyed by its text.
func sourceKey(source string) string {
	var v interface{}
	if exprs, err := terexlang.Parse(source); err == nil {
		shapes := make([]shape, len(exprs))
		for i, e := range exprs {
			shapes[i] = shapeOf(e)
		}
		v = struct{ Exprs []shape }{shapes}
	} else {
		v = struct{ Source string }{source}
	}
	key, err := structhash.Hash(v, 1)
	if err != nil {
		tracer().Errorf("cannot hash history entry: %v", err)
		return source
	}
	return key
}

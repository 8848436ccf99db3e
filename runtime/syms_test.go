package runtime

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestNewSymTab(t *testing.T) {
	symtab := NewSymbolTable()
	if symtab == nil {
		t.Error("no symbol table created")
	}
}

func TestNewSymbol(t *testing.T) {
	symtab := NewSymbolTable()
	sym, _ := symtab.DefineTag("new-sym")
	if sym == nil {
		t.Error("no symbol created for table")
	}
	sym.Value = 5.0
	if sym.Value != 5.0 {
		t.Errorf("Value does not work")
	}
}

func TestEmptyTagName(t *testing.T) {
	symtab := NewSymbolTable()
	if sym, _ := symtab.DefineTag(""); sym != nil {
		t.Errorf("expected empty tag name to be rejected")
	}
}

func TestResolveOrDefineTag(t *testing.T) {
	symtab := NewSymbolTable()
	sym, _ := symtab.DefineTag("new-sym")
	if _, found := symtab.ResolveOrDefineTag(sym.Name()); !found {
		t.Error("cannot find stored symbol in table")
	}
	if _, found := symtab.ResolveOrDefineTag("other"); found {
		t.Error("expected 'other' to be freshly defined")
	}
}

func TestDefineTag(t *testing.T) {
	symtab := NewSymbolTable()
	sym, _ := symtab.DefineTag("new-sym")
	if _, old := symtab.DefineTag("new-sym"); old != sym {
		t.Error("symbol should have been replaced")
	}
}

func TestNamesSorted(t *testing.T) {
	symtab := NewSymbolTable()
	for _, n := range []string{"zeta", "alpha", "mid"} {
		symtab.DefineTag(n)
	}
	if diff := cmp.Diff([]string{"alpha", "mid", "zeta"}, symtab.Names()); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestScopeUpsearch(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "xterex.runtime")
	defer teardown()
	//
	tree := new(ScopeTree)
	parent := tree.PushNewScope("parent")
	scope := tree.PushNewScope("current")
	parent.DefineTag("new-sym")
	sym, found := scope.ResolveTag("new-sym")
	if sym == nil {
		t.Fatalf("expected to find symbol in parent scope")
	}
	if found != parent {
		t.Errorf("expected symbol to be found in parent scope, found in %v", found)
	}
	if tree.PopScope() != scope {
		t.Errorf("expected to pop current scope")
	}
}

func TestMemoryFrames(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "xterex.runtime")
	defer teardown()
	//
	rt := NewRuntimeEnvironment()
	g, _ := rt.Globals().DefineTag("x")
	g.Value = 1.0
	rt.MemFrameStack.PushNewMemoryFrame("f")
	rt.MemFrameStack.PushNewMemoryFrame("g")
	if rt.MemFrameStack.Depth() != 3 {
		t.Errorf("expected depth 3, is %d", rt.MemFrameStack.Depth())
	}
	if rt.MemFrameStack.Current().Name != "g" {
		t.Errorf("expected frame g on top, is %s", rt.MemFrameStack.Current())
	}
	rt.Unwind()
	if rt.MemFrameStack.Depth() != 1 {
		t.Errorf("expected unwind to leave the global frame only, depth is %d", rt.MemFrameStack.Depth())
	}
	if rt.Globals().ResolveTag("x") == nil {
		t.Errorf("expected unwind to keep globals")
	}
	rt.Reset()
	if rt.Globals().Size() != 0 {
		t.Errorf("expected reset to clear globals")
	}
}

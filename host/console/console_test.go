package console

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/xterex/config"
	"github.com/npillmayer/xterex/kernel"
	"github.com/pterm/pterm"
)

func startConsole(t *testing.T) (*Console, *bytes.Buffer) {
	stream := &bytes.Buffer{}
	cfg := config.Default().Console
	cfg.Color = false
	c := New(cfg, stream)
	if err := c.Kernel().Start(); err != nil {
		t.Fatal(err)
	}
	return c, stream
}

func TestSubmitCollectsIncompleteInput(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "xterex.host")
	defer teardown()
	//
	c, _ := startConsole(t)
	if _, ready := c.Submit("(defn twice (x)"); ready {
		t.Fatalf("expected incomplete input to be held back")
	}
	code, ready := c.Submit("  (* 2 x))")
	if !ready || code != "(defn twice (x)\n  (* 2 x))" {
		t.Fatalf("expected complete input, got %q (ready=%v)", code, ready)
	}
	reply := c.Execute(code + "\n(print (twice 21))")
	if reply.Status != kernel.StatusOK || reply.PublishedResult.Text != "42\n" {
		t.Errorf("unexpected reply %+v", reply)
	}
}

func TestWarningsGoToStream(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "xterex.host")
	defer teardown()
	//
	c, stream := startConsole(t)
	c.Execute(`(warn "mind the gap")`)
	if stream.String() != "Warning [UserWarning]: mind the gap\n" {
		t.Errorf("unexpected stream output %q", stream.String())
	}
}

func TestCommands(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "xterex.host")
	defer teardown()
	//
	c, _ := startConsole(t)
	c.Execute("(def a 1)")
	if quit, err := c.Command(":reset"); quit || err != nil {
		t.Fatalf("unexpected result of :reset: %v, %v", quit, err)
	}
	if globals, _ := c.Kernel().Globals(); len(globals) != 0 {
		t.Errorf("expected :reset to drop globals, have %v", globals)
	}
	if _, err := c.Command(":nonsense"); err == nil {
		t.Errorf("expected unknown command to be rejected")
	}
	if quit := c.Eval(":quit"); !quit {
		t.Errorf("expected :quit to quit")
	}
}

func TestGlobalsList(t *testing.T) {
	ll := globalsList([]kernel.Global{{Name: "a", Value: "1"}, {Name: "f", Value: "<fn f/1>"}})
	expected := pterm.LeveledList{
		{Level: 0, Text: "a"}, {Level: 1, Text: "1"},
		{Level: 0, Text: "f"}, {Level: 1, Text: "<fn f/1>"},
	}
	if diff := cmp.Diff(expected, ll); diff != "" {
		t.Errorf("leveled list mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadInitFile(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "xterex.host")
	defer teardown()
	//
	c, _ := startConsole(t)
	src := "; init\n(def greeting\n  \"hello\")\n\n(defn greet (name)\n  (str greeting \", \" name))\n"
	if err := c.load(strings.NewReader(src)); err != nil {
		t.Fatal(err)
	}
	reply := c.Execute(`(print (greet "world"))`)
	if reply.PublishedResult == nil || reply.PublishedResult.Text != "hello, world\n" {
		t.Errorf("unexpected reply %+v", reply)
	}
	if err := c.load(strings.NewReader("(print nope)\n")); err == nil {
		t.Errorf("expected failing init file to report an error")
	}
}

func TestCompleter(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "xterex.host")
	defer teardown()
	//
	c, _ := startConsole(t)
	cands, length := completer{kernel: c.Kernel()}.Do([]rune("(pri"), 4)
	if length != 3 {
		t.Errorf("expected token length 3, got %d", length)
	}
	if diff := cmp.Diff([][]rune{[]rune("nt")}, cands); diff != "" {
		t.Errorf("candidates mismatch (-want +got):\n%s", diff)
	}
}

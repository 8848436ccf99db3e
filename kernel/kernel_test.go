package kernel

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

// recorder collects stream notifications and replies in the order they
// arrive.
type recorder struct {
	events  []string
	replies []ExecuteReply
}

func (r *recorder) PublishStream(channel, text string) {
	r.events = append(r.events, channel+": "+text)
}

func (r *recorder) send(reply ExecuteReply) {
	r.events = append(r.events, "reply: "+reply.Status)
	r.replies = append(r.replies, reply)
}

func (r *recorder) last() ExecuteReply {
	return r.replies[len(r.replies)-1]
}

func startKernel(t *testing.T) (*Kernel, *recorder) {
	rec := &recorder{}
	k := New(rec)
	if err := k.Start(); err != nil {
		t.Fatal(err)
	}
	return k, rec
}

func execute(t *testing.T, k *Kernel, rec *recorder, code string) ExecuteReply {
	if err := k.Execute(ExecuteRequest{Code: code, StoreHistory: true}, rec.send); err != nil {
		t.Fatal(err)
	}
	return rec.last()
}

func TestCompileFailureReply(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "xterex.kernel")
	defer teardown()
	//
	k, rec := startKernel(t)
	for _, code := range []string{"(print 1", ")", "(def)", "(print \"x)"} {
		reply := execute(t, k, rec, code)
		if reply.Status != StatusError || reply.PublishedResult != nil {
			t.Errorf("%q: expected error reply without result, got %+v", code, reply)
		}
		if len(reply.Traceback) != 1 || !strings.HasPrefix(reply.Traceback[0], "Compilation error") {
			t.Errorf("%q: expected single compilation error line, got %v", code, reply.Traceback)
		}
	}
	reply := execute(t, k, rec, "(def)")
	expected := ExecuteReply{
		Status:         StatusError,
		ExecutionCount: 5,
		ErrorName:      "BadForm",
		ErrorValue:     "def expects a name and a value",
		Traceback:      []string{"Compilation error [BadForm]: def expects a name and a value"},
	}
	if diff := cmp.Diff(expected, reply); diff != "" {
		t.Errorf("reply mismatch (-want +got):\n%s", diff)
	}
}

func TestSuccessDoesNotLeakOutput(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "xterex.kernel")
	defer teardown()
	//
	k, rec := startKernel(t)
	first := execute(t, k, rec, `(print "A")`)
	second := execute(t, k, rec, "")
	if first.Status != StatusOK || first.PublishedResult.Text != "A\n" {
		t.Errorf("expected 'A', got %+v", first.PublishedResult)
	}
	if second.Status != StatusOK || second.PublishedResult.Text != "" {
		t.Errorf("expected empty output, got %+v", second.PublishedResult)
	}
	if second.PublishedResult.MimeType != MimeTextPlain || second.PublishedResult.ExecutionCount != 2 {
		t.Errorf("unexpected published result %+v", second.PublishedResult)
	}
}

func TestRuntimeFailureReply(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "xterex.kernel")
	defer teardown()
	//
	k, rec := startKernel(t)
	code := `(print "lost output")
(defn f (x)
  (error "bad" x))
(f 7)`
	reply := execute(t, k, rec, code)
	expected := ExecuteReply{
		Status:         StatusError,
		ExecutionCount: 1,
		ErrorName:      "UserError",
		ErrorValue:     "bad 7",
		Traceback: []string{
			"Error [UserError]: bad 7",
			"  in f at line 3",
			"  in global at line 4",
		},
	}
	if diff := cmp.Diff(expected, reply); diff != "" {
		t.Errorf("reply mismatch (-want +got):\n%s", diff)
	}
	// globals defined before the failure survive, the session goes on
	reply = execute(t, k, rec, "(print (first (list f)))")
	if reply.Status != StatusOK || reply.PublishedResult.Text != "<fn f/1>\n" {
		t.Errorf("expected session to continue, got %+v", reply)
	}
}

func TestWarningsStreamedBeforeReply(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "xterex.kernel")
	defer teardown()
	//
	k, rec := startKernel(t)
	reply := execute(t, k, rec, "(def print 1)\n(warn \"one\")\n(warn \"two\")\n(/ 1 0)")
	expected := []string{
		"stderr: Warning [ShadowsBuiltin]: global 'print' shadows a builtin\n",
		"stderr: Warning [UserWarning]: one\n",
		"stderr: Warning [UserWarning]: two\n",
		"reply: error",
	}
	if diff := cmp.Diff(expected, rec.events); diff != "" {
		t.Errorf("event order mismatch (-want +got):\n%s", diff)
	}
	for _, line := range reply.Traceback {
		if strings.Contains(line, "Warning") {
			t.Errorf("warning leaked into traceback: %q", line)
		}
	}
	if reply.ErrorName != "DivideByZero" {
		t.Errorf("expected DivideByZero, got %s", reply.ErrorName)
	}
}

func TestIdempotentRequests(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "xterex.kernel")
	defer teardown()
	//
	k, rec := startKernel(t)
	code := "(print (+ 1 2) \"x\")"
	a := execute(t, k, rec, code)
	b := execute(t, k, rec, code)
	if a.PublishedResult.Text != b.PublishedResult.Text {
		t.Errorf("expected identical output, got %q and %q", a.PublishedResult.Text, b.PublishedResult.Text)
	}
}

func TestSilentRequest(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "xterex.kernel")
	defer teardown()
	//
	k, rec := startKernel(t)
	if err := k.Execute(ExecuteRequest{Code: "(def a 1)", Silent: true}, rec.send); err != nil {
		t.Fatal(err)
	}
	if r := rec.last(); r.Status != StatusOK || r.PublishedResult != nil {
		t.Errorf("expected silent ok reply, got %+v", r)
	}
	if k.ExecutionCount() != 0 || len(k.History(0, false)) != 0 {
		t.Errorf("silent request must neither count nor be recorded")
	}
}

func TestPipelineReturnsToIdle(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "xterex.kernel")
	defer teardown()
	//
	session, err := NewSession(nil)
	if err != nil {
		t.Fatal(err)
	}
	p := NewPipeline(session)
	for _, code := range []string{"(", "(error 1)", "(print 1)"} {
		p.Execute(code)
		if p.State() != Idle {
			t.Errorf("%q: expected pipeline to be idle, is %s", code, p.State())
		}
	}
	if _, ok := p.Execute("(print 2)").(Success); !ok {
		t.Errorf("expected success")
	}
}

func TestSessionShutdownOrder(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "xterex.kernel")
	defer teardown()
	//
	session, err := NewSession(nil)
	if err != nil {
		t.Fatal(err)
	}
	session.Shutdown()
	session.Shutdown()
	if diff := cmp.Diff([]string{"vm", "compiler", "program"}, session.released); diff != "" {
		t.Errorf("release order mismatch (-want +got):\n%s", diff)
	}
	if !session.Closed() || !session.program.Released() {
		t.Errorf("expected session to be closed")
	}
	if ok, rec := session.Compile("(print 1)"); ok || rec.ID != ErrInternal {
		t.Errorf("expected closed session to reject compile")
	}
}

func TestKernelLifecycle(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "xterex.kernel")
	defer teardown()
	//
	rec := &recorder{}
	k := New(rec)
	if err := k.Execute(ExecuteRequest{Code: "1"}, rec.send); !errors.Is(err, ErrNotStarted) {
		t.Errorf("expected ErrNotStarted, got %v", err)
	}
	if len(rec.replies) != 1 || rec.last().Status != StatusError {
		t.Errorf("expected exactly one error reply before start")
	}
	if err := k.Shutdown(false); !errors.Is(err, ErrNotStarted) {
		t.Errorf("expected ErrNotStarted, got %v", err)
	}
	if err := k.Start(); err != nil {
		t.Fatal(err)
	}
	if err := k.Start(); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("expected ErrAlreadyStarted, got %v", err)
	}
	execute(t, k, rec, "(def a 1)")
	if err := k.Shutdown(true); err != nil {
		t.Fatal(err)
	}
	if globals, _ := k.Globals(); len(globals) != 0 {
		t.Errorf("expected restart to drop globals, have %v", globals)
	}
	if err := k.Shutdown(false); err != nil {
		t.Fatal(err)
	}
	if err := k.Shutdown(false); !errors.Is(err, ErrShutdown) {
		t.Errorf("expected ErrShutdown, got %v", err)
	}
	if err := k.Start(); !errors.Is(err, ErrShutdown) {
		t.Errorf("expected ErrShutdown on restart after shutdown, got %v", err)
	}
}

func TestBuildExecuteReplyIsTotal(t *testing.T) {
	outcomes := []Outcome{
		Success{Text: "out"},
		CompileFailure{ID: "BadForm", Message: "m"},
		RuntimeFailure{ID: "UserError", Message: "m", Trace: []string{"Error [UserError]: m"}},
	}
	statuses := []string{StatusOK, StatusError, StatusError}
	for i, o := range outcomes {
		if r := BuildExecuteReply(3, o, false); r.Status != statuses[i] || r.ExecutionCount != 3 {
			t.Errorf("%T: unexpected reply %+v", o, r)
		}
	}
	if r := BuildExecuteReply(3, Success{Text: "out"}, true); r.PublishedResult != nil {
		t.Errorf("expected silent success to publish nothing")
	}
}

func TestCompletion(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "xterex.kernel")
	defer teardown()
	//
	var cases = []struct {
		code   string
		cursor int
		want   CompleteReply
	}{
		{"pri", 3, CompleteReply{Matches: []string{"print"}, CursorStart: 0, CursorEnd: 3}},
		{"x = 1", 5, CompleteReply{Matches: []string{}, CursorStart: 4, CursorEnd: 5}},
		{"(de", 3, CompleteReply{Matches: []string{"def", "defn"}, CursorStart: 1, CursorEnd: 3}},
		{"(print ", 7, CompleteReply{Matches: []string{}, CursorStart: 7, CursorEnd: 7}},
		{"(<", 2, CompleteReply{Matches: []string{"<", "<="}, CursorStart: 1, CursorEnd: 2}},
		{"(first 'ä (fi", 13, CompleteReply{Matches: []string{"first"}, CursorStart: 11, CursorEnd: 13}},
		{"", 10, CompleteReply{Matches: []string{}, CursorStart: 0, CursorEnd: 0}},
	}
	for _, c := range cases {
		if diff := cmp.Diff(c.want, Complete(c.code, c.cursor)); diff != "" {
			t.Errorf("%q@%d: completion mismatch (-want +got):\n%s", c.code, c.cursor, diff)
		}
	}
}

func TestIsComplete(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "xterex.kernel")
	defer teardown()
	//
	var cases = []struct {
		code string
		want IsCompleteReply
	}{
		{"(print 1)", IsCompleteReply{Status: "complete"}},
		{"(defn f (x)", IsCompleteReply{Status: "incomplete", Indent: "  "}},
		{"(print \"abc", IsCompleteReply{Status: "incomplete", Indent: "  "}},
		{"(print 1))", IsCompleteReply{Status: "invalid"}},
	}
	for _, c := range cases {
		if diff := cmp.Diff(c.want, IsComplete(c.code)); diff != "" {
			t.Errorf("%q: mismatch (-want +got):\n%s", c.code, diff)
		}
	}
}

func TestInspect(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "xterex.kernel")
	defer teardown()
	//
	k, rec := startKernel(t)
	execute(t, k, rec, `(def greeting "hello")`)
	r, err := k.Inspect("(print greeting)", 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !r.Found || r.Text != `greeting = "hello"` {
		t.Errorf("unexpected inspection of global: %+v", r)
	}
	r, _ = k.Inspect("(print greeting)", 3, 1)
	if !r.Found || r.Name != "print" || !strings.HasSuffix(r.Text, "print is a builtin function") {
		t.Errorf("unexpected inspection of builtin: %+v", r)
	}
	r, _ = k.Inspect("(unknown)", 4, 0)
	if r.Found {
		t.Errorf("expected unknown name not to be found")
	}
}

func TestHistory(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "xterex.kernel")
	defer teardown()
	//
	k, rec := startKernel(t)
	for _, code := range []string{"(def a 1)", "(print a)", "(def a 1)", "(print 2)"} {
		execute(t, k, rec, code)
	}
	all := k.History(0, false)
	if len(all) != 4 || all[3].ExecutionCount != 4 {
		t.Errorf("unexpected history %v", all)
	}
	expected := []HistoryEntry{{2, "(print a)"}, {3, "(def a 1)"}, {4, "(print 2)"}}
	if diff := cmp.Diff(expected, k.History(0, true)); diff != "" {
		t.Errorf("unique history mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(expected[1:], k.History(2, true)); diff != "" {
		t.Errorf("history tail mismatch (-want +got):\n%s", diff)
	}
}

func TestUniqueHistoryIgnoresLayout(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "xterex.kernel")
	defer teardown()
	//
	k, rec := startKernel(t)
	for _, code := range []string{"(def a 1)", "(def  a\n   1) ; again", "(def a 2)", "(print 1"} {
		execute(t, k, rec, code)
	}
	execute(t, k, rec, "(print  1")
	expected := []HistoryEntry{{2, "(def  a\n   1) ; again"}, {3, "(def a 2)"}, {4, "(print 1"}, {5, "(print  1"}}
	if diff := cmp.Diff(expected, k.History(0, true)); diff != "" {
		t.Errorf("unique history mismatch (-want +got):\n%s", diff)
	}
}

func TestCompileFailureLeavesSinkUntouched(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "xterex.kernel")
	defer teardown()
	//
	k, rec := startKernel(t)
	execute(t, k, rec, `(print "A")`)
	rec.events = nil
	reply := execute(t, k, rec, "(def list 1)\n(if)")
	if reply.ErrorName != "BadForm" {
		t.Fatalf("expected compile failure BadForm, got %+v", reply)
	}
	sink := k.session.Sink()
	if sink.Phase() != PhaseRun || sink.Text() != "A\n" {
		t.Errorf("expected sink to keep output of previous run, has %q in phase %s", sink.Text(), sink.Phase())
	}
	expected := []string{
		"stderr: Warning [ShadowsBuiltin]: global 'list' shadows a builtin\n",
		"reply: error",
	}
	if diff := cmp.Diff(expected, rec.events); diff != "" {
		t.Errorf("event mismatch (-want +got):\n%s", diff)
	}
	if _, ok := k.session.Lookup("list"); ok {
		t.Errorf("expected failed compile not to define globals")
	}
}

func TestKernelInfo(t *testing.T) {
	info := KernelInfo()
	if info.ProtocolVersion != "5.3" || info.LanguageInfo.Name != "terex" || info.Implementation != "xterex" {
		t.Errorf("unexpected kernel info %+v", info)
	}
}

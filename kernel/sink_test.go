package kernel

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestSinkDrainsBetweenPhases(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "xterex.kernel")
	defer teardown()
	//
	sink := NewOutputSink()
	sink.Reset(PhaseRun)
	sink.Append("partial ")
	sink.Append("output\n")
	if sink.Text() != "partial output\n" {
		t.Errorf("unexpected run output %q", sink.Text())
	}
	sink.Reset(PhaseTrace)
	if sink.Len() != 0 {
		t.Fatalf("expected sink to be drained, has %d bytes", sink.Len())
	}
	sink.Append("  in f at line 2\n")
	sink.Append("  in global at line 3\r\n")
	expected := []string{"  in f at line 2", "  in global at line 3"}
	if diff := cmp.Diff(expected, sink.Lines()); diff != "" {
		t.Errorf("trace lines mismatch (-want +got):\n%s", diff)
	}
	if sink.Phase() != PhaseTrace {
		t.Errorf("expected phase trace, have %s", sink.Phase())
	}
}

func TestSinkEmptyTrace(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "xterex.kernel")
	defer teardown()
	//
	sink := NewOutputSink()
	sink.Reset(PhaseTrace)
	if lines := sink.Lines(); len(lines) != 0 {
		t.Errorf("expected no lines, got %v", lines)
	}
}

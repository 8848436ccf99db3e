package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/npillmayer/schuko/tracing"
)

func writeFile(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "xterex.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeFile(t, `
[trace]
level = "Debug"

[wire]
codec = "msgpack"

[console]
prompt = "> "
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	expected := Default()
	expected.Trace.Level = "Debug"
	expected.Wire.Codec = CodecMsgpack
	expected.Console.Prompt = "> "
	if diff := cmp.Diff(expected, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
	if level, _ := cfg.TraceLevel(); level != tracing.LevelDebug {
		t.Errorf("expected trace level Debug, have %s", level)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	for _, content := range []string{
		"[wire]\ncodec = \"xml\"\n",
		"[trace]\nlevel = \"verbose\"\n",
		"[console]\nprompt = \n",
		"[consle]\nprompt = \"> \"\n",
	} {
		if _, err := Load(writeFile(t, content)); err == nil {
			t.Errorf("expected error for %q", content)
		}
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if p := ExpandPath("~/.xterex_history"); p != filepath.Join(home, ".xterex_history") {
		t.Errorf("unexpected expansion %q", p)
	}
	if p := ExpandPath("/tmp/x"); p != "/tmp/x" {
		t.Errorf("expected absolute path to be kept, got %q", p)
	}
}

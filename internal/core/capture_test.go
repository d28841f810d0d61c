package core

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// ParseEnvDump tests
// ---------------------------------------------------------------------------

func TestParseEnvDump_NulDelimited(t *testing.T) {
	data := []byte("FOO=bar\x00MULTI=line1\nline2\x00EMPTY=\x00")

	env := ParseEnvDump(data)

	if env["FOO"] != "bar" {
		t.Errorf("FOO = %q, want \"bar\"", env["FOO"])
	}
	if env["MULTI"] != "line1\nline2" {
		t.Errorf("MULTI = %q, want \"line1\\nline2\"", env["MULTI"])
	}
	if v, ok := env["EMPTY"]; !ok || v != "" {
		t.Errorf("EMPTY = %q (present: %v), want empty string", v, ok)
	}
}

func TestParseEnvDump_NewlineFallback(t *testing.T) {
	data := []byte("FOO=bar\nPATH=/usr/bin:/bin\nVALUE=a=b=c\n")

	env := ParseEnvDump(data)

	if env["FOO"] != "bar" {
		t.Errorf("FOO = %q, want \"bar\"", env["FOO"])
	}
	if env["PATH"] != "/usr/bin:/bin" {
		t.Errorf("PATH = %q, want \"/usr/bin:/bin\"", env["PATH"])
	}
	// Only the first = separates key from value.
	if env["VALUE"] != "a=b=c" {
		t.Errorf("VALUE = %q, want \"a=b=c\"", env["VALUE"])
	}
}

func TestParseEnvDump_SkipsNoise(t *testing.T) {
	data := []byte("\nnot-an-entry\n=leading\nOK=yes\n")

	env := ParseEnvDump(data)

	if len(env) != 1 {
		t.Fatalf("len(env) = %d, want 1 (%v)", len(env), env)
	}
	if env["OK"] != "yes" {
		t.Errorf("OK = %q, want \"yes\"", env["OK"])
	}
}

// ---------------------------------------------------------------------------
// DiffEnviron tests
// ---------------------------------------------------------------------------

func TestDiffEnviron(t *testing.T) {
	before := map[string]string{"KEEP": "same", "CHANGE": "old", "GONE": "x"}
	after := map[string]string{"KEEP": "same", "CHANGE": "new", "NEW": "added"}

	delta := DiffEnviron(before, after)

	if !reflect.DeepEqual(delta.Added, map[string]string{"NEW": "added"}) {
		t.Errorf("Added = %v", delta.Added)
	}
	if !reflect.DeepEqual(delta.Changed, map[string]string{"CHANGE": "new"}) {
		t.Errorf("Changed = %v", delta.Changed)
	}
	if !reflect.DeepEqual(delta.Removed, []string{"GONE"}) {
		t.Errorf("Removed = %v", delta.Removed)
	}

	flat := delta.Flat()
	if len(flat) != 2 || flat["NEW"] != "added" || flat["CHANGE"] != "new" {
		t.Errorf("Flat = %v", flat)
	}
}

func TestDiffEnviron_NoChanges(t *testing.T) {
	env := map[string]string{"A": "1", "B": "2"}

	delta := DiffEnviron(env, env)

	if !delta.Empty() {
		t.Errorf("delta not empty: added=%v changed=%v removed=%v",
			delta.Added, delta.Changed, delta.Removed)
	}
}

// ---------------------------------------------------------------------------
// ApplyDelta tests
// ---------------------------------------------------------------------------

func TestApplyDelta(t *testing.T) {
	base := []string{"KEEP=1", "OVERRIDE=old", "DROP=x"}
	set := map[string]string{"OVERRIDE": "new", "ADDED": "y"}

	out := ApplyDelta(base, set, []string{"DROP"})

	want := []string{"KEEP=1", "ADDED=y", "OVERRIDE=new"}
	if !reflect.DeepEqual(out, want) {
		t.Errorf("ApplyDelta = %v, want %v", out, want)
	}
}

// ---------------------------------------------------------------------------
// Capturer integration tests (spawns a real shell)
// ---------------------------------------------------------------------------

func TestCapturer_Capture(t *testing.T) {
	script := filepath.Join(t.TempDir(), "setvars.sh")
	content := "export TOOLRIG_CAPTURE_TEST=hello\nexport TOOLRIG_CAPTURE_ARG=\"$1\"\n"
	if err := os.WriteFile(script, []byte(content), 0o755); err != nil {
		t.Fatal(err)
	}

	c := NewCapturer("/bin/sh", 30*time.Second)
	delta, err := c.Capture(context.Background(), script, "gpu")
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}

	if delta.Added["TOOLRIG_CAPTURE_TEST"] != "hello" {
		t.Errorf("TOOLRIG_CAPTURE_TEST = %q, want \"hello\"", delta.Added["TOOLRIG_CAPTURE_TEST"])
	}
	if delta.Added["TOOLRIG_CAPTURE_ARG"] != "gpu" {
		t.Errorf("TOOLRIG_CAPTURE_ARG = %q, want \"gpu\"", delta.Added["TOOLRIG_CAPTURE_ARG"])
	}
	if _, ok := delta.Added["SHLVL"]; ok {
		t.Error("SHLVL leaked into the delta")
	}
}

func TestCapturer_ScriptFailure(t *testing.T) {
	script := filepath.Join(t.TempDir(), "broken.sh")
	if err := os.WriteFile(script, []byte("exit 3\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	c := NewCapturer("/bin/sh", 30*time.Second)
	if _, err := c.Capture(context.Background(), script); err == nil {
		t.Fatal("expected error for failing script")
	}
}

func TestCapturer_Cancellation(t *testing.T) {
	script := filepath.Join(t.TempDir(), "slow.sh")
	if err := os.WriteFile(script, []byte("sleep 30\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	c := NewCapturer("/bin/sh", time.Minute)
	go func() {
		_, err := c.Capture(ctx, script)
		done <- err
	}()

	cancel()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected error after cancellation")
		}
	case <-time.After(10 * time.Second):
		t.Fatal("capture did not return after cancellation")
	}
}

func TestCapturer_DoesNotMutateParentEnv(t *testing.T) {
	script := filepath.Join(t.TempDir(), "setvars.sh")
	if err := os.WriteFile(script, []byte("export TOOLRIG_PARENT_CHECK=1\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	c := NewCapturer("/bin/sh", 30*time.Second)
	if _, err := c.Capture(context.Background(), script); err != nil {
		t.Fatalf("Capture: %v", err)
	}

	if _, ok := os.LookupEnv("TOOLRIG_PARENT_CHECK"); ok {
		t.Error("capture mutated the parent process environment")
	}
}

// ---------------------------------------------------------------------------
// shellQuote tests
// ---------------------------------------------------------------------------

func TestShellQuote(t *testing.T) {
	cases := map[string]string{
		"plain":       "'plain'",
		"with space":  "'with space'",
		"it's quoted": `'it'\''s quoted'`,
	}
	for in, want := range cases {
		if got := shellQuote(in); got != want {
			t.Errorf("shellQuote(%q) = %s, want %s", in, got, want)
		}
	}
}

package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"
)

// ErrEmptyDump is returned when the capture subprocess produced no
// parsable environment dump.
var ErrEmptyDump = errors.New("environment dump was empty")

// captureNoise lists variables the dump shell itself churns; they are
// stripped from the delta so profiles carry only the script's effect.
var captureNoise = map[string]bool{
	"_":      true,
	"SHLVL":  true,
	"PWD":    true,
	"OLDPWD": true,
}

// Capturer sources the vendor environment script in a shell subprocess
// and captures its effect on the environment as a delta.
type Capturer struct {
	shell   string
	timeout time.Duration
}

// NewCapturer creates a Capturer. shell may be empty, in which case
// $SHELL is used, falling back to /bin/sh.
func NewCapturer(shell string, timeout time.Duration) *Capturer {
	if shell == "" {
		shell = os.Getenv("SHELL")
	}
	if shell == "" {
		shell = "/bin/sh"
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Capturer{shell: shell, timeout: timeout}
}

// Capture sources script with the given args and returns the environment
// delta relative to the current process environment. The parent process
// environment is never modified. Cancelling ctx kills the subprocess.
func (c *Capturer) Capture(ctx context.Context, script string, args ...string) (*EnvDelta, error) {
	before := SnapshotEnviron()

	after, err := c.sourceAndDump(ctx, script, args)
	if err != nil {
		return nil, err
	}

	delta := DiffEnviron(before, after)
	for k := range captureNoise {
		delete(delta.Added, k)
		delete(delta.Changed, k)
	}
	removed := delta.Removed[:0]
	for _, k := range delta.Removed {
		if !captureNoise[k] {
			removed = append(removed, k)
		}
	}
	delta.Removed = removed

	return delta, nil
}

// sourceAndDump runs the shell subprocess that sources the script and
// dumps the resulting environment NUL-delimited on stdout.
func (c *Capturer) sourceAndDump(ctx context.Context, script string, args []string) (map[string]string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	// The script's own output is discarded so only the dump reaches
	// stdout. env -0 keeps values containing newlines intact; the
	// parser falls back to newline splitting for env builds without -0.
	// Script args are bound via set -- because `. file args` does not
	// set positional parameters in POSIX shells like dash.
	var sb strings.Builder
	if len(args) > 0 {
		sb.WriteString("set --")
		for _, a := range args {
			sb.WriteString(" ")
			sb.WriteString(shellQuote(a))
		}
		sb.WriteString(" && ")
	}
	sb.WriteString(". ")
	sb.WriteString(shellQuote(script))
	sb.WriteString(" >/dev/null 2>&1 && { env -0 2>/dev/null || env; }")

	cmd := exec.CommandContext(ctx, c.shell, "-c", sb.String())
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("sourcing %s: %w: %s", script, err, msg)
		}
		return nil, fmt.Errorf("sourcing %s: %w", script, err)
	}

	env := ParseEnvDump(stdout.Bytes())
	if len(env) == 0 {
		return nil, fmt.Errorf("sourcing %s: %w", script, ErrEmptyDump)
	}
	return env, nil
}

// ParseEnvDump parses an environment dump into a map. NUL-delimited
// output (env -0) is preferred; dumps without NUL bytes are split on
// newlines, in which case values containing newlines are not
// representable and the first = per entry separates key from value.
func ParseEnvDump(data []byte) map[string]string {
	var entries []string
	if bytes.IndexByte(data, 0) >= 0 {
		entries = strings.Split(string(data), "\x00")
	} else {
		entries = strings.Split(string(data), "\n")
	}

	env := make(map[string]string, len(entries))
	for _, entry := range entries {
		if entry == "" {
			continue
		}
		idx := strings.IndexByte(entry, '=')
		if idx <= 0 {
			continue // no key, or leading = (shell function dump noise)
		}
		env[entry[:idx]] = entry[idx+1:]
	}
	return env
}

// SnapshotEnviron captures the current process environment as a map.
func SnapshotEnviron() map[string]string {
	environ := os.Environ()
	env := make(map[string]string, len(environ))
	for _, entry := range environ {
		idx := strings.IndexByte(entry, '=')
		if idx <= 0 {
			continue
		}
		env[entry[:idx]] = entry[idx+1:]
	}
	return env
}

// DiffEnviron computes the delta that turns before into after.
func DiffEnviron(before, after map[string]string) *EnvDelta {
	delta := &EnvDelta{
		Added:   make(map[string]string),
		Changed: make(map[string]string),
	}

	for k, v := range after {
		old, ok := before[k]
		switch {
		case !ok:
			delta.Added[k] = v
		case old != v:
			delta.Changed[k] = v
		}
	}
	for k := range before {
		if _, ok := after[k]; !ok {
			delta.Removed = append(delta.Removed, k)
		}
	}
	sort.Strings(delta.Removed)

	return delta
}

// ApplyDelta layers a stored profile onto a base environment list
// (os.Environ() format) and returns the merged list. Set vars override
// or extend the base; removed vars are dropped.
func ApplyDelta(base []string, set map[string]string, removed []string) []string {
	drop := make(map[string]bool, len(removed))
	for _, k := range removed {
		drop[k] = true
	}

	out := make([]string, 0, len(base)+len(set))
	for _, entry := range base {
		idx := strings.IndexByte(entry, '=')
		if idx <= 0 {
			continue
		}
		k := entry[:idx]
		if drop[k] {
			continue
		}
		if _, ok := set[k]; ok {
			continue // replaced below
		}
		out = append(out, entry)
	}

	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out = append(out, k+"="+set[k])
	}
	return out
}

// shellQuote single-quotes s for safe interpolation into a shell command.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

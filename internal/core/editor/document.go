// Package editor mutates the editor's JSONC configuration documents
// (tasks.json, launch.json) while preserving user comments and layout.
package editor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tailscale/hujson"
)

// Document is a JSONC configuration file loaded as a hujson AST.
// Edits are applied as RFC 6902 patches so existing members, comments
// and whitespace survive round trips.
type Document struct {
	path string
	root hujson.Value
}

// LoadDocument reads and parses a JSONC document. A missing file yields
// an empty object document that is created on Save.
func LoadDocument(path string) (*Document, error) {
	content := "{}"
	data, err := os.ReadFile(path)
	if err == nil {
		content = string(data)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(content) == 0 {
		content = "{}"
	}

	root, err := hujson.Parse([]byte(content))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &Document{path: path, root: root}, nil
}

// Path returns the document's file path.
func (d *Document) Path() string { return d.path }

// EnsureString sets the string member at ptr if it is absent.
func (d *Document) EnsureString(ptr, value string) error {
	if d.root.Find(ptr) != nil {
		return nil
	}
	patch := fmt.Sprintf(`[{"op":"add","path":%q,"value":%q}]`, ptr, value)
	if err := d.root.Patch([]byte(patch)); err != nil {
		return fmt.Errorf("setting %s: %w", ptr, err)
	}
	return nil
}

// EnsureArray creates an empty array member at ptr if it is absent.
func (d *Document) EnsureArray(ptr string) error {
	if d.root.Find(ptr) != nil {
		return nil
	}
	patch := fmt.Sprintf(`[{"op":"add","path":%q,"value":[]}]`, ptr)
	if err := d.root.Patch([]byte(patch)); err != nil {
		return fmt.Errorf("creating array %s: %w", ptr, err)
	}
	return nil
}

// Append adds a raw JSON value to the end of the array at ptr.
func (d *Document) Append(ptr, valueJSON string) error {
	patch := fmt.Sprintf(`[{"op":"add","path":%q,"value":%s}]`, ptr+"/-", valueJSON)
	if err := d.root.Patch([]byte(patch)); err != nil {
		return fmt.Errorf("appending to %s: %w", ptr, err)
	}
	return nil
}

// StringMembers collects the string value of the named member from every
// object element of the array at ptr. Elements without that member are
// skipped. A missing array yields nil.
func (d *Document) StringMembers(ptr, member string) []string {
	v := d.root.Find(ptr)
	if v == nil {
		return nil
	}
	arr, ok := v.Value.(*hujson.Array)
	if !ok {
		return nil
	}

	var out []string
	for i := range arr.Elements {
		obj, ok := arr.Elements[i].Value.(*hujson.Object)
		if !ok {
			continue
		}
		for j := range obj.Members {
			name, ok := obj.Members[j].Name.Value.(hujson.Literal)
			if !ok || name.String() != member {
				continue
			}
			if val, ok := obj.Members[j].Value.Value.(hujson.Literal); ok {
				out = append(out, val.String())
			}
		}
	}
	return out
}

// Save formats the AST and writes it atomically, creating parent
// directories as needed. Comments are preserved; trailing commas are
// stripped so strict JSONC consumers stay happy.
func (d *Document) Save() error {
	d.root.Format()
	removeTrailingCommas(&d.root)
	output := d.root.Pack()

	dir := filepath.Dir(d.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	tmpPath := d.path + ".tmp"
	if err := os.WriteFile(tmpPath, output, 0o644); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, d.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// marshalValue encodes a value as JSON without HTML escaping, so shell
// commands containing && or redirects stay readable in the document.
func marshalValue(v interface{}) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// removeTrailingCommas walks the JSONC AST and removes trailing commas.
func removeTrailingCommas(v *hujson.Value) {
	switch vv := v.Value.(type) {
	case *hujson.Object:
		for i := range vv.Members {
			removeTrailingCommas(&vv.Members[i].Name)
			removeTrailingCommas(&vv.Members[i].Value)
		}
		if len(vv.Members) > 0 {
			vv.Members[len(vv.Members)-1].Value.AfterExtra = nil
		}
	case *hujson.Array:
		for i := range vv.Elements {
			removeTrailingCommas(&vv.Elements[i])
		}
		if len(vv.Elements) > 0 {
			vv.Elements[len(vv.Elements)-1].AfterExtra = nil
		}
	}
}

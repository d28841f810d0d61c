package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/toolrig/toolrig/internal/core"
	"github.com/toolrig/toolrig/internal/tui"
)

// resolveTargetDir resolves the --dir flag or falls back to cwd.
func resolveTargetDir(cmd *cobra.Command) (string, error) {
	dir, _ := cmd.Flags().GetString("dir")
	if dir != "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return "", fmt.Errorf("resolving %s: %w", dir, err)
		}
		return abs, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting current directory: %w", err)
	}
	return cwd, nil
}

// addDirFlag adds the shared --dir flag to a command.
func addDirFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("dir", "d", "", "Project directory (defaults to cwd)")
}

// resolveSettings loads the global config and applies the project overlay.
func resolveSettings(projectDir string) (core.Settings, error) {
	cm, err := core.NewConfigManager()
	if err != nil {
		return core.Settings{}, err
	}
	return cm.ResolveSettings(projectDir)
}

// interactive reports whether prompts may be shown. The --yes flag and
// a non-terminal stdout both force the documented default path.
func interactive(cmd *cobra.Command) bool {
	if yes, _ := cmd.Flags().GetBool("yes"); yes {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

// locateScript runs the locator and narrows the candidates down to one:
// single match wins, multiple matches go through the picker (first match
// in non-interactive mode).
func locateScript(ctx context.Context, cmd *cobra.Command, projectDir string, settings core.Settings) (string, error) {
	locator := core.NewLocator(settings, core.ReadWorkspaceScriptPath(projectDir))
	candidates, err := locator.Locate(ctx)
	if err != nil {
		return "", err
	}

	if len(candidates) == 1 || !interactive(cmd) {
		return candidates[0].Path, nil
	}

	items := make([]tui.PickItem, len(candidates))
	for i, c := range candidates {
		items[i] = tui.PickItem{Label: c.Path, Hint: string(c.Source)}
	}
	idx, ok, err := tui.Pick("Select environment script", items)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("selection cancelled")
	}
	return candidates[idx].Path, nil
}

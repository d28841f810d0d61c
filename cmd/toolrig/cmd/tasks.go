package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/toolrig/toolrig/internal/core"
	"github.com/toolrig/toolrig/internal/core/editor"
	"github.com/toolrig/toolrig/internal/tui"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Generate editor build tasks for Make/CMake targets",
	Long: `Discover the project's build targets and append shell build tasks to
.vscode/tasks.json. Existing entries and comments in the file are
preserved. Duplicate labels are resolved interactively (rename or
skip); with --yes duplicates are skipped.

With --profile, generated tasks run under the named stored environment
via 'toolrig env'.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := resolveTargetDir(cmd)
		if err != nil {
			return err
		}

		system, err := resolveBuildSystem(cmd, dir)
		if err != nil {
			return err
		}

		scanner := core.NewTargetScanner(dir)
		targets, err := scanner.Targets(cmd.Context(), system)
		if err != nil {
			return err
		}

		selected, err := selectTargets(cmd, targets)
		if err != nil {
			return err
		}
		if len(selected) == 0 {
			fmt.Println("Nothing selected.")
			return nil
		}

		tf, err := editor.OpenTasks(dir)
		if err != nil {
			return err
		}

		profile, _ := cmd.Flags().GetString("profile")
		added := 0
		for _, target := range selected {
			label := fmt.Sprintf("%s: build %s", target.System, target.Name)
			label, skip, err := resolveDuplicate(cmd, tf.Labels(), label, "task")
			if err != nil {
				return err
			}
			if skip {
				continue
			}
			if err := tf.AddTask(label, target, profile); err != nil {
				return err
			}
			added++
		}

		if added == 0 {
			fmt.Println("No tasks added.")
			return nil
		}
		if err := tf.Save(); err != nil {
			return err
		}
		fmt.Printf("Added %d task(s) to %s\n", added, tf.Path())
		return nil
	},
}

// resolveBuildSystem maps the --build-system flag to a BuildSystem,
// autodetecting by default.
func resolveBuildSystem(cmd *cobra.Command, dir string) (core.BuildSystem, error) {
	flag, _ := cmd.Flags().GetString("build-system")
	switch flag {
	case "", "auto":
		return core.DetectBuildSystem(dir)
	case "make":
		return core.BuildSystemMake, nil
	case "cmake":
		return core.BuildSystemCMake, nil
	default:
		return "", fmt.Errorf("unknown build system %q (want make, cmake or auto)", flag)
	}
}

// selectTargets narrows discovered targets down to the ones to generate
// tasks for: all of them in non-interactive mode, a picker choice
// (including an "all targets" entry) otherwise.
func selectTargets(cmd *cobra.Command, targets []core.Target) ([]core.Target, error) {
	if !interactive(cmd) {
		return targets, nil
	}

	items := make([]tui.PickItem, 0, len(targets)+1)
	items = append(items, tui.PickItem{Label: "(all targets)", Hint: fmt.Sprintf("%d targets", len(targets))})
	for _, t := range targets {
		items = append(items, tui.PickItem{Label: t.Name, Hint: string(t.System)})
	}

	idx, ok, err := tui.Pick("Select build target", items)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	if idx == 0 {
		return targets, nil
	}
	return targets[idx-1 : idx], nil
}

// resolveDuplicate handles name collisions in a generated document:
// rename via prompt, or skip. Non-interactive mode always skips.
func resolveDuplicate(cmd *cobra.Command, existing []string, name, kind string) (string, bool, error) {
	taken := false
	for _, e := range existing {
		if e == name {
			taken = true
			break
		}
	}
	if !taken {
		return name, false, nil
	}

	if !interactive(cmd) {
		fmt.Fprintf(os.Stderr, "Warning: %s %q already exists, skipping\n", kind, name)
		return "", true, nil
	}

	rename, err := tui.Confirm(fmt.Sprintf("A %s named %q already exists. Rename the new one?", kind, name))
	if err != nil {
		return "", false, err
	}
	if !rename {
		return "", true, nil
	}

	suggestion := editor.UniqueName(existing, name)
	newName, ok, err := tui.Input(fmt.Sprintf("New %s name", kind), suggestion, suggestion)
	if err != nil {
		return "", false, err
	}
	if !ok {
		return "", true, nil
	}
	for _, e := range existing {
		if e == newName {
			return "", false, fmt.Errorf("%s %q already exists", kind, newName)
		}
	}
	return newName, false, nil
}

func init() {
	addDirFlag(tasksCmd)
	tasksCmd.Flags().String("build-system", "auto", "Build system: make, cmake or auto")
	tasksCmd.Flags().String("profile", "", "Run generated tasks under this stored profile")
	tasksCmd.Flags().BoolP("yes", "y", false, "Add all targets, skip duplicates, no prompts")
	rootCmd.AddCommand(tasksCmd)
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/toolrig/toolrig/internal/core"
	"github.com/toolrig/toolrig/internal/core/editor"
	"github.com/toolrig/toolrig/internal/tui"
)

var launchCmd = &cobra.Command{
	Use:   "launch",
	Short: "Generate debug launch configurations for built executables",
	Long: `Scan the project for executable artifacts and append gdb launch
configurations to .vscode/launch.json. Existing entries and comments
are preserved; duplicate names are resolved interactively (rename or
skip), or skipped with --yes.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := resolveTargetDir(cmd)
		if err != nil {
			return err
		}

		scanner := core.NewTargetScanner(dir)
		executables, err := scanner.Executables(cmd.Context())
		if err != nil {
			return err
		}
		if len(executables) == 0 {
			return fmt.Errorf("no executables found in %s; build the project first", dir)
		}

		selected, err := selectExecutables(cmd, executables)
		if err != nil {
			return err
		}
		if len(selected) == 0 {
			fmt.Println("Nothing selected.")
			return nil
		}

		lf, err := editor.OpenLaunch(dir)
		if err != nil {
			return err
		}

		added := 0
		for _, exe := range selected {
			name := editor.LaunchName(exe)
			name, skip, err := resolveDuplicate(cmd, lf.Names(), name, "configuration")
			if err != nil {
				return err
			}
			if skip {
				continue
			}
			if err := lf.AddConfiguration(name, exe); err != nil {
				return err
			}
			added++
		}

		if added == 0 {
			fmt.Println("No configurations added.")
			return nil
		}
		if err := lf.Save(); err != nil {
			return err
		}
		fmt.Printf("Added %d configuration(s) to %s\n", added, lf.Path())
		return nil
	},
}

// selectExecutables picks the executables to generate configurations
// for: all in non-interactive mode, a picker choice otherwise.
func selectExecutables(cmd *cobra.Command, executables []string) ([]string, error) {
	if !interactive(cmd) {
		return executables, nil
	}

	items := make([]tui.PickItem, 0, len(executables)+1)
	items = append(items, tui.PickItem{Label: "(all executables)", Hint: fmt.Sprintf("%d found", len(executables))})
	for _, exe := range executables {
		items = append(items, tui.PickItem{Label: exe})
	}

	idx, ok, err := tui.Pick("Select executable to debug", items)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	if idx == 0 {
		return executables, nil
	}
	return executables[idx-1 : idx], nil
}

func init() {
	addDirFlag(launchCmd)
	launchCmd.Flags().BoolP("yes", "y", false, "Add all executables, skip duplicates, no prompts")
	rootCmd.AddCommand(launchCmd)
}

package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/toolrig/toolrig/internal/core"
	"github.com/toolrig/toolrig/internal/tui"
)

var locateCmd = &cobra.Command{
	Use:   "locate",
	Short: "Locate the vendor environment script",
	Long: `Search the ordered candidate locations for the environment script:
the explicit setting, PATH, the install-root environment variable, the
global install root, and the per-user install root.

With --save, the chosen path is persisted into the workspace settings
(.vscode/settings.json) so later commands skip discovery.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := resolveTargetDir(cmd)
		if err != nil {
			return err
		}
		settings, err := resolveSettings(dir)
		if err != nil {
			return err
		}

		locator := core.NewLocator(settings, core.ReadWorkspaceScriptPath(dir))
		candidates, err := locator.Locate(cmd.Context())
		if err != nil {
			if err == core.ErrNoScript {
				return fmt.Errorf("%s not found; install the toolchain or set script_path in ~/.toolrig/config.json", settings.ScriptName)
			}
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(candidates)
		}

		save, _ := cmd.Flags().GetBool("save")
		if !save {
			for _, c := range candidates {
				fmt.Printf("%s\t(%s)\n", c.Path, c.Source)
			}
			return nil
		}

		chosen := candidates[0].Path
		if len(candidates) > 1 && interactive(cmd) {
			items := make([]tui.PickItem, len(candidates))
			for i, c := range candidates {
				items[i] = tui.PickItem{Label: c.Path, Hint: string(c.Source)}
			}
			idx, ok, err := tui.Pick("Select environment script", items)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("selection cancelled")
			}
			chosen = candidates[idx].Path
		}

		if err := core.WriteWorkspaceScriptPath(dir, chosen); err != nil {
			return err
		}
		fmt.Printf("Saved %s to %s\n", chosen, core.WorkspaceSettingsPath(dir))
		return nil
	},
}

func init() {
	addDirFlag(locateCmd)
	locateCmd.Flags().Bool("save", false, "Persist the chosen script path to workspace settings")
	locateCmd.Flags().Bool("json", false, "Print candidates as JSON")
	locateCmd.Flags().Bool("yes", false, "Pick the first candidate without prompting")
	rootCmd.AddCommand(locateCmd)
}

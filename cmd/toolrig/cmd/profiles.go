package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/toolrig/toolrig/internal/core"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List stored environment profiles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := resolveTargetDir(cmd)
		if err != nil {
			return err
		}

		store := core.NewStore(dir, false)
		profiles, err := store.List()
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(profiles)
		}

		if len(profiles) == 0 {
			fmt.Println("No profiles stored. Run 'toolrig capture' first.")
			return nil
		}

		for _, p := range profiles {
			fmt.Printf("%s\t%d vars\t%s\t%s\n",
				p.Name, len(p.Env), p.CapturedAt.Format("2006-01-02 15:04"), p.Script)
		}
		return nil
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Delete a stored profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := resolveTargetDir(cmd)
		if err != nil {
			return err
		}

		store := core.NewStore(dir, false)
		if err := store.Delete(args[0]); err != nil {
			return err
		}
		fmt.Printf("Removed profile %q\n", core.SanitizeProfileName(args[0]))
		return nil
	},
}

func init() {
	addDirFlag(profilesCmd)
	profilesCmd.Flags().Bool("json", false, "Print profiles as JSON")
	rootCmd.AddCommand(profilesCmd)

	addDirFlag(removeCmd)
	rootCmd.AddCommand(removeCmd)
}

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/toolrig/toolrig/internal/core"
)

var captureCmd = &cobra.Command{
	Use:   "capture [script]",
	Short: "Source the environment script and store the captured delta",
	Long: `Source the environment script in a shell subprocess, capture the
environment variables it sets or changes, and save them as a named
profile under .toolrig/profiles/ in the project directory.

The script argument is optional; when omitted the script is located
via the usual discovery order. --config is passed to the script as its
argument (vendor configuration name) and doubles as the default
profile name.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := resolveTargetDir(cmd)
		if err != nil {
			return err
		}
		settings, err := resolveSettings(dir)
		if err != nil {
			return err
		}

		script := ""
		if len(args) > 0 {
			script = args[0]
		} else {
			script, err = locateScript(cmd.Context(), cmd, dir, settings)
			if err != nil {
				return err
			}
		}

		var scriptArgs []string
		config, _ := cmd.Flags().GetString("config")
		if config != "" {
			scriptArgs = append(scriptArgs, "--config="+config)
		}

		name, _ := cmd.Flags().GetString("name")
		if name == "" {
			if config != "" {
				name = config
			} else {
				name = "default"
			}
		}

		timeout := time.Duration(settings.CaptureTimeoutSeconds) * time.Second
		if flagTimeout, _ := cmd.Flags().GetInt("timeout"); flagTimeout > 0 {
			timeout = time.Duration(flagTimeout) * time.Second
		}

		capturer := core.NewCapturer(settings.Shell, timeout)
		delta, err := capturer.Capture(cmd.Context(), script, scriptArgs...)
		if err != nil {
			return err
		}
		if delta.Empty() {
			return fmt.Errorf("sourcing %s changed no environment variables", script)
		}

		profile := &core.Profile{
			Name:       name,
			Script:     script,
			ScriptArgs: scriptArgs,
			CapturedAt: time.Now().UTC(),
			Env:        delta.Flat(),
			Removed:    delta.Removed,
		}

		store := core.NewStore(dir, settings.AutoGitignore)
		if err := store.Save(profile); err != nil {
			return err
		}

		fmt.Printf("Captured %d variables (%d new, %d changed, %d removed) into profile %q\n",
			len(profile.Env), len(delta.Added), len(delta.Changed), len(delta.Removed), profile.Name)
		return nil
	},
}

func init() {
	addDirFlag(captureCmd)
	captureCmd.Flags().StringP("name", "n", "", "Profile name (defaults to the config name or \"default\")")
	captureCmd.Flags().StringP("config", "c", "", "Vendor configuration passed to the script")
	captureCmd.Flags().Int("timeout", 0, "Capture timeout in seconds (overrides config)")
	captureCmd.Flags().Bool("yes", false, "Pick the first located script without prompting")
	rootCmd.AddCommand(captureCmd)
}

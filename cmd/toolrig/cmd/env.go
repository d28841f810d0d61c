package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/toolrig/toolrig/internal/core"
)

var envCmd = &cobra.Command{
	Use:   "env [--name <profile>] [-- <command> [args...]]",
	Short: "Print a stored profile or run a command under it",
	Long: `Without a trailing command, print the stored environment delta in the
requested format (export lines by default). With a command after --,
exec it with the profile applied: captured variables set, removed
variables unset.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := resolveTargetDir(cmd)
		if err != nil {
			return err
		}
		settings, err := resolveSettings(dir)
		if err != nil {
			return err
		}

		name, _ := cmd.Flags().GetString("name")
		if name == "" {
			name = "default"
		}

		store := core.NewStore(dir, settings.AutoGitignore)
		profile, err := store.Load(name)
		if err != nil {
			return err
		}

		if cmd.ArgsLenAtDash() >= 0 {
			cmdArgs := args[cmd.ArgsLenAtDash():]
			if len(cmdArgs) == 0 {
				return fmt.Errorf("no command specified after --")
			}
			return execWithProfile(profile, cmdArgs)
		}
		if len(args) > 0 {
			return fmt.Errorf("unexpected argument: %s (commands go after --)", args[0])
		}

		format, _ := cmd.Flags().GetString("format")
		return printProfile(profile, format)
	},
}

// execWithProfile replaces this process with the command, environment
// delta applied.
func execWithProfile(profile *core.Profile, cmdArgs []string) error {
	environ := core.ApplyDelta(os.Environ(), profile.Env, profile.Removed)

	binary, err := exec.LookPath(cmdArgs[0])
	if err != nil {
		return fmt.Errorf("command not found: %s", cmdArgs[0])
	}

	return syscall.Exec(binary, cmdArgs, environ)
}

func printProfile(profile *core.Profile, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(profile)

	case "dotenv", "export":
		keys := make([]string, 0, len(profile.Env))
		for k := range profile.Env {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		prefix := ""
		if format == "export" {
			prefix = "export "
		}
		for _, k := range keys {
			fmt.Printf("%s%s=%s\n", prefix, k, quoteEnvValue(profile.Env[k]))
		}
		if format == "export" {
			for _, k := range profile.Removed {
				fmt.Printf("unset %s\n", k)
			}
		}
		return nil

	default:
		return fmt.Errorf("unknown format %q (want export, dotenv or json)", format)
	}
}

// quoteEnvValue single-quotes a value when it contains characters the
// shell would interpret.
func quoteEnvValue(v string) string {
	if v == "" || strings.ContainsAny(v, " \t\n\"'$`\\#&|;<>()*?[]~") {
		return "'" + strings.ReplaceAll(v, "'", `'\''`) + "'"
	}
	return v
}

func init() {
	addDirFlag(envCmd)
	envCmd.Flags().StringP("name", "n", "", "Profile name (defaults to \"default\")")
	envCmd.Flags().StringP("format", "f", "export", "Output format: export, dotenv or json")
	rootCmd.AddCommand(envCmd)
}

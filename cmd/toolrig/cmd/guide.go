package cmd

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

//go:embed guide.md
var guideMarkdown string

var guideCmd = &cobra.Command{
	Use:   "guide",
	Short: "Show the usage guide",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !isatty.IsTerminal(os.Stdout.Fd()) {
			fmt.Print(guideMarkdown)
			return nil
		}

		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(100),
		)
		if err != nil {
			return fmt.Errorf("creating renderer: %w", err)
		}
		out, err := r.Render(guideMarkdown)
		if err != nil {
			return fmt.Errorf("rendering guide: %w", err)
		}
		fmt.Print(out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(guideCmd)
}

package cmd

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tesh254/telepub/internal/publisher"
)

var errPageUsage = errors.New("Usage: telepub page <path_to_md_file>")

var pageCmd = &cobra.Command{
	Use:   "page [file.md]",
	Short: "Shows the Telegraph page a markdown file was published as",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) < 1 {
			return errPageUsage
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		p := newPublisher(cfg)
		ctx := cmd.Context()

		state, err := p.LoadState(ctx, cfg.AccessToken)
		if err != nil {
			return err
		}

		page, err := p.Lookup(ctx, state, args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %s\n", color.CyanString("Title:"), page.Title)
		fmt.Fprintf(out, "%s %s\n", color.CyanString("URL:"), page.URL)
		fmt.Fprintf(out, "%s %d\n", color.CyanString("Views:"), page.Views)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pageCmd)
}

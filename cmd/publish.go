package cmd

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tesh254/telepub/internal/publisher"
)

var errPublishUsage = errors.New("Usage: telepub publish <path_to_md_file>")

var publishCmd = &cobra.Command{
	Use:   "publish [file.md]",
	Short: "Publishes a markdown file to Telegraph, or updates its page",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) < 1 {
			return errPublishUsage
		}
		path := args[0]
		if err := publisher.ValidatePath(path); err != nil {
			return err
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

		res, err := p.Publish(ctx, state, path)
		if err != nil {
			return err
		}

		label := color.GreenString("Published:")
		if res.Updated {
			label = color.GreenString("Updated:")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", label, res.URL)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(publishCmd)
}

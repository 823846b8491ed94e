package cmd

import (
	"fmt"
	"io"
	"log"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tesh254/telepub/internal/config"
	"github.com/tesh254/telepub/internal/docs"
	"github.com/tesh254/telepub/internal/storage"
)

var updateDocsCmd = &cobra.Command{
	Use:   "update-docs",
	Short: "Downloads the configured documentation sources",
	Long:  `Downloads every configured llms.txt documentation source into the docs directory. Sources that fail are reported and skipped. Use --list to show what is stored locally instead.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		list, _ := cmd.Flags().GetBool("list")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		st, err := storage.NewStorage(cfg.StateDB)
		if err != nil {
			return err
		}
		defer st.Close()

		u := newUpdater(cfg, st, cmd.OutOrStdout())

		if list {
			return u.List()
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Updating documentation...")
		fmt.Fprintln(out)
		results, err := u.UpdateAll(cmd.Context())
		if err != nil {
			return err
		}

		failed := 0
		for _, r := range results {
			if r.Err != nil {
				failed++
				if cfg.Verbose {
					log.Printf("[ERROR] %s: %v", r.Source.URL, r.Err)
				}
			}
		}
		fmt.Fprintln(out)
		if failed > 0 {
			fmt.Fprintf(out, "%s %d of %d sources failed.\n", color.YellowString("Done."), failed, len(results))
		} else {
			fmt.Fprintln(out, color.GreenString("Done."))
		}
		return nil
	},
}

func newUpdater(cfg *config.Config, st *storage.Storage, out io.Writer) *docs.Updater {
	fetcher := docs.NewFetcher(docs.FetchConfig{
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.Timeout,
	})
	return docs.NewUpdater(cfg.DocsDir, cfg.Sources, fetcher, st, out)
}

func init() {
	rootCmd.AddCommand(updateDocsCmd)
	updateDocsCmd.Flags().BoolP("list", "l", false, "Show each source's local status instead of downloading")
}

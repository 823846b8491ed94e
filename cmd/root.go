package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tesh254/telepub/internal/config"
	"github.com/tesh254/telepub/internal/publisher"
	"github.com/tesh254/telepub/internal/storage"
	"github.com/tesh254/telepub/internal/telegraph"
)

// Version is set at build time with -ldflags.
var Version = "dev"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:           "telepub",
	Short:         "Telepub publishes markdown notes to Telegraph and keeps reference docs up to date.",
	Long:          `Telepub is a CLI tool that converts local markdown files into Telegraph pages, updating pages it already published, and downloads llms.txt documentation sources into a local directory.`,
	Version:       Version,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.telepub/config.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log HTTP calls")
	rootCmd.PersistentFlags().String("api-url", "https://api.telegra.ph", "Telegraph API base URL")
	rootCmd.PersistentFlags().String("token-file", "", "File caching the Telegraph access token (default is $HOME/.telepub/telegraph_token)")
	rootCmd.PersistentFlags().String("pages-file", "", "JSON file mapping published files to Telegraph pages (default is $HOME/.telepub/telegraph_pages.json)")
	rootCmd.PersistentFlags().String("docs-dir", "docs", "Directory where documentation sources are stored")
	rootCmd.PersistentFlags().String("state-db", "", "Database recording documentation fetches (default is $HOME/.telepub/docs.db)")

	for _, key := range []string{"verbose", "api-url", "token-file", "pages-file", "docs-dir", "state-db"} {
		viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(key))
	}
}

func initConfig() {
	if err := config.Init(viper.GetViper(), cfgFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}
	if cfg.Verbose {
		log.Printf("[INFO] Using config file: %s", viper.ConfigFileUsed())
	}
	return cfg, nil
}

func newPublisher(cfg *config.Config) *publisher.Publisher {
	client := telegraph.NewClient(cfg.APIURL, cfg.Timeout)
	client.Verbose = cfg.Verbose

	return publisher.New(
		client,
		telegraph.Account{
			ShortName:  cfg.ShortName,
			AuthorName: cfg.AuthorName,
			AuthorURL:  cfg.AuthorURL,
		},
		storage.TokenFile{Path: cfg.TokenFile},
		storage.PagesFile{Path: cfg.PagesFile},
	)
}

package cmd

import (
	"io"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tesh254/telepub/internal/core"
	"github.com/tesh254/telepub/internal/docs"
	"github.com/tesh254/telepub/internal/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the MCP server exposing publish and docs tools",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		httpAddress := viper.GetString("http-address")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		tools := &core.Tools{
			Publisher: newPublisher(cfg),
			Token:     cfg.AccessToken,
			NewUpdater: func(out io.Writer) (*docs.Updater, io.Closer, error) {
				st, err := storage.NewStorage(cfg.StateDB)
				if err != nil {
					return nil, nil, err
				}
				return newUpdater(cfg, st, out), st, nil
			},
		}

		log.Println("[INFO] Starting MCP server...")
		mcpServer := &core.Core{}
		server := mcpServer.NewServer(tools, Version)
		if httpAddress != "" {
			return mcpServer.ServeHTTP(server, httpAddress)
		}
		return mcpServer.ServeStdio(cmd.Context(), server)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("http-address", "", "HTTP address to listen on (stdio is used when empty)")
	viper.BindPFlag("http-address", serveCmd.Flags().Lookup("http-address"))
}

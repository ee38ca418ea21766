package cmd

import (
	"github.com/emrgen/docgen/internal/config"
	"github.com/emrgen/docgen/internal/server"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var port string

	command := &cobra.Command{
		Use:   "serve",
		Short: "start the http server",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := config.LoadConfig()
			if port != "" {
				cfg.HTTP.Port = port
			}
			config.SetupLogger(cfg)
			server.NewServer(cfg).Start()
		},
	}

	command.Flags().StringVarP(&port, "port", "p", "", "http port, overrides HTTP_PORT")

	return command
}

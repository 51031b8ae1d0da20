package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/roomai/agora/config"
	"github.com/roomai/agora/internal/server"
)

func main() {
	root := &cobra.Command{Use: "agorad", Short: "Multi-LLM debate orchestration service"}
	root.AddCommand(serveCmd())
	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}

func serveCmd() *cobra.Command {
	var cfgPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			return server.Run(cfg)
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "config file (default: ./config/config.yaml)")
	return cmd
}

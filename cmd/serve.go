package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/mortalisys/internal/server"
)

var (
	srvData string
	srvAddr string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the interactive dashboard and JSON API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		if srvData != "" {
			c.DataPath = srvData
		}
		if srvAddr != "" {
			c.Addr = srvAddr
		}
		opt, err := loadOptions(c)
		if err != nil {
			return err
		}
		// the default dataset must load before the server starts
		t, err := loadTable(nil)
		if err != nil {
			return err
		}
		srv := server.New(server.Options{
			DataPath:    c.DataPath,
			Load:        opt,
			MaxUploadMB: c.MaxUploadMB,
			Defaults:    defaultLabels(),
		}, logger, t)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Serving %s (%d records) on %s\n", t.Name(), t.Len(), c.Addr)
		return srv.Run(ctx, c.Addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&srvData, "data", "", "dataset to load at startup and on reset (overrides data_path)")
	serveCmd.Flags().StringVar(&srvAddr, "addr", "", "listen address (overrides addr, default :8050)")
}


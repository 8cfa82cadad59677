package main

import (
	"fmt"
	"net"

	"github.com/benepick/benepick/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Serves the registration, onboarding and chat tracks as JSON and
server-sent event endpoints, plus /health, /info, /openapi.yaml and /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd, false)
		if err != nil {
			return err
		}
		defer app.Close()

		if port, _ := cmd.Flags().GetInt("port"); port != 0 {
			app.Config.Server.Port = port
		}

		ln, err := net.Listen("tcp", app.Config.Addr())
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()
		if err := cli.Serve(ctx, app, ln); err != nil {
			return err
		}
		if sig := ctx.Signal(); sig != nil {
			app.Logger.Info("stopped", "signal", sig.String())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 0, "Port to listen on (overrides server.port)")
}

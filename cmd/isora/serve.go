package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/isora-dev/isora"
	ierrors "github.com/isora-dev/isora/internal/errors"
	"github.com/isora-dev/isora/pkg/vdom"
)

func serveCmd() *cobra.Command {
	var (
		port int
		host string
		dev  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the preview server",
		Long: `Start a preview server from the config in the current directory.

The server loads isora.yaml (or isora.json) plus ISORA_* environment
overrides, serves static assets, and renders a welcome page on every
unclaimed route. Use it to verify a deployment environment before
wiring a real application.

Examples:
  isora serve
  isora serve --port=8080
  isora serve --dev`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(port, host, dev)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from isora.yaml)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from isora.yaml)")
	cmd.Flags().BoolVarP(&dev, "dev", "d", false, "Enable hot reload")

	return cmd
}

func runServe(port int, host string, dev bool) error {
	app, err := previewApp(port, host, dev)
	if err != nil {
		return err
	}

	printBanner()
	info("serving on http://%s", app.Config().Server.Addr())
	if app.Config().Dev.Enabled {
		info("hot reload enabled")
	}
	fmt.Println()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return app.Run(ctx)
}

// previewApp builds the App served by `isora serve` and inspected by
// `isora routes`.
func previewApp(port int, host string, dev bool) (*isora.App, error) {
	// .env is optional; a missing file is not an error.
	godotenv.Load()

	cfg, err := isora.LoadConfig(".")
	if err != nil {
		return nil, ierrors.Newf(ierrors.CategoryCLI, "load config").Wrap(err)
	}
	if port > 0 {
		cfg.Server.Port = port
	}
	if host != "" {
		cfg.Server.Host = host
	}
	if dev {
		cfg.Dev.Enabled = true
	}

	app, err := isora.New(cfg)
	if err != nil {
		return nil, err
	}

	app.Page("/", func(ctx *isora.Ctx) *isora.VNode {
		ctx.Head().SetTitle(cfg.Name)
		return vdom.Main(
			vdom.H1(vdom.Text(cfg.Name)),
			vdom.P(vdom.Text("The preview server is up. Static assets are served from "+
				cfg.Assets.BaseURL+".")),
		)
	})
	app.Page("/_isora/about", func(ctx *isora.Ctx) *isora.VNode {
		ctx.Head().SetTitle("About")
		return vdom.Main(
			vdom.H1(vdom.Text("Isora "+version)),
			vdom.P(vdom.Text("Session backend: "+cfg.Session.Backend)),
		)
	})

	return app, nil
}

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/ppiankov/artexplorer/internal/metrics"
	"github.com/ppiankov/artexplorer/internal/pipeline"
	"github.com/ppiankov/artexplorer/internal/web"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	serveAddr    string
	serveAPI     string
	serveNoCache bool
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve painting pages over HTTP",
	Long: `Serve starts the page server:
- / links to the configured home painting
- /<artist>/<painting> renders the viewer, ?fact=<slug> selects a fact
- /<artist>-<painting> redirects to the canonical painting path
- /health and /metrics for operations

Example:
  artexplorer serve
  artexplorer serve --addr :8080 --api http://catalogue:8000/api/v1
  ARTEXPLORER_LOGGING_FORMAT=json artexplorer serve`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
	serveCmd.Flags().StringVar(&serveAPI, "api", "", "backend base URL (overrides api.base_url)")
	serveCmd.Flags().BoolVar(&serveNoCache, "no-cache", false, "disable the markdown and image size caches")

	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("api.base_url", serveCmd.Flags().Lookup("api"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	if serveNoCache {
		cfg.Cache.Enabled = false
	}

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	var m *metrics.Metrics
	if cfg.Server.Metrics {
		m = metrics.New()
	}

	p := pipeline.NewPipeline(cfg, pipeline.Deps{
		Metrics: m,
		Logger:  logger,
	})

	server, err := web.NewServer(cfg, p, m, logger)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

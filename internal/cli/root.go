package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/artexplorer/internal/logging"
	"github.com/ppiankov/artexplorer/internal/model"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is overridden at build time with -ldflags "-X .../cli.Version=..."
var Version = "v0.1.0"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "artexplorer",
	Short: "Art Explorer - painting viewer with fact regions and a zoom lens",
	Long: `Art Explorer serves painting pages backed by the catalogue API.

Each painting carries facts: rectangular regions with a title and a
markdown description. Selecting a fact highlights its region, opens a
magnified lens over it and updates the address bar to ?fact=<slug>,
so every fact is shareable as a deep link.

The check command audits catalogue records for broken geometry,
missing facts and dead attribution links.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of Art Explorer.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "artexplorer %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.artexplorer/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(filepath.Join(home, ".artexplorer"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	configureViper(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// configureViper wires env lookups and defaults. ARTEXPLORER_API_BASE_URL
// overrides api.base_url and so on; BACKEND_BASE_URL is also accepted.
func configureViper(v *viper.Viper) {
	v.SetEnvPrefix("ARTEXPLORER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("api.base_url", "ARTEXPLORER_API_BASE_URL", "BACKEND_BASE_URL")

	setDefaults(v, model.DefaultConfig())
}

// setDefaults registers every default so AutomaticEnv can see each key
func setDefaults(v *viper.Viper, d *model.Config) {
	v.SetDefault("api.base_url", d.API.BaseURL)
	v.SetDefault("api.requests_per_sec", d.API.RequestsPerSec)
	v.SetDefault("api.burst", d.API.Burst)

	v.SetDefault("http.timeout", d.HTTP.Timeout)
	v.SetDefault("http.user_agent", d.HTTP.UserAgent)
	v.SetDefault("http.max_body_bytes", d.HTTP.MaxBodyBytes)
	v.SetDefault("http.http_proxy", d.HTTP.HTTPProxy)
	v.SetDefault("http.https_proxy", d.HTTP.HTTPSProxy)
	v.SetDefault("http.no_proxy", d.HTTP.NoProxy)

	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.requests_per_sec", d.Server.RequestsPerSec)
	v.SetDefault("server.burst", d.Server.Burst)
	v.SetDefault("server.render_timeout", d.Server.RenderTimeout)
	v.SetDefault("server.metrics", d.Server.Metrics)

	v.SetDefault("viewer.lens_zoom", d.Viewer.LensZoom)
	v.SetDefault("viewer.display_width", d.Viewer.DisplayWidth)
	v.SetDefault("viewer.home_painting", d.Viewer.HomePainting)
	v.SetDefault("viewer.site_title", d.Viewer.SiteTitle)

	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("cache.cleanup_interval", d.Cache.CleanupInterval)

	v.SetDefault("imagesize.enabled", d.ImageSize.Enabled)
	v.SetDefault("imagesize.max_header_bytes", d.ImageSize.MaxHeaderBytes)
	v.SetDefault("imagesize.respect_robots", d.ImageSize.RespectRobots)

	v.SetDefault("concurrency.workers", d.Concurrency.Workers)
	v.SetDefault("concurrency.validation_workers", d.Concurrency.ValidationWorkers)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
}

// loadConfig decodes the merged viper state into a validated Config
func loadConfig(v *viper.Viper) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if v.GetBool("verbose") {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// setup loads the configuration and installs the global logger
func setup() (*model.Config, zerolog.Logger, error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, logging.Init(cfg.Logging.Level, cfg.Logging.Format), nil
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"webboot/core/boot"
	"webboot/core/config"
	"webboot/core/container"
	"webboot/core/gate"
	"webboot/core/loader"
	"webboot/core/logger"
	"webboot/core/restart"
	"webboot/core/storage"

	"webboot/feature/status"
	"webboot/feature/webapp"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	startPort        int
	startDevelopment bool
	startBrowse      bool
	startConfigFiles []string
	startNoStatus    bool
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the web server",
	Long: `Starts the container over the configured archives and serves the web application.
In development a newer instance on the same port stops this one.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(configDir)
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
		applyStartFlags(cmd, cfg)

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		opts, err := bootOptions(cfg, logg)
		if err != nil {
			return err
		}
		b, err := boot.New(opts...)
		if err != nil {
			return err
		}

		// 3. Graceful Shutdown
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		err = b.BootAwait(ctx)
		if errors.Is(err, restart.ErrSuperseded) {
			logg.Info("Server stopped for a newer instance")
			return nil
		}
		return err
	},
}

func applyStartFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = startPort
	}
	if cmd.Flags().Changed("dev") {
		cfg.Boot.Development = startDevelopment
	}
	if cmd.Flags().Changed("browse") {
		cfg.Boot.Browse = startBrowse
	}
	if cmd.Flags().Changed("config") {
		cfg.Boot.ConfigFiles = startConfigFiles
	}
}

// bootOptions maps the application configuration to boot options.
func bootOptions(cfg *config.Config, logg *zap.Logger) ([]boot.Option, error) {
	bc := cfg.Boot
	opts := []boot.Option{
		boot.WithServer(cfg.Server),
		boot.WithContextPath(bc.ContextPath),
		boot.WithLogger(logg),
		boot.WithLogConfig(cfg.Log),
		boot.WithMarkDir(bc.MarkDir),
		boot.WithRestartTiming(bc.PollInterval, bc.ClaimDelay),
		boot.WithArchiveSources(container.DirSource{Dir: bc.LibDir}),
		boot.WithScanSkip(bc.ScanSkip...),
		boot.WithInitializers(container.NewTldInitializer()),
		// status goes first, the webapp default route would shadow it
		boot.WithFeatures(
			func(b *boot.Boot) loader.Feature {
				return status.NewFeature(b.Report, !startNoStatus, b.Logger())
			},
			func(b *boot.Boot) loader.Feature {
				return webapp.NewFeature(b.Context(), builtinHandlers(), b.Logger())
			},
		),
	}

	if bc.Development {
		opts = append(opts, boot.AsDevelopment())
		if bc.SuppressShutdownHook {
			opts = append(opts, boot.SuppressShutdownHook())
		}
		if bc.Browse {
			opts = append(opts, boot.BrowseOnDesktop())
		}
	}
	if len(bc.ConfigFiles) > 0 {
		opts = append(opts, boot.Configure(bc.ConfigFiles...))
	}
	if bc.LoggingFile != "" {
		opts = append(opts, boot.Logging(bc.LoggingFile, map[string]string{"boot.port": fmt.Sprint(cfg.Server.Port)}))
	}

	if bc.AnnotationDetect {
		opts = append(opts, boot.UseAnnotationDetect())
	}
	if bc.MetaInfoResourceDetect {
		opts = append(opts, boot.UseMetaInfoResourceDetect())
	}
	if bc.TldDetect {
		opts = append(opts, boot.UseTldDetect(selector(bc.TldSelector)))
	}
	if bc.WebFragmentsDetect {
		opts = append(opts, boot.UseWebFragmentsDetect(selector(bc.WebFragmentsSelector)))
	}

	if cfg.Storage.Enabled {
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		opts = append(opts, boot.WithArchiveSources(storage.NewBucketSource(client, cfg.Storage, logg)))
	}
	return opts, nil
}

func selector(globs []string) gate.Selector {
	if len(globs) == 0 {
		return nil
	}
	return gate.GlobSelector(globs...)
}

// builtinHandlers are the handler names archives can map without custom code.
func builtinHandlers() map[string]fiber.Handler {
	return map[string]fiber.Handler{
		"webboot.Health": func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"status": "ok"})
		},
		"webboot.Echo": func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{
				"method": c.Method(),
				"path":   c.Path(),
				"query":  c.Queries(),
			})
		},
	}
}

func init() {
	startCmd.Flags().IntVarP(&startPort, "port", "p", 8080, "listening port")
	startCmd.Flags().BoolVar(&startDevelopment, "dev", false, "development mode (restart coordinator)")
	startCmd.Flags().BoolVar(&startBrowse, "browse", false, "open the boot URL in the desktop browser (development)")
	startCmd.Flags().StringSliceVarP(&startConfigFiles, "config", "c", nil, "overlay properties files, highest priority first")
	startCmd.Flags().BoolVar(&startNoStatus, "no-status", false, "disable the /_boot/status endpoint")
	RootCmd.AddCommand(startCmd)
}

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"covermap/internal/catalog"
	"covermap/internal/config"
	"covermap/internal/continent"
	"covermap/internal/geom"
	"covermap/internal/logging"
	"covermap/internal/tui"
)

// reloads closer together than this are one reload
const watchDebounce = 250 * time.Millisecond

type options struct {
	configPath string
	dataset    string
	services   string
	surface    string
	strategy   string
	debug      bool
}

// load reads the config file and applies command-line overrides on top of it.
func (o *options) load() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.dataset != "" {
		cfg.Dataset.URL = o.dataset
	}
	if o.services != "" {
		cfg.Services.Path = o.services
	}
	if o.surface != "" {
		cfg.Interaction.Surface = o.surface
	}
	if o.strategy != "" {
		cfg.Interaction.ZoomStrategy = o.strategy
	}
	if o.debug {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newRootCmd() *cobra.Command {
	o := &options{}
	root := &cobra.Command{
		Use:   "covermap",
		Short: "Interactive service-coverage world map for the terminal",
		Long: `covermap draws a world map of countries in the terminal, grouped by continent.

Click a continent to zoom in, then hover a country to see whether a service is
available there and its tax, duties and lead time. Press b to go back.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(o)
		},
	}
	f := root.PersistentFlags()
	f.StringVarP(&o.configPath, "config", "c", "covermap.yaml", "config file")
	f.StringVar(&o.dataset, "dataset", "", "boundary GeoJSON URL or path")
	f.StringVar(&o.services, "services", "", "services file (yaml, json or csv)")
	f.StringVar(&o.surface, "surface", "", "country resolution: vector or raster")
	f.StringVar(&o.strategy, "strategy", "", "continent zoom: computed or fixed")
	f.BoolVar(&o.debug, "debug", false, "debug logging")

	root.AddCommand(newValidateCmd(o))
	return root
}

func run(o *options) error {
	cfg, err := o.load()
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	table, err := loadTable(cfg)
	if err != nil {
		return err
	}
	cat, err := loadServices(cfg.Services.Path, log)
	if err != nil {
		return err
	}

	var watcher *catalog.Watcher
	if cfg.Services.Watch && cat != nil {
		watcher, err = catalog.Watch(cfg.Services.Path, watchDebounce, log)
		if err != nil {
			log.Warn("services watch disabled", zap.Error(err))
		} else {
			defer watcher.Close()
		}
	}

	loader := &geom.Loader{
		Source:    cfg.Dataset.URL,
		Client:    &http.Client{},
		NameKeys:  cfg.Dataset.NameKeys,
		UserAgent: cfg.Dataset.UserAgent,
		Logger:    log,
	}
	m := tui.New(tui.Options{
		Config:  cfg,
		Table:   table,
		Loader:  loader,
		Catalog: cat,
		Watcher: watcher,
		Logger:  log,
	})
	log.Info("starting",
		zap.String("dataset", cfg.Dataset.URL),
		zap.String("surface", cfg.Interaction.Surface),
		zap.String("strategy", cfg.Interaction.ZoomStrategy))
	if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion()).Run(); err != nil {
		return fmt.Errorf("map UI: %w", err)
	}
	return nil
}

func loadTable(cfg *config.Config) (*continent.Table, error) {
	if cfg.ContinentsFile == "" {
		return continent.Default(), nil
	}
	return continent.Load(cfg.ContinentsFile)
}

// loadServices reads the catalog. A missing file means no services yet, not an error.
func loadServices(path string, log *zap.Logger) (*catalog.Catalog, error) {
	cat, err := catalog.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Warn("services file not found", zap.String("path", path))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return cat, nil
}

func main() {
	_ = godotenv.Load()
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

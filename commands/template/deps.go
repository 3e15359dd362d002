package template

import (
	"github.com/shortcut-cli/sc/cache"
	"github.com/shortcut-cli/sc/config"
	"github.com/shortcut-cli/sc/pkg/logger"
	"github.com/shortcut-cli/sc/shortcut"
)

// ConfigLoaderFunc loads the sc configuration from the given file path.
type ConfigLoaderFunc func(path string) (*config.Config, error)

// ClientFactoryFunc creates the API client for a run.
type ClientFactoryFunc func(cfg *config.Config, lggr logger.Logger) (*shortcut.Client, error)

// StoreFactoryFunc opens the name to id cache.
type StoreFactoryFunc func(dir string) (cache.Store, error)

// defaultConfigLoader is the production implementation that loads config.
func defaultConfigLoader(path string) (*config.Config, error) {
	return config.Load(path)
}

// defaultClientFactory is the production implementation that creates a Shortcut client.
func defaultClientFactory(cfg *config.Config, lggr logger.Logger) (*shortcut.Client, error) {
	return shortcut.NewClient(cfg.APIURL, cfg.APIToken,
		shortcut.WithRetry(cfg.RetryAttempts, cfg.RetryDelay),
		shortcut.WithLogger(lggr.Named("shortcut")),
	)
}

// defaultStoreFactory is the production implementation that opens the on-disk cache. Without a
// cache directory the cache only lives for the run.
func defaultStoreFactory(dir string) (cache.Store, error) {
	if dir == "" {
		return cache.NewMemoryStore(), nil
	}

	return cache.NewFileStore(dir), nil
}

// Deps holds the injectable dependencies for template commands.
// All fields are optional; nil values will use production defaults.
type Deps struct {
	// ConfigLoader loads the sc configuration.
	// Default: config.Load
	ConfigLoader ConfigLoaderFunc

	// ClientFactory creates the Shortcut API client.
	// Default: shortcut.NewClient configured from the loaded config
	ClientFactory ClientFactoryFunc

	// StoreFactory opens the name to id cache.
	// Default: cache.NewFileStore in the configured cache directory
	StoreFactory StoreFactoryFunc
}

// applyDefaults fills in nil dependencies with production defaults.
func (d *Deps) applyDefaults() {
	if d.ConfigLoader == nil {
		d.ConfigLoader = defaultConfigLoader
	}
	if d.ClientFactory == nil {
		d.ClientFactory = defaultClientFactory
	}
	if d.StoreFactory == nil {
		d.StoreFactory = defaultStoreFactory
	}
}

// Package extension provides the Forge extension adapter for TimeVault.
//
// It implements the forge.Extension interface to integrate TimeVault
// into a Forge application with automatic dependency discovery,
// DI registration, and lifecycle management.
//
// Configuration can be provided programmatically via Option functions
// or via YAML configuration files under "extensions.timevault" or
// "timevault" keys.
package extension

import (
	"context"
	"errors"

	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	timevault "github.com/xraph/timevault"
	"github.com/xraph/timevault/store"
	"github.com/xraph/timevault/store/memory"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "timevault"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Checkpointed balance ledger for time-locked deposits"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts TimeVault as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config     Config
	engine     *timevault.Ledger
	store      store.Store
	engineOpts []timevault.Option
	useGrove   bool
}

// New creates a new TimeVault Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Engine returns the underlying Ledger instance.
// This is nil until Register is called.
func (e *Extension) Engine() *timevault.Ledger { return e.engine }

// Register implements [forge.Extension]. It loads configuration,
// initializes the ledger engine, and registers it in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	// Use memory store if no store was provided programmatically.
	if e.store == nil {
		e.store = memory.New()
	}

	// Build engine options from resolved config.
	opts := e.buildEngineOpts()

	eng := timevault.New(e.store, opts...)
	e.engine = eng

	return vessel.Provide(fapp.Container(), func() (*timevault.Ledger, error) {
		return e.engine, nil
	})
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.engine == nil {
		return errors.New("timevault: extension not initialized")
	}

	if !e.config.DisableMigrate {
		if err := e.engine.Start(ctx); err != nil {
			return err
		}
	}

	e.MarkStarted()
	return nil
}

// Stop implements [forge.Extension].
func (e *Extension) Stop(_ context.Context) error {
	if e.engine != nil {
		if err := e.engine.Stop(); err != nil {
			e.MarkStopped()
			return err
		}
	}
	e.MarkStopped()
	return nil
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.store == nil {
		return errors.New("timevault: store not initialized")
	}
	return e.store.Ping(ctx)
}

// buildEngineOpts constructs timevault.Option values from the resolved config.
func (e *Extension) buildEngineOpts() []timevault.Option {
	opts := make([]timevault.Option, 0, len(e.engineOpts)+2)

	// Apply config-derived options.
	if e.config.JournalBatchSize > 0 || e.config.JournalFlushInterval > 0 {
		batchSize := e.config.JournalBatchSize
		flushInterval := e.config.JournalFlushInterval
		defaults := DefaultConfig()
		if batchSize == 0 {
			batchSize = defaults.JournalBatchSize
		}
		if flushInterval == 0 {
			flushInterval = defaults.JournalFlushInterval
		}
		opts = append(opts, timevault.WithJournalConfig(batchSize, flushInterval))
	}

	if !e.config.DayZero.IsZero() {
		dayLength := e.config.DayLength
		if dayLength == 0 {
			dayLength = timevault.DefaultDayLength
		}
		opts = append(opts, timevault.WithClock(timevault.WallClock(e.config.DayZero, dayLength)))
	}

	// Append any pass-through engine options.
	opts = append(opts, e.engineOpts...)

	return opts
}

// --- Config Loading (mirrors grove/shield extension pattern) ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	// Try loading from config file.
	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("timevault: configuration is required but not found in config files; " +
				"ensure 'extensions.timevault' or 'timevault' key exists in your config")
		}

		// Use programmatic config merged with defaults.
		e.config = e.mergeWithDefaults(programmaticConfig)
	} else {
		// Config loaded from YAML -- merge with programmatic options.
		e.config = e.mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("timevault: configuration loaded",
		forge.F("disable_migrate", e.config.DisableMigrate),
		forge.F("journal_batch_size", e.config.JournalBatchSize),
		forge.F("journal_flush_interval", e.config.JournalFlushInterval),
		forge.F("day_length", e.config.DayLength),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()
	var cfg Config

	// Try "extensions.timevault" first (namespaced pattern).
	if cm.IsSet("extensions.timevault") {
		if err := cm.Bind("extensions.timevault", &cfg); err == nil {
			e.Logger().Debug("timevault: loaded config from file",
				forge.F("key", "extensions.timevault"),
			)
			return cfg, true
		}
		e.Logger().Warn("timevault: failed to bind extensions.timevault config",
			forge.F("error", "bind failed"),
		)
	}

	// Try legacy "timevault" key.
	if cm.IsSet("timevault") {
		if err := cm.Bind("timevault", &cfg); err == nil {
			e.Logger().Debug("timevault: loaded config from file",
				forge.F("key", "timevault"),
			)
			return cfg, true
		}
		e.Logger().Warn("timevault: failed to bind timevault config",
			forge.F("error", "bind failed"),
		)
	}

	return Config{}, false
}

// mergeWithDefaults fills zero-valued fields with defaults.
func (e *Extension) mergeWithDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.JournalBatchSize == 0 {
		cfg.JournalBatchSize = defaults.JournalBatchSize
	}
	if cfg.JournalFlushInterval == 0 {
		cfg.JournalFlushInterval = defaults.JournalFlushInterval
	}
	if cfg.DayLength == 0 {
		cfg.DayLength = defaults.DayLength
	}
	return cfg
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML config takes precedence for most fields; programmatic bool flags fill gaps.
func (e *Extension) mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	// Programmatic bool flags override when true.
	if programmaticConfig.DisableMigrate {
		yamlConfig.DisableMigrate = true
	}

	// Duration/int fields: YAML takes precedence, programmatic fills gaps.
	if yamlConfig.JournalBatchSize == 0 && programmaticConfig.JournalBatchSize != 0 {
		yamlConfig.JournalBatchSize = programmaticConfig.JournalBatchSize
	}
	if yamlConfig.JournalFlushInterval == 0 && programmaticConfig.JournalFlushInterval != 0 {
		yamlConfig.JournalFlushInterval = programmaticConfig.JournalFlushInterval
	}
	if yamlConfig.DayZero.IsZero() && !programmaticConfig.DayZero.IsZero() {
		yamlConfig.DayZero = programmaticConfig.DayZero
	}
	if yamlConfig.DayLength == 0 && programmaticConfig.DayLength != 0 {
		yamlConfig.DayLength = programmaticConfig.DayLength
	}

	// Fill remaining zeros with defaults.
	return e.mergeWithDefaults(yamlConfig)
}

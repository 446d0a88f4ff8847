package cli

import (
	"fmt"
	"os"

	"github.com/glorpus-work/upmreg/internal/logger"
	"github.com/glorpus-work/upmreg/pkg/archive"
	"github.com/glorpus-work/upmreg/pkg/config"
	"github.com/glorpus-work/upmreg/pkg/download"
	"github.com/glorpus-work/upmreg/pkg/emit"
	"github.com/glorpus-work/upmreg/pkg/hash"
	"github.com/glorpus-work/upmreg/pkg/hooks"
	"github.com/glorpus-work/upmreg/pkg/inspect"
	"github.com/glorpus-work/upmreg/pkg/orchestrator"
	"github.com/glorpus-work/upmreg/pkg/registry"
)

// These variables will be set by the main package
var (
	ConfigPath *string
	Verbose    *bool
	LogLevel   *string
)

// loadConfig loads the configuration and applies the global flags to it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(getConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if LogLevel != nil && *LogLevel != "" {
		cfg.Settings.LogLevel = *LogLevel
	}
	if Verbose != nil && *Verbose {
		cfg.Settings.LogLevel = "debug"
	}

	logger.InitLogger(cfg.Settings.LogLevel, logger.OutputFormat(cfg.Settings.LogFormat))
	return cfg, nil
}

func getConfigPath() string {
	if ConfigPath != nil && *ConfigPath != "" {
		return *ConfigPath
	}
	return config.GetDefaultConfigPath()
}

// initLogging sets up the logger from the global flags alone, before any
// config is read.
func initLogging() {
	level := "info"
	if LogLevel != nil && *LogLevel != "" {
		level = *LogLevel
	}
	if Verbose != nil && *Verbose {
		level = "debug"
	}
	logger.InitLogger(level, logger.FormatText)
}

// siteFromConfig describes the published registry for the emitter.
func siteFromConfig(cfg *config.Config) emit.Site {
	return emit.Site{
		Name:        cfg.Registry.Name,
		Version:     cfg.Registry.Version,
		Title:       cfg.Registry.Title,
		Description: cfg.Registry.Description,
		ScopeName:   cfg.Registry.ScopeName,
		BaseURL:     cfg.Registry.BaseURL,
		RepoURL:     cfg.Registry.RepoURL,
		Scopes:      cfg.Registry.Scopes,
	}
}

// loadHashSource returns the local hasher, or in remote mode a hasher that
// downloads every published tarball.
func loadHashSource(cfg *config.Config) hash.Source {
	if !cfg.Build.Remote {
		return hash.LocalSource{}
	}
	var opts []download.Option
	if cfg.Settings.UserAgent != "" {
		opts = append(opts, download.WithUserAgent(cfg.Settings.UserAgent))
	}
	return hash.NewRemoteSource(download.NewFetcher(cfg.Settings.HTTPTimeout, opts...))
}

// loadHookManager loads the build hooks named in the config.
func loadHookManager(cfg *config.Config) (*hooks.DefaultHookManager, error) {
	manager := hooks.NewHookManager()
	if cfg.Hooks.Dir != "" {
		if err := hooks.LoadHooksFromDir(manager, cfg.Hooks.Dir); err != nil {
			return nil, err
		}
	}
	if err := hooks.LoadHookFile(manager, hooks.PreBuild, cfg.Hooks.PreBuild); err != nil {
		return nil, err
	}
	if err := hooks.LoadHookFile(manager, hooks.PostBuild, cfg.Hooks.PostBuild); err != nil {
		return nil, err
	}
	return manager, nil
}

// newBuildOrchestrator wires the build pipeline. The returned cleanup removes
// the scratch root and must be called once the build is over.
func newBuildOrchestrator(cfg *config.Config) (*orchestrator.Orchestrator, func(), error) {
	hookManager, err := loadHookManager(cfg)
	if err != nil {
		return nil, nil, err
	}

	scratch, err := inspect.NewScratchRoot(cfg.Build.ScratchDir)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := os.RemoveAll(scratch); err != nil {
			logger.Warn("Failed to remove scratch directory", logger.Fields{"path": scratch, "error": err})
		}
	}

	inspector := inspect.NewInspector(archive.NewManager(), scratch)
	orch := &orchestrator.Orchestrator{
		Aggregator: registry.NewAggregator(inspector, loadHashSource(cfg), cfg.Registry.BaseURL, cfg.Build.Jobs),
		Publisher:  emit.NewEmitter(cfg.Build.OutputDir, siteFromConfig(cfg)),
		Hooks:      orchestrator.Hooks{OnEvent: logEvent},
	}
	if len(hookManager.Loaded()) > 0 {
		orch.HookRunner = hookManager
	}
	return orch, cleanup, nil
}

// logEvent renders a build event to the logger.
func logEvent(e orchestrator.Event) {
	fields := logger.Fields{"phase": e.Phase}
	if e.ID != "" {
		fields["id"] = e.ID
	}

	switch e.Phase {
	case orchestrator.PhaseSkipped:
		fields["error"] = e.Err
		logger.Warn(e.Msg, fields)
	case orchestrator.PhaseWarning:
		logger.Warn(e.Msg, fields)
	case orchestrator.PhasePackage, orchestrator.PhasePublishing:
		logger.Debug(e.Msg, fields)
	case orchestrator.PhaseDone:
		logger.Success(e.Msg, fields)
	default:
		logger.Info(e.Msg, fields)
	}
}

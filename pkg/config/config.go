// Package config provides configuration management for the registry builder.
// It handles loading, validating and saving the YAML configuration that names
// the registry, the source and output directories, build hooks and general
// settings, and provides defaults for every value.
package config

import (
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/glorpus-work/upmreg/pkg/errutils"
	"github.com/glorpus-work/upmreg/pkg/fsutil"
)

// Config represents the application configuration.
type Config struct {
	Registry RegistryConfig `yaml:"registry"`
	Build    BuildConfig    `yaml:"build"`
	Hooks    HooksConfig    `yaml:"hooks"`

	// General settings
	Settings Settings `yaml:"settings"`
}

// RegistryConfig describes the published registry.
type RegistryConfig struct {
	// Name and Version are recorded in index.json.
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	Title       string `yaml:"title"`
	Description string `yaml:"description,omitempty"`

	// ScopeName and Scopes fill the scopedRegistries usage snippet.
	ScopeName string   `yaml:"scope_name"`
	Scopes    []string `yaml:"scopes"`

	BaseURL string `yaml:"base_url"`
	RepoURL string `yaml:"repo_url,omitempty"`
}

// BuildConfig controls a registry build.
type BuildConfig struct {
	PackagesDir string `yaml:"packages_dir"`
	OutputDir   string `yaml:"output_dir"`
	// ScratchDir is where archives are unpacked; empty means the system temp dir.
	ScratchDir string `yaml:"scratch_dir,omitempty"`
	// Remote hashes the published tarballs instead of the local files.
	Remote bool `yaml:"remote"`
	Jobs   int  `yaml:"jobs"`
}

// HooksConfig names optional Tengo scripts run around a build.
type HooksConfig struct {
	// Dir is searched for pre-build.tengo and post-build.tengo.
	Dir       string `yaml:"dir,omitempty"`
	PreBuild  string `yaml:"pre_build,omitempty"`
	PostBuild string `yaml:"post_build,omitempty"`
}

// Settings represents general application settings.
type Settings struct {
	// Network settings
	HTTPTimeout time.Duration `yaml:"http_timeout"`
	UserAgent   string        `yaml:"user_agent,omitempty"`

	// Output settings
	LogLevel  string `yaml:"log_level"`            // error, warn, info, debug
	LogFormat string `yaml:"log_format,omitempty"` // text, json
}

// Default configuration values.
const (
	// DefaultConfigFile is looked up in the working directory.
	DefaultConfigFile = "upmreg.yaml"

	DefaultRegistryName    = "Firebase Unity Packages"
	DefaultRegistryVersion = "1.0.0"
	DefaultTitle           = "Firebase Unity Package Registry"
	DefaultDescription     = "UPM-compatible Unity package registry for all Firebase SDK versions."
	DefaultScopeName       = "Firebase Me"
	DefaultScope           = "com.google.firebase"
	DefaultBaseURL         = "https://firebase-me.github.io/unity-repo"
	DefaultRepoURL         = "https://github.com/firebase-me/unity-repo"

	DefaultPackagesDir = "packages"
	DefaultOutputDir   = "docs"
	DefaultJobs        = 1

	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	DefaultLogFormat = "text"

	// YAMLIndent is the number of spaces to use for YAML indentation.
	YAMLIndent = 2
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Registry: RegistryConfig{
			Name:        DefaultRegistryName,
			Version:     DefaultRegistryVersion,
			Title:       DefaultTitle,
			Description: DefaultDescription,
			ScopeName:   DefaultScopeName,
			Scopes:      []string{DefaultScope},
			BaseURL:     DefaultBaseURL,
			RepoURL:     DefaultRepoURL,
		},
		Build: BuildConfig{
			PackagesDir: DefaultPackagesDir,
			OutputDir:   DefaultOutputDir,
			Jobs:        DefaultJobs,
		},
		Settings: Settings{
			HTTPTimeout: DefaultHTTPTimeout,
			LogLevel:    "info",
			LogFormat:   DefaultLogFormat,
		},
	}
}

// LoadConfig loads configuration from a file. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errutils.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errutils.Wrap(errutils.ErrInvalidConfigPath, err.Error())
	}

	file, err := os.Open(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, errutils.Wrapf(err, "failed to open config file: %s", path)
	}
	defer func() { _ = file.Close() }()

	return LoadConfigFromReader(file)
}

// LoadConfigFromReader loads configuration from an io.Reader.
func LoadConfigFromReader(reader io.Reader) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errutils.Wrap(err, "failed to read config data")
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errutils.Wrap(errutils.ErrConfigParse, err.Error())
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, errutils.Wrap(errutils.ErrConfigValidation, err.Error())
	}

	return &config, nil
}

// SaveConfig saves configuration to a file, replacing it atomically.
func (c *Config) SaveConfig(path string) error {
	if path == "" {
		return errutils.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return errutils.Wrap(errutils.ErrInvalidConfigPath, err.Error())
	}

	if err := os.MkdirAll(filepath.Dir(absPath), fsutil.DirModeDefault); err != nil {
		return errutils.Wrap(errutils.ErrConfigDirectory, err.Error())
	}

	tempPath := absPath + ".tmp"
	file, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fsutil.FileModeDefault)
	if err != nil {
		return errutils.Wrap(errutils.ErrConfigFileCreate, err.Error())
	}

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(YAMLIndent)

	if err := encoder.Encode(c); err != nil {
		_ = file.Close()
		_ = os.Remove(tempPath)
		return errutils.Wrap(errutils.ErrConfigEncode, err.Error())
	}

	_ = encoder.Close()
	_ = file.Close()

	if err := os.Rename(tempPath, absPath); err != nil {
		_ = os.Remove(tempPath)
		return errutils.Wrap(errutils.ErrConfigFileRename, err.Error())
	}

	return nil
}

// ToYAML converts the config to YAML bytes.
func (c *Config) ToYAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, errutils.Wrap(errutils.ErrConfigMarshal, err.Error())
	}
	return data, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c == nil {
		return errutils.ErrConfigValidation
	}
	if err := validateRegistry(c.Registry); err != nil {
		return err
	}
	if err := validateBuild(c.Build); err != nil {
		return err
	}
	return validateSettings(c.Settings)
}

func validateRegistry(r RegistryConfig) error {
	if r.BaseURL == "" {
		return errutils.ErrBaseURLEmpty
	}
	u, err := url.Parse(r.BaseURL)
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errutils.ErrBaseURLInvalidWithValue(r.BaseURL)
	}
	return nil
}

func validateBuild(b BuildConfig) error {
	if b.PackagesDir == "" || b.OutputDir == "" {
		return errutils.Wrap(errutils.ErrInvalidPath, "packages_dir and output_dir are required")
	}
	if filepath.Clean(b.PackagesDir) == filepath.Clean(b.OutputDir) {
		return errutils.Wrapf(errutils.ErrInvalidPath, "output_dir %q must differ from packages_dir", b.OutputDir)
	}
	if b.Jobs < 1 {
		return errutils.ErrJobsInvalid
	}
	return nil
}

func validateSettings(s Settings) error {
	if s.HTTPTimeout < 0 {
		return errutils.ErrHTTPTimeoutNegative
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(s.LogLevel)] {
		return errutils.ErrInvalidLogLevelWithDetails(s.LogLevel)
	}
	switch s.LogFormat {
	case "text", "json":
	default:
		return errutils.Wrapf(errutils.ErrInvalidLogFormat, "%q, must be text or json", s.LogFormat)
	}
	return nil
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return DefaultConfigFile
}

// applyDefaults fills in missing values with defaults.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Registry.Name == "" {
		c.Registry.Name = defaults.Registry.Name
	}
	if c.Registry.Version == "" {
		c.Registry.Version = defaults.Registry.Version
	}
	if c.Registry.Title == "" {
		c.Registry.Title = c.Registry.Name
	}
	if c.Registry.ScopeName == "" {
		c.Registry.ScopeName = c.Registry.Name
	}
	if c.Registry.Scopes == nil {
		c.Registry.Scopes = defaults.Registry.Scopes
	}
	if c.Registry.BaseURL == "" {
		c.Registry.BaseURL = defaults.Registry.BaseURL
	}
	if c.Build.PackagesDir == "" {
		c.Build.PackagesDir = defaults.Build.PackagesDir
	}
	if c.Build.OutputDir == "" {
		c.Build.OutputDir = defaults.Build.OutputDir
	}
	if c.Build.Jobs == 0 {
		c.Build.Jobs = defaults.Build.Jobs
	}
	if c.Settings.HTTPTimeout == 0 {
		c.Settings.HTTPTimeout = defaults.Settings.HTTPTimeout
	}
	if c.Settings.LogLevel == "" {
		c.Settings.LogLevel = defaults.Settings.LogLevel
	}
	if c.Settings.LogFormat == "" {
		c.Settings.LogFormat = defaults.Settings.LogFormat
	}
}

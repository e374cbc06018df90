package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/pageinject/internal/foundation/errors"
)

// DefaultConfigFile is the configuration file name used when --config is not given.
const DefaultConfigFile = "pageinject.yaml"

// DefaultManifestFile is the page manifest file name, resolved relative to the source root.
const DefaultManifestFile = "pages.json"

// Config is the injector configuration.
type Config struct {
	// Root is the source root containing the manifest and the page files.
	// When empty, UNI_INPUT_DIR is used, then $INIT_CWD/src.
	Root string `yaml:"root,omitempty"`
	// Manifest is the manifest file path relative to Root.
	Manifest   string     `yaml:"manifest,omitempty"`
	Components Registry   `yaml:"components,omitempty"`
	Includes   []string   `yaml:"includes,omitempty"`
	WatchFile  StringList `yaml:"watchFile,omitempty"`
	InsertPos  InsertPos  `yaml:"insertPos,omitempty"`
	// DTS is the optional output path of the generated route declaration file.
	DTS     string  `yaml:"dts,omitempty"`
	Logging Logging `yaml:"logging,omitempty"`

	baseDir string
}

// Load loads configuration from the specified file.
func Load(configPath string) (*Config, error) {
	if err := loadEnvFile(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, errors.ConfigError("configuration file not found").
			WithContext("path", configPath).
			Build()
	}

	// #nosec G304 -- path is the user supplied configuration file.
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read config file").
			WithContext("path", configPath).
			Build()
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to parse config file").
			Fatal().
			WithContext("path", configPath).
			Build()
	}

	if abs, err := filepath.Abs(configPath); err == nil {
		cfg.baseDir = filepath.Dir(abs)
	}
	return cfg, nil
}

// Parse decodes configuration bytes, expanding environment variables first.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.Manifest) == "" {
		c.Manifest = DefaultManifestFile
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = LogFormatText
	}
}

// Validate reports configuration that cannot be honored.
// An unsupported insertPos.mode is not an error: it resolves every page to an empty label set.
func (c *Config) Validate() error {
	for i, hp := range c.InsertPos.HandlePos {
		if strings.TrimSpace(hp.Page) == "" {
			return errors.ValidationError("insertPos.handlePos entry is missing page").
				WithContext("index", i).
				Build()
		}
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	if c.InsertPos.Mode() != ModeGlobal {
		slog.Warn("Unsupported insertPos.mode, no fragments will be inserted", "mode", c.InsertPos.RawMode)
	}
	return nil
}

// ManifestName returns the manifest file's base name, used to recognize manifest change events.
func (c *Config) ManifestName() string {
	name := c.Manifest
	if name == "" {
		name = DefaultManifestFile
	}
	return filepath.Base(name)
}

// Init creates a new configuration file with example content.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.ConfigError("configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).
			Build()
	}

	example := Config{
		Root:       "./src",
		Manifest:   DefaultManifestFile,
		Components: NewRegistry(Fragment{ID: "banner", Markup: "<global-banner />"}),
		WatchFile:  StringList{"src/pages.json"},
		InsertPos: InsertPos{
			RawMode: string(ModeGlobal),
			Exclude: []string{"pages/login/index"},
			HandlePos: []HandlePos{
				{Page: "pages/index/index", Insert: []string{"banner"}},
			},
		},
		Logging: Logging{Level: defaultLogLevel, Format: LogFormatText},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to marshal example config").Build()
	}
	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "failed to create config directory").
				WithContext("path", dir).
				Build()
		}
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write config file").
			WithContext("path", configPath).
			Build()
	}
	return nil
}

// Package config resolves telepub settings from flags, the config file,
// the environment and an optional .env file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/tesh254/telepub/internal/docs"
)

// EnvPrefix prefixes every environment variable read by telepub.
const EnvPrefix = "TELEPUB"

// Config holds the resolved settings.
type Config struct {
	APIURL      string        `mapstructure:"api-url"`
	TokenFile   string        `mapstructure:"token-file"`
	PagesFile   string        `mapstructure:"pages-file"`
	AccessToken string        `mapstructure:"access-token"`
	ShortName   string        `mapstructure:"short-name"`
	AuthorName  string        `mapstructure:"author-name"`
	AuthorURL   string        `mapstructure:"author-url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	DocsDir     string        `mapstructure:"docs-dir"`
	StateDB     string        `mapstructure:"state-db"`
	UserAgent   string        `mapstructure:"user-agent"`
	Verbose     bool          `mapstructure:"verbose"`
	Sources     []docs.Source `mapstructure:"sources"`
}

// Dir returns the directory holding telepub's config and state files.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".telepub"
	}
	return filepath.Join(home, ".telepub")
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	dir := Dir()
	v.SetDefault("api-url", "https://api.telegra.ph")
	v.SetDefault("token-file", filepath.Join(dir, "telegraph_token"))
	v.SetDefault("pages-file", filepath.Join(dir, "telegraph_pages.json"))
	v.SetDefault("access-token", "")
	v.SetDefault("short-name", "Notes")
	v.SetDefault("author-name", "")
	v.SetDefault("author-url", "")
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("docs-dir", "docs")
	v.SetDefault("state-db", filepath.Join(dir, "docs.db"))
	v.SetDefault("user-agent", "docs-updater/1.0")
	v.SetDefault("verbose", false)
}

// Init prepares v to read cfgFile, or config.yaml from Dir() when cfgFile is
// empty, plus TELEPUB_* environment variables. A .env file in the working
// directory is loaded first; its absence is not an error.
func Init(v *viper.Viper, cfgFile string) error {
	_ = godotenv.Load()

	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(Dir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

// Load decodes the settings held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if len(cfg.Sources) == 0 {
		cfg.Sources = docs.DefaultSources()
	}
	for i, src := range cfg.Sources {
		if src.Name == "" || src.URL == "" {
			return nil, fmt.Errorf("source %d: name and url are required", i)
		}
	}
	return &cfg, nil
}

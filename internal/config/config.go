package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Projects ProjectsConfig
	Bundle   BundleConfig
	URL      URLConfig
	Web      WebConfig
	Log      LogConfig
}

// ProjectsConfig points at the manifest: a projects directory, a .json
// manifest, or a .sqlite/.db file.
type ProjectsConfig struct {
	Path string
}

type BundleConfig struct {
	Threshold time.Duration
	// Reference is the instant ages are measured from. Empty means now.
	Reference string
}

type URLConfig struct {
	Debounce time.Duration
	Section  string
}

type WebConfig struct {
	Addr  string
	Watch bool
}

type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from file and env. Env var overrides use prefix TIMELINE_.
// path may be empty, in which case TIMELINE_CONFIG or ~/.config/timeline/config.* is used.
func Load(path string) (Config, error) {
	v := viper.New()

	v.SetDefault("projects.path", "projects")
	v.SetDefault("bundle.threshold", "8760h")
	v.SetDefault("bundle.reference", "")
	v.SetDefault("url.debounce", "150ms")
	v.SetDefault("url.section", "timeline")
	v.SetDefault("web.addr", "127.0.0.1:3336")
	v.SetDefault("web.watch", true)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")

	if path == "" {
		path = os.Getenv("TIMELINE_CONFIG")
	}
	explicit := path != ""
	if explicit {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "timeline"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("TIMELINE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		// A missing default config is fine; an explicit one must load.
		var notFound viper.ConfigFileNotFoundError
		if explicit || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config %s: %w", v.ConfigFileUsed(), err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// ReferenceTime resolves Bundle.Reference, defaulting to now.
func (c Config) ReferenceTime(now time.Time) (time.Time, error) {
	s := strings.TrimSpace(c.Bundle.Reference)
	if s == "" {
		return now.UTC(), nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid bundle.reference %q (expected RFC3339 or YYYY-MM-DD)", s)
}

// Package config loads the site configuration and holds the constants shared by the server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

var configLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	configLogger = l
}

const SupportedVersion = "1"

// Config represents the complete configuration structure
type Config struct {
	Version string        `yaml:"version" toml:"version" default:"1"`
	Site    SiteConfig    `yaml:"site" toml:"site"`
	Server  ServerConfig  `yaml:"server" toml:"server"`
	Theme   ThemeConfig   `yaml:"theme" toml:"theme"`
	Content ContentConfig `yaml:"content" toml:"content"`
	Search  SearchConfig  `yaml:"search" toml:"search"`
	Meta    MetaConfig    `yaml:"meta" toml:"meta"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level" default:"info"`
	Format string `yaml:"format" toml:"format" default:"console"`
}

type SiteConfig struct {
	Name        string `yaml:"name" toml:"name" default:"MetaBlog"`
	Description string `yaml:"description" toml:"description" default:"Stories, guides and notes from the MetaBlog writers"`
	Tagline     string `yaml:"tagline" toml:"tagline" default:"Latest Post"`
}

type ServerConfig struct {
	Host string `yaml:"host" toml:"host" default:"0.0.0.0"`
	Port string `yaml:"port" toml:"port" default:"12600"`
}

type ThemeConfig struct {
	Default            string       `yaml:"default" toml:"default" default:"dark-theme"`
	AllowSwitching     bool         `yaml:"allow_switching" toml:"allow_switching" default:"true"`
	SyntaxHighlighting SyntaxConfig `yaml:"syntax_highlighting" toml:"syntax_highlighting"`
}

type SyntaxConfig struct {
	DefaultDark  string `yaml:"default_dark" toml:"default_dark" default:"gruvbox"`
	DefaultLight string `yaml:"default_light" toml:"default_light" default:"catppuccin-latte"`
}

// ContentConfig points the reader at the remote content API.
type ContentConfig struct {
	APIBaseURL     string `yaml:"api_base_url" toml:"api_base_url" default:"https://jsonplaceholder.typicode.com"`
	TimeoutSeconds int    `yaml:"timeout_seconds" toml:"timeout_seconds" default:"15"`
	UserAgent      string `yaml:"user_agent" toml:"user_agent" default:"metablog-reader"`
	Renderer       string `yaml:"renderer" toml:"renderer" default:"mmark"`
}

func (c ContentConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

type SearchConfig struct {
	DebounceMS int `yaml:"debounce_ms" toml:"debounce_ms" default:"300"`
}

func (s SearchConfig) Debounce() time.Duration {
	return time.Duration(s.DebounceMS) * time.Millisecond
}

type MetaConfig struct {
	Author   string   `yaml:"author" toml:"author" default:""`
	Keywords []string `yaml:"keywords" toml:"keywords" default:"blog,travel,technology"`
	Favicon  string   `yaml:"favicon" toml:"favicon" default:"/static/favicon.svg"`
}

var AppConfig = Default()

// Default returns a config with every default tag applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// LoadConfig reads a YAML or TOML file (picked by extension) on top of the defaults.
// A missing file is not an error.
func LoadConfig(path string) error {
	config := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		configLogger.Info().Str("path", path).Msg("Config file not found, using defaults")
		applyEnv(config)
		AppConfig = config
		return nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), config); err != nil {
			return fmt.Errorf("failed to parse config file: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := config.Validate(); err != nil {
		return err
	}

	applyEnv(config)
	AppConfig = config
	return nil
}

func (c *Config) Validate() error {
	if c.Version != SupportedVersion {
		return fmt.Errorf("unsupported configuration version %q (expected %q)", c.Version, SupportedVersion)
	}
	if c.Content.APIBaseURL == "" {
		return fmt.Errorf("content.api_base_url must not be empty")
	}
	if c.Search.DebounceMS < 0 {
		return fmt.Errorf("search.debounce_ms must not be negative")
	}
	switch c.Content.Renderer {
	case RendererMmark, RendererClassic:
	default:
		return fmt.Errorf("unknown content.renderer %q", c.Content.Renderer)
	}
	return nil
}

func applyEnv(c *Config) {
	if v := os.Getenv(EnvContentAPIURL); v != "" {
		configLogger.Debug().Str("api_base_url", v).Msg("Content API overridden from environment")
		c.Content.APIBaseURL = v
	}
}

func ApplyDefaults(config interface{}) {
	applyDefaults(config)
}

func applyDefaults(config interface{}) {
	v := reflect.ValueOf(config)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if !field.IsValid() || !field.CanSet() {
			continue
		}

		// Recursively apply defaults to nested structs
		if field.Kind() == reflect.Struct {
			applyDefaults(field.Addr().Interface())
			continue
		}

		defaultValue := fieldType.Tag.Get("default")
		if defaultValue == "" {
			continue
		}

		switch field.Kind() {
		case reflect.String:
			field.SetString(defaultValue)
		case reflect.Bool:
			if val, err := strconv.ParseBool(defaultValue); err == nil {
				field.SetBool(val)
			}
		case reflect.Int:
			if val, err := strconv.ParseInt(defaultValue, 10, 64); err == nil {
				field.SetInt(val)
			}
		case reflect.Slice:
			if field.Len() == 0 && field.Type().Elem().Kind() == reflect.String {
				parts := strings.Split(defaultValue, ",")
				slice := reflect.MakeSlice(field.Type(), len(parts), len(parts))
				for j, part := range parts {
					slice.Index(j).SetString(strings.TrimSpace(part))
				}
				field.Set(slice)
			}
		default:
			configLogger.Warn().
				Str("field_name", fieldType.Name).
				Str("field_type", field.Kind().String()).
				Msg("Unsupported field type for default value")
		}
	}
}

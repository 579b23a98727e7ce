// Package config provides centralized configuration management for the time-weather MCP server.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Config holds the complete configuration for the application
type Config struct {
	// Transport selects the stdio or the streamable HTTP front end.
	Transport string

	HTTP struct {
		Host string
		Port int
	}

	// Weather provider configuration
	Weather struct {
		APIKey  string
		BaseURL string
		Timeout time.Duration
	}

	Log struct {
		Level string
	}

	Server struct {
		Name    string
		Version string
	}

	// EnvFile is the local secret file that was consulted, if any.
	EnvFile string
}

// Load builds the configuration from command line arguments (without the
// program name), the environment and an optional .env file, in that order of
// precedence.
func Load(args []string) (*Config, error) {
	flags := pflag.NewFlagSet("time-weather-mcp", pflag.ContinueOnError)
	flags.Bool("http", false, "serve streamable HTTP instead of stdio")
	flags.String("host", "0.0.0.0", "HTTP listen host")
	flags.Int("port", 8000, "HTTP listen port")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("env-file", ".env", "file with KEY=value secrets loaded into the environment")

	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	envFile, _ := flags.GetString("env-file")
	if err := loadEnvFile(envFile); err != nil {
		return nil, err
	}

	v := viper.New()

	// Set default values
	v.SetDefault("transport", TransportStdio)
	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8000)
	v.SetDefault("weather.base_url", "http://api.weatherapi.com")
	v.SetDefault("weather.timeout", 10*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("server.name", "time-weather-mcp")
	v.SetDefault("server.version", "1.0.0")

	// Map environment variables to config keys
	bindings := map[string]string{
		"transport":        "MCP_TRANSPORT",
		"http.host":        "HOST",
		"http.port":        "PORT",
		"weather.api_key":  "WEATHER_API_KEY",
		"weather.base_url": "WEATHER_API_URL",
		"weather.timeout":  "WEATHER_TIMEOUT",
		"log.level":        "LOG_LEVEL",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, err
		}
	}

	for key, flag := range map[string]string{
		"http.host": "host",
		"http.port": "port",
		"log.level": "log-level",
	} {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return nil, err
		}
	}

	config := &Config{EnvFile: envFile}
	config.Transport = strings.ToLower(strings.TrimSpace(v.GetString("transport")))
	if useHTTP, _ := flags.GetBool("http"); useHTTP {
		config.Transport = TransportHTTP
	}

	config.HTTP.Host = v.GetString("http.host")
	config.HTTP.Port = v.GetInt("http.port")

	config.Weather.APIKey = v.GetString("weather.api_key")
	config.Weather.BaseURL = v.GetString("weather.base_url")
	config.Weather.Timeout = v.GetDuration("weather.timeout")

	config.Log.Level = v.GetString("log.level")

	config.Server.Name = v.GetString("server.name")
	config.Server.Version = v.GetString("server.version")

	return config, nil
}

func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}

	return nil
}

// Addr is the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.HTTP.Host, c.HTTP.Port)
}

// Validate checks the values the server cannot start without.
func (c *Config) Validate() error {
	var errs []error

	if c.Transport != TransportStdio && c.Transport != TransportHTTP {
		errs = append(errs, fmt.Errorf("unknown transport %q", c.Transport))
	}

	if c.HTTP.Port < 1 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.HTTP.Port))
	}

	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}

	if u, err := url.Parse(c.Weather.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("invalid weather API URL %q", c.Weather.BaseURL))
	}

	if c.Weather.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("weather timeout must be positive, got %s", c.Weather.Timeout))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %w", errors.Join(errs...))
	}

	return nil
}

// Warnings lists settings that are missing but only degrade a tool.
func (c *Config) Warnings() []string {
	var warnings []string

	if c.Weather.APIKey == "" {
		warnings = append(warnings, "WEATHER_API_KEY is not set; weather_tool will report it to callers")
	}

	return warnings
}

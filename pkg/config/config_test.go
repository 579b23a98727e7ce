package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

var configEnv = []string{
	"MCP_TRANSPORT", "HOST", "PORT", "WEATHER_API_KEY",
	"WEATHER_API_URL", "WEATHER_TIMEOUT", "LOG_LEVEL",
}

// clearEnv unsets every variable Load reads and restores them after the test.
func clearEnv(t *testing.T) {
	for _, key := range configEnv {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func noEnvFile(t *testing.T) string {
	return "--env-file=" + filepath.Join(t.TempDir(), "missing.env")
}

func TestLoad(t *testing.T) {
	Convey("Given an empty environment", t, func() {
		clearEnv(t)

		config, err := Load([]string{noEnvFile(t)})
		So(err, ShouldBeNil)

		Convey("Defaults should apply", func() {
			So(config.Transport, ShouldEqual, TransportStdio)
			So(config.Addr(), ShouldEqual, "0.0.0.0:8000")
			So(config.Weather.APIKey, ShouldBeEmpty)
			So(config.Weather.BaseURL, ShouldEqual, "http://api.weatherapi.com")
			So(config.Weather.Timeout, ShouldEqual, 10*time.Second)
			So(config.Log.Level, ShouldEqual, "info")
			So(config.Server.Name, ShouldEqual, "time-weather-mcp")
			So(config.Validate(), ShouldBeNil)
		})

		Convey("A missing API key should only warn", func() {
			So(config.Warnings(), ShouldHaveLength, 1)
			So(config.Warnings()[0], ShouldContainSubstring, "WEATHER_API_KEY")
		})
	})

	Convey("Given environment variables", t, func() {
		clearEnv(t)
		t.Setenv("MCP_TRANSPORT", " HTTP ")
		t.Setenv("HOST", "127.0.0.1")
		t.Setenv("PORT", "9090")
		t.Setenv("WEATHER_API_KEY", "from-env")
		t.Setenv("WEATHER_TIMEOUT", "3s")
		t.Setenv("LOG_LEVEL", "debug")

		Convey("They should override the defaults", func() {
			config, err := Load([]string{noEnvFile(t)})
			So(err, ShouldBeNil)

			So(config.Transport, ShouldEqual, TransportHTTP)
			So(config.Addr(), ShouldEqual, "127.0.0.1:9090")
			So(config.Weather.APIKey, ShouldEqual, "from-env")
			So(config.Weather.Timeout, ShouldEqual, 3*time.Second)
			So(config.Log.Level, ShouldEqual, "debug")
			So(config.Warnings(), ShouldBeEmpty)
		})

		Convey("Flags should override them in turn", func() {
			config, err := Load([]string{noEnvFile(t), "--port", "7000", "--host", "localhost", "--log-level", "warn"})
			So(err, ShouldBeNil)

			So(config.Addr(), ShouldEqual, "localhost:7000")
			So(config.Log.Level, ShouldEqual, "warn")
		})
	})

	Convey("Given the --http flag", t, func() {
		clearEnv(t)
		t.Setenv("MCP_TRANSPORT", "stdio")

		config, err := Load([]string{noEnvFile(t), "--http"})
		So(err, ShouldBeNil)
		So(config.Transport, ShouldEqual, TransportHTTP)
	})

	Convey("Given an env file", t, func() {
		clearEnv(t)
		path := filepath.Join(t.TempDir(), "secrets.env")
		So(os.WriteFile(path, []byte("WEATHER_API_KEY=from-file\nPORT=8123\n"), 0o600), ShouldBeNil)

		Convey("Its values should fill unset variables", func() {
			config, err := Load([]string{"--env-file", path})
			So(err, ShouldBeNil)

			So(config.EnvFile, ShouldEqual, path)
			So(config.Weather.APIKey, ShouldEqual, "from-file")
			So(config.HTTP.Port, ShouldEqual, 8123)
		})

		Convey("It should not override the real environment", func() {
			t.Setenv("WEATHER_API_KEY", "from-env")

			config, err := Load([]string{"--env-file", path})
			So(err, ShouldBeNil)
			So(config.Weather.APIKey, ShouldEqual, "from-env")
		})
	})

	Convey("Given an unknown flag", t, func() {
		clearEnv(t)

		_, err := Load([]string{"--bogus"})
		So(err, ShouldNotBeNil)
	})
}

func TestValidate(t *testing.T) {
	Convey("Given a valid configuration", t, func() {
		clearEnv(t)

		config, err := Load([]string{noEnvFile(t)})
		So(err, ShouldBeNil)

		Convey("An unknown transport should fail", func() {
			config.Transport = "carrier-pigeon"
			So(config.Validate(), ShouldNotBeNil)
			So(config.Validate().Error(), ShouldContainSubstring, "carrier-pigeon")
		})

		Convey("Every problem should be reported at once", func() {
			config.HTTP.Port = 70000
			config.Log.Level = "chatty"
			config.Weather.BaseURL = "not a url"
			config.Weather.Timeout = 0

			err := config.Validate()
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldStartWith, "configuration validation failed")
			So(err.Error(), ShouldContainSubstring, "70000")
			So(err.Error(), ShouldContainSubstring, "chatty")
			So(err.Error(), ShouldContainSubstring, "not a url")
			So(err.Error(), ShouldContainSubstring, "timeout")
		})
	})
}

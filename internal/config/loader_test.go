package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/movestat/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Window, convey.ShouldEqual, 10)
				convey.So(cfg.DataDir, convey.ShouldEqual, "opendata/data")
				convey.So(cfg.MatchIDs, convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("MOVESTAT_WINDOW", "1")
			_ = os.Setenv("MOVESTAT_FRAME_DURATION", "0.04")
			_ = os.Setenv("MOVESTAT_TIME_MODE", "window")
			_ = os.Setenv("MOVESTAT_MATCH_IDS", "4039, 2068")
			_ = os.Setenv("MOVESTAT_FAIL_FAST", "true")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Window, convey.ShouldEqual, 1)
				convey.So(cfg.FrameDuration, convey.ShouldEqual, 0.04)
				convey.So(cfg.TimeMode, convey.ShouldEqual, config.TimeModeWindow)
				convey.So(cfg.MatchIDs, convey.ShouldResemble, []int64{4039, 2068})
				convey.So(cfg.FailFast, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			tmpFile := createTempConfigFile(`
data_dir: /srv/opendata/data
window: 5
tolerance: 0.5
match_ids: [2417]
output: out.csv
`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("MOVESTAT_CONFIG", tmpFile)
			_ = os.Setenv("MOVESTAT_WINDOW", "3")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then file values apply and env overrides the file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.DataDir, convey.ShouldEqual, "/srv/opendata/data")
				convey.So(cfg.Window, convey.ShouldEqual, 3)
				convey.So(cfg.Tolerance, convey.ShouldEqual, 0.5)
				convey.So(cfg.MatchIDs, convey.ShouldResemble, []int64{2417})
				convey.So(cfg.Output, convey.ShouldEqual, "out.csv")
				convey.So(cfg.FrameDuration, convey.ShouldEqual, 0.1)
			})
		})

		convey.Convey("When loading config with invalid YAML", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("MOVESTAT_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the config file does not exist", func() {
			_ = os.Setenv("MOVESTAT_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(cfg, convey.ShouldBeNil)
		})

		convey.Convey("When an env var holds an invalid number", func() {
			_ = os.Setenv("MOVESTAT_WINDOW", "wide")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(cfg, convey.ShouldBeNil)
		})

		convey.Convey("When an env var holds an out-of-range value", func() {
			_ = os.Setenv("MOVESTAT_WINDOW", "0")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then validation rejects it", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "window")
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"MOVESTAT_CONFIG",
		"MOVESTAT_WINDOW",
		"MOVESTAT_FRAME_DURATION",
		"MOVESTAT_TIME_MODE",
		"MOVESTAT_MATCH_IDS",
		"MOVESTAT_FAIL_FAST",
		"MOVESTAT_DATA_DIR",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "movestat-config-*.yaml")
	if err != nil {
		panic(err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}
	if err := tmpFile.Close(); err != nil {
		panic(err)
	}
	return tmpFile.Name()
}

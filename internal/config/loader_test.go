package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/juicerank/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldResemble, config.New(ctx))
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("JUICERANK_ADDR", ":8080")
			_ = os.Setenv("JUICERANK_QUEUE_SIZE", "500")
			_ = os.Setenv("JUICERANK_WORKER_COUNT", "16")
			_ = os.Setenv("JUICERANK_SECTION_LENGTH", "300")
			_ = os.Setenv("JUICERANK_DEFAULT_BEAT_LENGTH", "500")
			_ = os.Setenv("JUICERANK_LAST_TICK_ANCHOR", "true")
			_ = os.Setenv("JUICERANK_GRID_ALIGNED_SECTIONS", "true")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 500)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 16)
				convey.So(cfg.SectionLength, convey.ShouldEqual, 300.0)
				convey.So(cfg.DefaultBeatLength, convey.ShouldEqual, 500.0)
				convey.So(cfg.LastTickAnchor, convey.ShouldBeTrue)
				convey.So(cfg.GridAlignedSections, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			tmpFile := createTempConfigFile(`
addr: ":9090"
queue_size: 300
store: sqlite
sqlite_path: /tmp/ratings.db
decay_weight: 0.95
`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("JUICERANK_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 300)
				convey.So(cfg.Store, convey.ShouldEqual, config.StoreSQLite)
				convey.So(cfg.SQLitePath, convey.ShouldEqual, "/tmp/ratings.db")
				convey.So(cfg.DecayWeight, convey.ShouldEqual, 0.95)
			})

			convey.Convey("Then missing fields keep their defaults", func() {
				convey.So(cfg.DedupeSize, convey.ShouldEqual, 100_000)
				convey.So(cfg.SectionLength, convey.ShouldEqual, 400.0)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempConfigFile(`
addr: ":9090"
worker_count: 24
`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("JUICERANK_CONFIG", tmpFile)
			_ = os.Setenv("JUICERANK_WORKER_COUNT", "32")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 32)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("JUICERANK_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("JUICERANK_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("JUICERANK_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("JUICERANK_QUEUE_SIZE", "invalid")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When selecting an unknown store", func() {
			_ = os.Setenv("JUICERANK_STORE", "memcached")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"JUICERANK_CONFIG",
		"JUICERANK_ADDR",
		"JUICERANK_QUEUE_SIZE",
		"JUICERANK_WORKER_COUNT",
		"JUICERANK_SECTION_LENGTH",
		"JUICERANK_DEFAULT_BEAT_LENGTH",
		"JUICERANK_LAST_TICK_ANCHOR",
		"JUICERANK_GRID_ALIGNED_SECTIONS",
		"JUICERANK_STORE",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "juicerank-config-*.yaml")
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

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/hr-assistant/server/internal/agent/model"
	"github.com/hr-assistant/server/internal/core"
	pkgpostgres "github.com/hr-assistant/server/pkg/postgres"
	pkgredis "github.com/hr-assistant/server/pkg/redis"
)

// AppConfig defines all configurable parameters of the service,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment     string        `envconfig:"ENVIRONMENT" default:"development"`
	Port            string        `envconfig:"SERVER_PORT" default:"5000"`
	TraceStdout     bool          `envconfig:"TRACE_STDOUT" default:"false"`
	MetricsStdout   bool          `envconfig:"METRICS_STDOUT" default:"false"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`

	// Infrastructure
	Database pkgpostgres.Config
	Redis    pkgredis.Config

	// Workflow
	Oracle     model.OracleConfig
	Workflow   model.WorkflowConfig
	Policy     model.PolicyConfig
	Transcript model.TranscriptConfig
}

// Env returns the parsed deployment environment.
func (c *AppConfig) Env() core.Environment {
	return core.ParseEnvironment(c.Environment)
}

// Load reads envFiles (missing files are skipped) and binds the environment.
// Variables already set in the process win over the files.
func Load(envFiles ...string) (*AppConfig, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}
	return &cfg, nil
}

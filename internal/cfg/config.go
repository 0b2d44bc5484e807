package cfg

import "github.com/caarlos0/env/v11"

const (
	// DefaultContainerRuntimePrimary is dialed first (via the Docker SDK
	// client, a client.Ping health check); DefaultContainerRuntimeAlternate
	// is tried only if the primary engine's socket doesn't answer.
	DefaultContainerRuntimePrimary   = "docker"
	DefaultContainerRuntimeAlternate = "podman"

	DefaultMaxParallelExecutions = 4
	DefaultContainerMemoryCapMiB = 256
	DefaultContainerPidsCap      = 128
	DefaultPerTestTimeoutMS      = 30_000
	DefaultPort                  = 8080
)

// Config holds every environment-derived setting for the judge engine,
// following the same struct-tag parsing convention as the rest of the stack.
type Config struct {
	Port int `env:"PORT" envDefault:"8080"`
	Debug bool `env:"DEBUG" envDefault:"false"`

	PostgresConnectionString string `env:"POSTGRES_CONNECTION_STRING,required,notEmpty"`
	RedisURL                 string `env:"REDIS_URL"`
	RunsPerMinute            int    `env:"RUNS_PER_MINUTE" envDefault:"20"`

	AdminToken     string   `env:"ADMIN_TOKEN"`
	AdminEmailList []string `env:"ADMIN_EMAIL_LIST"`

	JWTSigningSecret string `env:"JWT_SIGNING_SECRET,required,notEmpty"`

	ExecutionImageTag string `env:"EXECUTION_IMAGE_TAG"`

	PerTestTimeoutMS      int `env:"PER_TEST_TIMEOUT_MS" envDefault:"30000"`
	MaxParallelExecutions int `env:"MAX_PARALLEL_EXECUTIONS" envDefault:"4"`
	ContainerMemoryCapMiB int `env:"CONTAINER_MEMORY_CAP_MIB" envDefault:"256"`
	ContainerPidsCap      int `env:"CONTAINER_PIDS_CAP" envDefault:"128"`

	TempRootDir string `env:"TEMP_ROOT_DIR" envDefault:"/tmp/judge-workspaces"`
	FixturesRoot string `env:"FIXTURES_ROOT" envDefault:"/var/lib/judge/fixtures"`

	ContainerRuntimePrimary   string `env:"CONTAINER_RUNTIME_PRIMARY" envDefault:"docker"`
	ContainerRuntimeAlternate string `env:"CONTAINER_RUNTIME_ALTERNATE" envDefault:"podman"`
}

// Parse reads Config from the process environment, applying the same
// defaulting behavior the rest of the codebase relies on for values that
// env tags alone can't express cleanly (none currently; kept for parity).
func Parse() (Config, error) {
	var config Config
	if err := env.Parse(&config); err != nil {
		return Config{}, err
	}

	return config, nil
}

package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Server captures process-level configuration read from the environment.
type Server struct {
	Addr          string   `env:"DISCADIAN_ADDR" envDefault:":8080"`
	LogLevel      string   `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat     string   `env:"LOG_FORMAT" envDefault:"json"`
	DataDir       string   `env:"DISCADIAN_DATA_DIR" envDefault:"./discadian"`
	NationsFile   string   `env:"DISCADIAN_NATIONS_FILE" envDefault:"./discadian/nations.json"`
	JWTSigningKey string   `env:"JWT_SIGNING_KEY" envDefault:"dev-secret-key-change-in-production"`
	JWTIssuer     string   `env:"JWT_ISSUER" envDefault:"discadian"`
	Registry      Registry `envPrefix:"REGISTRY_"`
	Redis         Redis    `envPrefix:"REDIS_"`
	Kafka         Kafka    `envPrefix:"KAFKA_"`
	Discord       Discord  `envPrefix:"DISCORD_"`
	OTel          OTel     `envPrefix:"OTEL_"`
}

// Registry configures the EarthMC client.
type Registry struct {
	BaseURL    string        `env:"BASE_URL" envDefault:"https://api.earthmc.net/v3/aurora"`
	Timeout    time.Duration `env:"TIMEOUT" envDefault:"15s"`
	PauseAt    int           `env:"PAUSE_AT" envDefault:"175"`
	MinSpacing time.Duration `env:"MIN_SPACING" envDefault:"333ms"`
}

// Redis configures the optional Redis lookup cache. An empty URL keeps the
// cache in process.
type Redis struct {
	URL          string        `env:"URL"`
	PoolSize     int           `env:"POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"3s"`
}

// Kafka configures the optional report sink. No brokers disables it.
type Kafka struct {
	Brokers []string `env:"BROKERS" envSeparator:","`
	Topic   string   `env:"TOPIC" envDefault:"discadian.reports"`
}

// Discord configures the guild member REST applier. Without a bot token role
// changes are only recorded in memory and logged.
type Discord struct {
	BotToken string        `env:"BOT_TOKEN"`
	BaseURL  string        `env:"BASE_URL" envDefault:"https://discord.com/api/v10"`
	Timeout  time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

// OTel configures trace export. Tracing stays off without an endpoint.
type OTel struct {
	Enabled     bool   `env:"ENABLED" envDefault:"true"`
	Endpoint    string `env:"ENDPOINT"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"discadian"`
}

// FromEnv parses Server from the environment.
func FromEnv() (Server, error) {
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// VerificationCachePath is where the verification cache document lives.
func (s Server) VerificationCachePath() string {
	return s.DataDir + "/verification_cache.json"
}

// CountyTablePath is where county assignments live.
func (s Server) CountyTablePath() string {
	return s.DataDir + "/counties.json"
}

// SchedulerStatePath is where the reconciliation last-run timestamp lives.
func (s Server) SchedulerStatePath() string {
	return s.DataDir + "/reconcile_state.json"
}

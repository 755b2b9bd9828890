package config

import (
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

const (
	SinkLog   = "log"
	SinkKafka = "kafka"
	SinkNone  = "none"
)

// MustLoad loads cfg from the environment and an optional .env file, and
// panics on failure.
func MustLoad[T any](cfg T) {
	env.Must(cfg, Load(cfg))
}

// Load loads cfg from the environment. A .env file in the working directory
// is read first when present; real environment variables win over it.
func Load[T any](cfg T) error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "loading .env")
	}
	if err := env.Parse(cfg); err != nil {
		return errors.Wrap(err, "parsing environment")
	}
	return nil
}

// Config holds the settings of the matchd host process.
type Config struct {
	Instrument      string `env:"INSTRUMENT" envDefault:"DEFAULT"`
	LogLevel        string `env:"LOG_LEVEL" envDefault:"info"`
	LogDevelopment  bool   `env:"LOG_DEVELOPMENT" envDefault:"false"`
	CheckInvariants bool   `env:"CHECK_INVARIANTS" envDefault:"false"`

	Sink              string        `env:"SINK" envDefault:"log"`
	SinkFlushInterval time.Duration `env:"SINK_FLUSH_INTERVAL" envDefault:"250ms"`

	Kafka KafkaConfig `envPrefix:"KAFKA_"`
}

// KafkaConfig is only read when Sink is "kafka".
type KafkaConfig struct {
	Brokers []string `env:"BROKERS" envSeparator:","`
	Topic   string   `env:"TOPIC" envDefault:"trades"`
}

// Validate rejects combinations the process cannot start with.
func (c *Config) Validate() error {
	if c.Instrument == "" {
		return errors.New("config: INSTRUMENT must not be empty")
	}
	switch c.Sink {
	case SinkLog, SinkNone:
	case SinkKafka:
		if len(c.Kafka.Brokers) == 0 {
			return errors.New("config: SINK=kafka requires KAFKA_BROKERS")
		}
		if c.Kafka.Topic == "" {
			return errors.New("config: SINK=kafka requires KAFKA_TOPIC")
		}
	default:
		return errors.Errorf("config: unknown SINK %q, want log, kafka or none", c.Sink)
	}
	if c.SinkFlushInterval <= 0 {
		return errors.Errorf("config: SINK_FLUSH_INTERVAL must be positive, got %s", c.SinkFlushInterval)
	}
	return nil
}

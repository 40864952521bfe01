// Emitter configuration loaded from environment variables.

package emitter

import (
	"time"

	"github.com/correlator-io/dbt-lineage/internal/config"
)

const (
	defaultEndpoint    = "http://localhost:5000/api/v1/lineage"
	defaultTimeout     = 10 * time.Second
	defaultEmitRPS     = 20
	defaultEmitBurst   = 20
	defaultKafkaTopic  = "openlineage.events"
	defaultKafkaBroker = "localhost:9092"
)

// Config holds transport configuration with local-development defaults.
type Config struct {
	// Endpoint is the OpenLineage-compatible HTTP collector URL.
	Endpoint string

	// APIKey, when set, is sent as a bearer token on every HTTP request.
	APIKey string

	// Timeout bounds each HTTP request.
	Timeout time.Duration

	// EmitRPS / EmitBurst throttle HTTP emission client-side so large
	// artifact parses do not flood the collector.
	EmitRPS   int
	EmitBurst int

	// KafkaBrokers and KafkaTopic configure the Kafka transport.
	KafkaBrokers []string
	KafkaTopic   string
}

// LoadConfig loads transport configuration from environment variables with
// fallback to defaults.
func LoadConfig() *Config {
	return &Config{
		Endpoint:     config.GetEnvStr("OPENLINEAGE_URL", defaultEndpoint),
		APIKey:       config.GetEnvStr("OPENLINEAGE_API_KEY", ""),
		Timeout:      config.GetEnvDuration("OPENLINEAGE_TIMEOUT", defaultTimeout),
		EmitRPS:      config.GetEnvInt("OPENLINEAGE_EMIT_RPS", defaultEmitRPS),
		EmitBurst:    config.GetEnvInt("OPENLINEAGE_EMIT_BURST", defaultEmitBurst),
		KafkaBrokers: config.ParseCommaSeparatedList(config.GetEnvStr("OPENLINEAGE_KAFKA_BROKERS", defaultKafkaBroker)),
		KafkaTopic:   config.GetEnvStr("OPENLINEAGE_KAFKA_TOPIC", defaultKafkaTopic),
	}
}

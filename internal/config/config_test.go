package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	cfg.Database.User = "vitaquote"
	return cfg
}

func TestValidateAcceptsDefaults(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantSub string
	}{
		{"port too low", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"bad mode", func(c *Config) { c.Server.Mode = "prod" }, "server.mode"},
		{"missing db host", func(c *Config) { c.Database.Host = "" }, "database.host"},
		{"missing db user", func(c *Config) { c.Database.User = "" }, "database.user"},
		{"missing db name", func(c *Config) { c.Database.DBName = "" }, "database.db_name"},
		{"zero max conns", func(c *Config) { c.Database.MaxConns = 0 }, "database.max_conns"},
		{"missing redis addr", func(c *Config) { c.Redis.Addr = "" }, "redis.addr"},
		{"negative redis db", func(c *Config) { c.Redis.DB = -1 }, "redis.db"},
		{"kafka enabled no brokers", func(c *Config) { c.Kafka.Enabled = true; c.Kafka.Brokers = nil }, "kafka.brokers"},
		{"zero session ttl", func(c *Config) { c.Session.TTL = 0 }, "session.ttl"},
		{"bcrypt cost too low", func(c *Config) { c.Session.BcryptCost = 2 }, "session.bcrypt_cost"},
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }, "log.level"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantSub)
		})
	}
}

func TestValidateKafkaDisabledSkipsBrokerCheck(t *testing.T) {
	cfg := validConfig()
	cfg.Kafka.Enabled = false
	cfg.Kafka.Brokers = nil
	assert.NoError(t, cfg.Validate())
}

func TestApplyDefaultsNilSafe(t *testing.T) {
	assert.NotPanics(t, func() { ApplyDefaults(nil) })
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Port = 9090
	cfg.Session.TTL = time.Hour
	cfg.Log.Level = "debug"

	ApplyDefaults(cfg)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, time.Hour, cfg.Session.TTL)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestApplyDefaultsFillsZeroValues(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, DefaultDBHost, cfg.Database.Host)
	assert.Equal(t, DefaultSessionTTL, cfg.Session.TTL)
	assert.Equal(t, DefaultBcryptCost, cfg.Session.BcryptCost)
	assert.Equal(t, []string{DefaultKafkaBroker}, cfg.Kafka.Brokers)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
}

// Package config loads the daemon configuration from an optional YAML file
// plus XROUTER_* environment overrides.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/xswap/router/pkg/types"
)

// VenueConfig declares one remote venue to register at startup.
type VenueConfig struct {
	ChainID     uint64 `mapstructure:"chain_id"`
	Address     string `mapstructure:"address"`
	Name        string `mapstructure:"name"`
	GasEstimate uint64 `mapstructure:"gas_estimate"`
	Reliability uint8  `mapstructure:"reliability"`
}

// TokenConfig binds a token to an oracle feed.
type TokenConfig struct {
	Address      string `mapstructure:"address"`
	Feed         string `mapstructure:"feed"`
	MaxStaleness uint32 `mapstructure:"max_staleness"`
}

// Config is the routerd configuration.
type Config struct {
	LogLevel string `mapstructure:"log_level"`

	NATS struct {
		URL string `mapstructure:"url"`
	} `mapstructure:"nats"`

	Chain struct {
		ID       uint64 `mapstructure:"id"`
		GasPrice uint64 `mapstructure:"gas_price"`
	} `mapstructure:"chain"`

	Engine struct {
		Owner             string `mapstructure:"owner"`
		Vault             string `mapstructure:"vault"`
		FeeRecipient      string `mapstructure:"fee_recipient"`
		ProtocolFeeBps    uint32 `mapstructure:"protocol_fee_bps"`
		MaxGasCostBps     uint32 `mapstructure:"max_gas_cost_bps"`
		MinImprovementBps uint32 `mapstructure:"min_improvement_bps"`
		LocalOutputBps    uint32 `mapstructure:"local_output_bps"`
		DefaultStaleness  uint32 `mapstructure:"default_staleness"`
	} `mapstructure:"engine"`

	Oracle struct {
		CacheTTLSeconds int `mapstructure:"cache_ttl_seconds"`
	} `mapstructure:"oracle"`

	LocalVenue VenueConfig   `mapstructure:"local_venue"`
	Venues     []VenueConfig `mapstructure:"venues"`
	Tokens     []TokenConfig `mapstructure:"tokens"`
}

// Load reads the configuration. path may be empty, in which case only defaults
// and environment variables apply.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("log_level", "info")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("chain.id", 1)
	v.SetDefault("chain.gas_price", 20)
	// Empty defaults keep these keys visible to AutomaticEnv during Unmarshal.
	v.SetDefault("engine.owner", "")
	v.SetDefault("engine.vault", "")
	v.SetDefault("engine.fee_recipient", "")
	v.SetDefault("local_venue.address", "")
	v.SetDefault("engine.protocol_fee_bps", 30)
	v.SetDefault("engine.max_gas_cost_bps", 100)
	v.SetDefault("engine.min_improvement_bps", 50)
	v.SetDefault("engine.local_output_bps", 9500)
	v.SetDefault("engine.default_staleness", 300)
	v.SetDefault("oracle.cache_ttl_seconds", 5)
	v.SetDefault("local_venue.chain_id", 1)
	v.SetDefault("local_venue.name", "local")
	v.SetDefault("local_venue.gas_estimate", 150000)
	v.SetDefault("local_venue.reliability", 95)

	v.SetEnvPrefix("XROUTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if types.Address(c.Engine.Owner).IsZero() {
		return fmt.Errorf("engine.owner: %w", types.ErrZeroAddress)
	}
	if types.Address(c.Engine.Vault).IsZero() {
		return fmt.Errorf("engine.vault: %w", types.ErrZeroAddress)
	}
	if types.Address(c.Engine.FeeRecipient).IsZero() {
		return fmt.Errorf("engine.fee_recipient: %w", types.ErrZeroAddress)
	}
	if types.Address(c.LocalVenue.Address).IsZero() {
		return fmt.Errorf("local_venue.address: %w", types.ErrZeroAddress)
	}
	for i, t := range c.Tokens {
		if types.Address(t.Address).IsZero() || t.Feed == "" {
			return fmt.Errorf("tokens[%d]: %w", i, types.ErrZeroAddress)
		}
	}
	return nil
}

package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

type RPCConfig struct {
	Host    string        `yaml:"host"`
	Timeout time.Duration `yaml:"timeout"`
}

type ChainConfig struct {
	RPC             *RPCConfig `yaml:"rpc"`
	ChainID         string     `yaml:"chain_id"`
	SafeLogsRequest bool       `yaml:"safe_logs_request"`
}

type BridgeConfig struct {
	Address            common.Address `yaml:"address"`
	StartBlock         uint           `yaml:"start_block"`
	BlockConfirmations uint           `yaml:"required_block_confirmations"`
	MaxBlockRangeSize  uint           `yaml:"max_block_range_size"`
	PollInterval       time.Duration  `yaml:"poll_interval"`
}

type RelayConfig struct {
	Endpoint    string        `yaml:"endpoint"`
	APIKey      string        `yaml:"api_key"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxAttempts uint          `yaml:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay"`
	MaxDelay    time.Duration `yaml:"max_delay"`
}

type DBConfig struct {
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	DB       string `yaml:"database"`
}

type PresenterConfig struct {
	Host string `yaml:"host"`
}

type Config struct {
	Chain     *ChainConfig     `yaml:"chain"`
	Bridge    *BridgeConfig    `yaml:"bridge"`
	Relay     *RelayConfig     `yaml:"relay"`
	DBConfig  *DBConfig        `yaml:"postgres"`
	Presenter *PresenterConfig `yaml:"presenter"`
	LogLevel  logrus.Level     `yaml:"log_level"`
}

const (
	defaultRPCTimeout        = 30 * time.Second
	defaultPollInterval      = 15 * time.Second
	defaultMaxBlockRangeSize = 5000
	defaultRelayTimeout      = 10 * time.Second
	defaultRelayMaxAttempts  = 5
	defaultRelayBaseDelay    = time.Second
	defaultRelayMaxDelay     = time.Minute
)

func (cfg *Config) init() error {
	if cfg.Chain == nil || cfg.Chain.RPC == nil || cfg.Chain.RPC.Host == "" {
		return fmt.Errorf("chain rpc host is not set")
	}
	if cfg.Chain.ChainID == "" {
		return fmt.Errorf("chain_id is not set")
	}
	if cfg.Chain.RPC.Timeout == 0 {
		cfg.Chain.RPC.Timeout = defaultRPCTimeout
	}
	if cfg.Bridge == nil {
		return fmt.Errorf("bridge config is not set")
	}
	if cfg.Bridge.Address == (common.Address{}) {
		return fmt.Errorf("bridge contract address is not set or invalid")
	}
	if cfg.Bridge.MaxBlockRangeSize == 0 {
		cfg.Bridge.MaxBlockRangeSize = defaultMaxBlockRangeSize
	}
	if cfg.Bridge.PollInterval == 0 {
		cfg.Bridge.PollInterval = defaultPollInterval
	}
	if cfg.Relay == nil || cfg.Relay.Endpoint == "" {
		return fmt.Errorf("relay endpoint is not set")
	}
	if cfg.Relay.APIKey == "" {
		return fmt.Errorf("relay api_key is not set")
	}
	if cfg.Relay.Timeout == 0 {
		cfg.Relay.Timeout = defaultRelayTimeout
	}
	if cfg.Relay.MaxAttempts == 0 {
		cfg.Relay.MaxAttempts = defaultRelayMaxAttempts
	}
	if cfg.Relay.BaseDelay == 0 {
		cfg.Relay.BaseDelay = defaultRelayBaseDelay
	}
	if cfg.Relay.MaxDelay == 0 {
		cfg.Relay.MaxDelay = defaultRelayMaxDelay
	}
	if cfg.DBConfig == nil {
		return fmt.Errorf("postgres config is not set")
	}
	return nil
}

func ReadConfig(blob []byte) (*Config, error) {
	cfg := new(Config)
	cfg.LogLevel = logrus.InfoLevel
	if err := parseYaml(cfg, blob); err != nil {
		return nil, err
	}
	if err := cfg.init(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func ReadConfigWithEnv(blob []byte) (*Config, error) {
	return ReadConfig([]byte(os.ExpandEnv(string(blob))))
}

func ReadConfigFromFile(path string) (*Config, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("can't access config file: %w", err)
	}
	return ReadConfigWithEnv(blob)
}

func (cfg *Config) UnmarshalYAML(node *yaml.Node) error {
	type rawConfig struct {
		Chain     *ChainConfig     `yaml:"chain"`
		Bridge    *BridgeConfig    `yaml:"bridge"`
		Relay     *RelayConfig     `yaml:"relay"`
		DBConfig  *DBConfig        `yaml:"postgres"`
		Presenter *PresenterConfig `yaml:"presenter"`
		LogLevel  string           `yaml:"log_level"`
	}
	raw := new(rawConfig)
	if err := decodeNode(node, raw); err != nil {
		return err
	}
	cfg.Chain = raw.Chain
	cfg.Bridge = raw.Bridge
	cfg.Relay = raw.Relay
	cfg.DBConfig = raw.DBConfig
	cfg.Presenter = raw.Presenter
	if raw.LogLevel != "" {
		level, err := logrus.ParseLevel(raw.LogLevel)
		if err != nil {
			return fmt.Errorf("can't parse log_level: %w", err)
		}
		cfg.LogLevel = level
	}
	return nil
}

func (cfg *RPCConfig) UnmarshalYAML(node *yaml.Node) error {
	type rawRPCConfig struct {
		Host    string `yaml:"host"`
		Timeout string `yaml:"timeout"`
	}
	raw := new(rawRPCConfig)
	if err := decodeNode(node, raw); err != nil {
		return err
	}
	cfg.Host = raw.Host
	return decodeDuration(raw.Timeout, &cfg.Timeout)
}

func (cfg *BridgeConfig) UnmarshalYAML(node *yaml.Node) error {
	type rawBridgeConfig struct {
		Address            string `yaml:"address"`
		StartBlock         uint   `yaml:"start_block"`
		BlockConfirmations uint   `yaml:"required_block_confirmations"`
		MaxBlockRangeSize  uint   `yaml:"max_block_range_size"`
		PollInterval       string `yaml:"poll_interval"`
	}
	raw := new(rawBridgeConfig)
	if err := decodeNode(node, raw); err != nil {
		return err
	}
	if raw.Address != "" {
		if !common.IsHexAddress(raw.Address) {
			return fmt.Errorf("invalid bridge contract address %q", raw.Address)
		}
		cfg.Address = common.HexToAddress(raw.Address)
	}
	cfg.StartBlock = raw.StartBlock
	cfg.BlockConfirmations = raw.BlockConfirmations
	cfg.MaxBlockRangeSize = raw.MaxBlockRangeSize
	return decodeDuration(raw.PollInterval, &cfg.PollInterval)
}

func (cfg *RelayConfig) UnmarshalYAML(node *yaml.Node) error {
	type rawRelayConfig struct {
		Endpoint    string `yaml:"endpoint"`
		APIKey      string `yaml:"api_key"`
		Timeout     string `yaml:"timeout"`
		MaxAttempts uint   `yaml:"max_attempts"`
		BaseDelay   string `yaml:"base_delay"`
		MaxDelay    string `yaml:"max_delay"`
	}
	raw := new(rawRelayConfig)
	if err := decodeNode(node, raw); err != nil {
		return err
	}
	cfg.Endpoint = raw.Endpoint
	cfg.APIKey = raw.APIKey
	cfg.MaxAttempts = raw.MaxAttempts
	if err := decodeDuration(raw.Timeout, &cfg.Timeout); err != nil {
		return err
	}
	if err := decodeDuration(raw.BaseDelay, &cfg.BaseDelay); err != nil {
		return err
	}
	return decodeDuration(raw.MaxDelay, &cfg.MaxDelay)
}

func decodeDuration(raw string, out *time.Duration) error {
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("can't parse duration: %w", err)
	}
	*out = d
	return nil
}

// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/spf13/viper"

	"github.com/rovshanmuradov/solana-auctioneer/internal/auctionhouse/pda"
	"github.com/rovshanmuradov/solana-auctioneer/internal/blockchain/solbc/transaction"
	"github.com/rovshanmuradov/solana-auctioneer/internal/logger"
)

type ProgramsConfig struct {
	AuctionHouse  string `mapstructure:"auction_house"`
	Auctioneer    string `mapstructure:"auctioneer"`
	TokenMetadata string `mapstructure:"token_metadata"`
}

type Config struct {
	RPCList          []string       `mapstructure:"rpc_list"`
	Commitment       string         `mapstructure:"commitment"`
	SkipPreflight    bool           `mapstructure:"skip_preflight"`
	ConfirmTimeoutMs int            `mapstructure:"confirm_timeout_ms"`
	ConfirmPollMs    int            `mapstructure:"confirm_poll_ms"`
	Retries          int            `mapstructure:"retries"`
	Workers          int            `mapstructure:"workers"`
	DebugLogging     bool           `mapstructure:"debug_logging"`
	LogFile          string         `mapstructure:"log_file"`
	ResultsFile      string         `mapstructure:"results_file"`
	Priority         string         `mapstructure:"priority"`
	ComputeUnits     uint32         `mapstructure:"compute_units"`
	PriorityFee      uint64         `mapstructure:"priority_fee_micro_lamports"`
	CheckAuctioneer  bool           `mapstructure:"check_auctioneer"`
	MetricsAddr      string         `mapstructure:"metrics_addr"`
	Programs         ProgramsConfig `mapstructure:"programs"`
}

const (
	DefaultCommitment       = "confirmed"
	DefaultConfirmTimeoutMs = 60000
	DefaultConfirmPollMs    = 500
	DefaultWorkers          = 5
	DefaultRetries          = 3
	DefaultPriority         = "none"
)

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := map[string]interface{}{
		"commitment":         DefaultCommitment,
		"confirm_timeout_ms": DefaultConfirmTimeoutMs,
		"confirm_poll_ms":    DefaultConfirmPollMs,
		"workers":            DefaultWorkers,
		"retries":            DefaultRetries,
		"priority":           DefaultPriority,
		"check_auctioneer":   true,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := loadEnvironmentVariables(v, &cfg); err != nil {
		return nil, err
	}

	return &cfg, validateConfig(&cfg)
}

func validateConfig(cfg *Config) error {
	if len(cfg.RPCList) == 0 {
		return errors.New("rpc_list is empty")
	}
	for _, rpcURL := range cfg.RPCList {
		if err := validateURLWithCache(rpcURL, "http"); err != nil {
			return fmt.Errorf("invalid RPC URL %q: %w", rpcURL, err)
		}
	}
	switch rpc.CommitmentType(cfg.Commitment) {
	case rpc.CommitmentProcessed, rpc.CommitmentConfirmed, rpc.CommitmentFinalized:
	default:
		return fmt.Errorf("invalid commitment: %q", cfg.Commitment)
	}
	if err := validateNumericParams(cfg); err != nil {
		return err
	}
	if _, err := cfg.PriorityConfig(); err != nil {
		return err
	}
	if _, err := cfg.ProgramSet(); err != nil {
		return err
	}
	return nil
}

func validateNumericParams(cfg *Config) error {
	if cfg.ConfirmTimeoutMs <= 0 {
		return errors.New("invalid confirm_timeout_ms")
	}
	if cfg.ConfirmPollMs <= 0 {
		return errors.New("invalid confirm_poll_ms")
	}
	if cfg.ConfirmPollMs > cfg.ConfirmTimeoutMs {
		return errors.New("confirm_poll_ms exceeds confirm_timeout_ms")
	}
	if cfg.Workers < 0 {
		return errors.New("invalid workers count")
	}
	if cfg.Retries < 0 {
		return errors.New("invalid retries count")
	}
	return nil
}

var urlCache sync.Map

func validateURLWithCache(rawURL string, protocol string) error {
	if _, ok := urlCache.Load(rawURL); ok {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) {
		return errors.New("invalid URL protocol")
	}
	urlCache.Store(rawURL, parsed)
	return nil
}

func loadEnvironmentVariables(v *viper.Viper, cfg *Config) error {
	v.AutomaticEnv()
	v.SetEnvPrefix("AUCTIONEER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	envRPCList := v.GetString("RPC_LIST")
	if envRPCList != "" {
		rpcs := strings.Split(envRPCList, ",")
		var cleanRPCs []string
		for _, rpc := range rpcs {
			clean := strings.TrimSpace(rpc)
			if clean != "" {
				cleanRPCs = append(cleanRPCs, clean)
			}
		}
		if len(cleanRPCs) > 0 {
			cfg.RPCList = cleanRPCs
		}
	}

	if envCommitment := v.GetString("COMMITMENT"); envCommitment != "" {
		cfg.Commitment = envCommitment
	}
	if envPriority := v.GetString("PRIORITY"); envPriority != "" {
		cfg.Priority = envPriority
	}
	if envMetrics := v.GetString("METRICS_ADDR"); envMetrics != "" {
		cfg.MetricsAddr = envMetrics
	}
	return nil
}

// ProgramSet returns the program deployments, mainnet where a key is unset.
func (c *Config) ProgramSet() (pda.Programs, error) {
	var p pda.Programs
	parse := func(name, value string, dst *solana.PublicKey) error {
		if value == "" {
			return nil
		}
		key, err := solana.PublicKeyFromBase58(value)
		if err != nil {
			return fmt.Errorf("invalid programs.%s: %w", name, err)
		}
		*dst = key
		return nil
	}
	if err := parse("auction_house", c.Programs.AuctionHouse, &p.AuctionHouse); err != nil {
		return pda.Programs{}, err
	}
	if err := parse("auctioneer", c.Programs.Auctioneer, &p.Auctioneer); err != nil {
		return pda.Programs{}, err
	}
	if err := parse("token_metadata", c.Programs.TokenMetadata, &p.TokenMetadata); err != nil {
		return pda.Programs{}, err
	}
	return p.WithDefaults(), nil
}

// PriorityConfig resolves the compute-budget profile. The custom level reads
// compute_units and priority_fee_micro_lamports.
func (c *Config) PriorityConfig() (transaction.PriorityConfig, error) {
	return transaction.ResolvePriority(transaction.PriorityLevel(c.Priority), transaction.PriorityConfig{
		ComputeUnits: c.ComputeUnits,
		PriorityFee:  c.PriorityFee,
	})
}

// TransactionConfig returns the send and confirmation settings.
func (c *Config) TransactionConfig() transaction.Config {
	return transaction.Config{
		ConfirmationTime: time.Duration(c.ConfirmTimeoutMs) * time.Millisecond,
		PollInterval:     time.Duration(c.ConfirmPollMs) * time.Millisecond,
		SkipPreflight:    c.SkipPreflight,
		Commitment:       rpc.CommitmentType(c.Commitment),
	}
}

// LoggerConfig returns the logger settings.
func (c *Config) LoggerConfig() *logger.Config {
	lc := logger.DefaultConfig()
	lc.LogFile = c.LogFile
	lc.Development = c.DebugLogging
	return lc
}

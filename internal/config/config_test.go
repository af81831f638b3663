// internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rovshanmuradov/solana-auctioneer/internal/auctionhouse/pda"
	"github.com/rovshanmuradov/solana-auctioneer/internal/blockchain/solbc/transaction"
)

var validConfigYAML = `
rpc_list:
  - https://api.mainnet-beta.solana.com
  - https://solana-rpc.publicnode.com
commitment: finalized
skip_preflight: true
confirm_timeout_ms: 30000
confirm_poll_ms: 250
workers: 2
retries: 4
debug_logging: true
log_file: logs/auctioneer.log
priority: custom
compute_units: 300000
priority_fee_micro_lamports: 2500
programs:
  auctioneer: 11111111111111111111111111111111
`

func setupTestConfig(t *testing.T, name, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0600))
	return configPath
}

func validConfig() *Config {
	return &Config{
		RPCList:          []string{"https://test-rpc.com"},
		Commitment:       DefaultCommitment,
		ConfirmTimeoutMs: DefaultConfirmTimeoutMs,
		ConfirmPollMs:    DefaultConfirmPollMs,
		Workers:          DefaultWorkers,
		Retries:          DefaultRetries,
		Priority:         DefaultPriority,
	}
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(setupTestConfig(t, "config.yaml", validConfigYAML))
	require.NoError(t, err)

	assert.Len(t, cfg.RPCList, 2)
	assert.Equal(t, "finalized", cfg.Commitment)
	assert.True(t, cfg.SkipPreflight)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, 4, cfg.Retries)
	assert.True(t, cfg.CheckAuctioneer, "default applies when key is absent")

	txCfg := cfg.TransactionConfig()
	assert.Equal(t, 30*time.Second, txCfg.ConfirmationTime)
	assert.Equal(t, 250*time.Millisecond, txCfg.PollInterval)
	assert.Equal(t, rpc.CommitmentFinalized, txCfg.Commitment)
	assert.True(t, txCfg.SkipPreflight)

	priority, err := cfg.PriorityConfig()
	require.NoError(t, err)
	assert.Equal(t, transaction.PriorityConfig{ComputeUnits: 300000, PriorityFee: 2500}, priority)

	programs, err := cfg.ProgramSet()
	require.NoError(t, err)
	assert.Equal(t, solana.SystemProgramID, programs.Auctioneer)
	assert.Equal(t, pda.AuctionHouseProgramID, programs.AuctionHouse)

	lc := cfg.LoggerConfig()
	assert.Equal(t, "logs/auctioneer.log", lc.LogFile)
	assert.True(t, lc.Development)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(setupTestConfig(t, "config.json", `{"rpc_list": ["http://127.0.0.1:8899"]}`))
	require.NoError(t, err)

	assert.Equal(t, DefaultCommitment, cfg.Commitment)
	assert.Equal(t, DefaultConfirmTimeoutMs, cfg.ConfirmTimeoutMs)
	assert.Equal(t, DefaultConfirmPollMs, cfg.ConfirmPollMs)
	assert.Equal(t, DefaultWorkers, cfg.Workers)
	assert.Equal(t, DefaultRetries, cfg.Retries)

	priority, err := cfg.PriorityConfig()
	require.NoError(t, err)
	assert.Empty(t, priority.Instructions())

	programs, err := cfg.ProgramSet()
	require.NoError(t, err)
	assert.Equal(t, pda.DefaultPrograms(), programs)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"Empty RPC list", "config.yaml", "rpc_list: []\n"},
		{"Invalid YAML syntax", "config.yaml", "rpc_list: [\n"},
		{"Invalid JSON syntax", "config.json", "{invalid json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(setupTestConfig(t, tt.file, tt.content))
			assert.Error(t, err)
		})
	}

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"Valid configuration", func(*Config) {}, false},
		{"Empty RPC list", func(c *Config) { c.RPCList = nil }, true},
		{"Websocket RPC URL", func(c *Config) { c.RPCList = []string{"wss://test-ws.com"} }, true},
		{"Unknown commitment", func(c *Config) { c.Commitment = "max" }, true},
		{"Zero confirm timeout", func(c *Config) { c.ConfirmTimeoutMs = 0 }, true},
		{"Poll exceeds timeout", func(c *Config) { c.ConfirmPollMs = c.ConfirmTimeoutMs + 1 }, true},
		{"Negative workers", func(c *Config) { c.Workers = -1 }, true},
		{"Negative retries", func(c *Config) { c.Retries = -1 }, true},
		{"Unknown priority", func(c *Config) { c.Priority = "turbo" }, true},
		{"Invalid program key", func(c *Config) { c.Programs.AuctionHouse = "not-a-key" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := validateConfig(cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfigEnvironmentVariables(t *testing.T) {
	t.Setenv("AUCTIONEER_RPC_LIST", "https://env-rpc1.com, https://env-rpc2.com,")
	t.Setenv("AUCTIONEER_COMMITMENT", "processed")
	t.Setenv("AUCTIONEER_PRIORITY", "high")

	cfg, err := LoadConfig(setupTestConfig(t, "config.yaml", "rpc_list: [https://file-rpc.com]\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"https://env-rpc1.com", "https://env-rpc2.com"}, cfg.RPCList)
	assert.Equal(t, "processed", cfg.Commitment)

	priority, err := cfg.PriorityConfig()
	require.NoError(t, err)
	assert.Equal(t, uint32(800_000), priority.ComputeUnits)
}

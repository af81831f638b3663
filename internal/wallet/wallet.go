// ==================================
// File: internal/wallet/wallet.go
// ==================================
package wallet

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"gopkg.in/yaml.v3"
)

// Wallet представляет кошелёк Solana.
type Wallet struct {
	PrivateKey solana.PrivateKey
	PublicKey  solana.PublicKey
}

// NewWallet создаёт новый кошелёк из base58-encoded приватного ключа.
func NewWallet(privateKeyBase58 string) (*Wallet, error) {
	privateKeyBytes, err := base58.Decode(strings.TrimSpace(privateKeyBase58))
	if err != nil {
		return nil, fmt.Errorf("failed to decode private key: %w", err)
	}
	if len(privateKeyBytes) != 64 {
		return nil, fmt.Errorf("invalid private key length: expected 64 bytes, got %d", len(privateKeyBytes))
	}
	return fromPrivateKey(solana.PrivateKey(privateKeyBytes)), nil
}

// FromKeygenFile загружает кошелёк из JSON-файла solana-keygen.
func FromKeygenFile(path string) (*Wallet, error) {
	privateKey, err := solana.PrivateKeyFromSolanaKeygenFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read keygen file: %w", err)
	}
	return fromPrivateKey(privateKey), nil
}

func fromPrivateKey(privateKey solana.PrivateKey) *Wallet {
	return &Wallet{
		PrivateKey: privateKey,
		PublicKey:  privateKey.PublicKey(),
	}
}

// WalletConfig represents the structure of wallets YAML file.
// Each entry holds either a base58 private key or a keygen file path.
type WalletConfig struct {
	Wallets []struct {
		Name       string `yaml:"name"`
		PrivateKey string `yaml:"private_key"`
		Keypair    string `yaml:"keypair"`
	} `yaml:"wallets"`
}

// LoadWallets загружает кошельки из YAML-файла.
// Relative keypair paths are resolved against the wallets file directory.
func LoadWallets(path string) (map[string]*Wallet, error) {
	cleanPath := filepath.Clean(path)

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var config WalletConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if len(config.Wallets) == 0 {
		return nil, fmt.Errorf("no wallets found in configuration")
	}

	wallets := make(map[string]*Wallet, len(config.Wallets))
	for i, entry := range config.Wallets {
		if entry.Name == "" {
			return nil, fmt.Errorf("wallet #%d: name is required", i+1)
		}
		if _, dup := wallets[entry.Name]; dup {
			return nil, fmt.Errorf("wallet %q: duplicate name", entry.Name)
		}

		var w *Wallet
		switch {
		case entry.PrivateKey != "" && entry.Keypair != "":
			return nil, fmt.Errorf("wallet %q: set either private_key or keypair, not both", entry.Name)
		case entry.PrivateKey != "":
			w, err = NewWallet(entry.PrivateKey)
		case entry.Keypair != "":
			keypair := entry.Keypair
			if !filepath.IsAbs(keypair) {
				keypair = filepath.Join(filepath.Dir(cleanPath), keypair)
			}
			w, err = FromKeygenFile(keypair)
		default:
			return nil, fmt.Errorf("wallet %q: private_key or keypair is required", entry.Name)
		}
		if err != nil {
			return nil, fmt.Errorf("wallet %q: %w", entry.Name, err)
		}
		wallets[entry.Name] = w
	}

	return wallets, nil
}

// SignTransaction подписывает транзакцию с помощью приватного ключа кошелька.
func (w *Wallet) SignTransaction(tx *solana.Transaction) error {
	_, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(w.PublicKey) {
			return &w.PrivateKey
		}
		return nil
	})
	return err
}

// String возвращает строковое представление кошелька (его публичный ключ).
func (w *Wallet) String() string {
	return w.PublicKey.String()
}

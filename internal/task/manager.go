package task

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/rovshanmuradov/solana-auctioneer/internal/auctionhouse"
)

// Manager loads and parses Order definitions.
type Manager struct {
	logger *zap.Logger
}

type creatorEntry struct {
	Address string `yaml:"address"`
	Share   uint8  `yaml:"share"`
}

type orderEntry struct {
	Name               string         `yaml:"name"`
	Wallet             string         `yaml:"wallet"`
	AuctionHouse       string         `yaml:"auction_house"`
	Mint               string         `yaml:"mint"`
	Seller             string         `yaml:"seller"`
	SellerTokenAccount string         `yaml:"seller_token_account"`
	Buyer              string         `yaml:"buyer"`
	Price              string         `yaml:"price"`
	Decimals           *uint8         `yaml:"decimals"`
	TokenSize          uint64         `yaml:"token_size"`
	Creators           []creatorEntry `yaml:"creators"`
}

// OrderConfig represents the structure of the orders YAML file
type OrderConfig struct {
	Orders []orderEntry `yaml:"orders"`
}

// NewManager constructs a Manager with the given logger.
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{logger: logger}
}

func parseKey(field, value string, required bool) (solana.PublicKey, error) {
	if value == "" {
		if required {
			return solana.PublicKey{}, fmt.Errorf("%s is required", field)
		}
		return solana.PublicKey{}, nil
	}
	key, err := solana.PublicKeyFromBase58(value)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid %s: %w", field, err)
	}
	return key, nil
}

func (e orderEntry) toOrder(id int) (*Order, error) {
	if e.Name == "" || e.Wallet == "" {
		return nil, errors.New("name and wallet are required")
	}

	o := &Order{
		ID:         id,
		Name:       e.Name,
		WalletName: e.Wallet,
		Decimals:   e.Decimals,
		TokenSize:  e.TokenSize,
	}
	if o.TokenSize == 0 {
		o.TokenSize = 1
	}

	var err error
	if o.AuctionHouse, err = parseKey("auction_house", e.AuctionHouse, true); err != nil {
		return nil, err
	}
	if o.Mint, err = parseKey("mint", e.Mint, true); err != nil {
		return nil, err
	}
	if o.Seller, err = parseKey("seller", e.Seller, true); err != nil {
		return nil, err
	}
	if o.SellerTokenAccount, err = parseKey("seller_token_account", e.SellerTokenAccount, false); err != nil {
		return nil, err
	}
	if o.Buyer, err = parseKey("buyer", e.Buyer, true); err != nil {
		return nil, err
	}

	if e.Price == "" {
		return nil, errors.New("price is required")
	}
	if o.Price, err = decimal.NewFromString(e.Price); err != nil {
		return nil, fmt.Errorf("invalid price: %w", err)
	}
	if o.Price.IsNegative() {
		return nil, fmt.Errorf("%w: %s", ErrPriceRange, e.Price)
	}

	o.Creators = make([]auctionhouse.Creator, 0, len(e.Creators))
	var shares int
	for i, c := range e.Creators {
		addr, err := parseKey(fmt.Sprintf("creators[%d].address", i), c.Address, true)
		if err != nil {
			return nil, err
		}
		shares += int(c.Share)
		o.Creators = append(o.Creators, auctionhouse.Creator{Address: addr, Share: c.Share})
	}
	if len(o.Creators) > 0 && shares != 100 {
		return nil, fmt.Errorf("creator shares sum to %d, expected 100", shares)
	}
	return o, nil
}

// LoadOrders reads orders from a YAML file. Invalid entries are skipped
// with a warning; an error is returned when none remain.
func (m *Manager) LoadOrders(path string) ([]*Order, error) {
	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var config OrderConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if len(config.Orders) == 0 {
		return nil, fmt.Errorf("no orders found in %s", cleanPath)
	}

	orders := make([]*Order, 0, len(config.Orders))
	seen := make(map[string]struct{}, len(config.Orders))
	for i, entry := range config.Orders {
		order, err := entry.toOrder(i)
		if err != nil {
			m.logger.Warn("Skipping invalid order",
				zap.Int("index", i),
				zap.String("name", entry.Name),
				zap.Error(err))
			continue
		}
		if _, dup := seen[order.Name]; dup {
			m.logger.Warn("Skipping order with duplicate name", zap.String("name", order.Name))
			continue
		}
		seen[order.Name] = struct{}{}
		orders = append(orders, order)
	}

	if len(orders) == 0 {
		return nil, fmt.Errorf("no valid orders loaded")
	}

	m.logger.Info("Loaded orders", zap.Int("count", len(orders)))
	return orders, nil
}

// internal/blockchain/solbc/token_metadata.go
package solbc

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-auctioneer/internal/blockchain"
)

const (
	mintDecimalsOffset    = 44
	mintInitializedOffset = 45
	metadataTTL           = 5 * time.Minute
)

var ErrNotMint = errors.New("account is not an initialized mint")

// TokenMetadata хранит on-chain сведения о минте
type TokenMetadata struct {
	Decimals  uint8
	UpdatedAt time.Time
}

// TokenMetadataCache кэширует сведения о минтах
type TokenMetadataCache struct {
	client blockchain.Client
	cache  sync.Map
	logger *zap.Logger
}

func NewTokenMetadataCache(client blockchain.Client, logger *zap.Logger) *TokenMetadataCache {
	return &TokenMetadataCache{
		client: client,
		logger: logger.Named("token-metadata"),
	}
}

// Decimals returns the decimals of mint.
func (c *TokenMetadataCache) Decimals(ctx context.Context, mint solana.PublicKey) (uint8, error) {
	md, err := c.GetTokenMetadata(ctx, mint)
	if err != nil {
		return 0, err
	}
	return md.Decimals, nil
}

// GetTokenMetadata получает метаданные минта с кэшированием
func (c *TokenMetadataCache) GetTokenMetadata(ctx context.Context, mint solana.PublicKey) (*TokenMetadata, error) {
	if metadata, ok := c.getFromCache(mint); ok {
		return metadata, nil
	}

	metadata, err := c.getFromChain(ctx, mint)
	if err != nil {
		return nil, err
	}
	c.cache.Store(mint, metadata)

	c.logger.Debug("token metadata retrieved",
		zap.String("mint", mint.String()),
		zap.Uint8("decimals", metadata.Decimals))
	return metadata, nil
}

// getFromCache получает метаданные из кэша с проверкой TTL
func (c *TokenMetadataCache) getFromCache(mint solana.PublicKey) (*TokenMetadata, bool) {
	if value, ok := c.cache.Load(mint); ok {
		metadata := value.(*TokenMetadata)
		if time.Since(metadata.UpdatedAt) < metadataTTL {
			return metadata, true
		}
		c.cache.Delete(mint)
	}
	return nil, false
}

// getFromChain читает SPL mint и берёт decimals из его данных
func (c *TokenMetadataCache) getFromChain(ctx context.Context, mint solana.PublicKey) (*TokenMetadata, error) {
	res, err := c.client.GetMultipleAccounts(ctx, []solana.PublicKey{mint})
	if err != nil {
		return nil, fmt.Errorf("failed to get mint account: %w", err)
	}
	if res == nil || len(res.Value) != 1 || res.Value[0] == nil || res.Value[0].Data == nil {
		return nil, fmt.Errorf("mint account not found: %s", mint)
	}

	data := res.Value[0].Data.GetBinary()
	if len(data) <= mintInitializedOffset || data[mintInitializedOffset] != 1 {
		return nil, fmt.Errorf("%s: %w", mint, ErrNotMint)
	}

	return &TokenMetadata{
		Decimals:  data[mintDecimalsOffset],
		UpdatedAt: time.Now(),
	}, nil
}

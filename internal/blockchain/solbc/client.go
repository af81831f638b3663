// internal/blockchain/solbc/client.go
package solbc

import (
	"context"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-auctioneer/internal/blockchain"
)

// ErrNoRPCNodes возникает, когда список RPC пуст.
var ErrNoRPCNodes = fmt.Errorf("no RPC nodes available")

// Client – тонкий адаптер для взаимодействия с блокчейном Solana через solana-go.
//
// Read calls rotate through the configured endpoints until one answers.
// Sends always go to a single endpoint and are never repeated here.
type Client struct {
	nodes      []*rpc.Client
	urls       []string
	current    int
	mu         sync.RWMutex
	commitment rpc.CommitmentType
	logger     *zap.Logger
}

// NewClient создаёт новый клиент, принимая список RPC URL и логгер через dependency injection.
func NewClient(urls []string, commitment rpc.CommitmentType, logger *zap.Logger) (*Client, error) {
	if len(urls) == 0 {
		return nil, ErrNoRPCNodes
	}
	if commitment == "" {
		commitment = rpc.CommitmentConfirmed
	}

	nodes := make([]*rpc.Client, len(urls))
	for i, url := range urls {
		nodes[i] = rpc.New(url)
	}

	return &Client{
		nodes:      nodes,
		urls:       urls,
		commitment: commitment,
		logger:     logger.Named("solbc-client"),
	}, nil
}

// withFailover выполняет запрос чтения, переключая узлы при ошибке.
// Each node is tried at most once per call.
func (c *Client) withFailover(ctx context.Context, method string, operation func(*rpc.Client) error) error {
	var lastErr error
	for attempt := 0; attempt < len(c.nodes); attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		c.mu.RLock()
		idx := (c.current + attempt) % len(c.nodes)
		c.mu.RUnlock()

		err := operation(c.nodes[idx])
		if err == nil {
			if attempt > 0 {
				c.mu.Lock()
				c.current = idx
				c.mu.Unlock()
			}
			return nil
		}

		lastErr = NewNodeError(err, c.urls[idx], method)
		c.logger.Debug("RPC request failed, trying next node",
			zap.String("method", method),
			zap.String("url", c.urls[idx]),
			zap.Int("attempt", attempt+1),
			zap.Error(err))
	}
	return lastErr
}

// primary возвращает узел, через который отправляются транзакции.
func (c *Client) primary() (*rpc.Client, string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.nodes[c.current], c.urls[c.current]
}

// GetRecentBlockhash получает последний blockhash.
func (c *Client) GetRecentBlockhash(ctx context.Context) (solana.Hash, error) {
	var hash solana.Hash
	err := c.withFailover(ctx, "getLatestBlockhash", func(node *rpc.Client) error {
		result, err := node.GetLatestBlockhash(ctx, c.commitment)
		if err != nil {
			return err
		}
		hash = result.Value.Blockhash
		return nil
	})
	if err != nil {
		c.logger.Error("GetRecentBlockhash error", zap.Error(err))
		return solana.Hash{}, err
	}
	return hash, nil
}

// SendTransactionWithOpts отправляет транзакцию с заданными опциями.
func (c *Client) SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts blockchain.TransactionOptions) (solana.Signature, error) {
	node, url := c.primary()
	sig, err := node.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       opts.SkipPreflight,
		PreflightCommitment: opts.PreflightCommitment,
	})
	if err != nil {
		c.logger.Error("SendTransactionWithOpts error", zap.String("url", url), zap.Error(err))
		return solana.Signature{}, err
	}
	return sig, nil
}

// GetSignatureStatuses получает статусы транзакций.
func (c *Client) GetSignatureStatuses(ctx context.Context, signatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error) {
	var result *rpc.GetSignatureStatusesResult
	err := c.withFailover(ctx, "getSignatureStatuses", func(node *rpc.Client) error {
		var err error
		result, err = node.GetSignatureStatuses(ctx, false, signatures...)
		return err
	})
	if err != nil {
		c.logger.Debug("GetSignatureStatuses error", zap.Error(err))
		return nil, err
	}
	return result, nil
}

// GetMultipleAccounts получает информацию о нескольких аккаунтах за один запрос
func (c *Client) GetMultipleAccounts(ctx context.Context, pubkeys []solana.PublicKey) (*rpc.GetMultipleAccountsResult, error) {
	if len(pubkeys) == 0 {
		return &rpc.GetMultipleAccountsResult{}, nil
	}

	opts := rpc.GetMultipleAccountsOpts{
		Commitment: c.commitment,
		Encoding:   solana.EncodingBase64,
	}

	var res *rpc.GetMultipleAccountsResult
	err := c.withFailover(ctx, "getMultipleAccounts", func(node *rpc.Client) error {
		var err error
		res, err = node.GetMultipleAccountsWithOpts(ctx, pubkeys, &opts)
		return err
	})
	if err != nil {
		c.logger.Debug("GetMultipleAccounts error", zap.Int("count", len(pubkeys)), zap.Error(err))
		return nil, err
	}
	return res, nil
}

// Гарантируем, что Client реализует интерфейс blockchain.Client.
var _ blockchain.Client = (*Client)(nil)

// internal/blockchain/solbc/transaction/manager.go
package transaction

import (
	"context"
	"errors"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-auctioneer/internal/blockchain"
)

// Manager validates, sends and confirms signed transactions. It performs
// exactly one send per call; retry policy belongs to the caller.
type Manager struct {
	client    blockchain.Client
	logger    *zap.Logger
	config    Config
	validator *Validator
	monitor   *Monitor
	metrics   *Metrics
}

func NewManager(client blockchain.Client, logger *zap.Logger, config Config, reg prometheus.Registerer) *Manager {
	config = config.withDefaults()
	return &Manager{
		client:    client,
		logger:    logger.Named("tx-manager"),
		config:    config,
		validator: NewValidator(logger),
		monitor:   NewMonitor(client, logger, config),
		metrics:   NewMetrics(reg),
	}
}

// Send validates tx and submits it once.
func (tm *Manager) Send(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	if err := tm.validator.ValidateTransaction(tx); err != nil {
		tm.metrics.Failure(string(StageValidate))
		tm.logger.Error("Transaction validation failed", zap.Error(err))
		return solana.Signature{}, &Error{Stage: StageValidate, Err: err}
	}

	signature, err := tm.client.SendTransactionWithOpts(ctx, tx, blockchain.TransactionOptions{
		SkipPreflight:       tm.config.SkipPreflight,
		PreflightCommitment: tm.config.Commitment,
	})
	if err != nil {
		tm.metrics.Failure(string(StageSend))
		tm.logger.Error("Failed to send transaction", zap.Error(err))
		return solana.Signature{}, &Error{Stage: StageSend, Signature: firstSignature(tx), Err: err}
	}
	return signature, nil
}

// SendAndConfirm submits tx once and waits for the configured commitment.
// A transaction that landed with an execution error yields *FailedError.
func (tm *Manager) SendAndConfirm(ctx context.Context, tx *solana.Transaction) (*Status, error) {
	defer tm.metrics.TrackTransaction(time.Now())

	signature, err := tm.Send(ctx, tx)
	if err != nil {
		return nil, err
	}

	status, err := tm.monitor.AwaitConfirmation(ctx, signature)
	if err != nil {
		var failed *FailedError
		if errors.As(err, &failed) {
			tm.metrics.Failure("execution")
			tm.logger.Warn("Transaction failed on chain",
				zap.String("signature", signature.String()),
				zap.Any("err", failed.Err))
			return status, err
		}

		tm.metrics.Failure(string(StageConfirm))
		tm.logger.Error("Transaction confirmation failed",
			zap.String("signature", signature.String()),
			zap.Error(err))
		return nil, &Error{Stage: StageConfirm, Signature: signature, Err: err}
	}

	tm.metrics.Success()
	return status, nil
}

func firstSignature(tx *solana.Transaction) solana.Signature {
	if len(tx.Signatures) == 0 {
		return solana.Signature{}
	}
	return tx.Signatures[0]
}

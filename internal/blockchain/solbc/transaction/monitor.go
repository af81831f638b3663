// internal/blockchain/solbc/transaction/monitor.go
package transaction

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-auctioneer/internal/blockchain"
)

type Monitor struct {
	client blockchain.Client
	logger *zap.Logger
	config Config
}

func NewMonitor(client blockchain.Client, logger *zap.Logger, config Config) *Monitor {
	return &Monitor{
		client: client,
		logger: logger.Named("tx-monitor"),
		config: config.withDefaults(),
	}
}

// reached reports whether status satisfies the target commitment.
func reached(status rpc.ConfirmationStatusType, target rpc.CommitmentType) bool {
	switch target {
	case rpc.CommitmentFinalized:
		return status == rpc.ConfirmationStatusFinalized
	case rpc.CommitmentProcessed:
		return status != ""
	default:
		return status == rpc.ConfirmationStatusConfirmed || status == rpc.ConfirmationStatusFinalized
	}
}

// GetTransactionStatus возвращает текущий статус транзакции.
// A nil status from the node is reported as pending.
func (m *Monitor) GetTransactionStatus(ctx context.Context, signature solana.Signature) (*Status, *rpc.SignatureStatusesResult, error) {
	response, err := m.client.GetSignatureStatuses(ctx, signature)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get transaction status: %w", err)
	}

	if response == nil || len(response.Value) == 0 || response.Value[0] == nil {
		return &Status{
			Signature: signature,
			Status:    "pending",
			Timestamp: time.Now(),
		}, nil, nil
	}

	status := response.Value[0]
	txStatus := &Status{
		Signature: signature,
		Timestamp: time.Now(),
		Slot:      status.Slot,
	}

	if status.Confirmations != nil {
		txStatus.Confirmations = *status.Confirmations
	}

	switch status.ConfirmationStatus {
	case rpc.ConfirmationStatusFinalized:
		txStatus.Status = "finalized"
	case rpc.ConfirmationStatusConfirmed:
		txStatus.Status = "confirmed"
	case rpc.ConfirmationStatusProcessed:
		txStatus.Status = "processed"
	default:
		txStatus.Status = "pending"
	}

	if status.Err != nil {
		txStatus.Error = fmt.Sprintf("%v", status.Err)
		txStatus.Status = "failed"
	}

	return txStatus, status, nil
}

// AwaitConfirmation polls until the transaction reaches the configured
// commitment, fails on chain, or the confirmation window closes.
func (m *Monitor) AwaitConfirmation(ctx context.Context, signature solana.Signature) (*Status, error) {
	ticker := time.NewTicker(m.config.PollInterval)
	defer ticker.Stop()

	deadline := time.NewTimer(m.config.ConfirmationTime)
	defer deadline.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			return nil, ErrConfirmationTimeout
		case <-ticker.C:
			txStatus, raw, err := m.GetTransactionStatus(ctx, signature)
			if err != nil {
				m.logger.Warn("Confirmation check failed",
					zap.String("signature", signature.String()),
					zap.Error(err))
				continue
			}
			if raw == nil {
				continue
			}
			// Ошибка выполнения видна уже на уровне processed
			if raw.Err != nil {
				return txStatus, &FailedError{Signature: signature, Err: raw.Err}
			}
			if reached(raw.ConfirmationStatus, m.config.Commitment) {
				return txStatus, nil
			}
		}
	}
}

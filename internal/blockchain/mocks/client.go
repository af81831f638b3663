// internal/blockchain/mocks/client.go
package mocks

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/mock"

	"github.com/rovshanmuradov/solana-auctioneer/internal/blockchain"
)

// Client реализует blockchain.Client на основе testify/mock.
type Client struct {
	mock.Mock
}

var _ blockchain.Client = (*Client)(nil)

func (m *Client) GetRecentBlockhash(ctx context.Context) (solana.Hash, error) {
	args := m.Called(ctx)
	return args.Get(0).(solana.Hash), args.Error(1)
}

func (m *Client) SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts blockchain.TransactionOptions) (solana.Signature, error) {
	args := m.Called(ctx, tx, opts)
	return args.Get(0).(solana.Signature), args.Error(1)
}

func (m *Client) GetSignatureStatuses(ctx context.Context, signatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error) {
	args := m.Called(ctx, signatures)
	res, _ := args.Get(0).(*rpc.GetSignatureStatusesResult)
	return res, args.Error(1)
}

func (m *Client) GetMultipleAccounts(ctx context.Context, pubkeys []solana.PublicKey) (*rpc.GetMultipleAccountsResult, error) {
	args := m.Called(ctx, pubkeys)
	res, _ := args.Get(0).(*rpc.GetMultipleAccountsResult)
	return res, args.Error(1)
}

// Status builds a signature status response with a single entry.
func Status(confirmation rpc.ConfirmationStatusType, statusErr interface{}) *rpc.GetSignatureStatusesResult {
	return &rpc.GetSignatureStatusesResult{
		Value: []*rpc.SignatureStatusesResult{{
			Slot:               1,
			ConfirmationStatus: confirmation,
			Err:                statusErr,
		}},
	}
}

// =============================
// File: internal/auctionhouse/loader.go
// =============================
package auctionhouse

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-auctioneer/internal/auctionhouse/pda"
	"github.com/rovshanmuradov/solana-auctioneer/internal/blockchain"
)

var (
	ErrAccountNotFound        = errors.New("account not found")
	ErrInvalidOwner           = errors.New("account owner mismatch")
	ErrAuctioneerNotDelegated = errors.New("auction house has not delegated to the auctioneer")
)

// Snapshot is an auction house and its auctioneer record read in one request.
type Snapshot struct {
	Address             solana.PublicKey
	House               *AuctionHouseAccount
	Auctioneer          *AuctioneerAccount // nil when no record exists
	AuctioneerAuthority solana.PublicKey
	AuctioneerRecord    solana.PublicKey
	Slot                uint64
}

// Config returns the sale configuration of the snapshot.
func (s *Snapshot) Config() AuctionHouseConfig {
	return s.House.Config(s.Address)
}

// CheckAuctioneer verifies that the auction house delegated to the
// derived auctioneer authority. The program enforces the same on chain.
func (s *Snapshot) CheckAuctioneer() error {
	switch {
	case !s.House.HasAuctioneer:
		return fmt.Errorf("%w: has_auctioneer is false", ErrAuctioneerNotDelegated)
	case !s.House.AuctioneerAddress.Equals(s.AuctioneerRecord):
		return fmt.Errorf("%w: auctioneer address is %s, expected %s",
			ErrAuctioneerNotDelegated, s.House.AuctioneerAddress, s.AuctioneerRecord)
	case s.Auctioneer == nil:
		return fmt.Errorf("%w: record %s does not exist", ErrAuctioneerNotDelegated, s.AuctioneerRecord)
	case !s.Auctioneer.AuctioneerAuthority.Equals(s.AuctioneerAuthority):
		return fmt.Errorf("%w: record names authority %s, expected %s",
			ErrAuctioneerNotDelegated, s.Auctioneer.AuctioneerAuthority, s.AuctioneerAuthority)
	}
	return nil
}

// Loader reads auction house state from the network.
type Loader struct {
	client  blockchain.Client
	deriver *pda.Deriver
	logger  *zap.Logger
}

func NewLoader(client blockchain.Client, deriver *pda.Deriver, logger *zap.Logger) *Loader {
	return &Loader{
		client:  client,
		deriver: deriver,
		logger:  logger.Named("ah-loader"),
	}
}

// Load fetches the auction house at address together with its auctioneer
// record so that both come from the same slot.
func (l *Loader) Load(ctx context.Context, address solana.PublicKey) (*Snapshot, error) {
	authority, err := l.deriver.AuctioneerAuthority(address)
	if err != nil {
		return nil, err
	}
	record, err := l.deriver.AuctioneerRecord(address, authority.Key)
	if err != nil {
		return nil, err
	}

	res, err := l.client.GetMultipleAccounts(ctx, []solana.PublicKey{address, record.Key})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch auction house %s: %w", address, err)
	}
	if res == nil || len(res.Value) != 2 {
		return nil, fmt.Errorf("failed to fetch auction house %s: unexpected response", address)
	}

	programs := l.deriver.Programs()
	houseAcc := res.Value[0]
	if houseAcc == nil || houseAcc.Data == nil {
		return nil, fmt.Errorf("auction house %s: %w", address, ErrAccountNotFound)
	}
	if !houseAcc.Owner.Equals(programs.AuctionHouse) {
		return nil, fmt.Errorf("auction house %s owned by %s: %w", address, houseAcc.Owner, ErrInvalidOwner)
	}
	house, err := DecodeAuctionHouse(houseAcc.Data.GetBinary())
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		Address:             address,
		House:               house,
		AuctioneerAuthority: authority.Key,
		AuctioneerRecord:    record.Key,
		Slot:                res.Context.Slot,
	}

	if recAcc := res.Value[1]; recAcc != nil && recAcc.Data != nil {
		if !recAcc.Owner.Equals(programs.AuctionHouse) {
			return nil, fmt.Errorf("auctioneer record %s owned by %s: %w", record.Key, recAcc.Owner, ErrInvalidOwner)
		}
		if snap.Auctioneer, err = DecodeAuctioneer(recAcc.Data.GetBinary()); err != nil {
			return nil, err
		}
	}

	l.logger.Debug("Auction house loaded",
		zap.String("address", address.String()),
		zap.String("treasury_mint", house.TreasuryMint.String()),
		zap.Bool("has_auctioneer", house.HasAuctioneer),
		zap.Bool("auctioneer_record", snap.Auctioneer != nil),
		zap.Uint64("slot", snap.Slot))
	return snap, nil
}

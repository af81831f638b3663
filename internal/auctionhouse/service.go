// =============================
// File: internal/auctionhouse/service.go
// =============================
package auctionhouse

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-auctioneer/internal/auctionhouse/pda"
	"github.com/rovshanmuradov/solana-auctioneer/internal/wallet"
)

// Service runs the execute-sale flow: Prepare, then Submit.
type Service struct {
	deriver   *pda.Deriver
	loader    *Loader
	submitter *Submitter
	logger    *zap.Logger
}

func NewService(deriver *pda.Deriver, loader *Loader, submitter *Submitter, logger *zap.Logger) *Service {
	return &Service{
		deriver:   deriver,
		loader:    loader,
		submitter: submitter,
		logger:    logger.Named("auction-house"),
	}
}

// Deriver returns the deriver the service prepares plans with.
func (s *Service) Deriver() *pda.Deriver {
	return s.deriver
}

// LoadAuctionHouse reads the auction house at address. With check set it
// also requires a delegation to the auctioneer program.
func (s *Service) LoadAuctionHouse(ctx context.Context, address solana.PublicKey, check bool) (*Snapshot, error) {
	snap, err := s.loader.Load(ctx, address)
	if err != nil {
		return nil, err
	}
	if check {
		if err := snap.CheckAuctioneer(); err != nil {
			return nil, err
		}
	}
	return snap, nil
}

// Prepare derives and assembles the plan. No network access happens here.
func (s *Service) Prepare(p ExecuteSaleParams) (*ExecuteSalePlan, error) {
	plan, err := Prepare(s.deriver, p)
	if err != nil {
		s.logger.Error("Failed to prepare execute sale",
			zap.String("auction_house", p.AuctionHouse.Address.String()),
			zap.String("mint", p.Token.Mint.String()),
			zap.Error(err))
		return nil, err
	}

	s.logger.Debug("Execute sale prepared",
		zap.String("mint", p.Token.Mint.String()),
		zap.String("buyer", p.Participants.Buyer.String()),
		zap.Uint64("buyer_price", p.Participants.BuyerPrice),
		zap.Uint64("token_size", p.Participants.TokenSize),
		zap.Int("creators", len(p.Creators)),
		zap.Uint8("escrow_bump", plan.Args.EscrowPaymentBump),
		zap.Uint8("free_trade_state_bump", plan.Args.FreeTradeStateBump),
		zap.Uint8("program_as_signer_bump", plan.Args.ProgramAsSignerBump),
		zap.Uint8("auctioneer_authority_bump", plan.Args.AuctioneerAuthorityBump))
	return plan, nil
}

// Submit sends a prepared plan once.
func (s *Service) Submit(ctx context.Context, plan *ExecuteSalePlan, payer *wallet.Wallet) (solana.Signature, error) {
	return s.submitter.Submit(ctx, plan, payer)
}

// ExecuteSale prepares and submits in one call. A derivation failure
// returns before any network call.
func (s *Service) ExecuteSale(ctx context.Context, p ExecuteSaleParams, payer *wallet.Wallet) (solana.Signature, error) {
	plan, err := s.Prepare(p)
	if err != nil {
		return solana.Signature{}, err
	}
	return s.Submit(ctx, plan, payer)
}

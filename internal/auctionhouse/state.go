// =============================
// File: internal/auctionhouse/state.go
// =============================
package auctionhouse

import (
	"bytes"
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

var (
	AuctionHouseAccountDiscriminator = anchorDiscriminator("account", "AuctionHouse")
	AuctioneerAccountDiscriminator   = anchorDiscriminator("account", "Auctioneer")

	ErrInvalidDiscriminator = errors.New("account discriminator mismatch")
)

// AuctionHouseAccount is the on-chain auction house state. Trailing padding is ignored.
type AuctionHouseAccount struct {
	AuctionHouseFeeAccount        solana.PublicKey
	AuctionHouseTreasury          solana.PublicKey
	TreasuryWithdrawalDestination solana.PublicKey
	FeeWithdrawalDestination      solana.PublicKey
	TreasuryMint                  solana.PublicKey
	Authority                     solana.PublicKey
	Creator                       solana.PublicKey
	Bump                          uint8
	TreasuryBump                  uint8
	FeePayerBump                  uint8
	SellerFeeBasisPoints          uint16
	CanChangeSalePrice            bool
	EscrowPaymentBump             uint8
	HasAuctioneer                 bool
	AuctioneerAddress             solana.PublicKey
}

// Config returns the subset used to prepare a sale.
func (a *AuctionHouseAccount) Config(address solana.PublicKey) AuctionHouseConfig {
	return AuctionHouseConfig{
		Address:                address,
		TreasuryMint:           a.TreasuryMint,
		Authority:              a.Authority,
		AuctionHouseFeeAccount: a.AuctionHouseFeeAccount,
		AuctionHouseTreasury:   a.AuctionHouseTreasury,
	}
}

// AuctioneerAccount is the auction house's record of a delegated auctioneer.
type AuctioneerAccount struct {
	AuctioneerAuthority solana.PublicKey
	AuctionHouse        solana.PublicKey
	Bump                uint8
}

func decodeAnchorAccount(data []byte, discriminator [8]byte, dst interface{}) error {
	if len(data) < 8 || !bytes.Equal(data[:8], discriminator[:]) {
		return ErrInvalidDiscriminator
	}
	if err := bin.NewBorshDecoder(data[8:]).Decode(dst); err != nil {
		return fmt.Errorf("failed to decode account: %w", err)
	}
	return nil
}

// DecodeAuctionHouse decodes raw AuctionHouse account data.
func DecodeAuctionHouse(data []byte) (*AuctionHouseAccount, error) {
	var a AuctionHouseAccount
	if err := decodeAnchorAccount(data, AuctionHouseAccountDiscriminator, &a); err != nil {
		return nil, fmt.Errorf("auction house: %w", err)
	}
	return &a, nil
}

// DecodeAuctioneer decodes raw Auctioneer account data.
func DecodeAuctioneer(data []byte) (*AuctioneerAccount, error) {
	var a AuctioneerAccount
	if err := decodeAnchorAccount(data, AuctioneerAccountDiscriminator, &a); err != nil {
		return nil, fmt.Errorf("auctioneer: %w", err)
	}
	return &a, nil
}

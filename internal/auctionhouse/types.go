// =============================
// File: internal/auctionhouse/types.go
// =============================
package auctionhouse

import (
	"github.com/gagliardetto/solana-go"
)

// AuctionHouseConfig holds the fields of one auction house instance the
// execute-sale flow needs. Populate it from a single account snapshot.
type AuctionHouseConfig struct {
	Address                solana.PublicKey
	TreasuryMint           solana.PublicKey
	Authority              solana.PublicKey
	AuctionHouseFeeAccount solana.PublicKey
	AuctionHouseTreasury   solana.PublicKey
}

// TokenDescriptor describes the token being sold.
type TokenDescriptor struct {
	Mint         solana.PublicKey
	Owner        solana.PublicKey // seller
	TokenAccount solana.PublicKey
}

// SaleParticipants are the two sides of the sale and its terms. Both
// amounts are in base units and are passed through unchanged.
type SaleParticipants struct {
	Buyer      solana.PublicKey
	Seller     solana.PublicKey
	BuyerPrice uint64
	TokenSize  uint64
}

// SellAccounts are produced by the listing side of the flow.
type SellAccounts struct {
	ListingConfig        solana.PublicKey
	TokenAccount         solana.PublicKey
	Metadata             solana.PublicKey
	SellerTradeState     solana.PublicKey
	FreeSellerTradeState solana.PublicKey
	ProgramAsSigner      solana.PublicKey
}

// BuyAccounts are produced by the bidding side of the flow.
type BuyAccounts struct {
	EscrowPaymentAccount solana.PublicKey
	BuyerTradeState      solana.PublicKey
}

// Creator is a royalty recipient listed in the token metadata.
type Creator struct {
	Address solana.PublicKey
	Share   uint8
}

// ExecuteSaleParams is everything needed to prepare one execute-sale
// instruction. A nil Creators slice is the same as an empty one.
type ExecuteSaleParams struct {
	AuctionHouse AuctionHouseConfig
	Token        TokenDescriptor
	Participants SaleParticipants
	Sell         SellAccounts
	Buy          BuyAccounts
	Creators     []Creator
}

// Derived holds the addresses and bumps recomputed client side for one sale.
type Derived struct {
	EscrowPaymentAccount     solana.PublicKey
	EscrowPaymentBump        uint8
	FreeTradeState           solana.PublicKey
	FreeTradeStateBump       uint8
	ProgramAsSigner          solana.PublicKey
	ProgramAsSignerBump      uint8
	AuctioneerAuthority      solana.PublicKey
	AuctioneerAuthorityBump  uint8
	AuctioneerRecord         solana.PublicKey
	BuyerReceiptTokenAccount solana.PublicKey
}

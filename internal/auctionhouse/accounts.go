// =============================
// File: internal/auctionhouse/accounts.go
// =============================
package auctionhouse

import (
	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/solana-auctioneer/internal/auctionhouse/pda"
)

// ExecuteSaleAccountsCount is the number of named accounts before the creators.
const ExecuteSaleAccountsCount = 25

// ExecuteSaleAccounts are the named accounts of the instruction.
type ExecuteSaleAccounts struct {
	AuctionHouseProgram         solana.PublicKey
	ListingConfig               solana.PublicKey
	Buyer                       solana.PublicKey
	Seller                      solana.PublicKey
	TokenAccount                solana.PublicKey
	TokenMint                   solana.PublicKey
	Metadata                    solana.PublicKey
	TreasuryMint                solana.PublicKey
	EscrowPaymentAccount        solana.PublicKey
	SellerPaymentReceiptAccount solana.PublicKey
	BuyerReceiptTokenAccount    solana.PublicKey
	Authority                   solana.PublicKey
	AuctionHouse                solana.PublicKey
	AuctionHouseFeeAccount      solana.PublicKey
	AuctionHouseTreasury        solana.PublicKey
	BuyerTradeState             solana.PublicKey
	SellerTradeState            solana.PublicKey
	FreeTradeState              solana.PublicKey
	AuctioneerAuthority         solana.PublicKey
	AuctioneerRecord            solana.PublicKey
	TokenProgram                solana.PublicKey
	SystemProgram               solana.PublicKey
	AtaProgram                  solana.PublicKey
	ProgramAsSigner             solana.PublicKey
	Rent                        solana.PublicKey
}

// BuildExecuteSaleAccounts assigns every named account. Input accounts left
// zero are filled from derived when the address is derivable, and rejected
// with a MismatchError when they disagree with it.
func BuildExecuteSaleAccounts(programs pda.Programs, p ExecuteSaleParams, derived Derived) (ExecuteSaleAccounts, error) {
	seller, err := p.seller()
	if err != nil {
		return ExecuteSaleAccounts{}, err
	}
	tokenAccount, err := p.tokenAccount()
	if err != nil {
		return ExecuteSaleAccounts{}, err
	}

	escrow, err := reconcile("escrow payment account", p.Buy.EscrowPaymentAccount, derived.EscrowPaymentAccount)
	if err != nil {
		return ExecuteSaleAccounts{}, err
	}
	free, err := reconcile("free trade state", p.Sell.FreeSellerTradeState, derived.FreeTradeState)
	if err != nil {
		return ExecuteSaleAccounts{}, err
	}
	signer, err := reconcile("program as signer", p.Sell.ProgramAsSigner, derived.ProgramAsSigner)
	if err != nil {
		return ExecuteSaleAccounts{}, err
	}

	required := []struct {
		name string
		key  solana.PublicKey
	}{
		{"auction house", p.AuctionHouse.Address},
		{"treasury mint", p.AuctionHouse.TreasuryMint},
		{"authority", p.AuctionHouse.Authority},
		{"auction house fee account", p.AuctionHouse.AuctionHouseFeeAccount},
		{"auction house treasury", p.AuctionHouse.AuctionHouseTreasury},
		{"token mint", p.Token.Mint},
		{"buyer", p.Participants.Buyer},
		{"listing config", p.Sell.ListingConfig},
		{"metadata", p.Sell.Metadata},
		{"seller trade state", p.Sell.SellerTradeState},
		{"buyer trade state", p.Buy.BuyerTradeState},
	}
	for _, r := range required {
		if r.key.IsZero() {
			return ExecuteSaleAccounts{}, missing(r.name)
		}
	}

	programs = programs.WithDefaults()
	return ExecuteSaleAccounts{
		AuctionHouseProgram:         programs.AuctionHouse,
		ListingConfig:               p.Sell.ListingConfig,
		Buyer:                       p.Participants.Buyer,
		Seller:                      seller,
		TokenAccount:                tokenAccount,
		TokenMint:                   p.Token.Mint,
		Metadata:                    p.Sell.Metadata,
		TreasuryMint:                p.AuctionHouse.TreasuryMint,
		EscrowPaymentAccount:        escrow,
		SellerPaymentReceiptAccount: seller, // proceeds go straight to the seller wallet
		BuyerReceiptTokenAccount:    derived.BuyerReceiptTokenAccount,
		Authority:                   p.AuctionHouse.Authority,
		AuctionHouse:                p.AuctionHouse.Address,
		AuctionHouseFeeAccount:      p.AuctionHouse.AuctionHouseFeeAccount,
		AuctionHouseTreasury:        p.AuctionHouse.AuctionHouseTreasury,
		BuyerTradeState:             p.Buy.BuyerTradeState,
		SellerTradeState:            p.Sell.SellerTradeState,
		FreeTradeState:              free,
		AuctioneerAuthority:         derived.AuctioneerAuthority,
		AuctioneerRecord:            derived.AuctioneerRecord,
		TokenProgram:                programs.Token,
		SystemProgram:               programs.System,
		AtaProgram:                  programs.AssociatedToken,
		ProgramAsSigner:             signer,
		Rent:                        programs.Rent,
	}, nil
}

func reconcile(name string, given, derived solana.PublicKey) (solana.PublicKey, error) {
	if given.IsZero() {
		return derived, nil
	}
	if !given.Equals(derived) {
		return solana.PublicKey{}, &MismatchError{Account: name, Given: given, Derived: derived}
	}
	return given, nil
}

// Metas returns the named accounts in the exact order the program expects.
// No account signs; the auctioneer authority signs by seeds on chain.
func (a ExecuteSaleAccounts) Metas() solana.AccountMetaSlice {
	return solana.AccountMetaSlice{
		solana.NewAccountMeta(a.AuctionHouseProgram, false, false),
		solana.NewAccountMeta(a.ListingConfig, true, false),
		solana.NewAccountMeta(a.Buyer, true, false),
		solana.NewAccountMeta(a.Seller, true, false),
		solana.NewAccountMeta(a.TokenAccount, true, false),
		solana.NewAccountMeta(a.TokenMint, false, false),
		solana.NewAccountMeta(a.Metadata, false, false),
		solana.NewAccountMeta(a.TreasuryMint, false, false),
		solana.NewAccountMeta(a.EscrowPaymentAccount, true, false),
		solana.NewAccountMeta(a.SellerPaymentReceiptAccount, true, false),
		solana.NewAccountMeta(a.BuyerReceiptTokenAccount, true, false),
		solana.NewAccountMeta(a.Authority, false, false),
		solana.NewAccountMeta(a.AuctionHouse, false, false),
		solana.NewAccountMeta(a.AuctionHouseFeeAccount, true, false),
		solana.NewAccountMeta(a.AuctionHouseTreasury, true, false),
		solana.NewAccountMeta(a.BuyerTradeState, true, false),
		solana.NewAccountMeta(a.SellerTradeState, true, false),
		solana.NewAccountMeta(a.FreeTradeState, true, false),
		solana.NewAccountMeta(a.AuctioneerAuthority, false, false),
		solana.NewAccountMeta(a.AuctioneerRecord, false, false),
		solana.NewAccountMeta(a.TokenProgram, false, false),
		solana.NewAccountMeta(a.SystemProgram, false, false),
		solana.NewAccountMeta(a.AtaProgram, false, false),
		solana.NewAccountMeta(a.ProgramAsSigner, false, false),
		solana.NewAccountMeta(a.Rent, false, false),
	}
}

// CreatorMetas returns the remaining accounts for creators, writable and in input order.
func CreatorMetas(creators []Creator) solana.AccountMetaSlice {
	metas := make(solana.AccountMetaSlice, 0, len(creators))
	for _, c := range creators {
		metas = append(metas, solana.NewAccountMeta(c.Address, true, false))
	}
	return metas
}

// =============================
// File: internal/auctionhouse/derive.go
// =============================
package auctionhouse

import (
	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/solana-auctioneer/internal/auctionhouse/pda"
)

// seller resolves the selling wallet. The token owner is authoritative.
func (p ExecuteSaleParams) seller() (solana.PublicKey, error) {
	owner, seller := p.Token.Owner, p.Participants.Seller
	switch {
	case owner.IsZero() && seller.IsZero():
		return solana.PublicKey{}, missing("seller")
	case owner.IsZero():
		return seller, nil
	case !seller.IsZero() && !seller.Equals(owner):
		return solana.PublicKey{}, &MismatchError{Account: "seller", Given: seller, Derived: owner}
	default:
		return owner, nil
	}
}

// tokenAccount resolves the listed token account. The listing side is authoritative.
func (p ExecuteSaleParams) tokenAccount() (solana.PublicKey, error) {
	listed, given := p.Sell.TokenAccount, p.Token.TokenAccount
	switch {
	case listed.IsZero() && given.IsZero():
		return solana.PublicKey{}, missing("token account")
	case listed.IsZero():
		return given, nil
	case !given.IsZero() && !given.Equals(listed):
		return solana.PublicKey{}, &MismatchError{Account: "token account", Given: given, Derived: listed}
	default:
		return listed, nil
	}
}

// Derive recomputes every address and bump the instruction needs. It is
// pure and returns a *pda.DerivationError when any search fails.
func Derive(d *pda.Deriver, p ExecuteSaleParams) (Derived, error) {
	seller, err := p.seller()
	if err != nil {
		return Derived{}, err
	}
	tokenAccount, err := p.tokenAccount()
	if err != nil {
		return Derived{}, err
	}
	ah := p.AuctionHouse.Address
	buyer := p.Participants.Buyer

	authority, err := d.AuctioneerAuthority(ah)
	if err != nil {
		return Derived{}, err
	}
	record, err := d.AuctioneerRecord(ah, authority.Key)
	if err != nil {
		return Derived{}, err
	}

	receipt, err := d.AssociatedTokenAccount(buyer, p.Token.Mint)
	if err != nil {
		return Derived{}, err
	}

	free, err := d.FreeTradeState(pda.TradeStateSeeds{
		Wallet:       seller,
		AuctionHouse: ah,
		TokenAccount: tokenAccount,
		TreasuryMint: p.AuctionHouse.TreasuryMint,
		TokenMint:    p.Token.Mint,
		TokenSize:    p.Participants.TokenSize,
	})
	if err != nil {
		return Derived{}, err
	}

	signer, err := d.ProgramAsSigner()
	if err != nil {
		return Derived{}, err
	}

	escrow, err := d.EscrowPaymentAccount(ah, buyer)
	if err != nil {
		return Derived{}, err
	}

	return Derived{
		EscrowPaymentAccount:     escrow.Key,
		EscrowPaymentBump:        escrow.Bump,
		FreeTradeState:           free.Key,
		FreeTradeStateBump:       free.Bump,
		ProgramAsSigner:          signer.Key,
		ProgramAsSignerBump:      signer.Bump,
		AuctioneerAuthority:      authority.Key,
		AuctioneerAuthorityBump:  authority.Bump,
		AuctioneerRecord:         record.Key,
		BuyerReceiptTokenAccount: receipt.Key,
	}, nil
}

// DeriveSellAccounts computes the accounts an auctioneer listing of token
// creates. The seller trade state carries the maximum price, as auctioneer
// listings do.
func DeriveSellAccounts(d *pda.Deriver, ah AuctionHouseConfig, token TokenDescriptor, tokenSize uint64) (SellAccounts, error) {
	tokenAccount := token.TokenAccount
	if tokenAccount.IsZero() {
		ata, err := d.AssociatedTokenAccount(token.Owner, token.Mint)
		if err != nil {
			return SellAccounts{}, err
		}
		tokenAccount = ata.Key
	}

	seeds := pda.TradeStateSeeds{
		Wallet:       token.Owner,
		AuctionHouse: ah.Address,
		TokenAccount: tokenAccount,
		TreasuryMint: ah.TreasuryMint,
		TokenMint:    token.Mint,
		TokenSize:    tokenSize,
	}

	listing, err := d.ListingConfig(pda.ListingConfigSeeds{
		Wallet:       token.Owner,
		AuctionHouse: ah.Address,
		TokenAccount: tokenAccount,
		TreasuryMint: ah.TreasuryMint,
		TokenMint:    token.Mint,
		TokenSize:    tokenSize,
	})
	if err != nil {
		return SellAccounts{}, err
	}
	metadata, err := d.Metadata(token.Mint)
	if err != nil {
		return SellAccounts{}, err
	}
	tradeState, err := d.AuctioneerTradeState(seeds)
	if err != nil {
		return SellAccounts{}, err
	}
	free, err := d.FreeTradeState(seeds)
	if err != nil {
		return SellAccounts{}, err
	}
	signer, err := d.ProgramAsSigner()
	if err != nil {
		return SellAccounts{}, err
	}

	return SellAccounts{
		ListingConfig:        listing.Key,
		TokenAccount:         tokenAccount,
		Metadata:             metadata.Key,
		SellerTradeState:     tradeState.Key,
		FreeSellerTradeState: free.Key,
		ProgramAsSigner:      signer.Key,
	}, nil
}

// DeriveBuyAccounts computes the accounts a bid of buyer on token creates.
// token.TokenAccount must be the seller's listed token account.
func DeriveBuyAccounts(d *pda.Deriver, ah AuctionHouseConfig, token TokenDescriptor, buyer solana.PublicKey, price, tokenSize uint64) (BuyAccounts, error) {
	escrow, err := d.EscrowPaymentAccount(ah.Address, buyer)
	if err != nil {
		return BuyAccounts{}, err
	}
	tradeState, err := d.TradeState(pda.TradeStateSeeds{
		Wallet:       buyer,
		AuctionHouse: ah.Address,
		TokenAccount: token.TokenAccount,
		TreasuryMint: ah.TreasuryMint,
		TokenMint:    token.Mint,
		Price:        price,
		TokenSize:    tokenSize,
	})
	if err != nil {
		return BuyAccounts{}, err
	}
	return BuyAccounts{
		EscrowPaymentAccount: escrow.Key,
		BuyerTradeState:      tradeState.Key,
	}, nil
}

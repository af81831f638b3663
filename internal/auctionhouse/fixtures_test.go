// =============================
// File: internal/auctionhouse/fixtures_test.go
// =============================
package auctionhouse

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/rovshanmuradov/solana-auctioneer/internal/auctionhouse/pda"
)

func testKey(b byte) solana.PublicKey {
	var k solana.PublicKey
	for i := range k {
		k[i] = b
	}
	return k
}

var (
	ahAddress   = testKey(10)
	ahAuthority = testKey(11)
	sellerKey   = testKey(12)
	buyerKey    = testKey(13)
	mintKey     = testKey(14)
)

func testAuctionHouse(t *testing.T, d *pda.Deriver) AuctionHouseConfig {
	t.Helper()
	fee, err := d.AuctionHouseFeeAccount(ahAddress)
	require.NoError(t, err)
	treasury, err := d.AuctionHouseTreasury(ahAddress)
	require.NoError(t, err)
	return AuctionHouseConfig{
		Address:                ahAddress,
		TreasuryMint:           solana.WrappedSol,
		Authority:              ahAuthority,
		AuctionHouseFeeAccount: fee.Key,
		AuctionHouseTreasury:   treasury.Key,
	}
}

// testParams builds a consistent sale using the counterpart derivations.
func testParams(t *testing.T, d *pda.Deriver, price, size uint64, creators ...Creator) ExecuteSaleParams {
	t.Helper()
	ah := testAuctionHouse(t, d)

	tokenAccount, err := d.AssociatedTokenAccount(sellerKey, mintKey)
	require.NoError(t, err)
	token := TokenDescriptor{Mint: mintKey, Owner: sellerKey, TokenAccount: tokenAccount.Key}

	sell, err := DeriveSellAccounts(d, ah, token, size)
	require.NoError(t, err)
	buy, err := DeriveBuyAccounts(d, ah, token, buyerKey, price, size)
	require.NoError(t, err)

	return ExecuteSaleParams{
		AuctionHouse: ah,
		Token:        token,
		Participants: SaleParticipants{
			Buyer:      buyerKey,
			Seller:     sellerKey,
			BuyerPrice: price,
			TokenSize:  size,
		},
		Sell:     sell,
		Buy:      buy,
		Creators: creators,
	}
}

// =============================
// File: internal/auctionhouse/instruction_test.go
// =============================
package auctionhouse

import (
	"crypto/sha256"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rovshanmuradov/solana-auctioneer/internal/auctionhouse/pda"
)

func TestExecuteSaleDiscriminator(t *testing.T) {
	sum := sha256.Sum256([]byte("global:execute_sale"))
	assert.Equal(t, sum[:8], ExecuteSaleDiscriminator[:])
}

func TestExecuteSaleArgsLayout(t *testing.T) {
	args := ExecuteSaleArgs{
		EscrowPaymentBump:       255,
		FreeTradeStateBump:      254,
		ProgramAsSignerBump:     253,
		AuctioneerAuthorityBump: 252,
		BuyerPrice:              0,
		TokenSize:               1,
	}

	data, err := args.Encode()
	require.NoError(t, err)
	require.Len(t, data, ExecuteSaleArgsSize)

	assert.Equal(t, ExecuteSaleDiscriminator[:], data[:8])
	assert.Equal(t, []byte{255, 254, 253, 252}, data[8:12])
	assert.Equal(t, uint64(0), binary.LittleEndian.Uint64(data[12:20]))
	assert.Equal(t, uint64(1), binary.LittleEndian.Uint64(data[20:28]))

	decoded, err := DecodeExecuteSaleArgs(data)
	require.NoError(t, err)
	assert.Equal(t, args, decoded)

	_, err = DecodeExecuteSaleArgs(data[8:])
	assert.Error(t, err)
}

// Zero price, unit size and no creators is the smallest valid sale.
func TestPrepareZeroPriceUnitSizeNoCreators(t *testing.T) {
	d := pda.NewDeriver(pda.DefaultPrograms())
	p := testParams(t, d, 0, 1)

	plan, err := Prepare(d, p)
	require.NoError(t, err)
	assert.Len(t, plan.AccountMetas(), ExecuteSaleAccountsCount)
	assert.Equal(t, uint64(0), plan.Args.BuyerPrice)
	assert.Equal(t, uint64(1), plan.Args.TokenSize)

	escrow, err := d.EscrowPaymentAccount(ahAddress, buyerKey)
	require.NoError(t, err)
	free, err := d.FreeTradeState(pda.TradeStateSeeds{
		Wallet:       sellerKey,
		AuctionHouse: ahAddress,
		TokenAccount: p.Sell.TokenAccount,
		TreasuryMint: p.AuctionHouse.TreasuryMint,
		TokenMint:    mintKey,
		TokenSize:    1,
	})
	require.NoError(t, err)
	signer, err := d.ProgramAsSigner()
	require.NoError(t, err)
	authority, err := d.AuctioneerAuthority(ahAddress)
	require.NoError(t, err)

	assert.Equal(t, escrow.Bump, plan.Args.EscrowPaymentBump)
	assert.Equal(t, free.Bump, plan.Args.FreeTradeStateBump)
	assert.Equal(t, signer.Bump, plan.Args.ProgramAsSignerBump)
	assert.Equal(t, authority.Bump, plan.Args.AuctioneerAuthorityBump)

	ix, err := plan.Instruction()
	require.NoError(t, err)
	assert.Equal(t, pda.AuctioneerProgramID, ix.ProgramID())
	data, err := ix.Data()
	require.NoError(t, err)
	assert.Len(t, data, ExecuteSaleArgsSize)
}

func TestPrepareDoesNotShareCreatorSlice(t *testing.T) {
	d := pda.NewDeriver(pda.DefaultPrograms())
	creators := []Creator{{Address: testKey(70)}}

	plan, err := Prepare(d, testParams(t, d, 1, 1, creators...))
	require.NoError(t, err)
	creators[0].Address = testKey(71)

	assert.Equal(t, testKey(70), plan.AccountMetas()[ExecuteSaleAccountsCount].PublicKey)
}

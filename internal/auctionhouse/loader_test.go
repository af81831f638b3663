// =============================
// File: internal/auctionhouse/loader_test.go
// =============================
package auctionhouse

import (
	"bytes"
	"context"
	"errors"
	"testing"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rovshanmuradov/solana-auctioneer/internal/auctionhouse/pda"
	"github.com/rovshanmuradov/solana-auctioneer/internal/blockchain/mocks"
)

func encodeAccount(t *testing.T, discriminator [8]byte, v interface{}, padding int) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	buf.Write(discriminator[:])
	require.NoError(t, bin.NewBorshEncoder(buf).Encode(v))
	buf.Write(make([]byte, padding))
	return buf.Bytes()
}

type loaderFixture struct {
	house     AuctionHouseAccount
	authority pda.Address
	record    pda.Address
}

func newLoaderFixture(t *testing.T, d *pda.Deriver) loaderFixture {
	t.Helper()
	authority, err := d.AuctioneerAuthority(ahAddress)
	require.NoError(t, err)
	record, err := d.AuctioneerRecord(ahAddress, authority.Key)
	require.NoError(t, err)
	cfg := testAuctionHouse(t, d)

	return loaderFixture{
		house: AuctionHouseAccount{
			AuctionHouseFeeAccount: cfg.AuctionHouseFeeAccount,
			AuctionHouseTreasury:   cfg.AuctionHouseTreasury,
			TreasuryMint:           cfg.TreasuryMint,
			Authority:              cfg.Authority,
			Creator:                testKey(80),
			Bump:                   254,
			SellerFeeBasisPoints:   250,
			HasAuctioneer:          true,
			AuctioneerAddress:      record.Key,
		},
		authority: authority,
		record:    record,
	}
}

func (f loaderFixture) response(t *testing.T, owner solana.PublicKey, withRecord bool) *rpc.GetMultipleAccountsResult {
	res := &rpc.GetMultipleAccountsResult{
		Value: []*rpc.Account{
			{Owner: owner, Data: rpc.DataBytesOrJSONFromBytes(encodeAccount(t, AuctionHouseAccountDiscriminator, f.house, 172))},
			nil,
		},
	}
	res.Context.Slot = 1234
	if withRecord {
		res.Value[1] = &rpc.Account{Owner: owner, Data: rpc.DataBytesOrJSONFromBytes(encodeAccount(t, AuctioneerAccountDiscriminator, AuctioneerAccount{
			AuctioneerAuthority: f.authority.Key,
			AuctionHouse:        ahAddress,
			Bump:                f.record.Bump,
		}, 63))}
	}
	return res
}

func TestDecodeAuctionHouse(t *testing.T) {
	d := pda.NewDeriver(pda.DefaultPrograms())
	f := newLoaderFixture(t, d)

	got, err := DecodeAuctionHouse(encodeAccount(t, AuctionHouseAccountDiscriminator, f.house, 172))
	require.NoError(t, err)
	assert.Equal(t, f.house, *got)

	_, err = DecodeAuctionHouse(encodeAccount(t, AuctioneerAccountDiscriminator, f.house, 0))
	assert.ErrorIs(t, err, ErrInvalidDiscriminator)
}

func TestLoaderReadsOneSnapshot(t *testing.T) {
	client := new(mocks.Client)
	d := pda.NewDeriver(pda.DefaultPrograms())
	f := newLoaderFixture(t, d)

	client.On("GetMultipleAccounts", mock.Anything, []solana.PublicKey{ahAddress, f.record.Key}).
		Return(f.response(t, pda.AuctionHouseProgramID, true), nil).Once()

	snap, err := NewLoader(client, d, zaptest.NewLogger(t)).Load(context.Background(), ahAddress)
	require.NoError(t, err)
	client.AssertExpectations(t)

	assert.Equal(t, uint64(1234), snap.Slot)
	assert.Equal(t, testAuctionHouse(t, d), snap.Config())
	require.NotNil(t, snap.Auctioneer)
	assert.NoError(t, snap.CheckAuctioneer())
}

func TestLoaderRejectsForeignOwner(t *testing.T) {
	client := new(mocks.Client)
	d := pda.NewDeriver(pda.DefaultPrograms())
	f := newLoaderFixture(t, d)

	client.On("GetMultipleAccounts", mock.Anything, mock.Anything).Return(f.response(t, solana.SystemProgramID, true), nil)

	_, err := NewLoader(client, d, zaptest.NewLogger(t)).Load(context.Background(), ahAddress)
	assert.ErrorIs(t, err, ErrInvalidOwner)
}

func TestLoaderMissingAccount(t *testing.T) {
	client := new(mocks.Client)
	d := pda.NewDeriver(pda.DefaultPrograms())

	client.On("GetMultipleAccounts", mock.Anything, mock.Anything).
		Return(&rpc.GetMultipleAccountsResult{Value: []*rpc.Account{nil, nil}}, nil)

	_, err := NewLoader(client, d, zaptest.NewLogger(t)).Load(context.Background(), ahAddress)
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestLoaderPropagatesTransportErrors(t *testing.T) {
	client := new(mocks.Client)
	d := pda.NewDeriver(pda.DefaultPrograms())
	netErr := errors.New("timeout")

	client.On("GetMultipleAccounts", mock.Anything, mock.Anything).Return(nil, netErr)

	_, err := NewLoader(client, d, zaptest.NewLogger(t)).Load(context.Background(), ahAddress)
	assert.ErrorIs(t, err, netErr)
}

func TestCheckAuctioneer(t *testing.T) {
	d := pda.NewDeriver(pda.DefaultPrograms())
	f := newLoaderFixture(t, d)

	base := func() *Snapshot {
		house := f.house
		return &Snapshot{
			Address:             ahAddress,
			House:               &house,
			Auctioneer:          &AuctioneerAccount{AuctioneerAuthority: f.authority.Key, AuctionHouse: ahAddress},
			AuctioneerAuthority: f.authority.Key,
			AuctioneerRecord:    f.record.Key,
		}
	}
	require.NoError(t, base().CheckAuctioneer())

	cases := map[string]func(s *Snapshot){
		"not delegated":     func(s *Snapshot) { s.House.HasAuctioneer = false },
		"other auctioneer":  func(s *Snapshot) { s.House.AuctioneerAddress = testKey(81) },
		"no record":         func(s *Snapshot) { s.Auctioneer = nil },
		"foreign authority": func(s *Snapshot) { s.Auctioneer.AuctioneerAuthority = testKey(82) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			s := base()
			mutate(s)
			assert.ErrorIs(t, s.CheckAuctioneer(), ErrAuctioneerNotDelegated)
		})
	}
}

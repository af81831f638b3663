// =============================
// File: internal/auctionhouse/pda/deriver.go
// =============================
package pda

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gagliardetto/solana-go"
)

// DerivationError reports that an address could not be derived. It always means
// the seed layout disagrees with the target program and must not be retried.
type DerivationError struct {
	Kind string
	Err  error
}

func (e *DerivationError) Error() string {
	return fmt.Sprintf("derive %s: %v", e.Kind, e.Err)
}

func (e *DerivationError) Unwrap() error {
	return e.Err
}

// Address is a derived account together with the bump that makes it valid.
type Address struct {
	Key  solana.PublicKey
	Bump uint8
}

// TradeStateSeeds is the tuple identifying one standing ask or bid.
type TradeStateSeeds struct {
	Wallet       solana.PublicKey
	AuctionHouse solana.PublicKey
	TokenAccount solana.PublicKey
	TreasuryMint solana.PublicKey
	TokenMint    solana.PublicKey
	Price        uint64
	TokenSize    uint64
}

// Free returns the same tuple at price zero.
func (s TradeStateSeeds) Free() TradeStateSeeds {
	s.Price = 0
	return s
}

// Deriver derives every address the auctioneer execute-sale flow needs.
// It holds no state besides the program set and is safe for concurrent use.
type Deriver struct {
	programs Programs
	onCurve  CurvePredicate
}

// Option customises a Deriver.
type Option func(*Deriver)

// WithCurvePredicate replaces the curve check used by the bump search.
func WithCurvePredicate(p CurvePredicate) Option {
	return func(d *Deriver) {
		d.onCurve = p
	}
}

// NewDeriver creates a Deriver for the given programs. Zero program ids fall back to mainnet.
func NewDeriver(programs Programs, opts ...Option) *Deriver {
	d := &Deriver{
		programs: programs.WithDefaults(),
		onCurve:  IsOnCurve,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Programs returns the program set the deriver evaluates against.
func (d *Deriver) Programs() Programs {
	return d.programs
}

func (d *Deriver) find(kind string, program solana.PublicKey, seeds ...[]byte) (Address, error) {
	key, bump, err := FindProgramAddress(d.onCurve, program, seeds...)
	if err != nil {
		return Address{}, &DerivationError{Kind: kind, Err: err}
	}
	return Address{Key: key, Bump: bump}, nil
}

func u64LE(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

// AuctioneerAuthority derives ["auctioneer-authority", auction house] under the auctioneer program.
func (d *Deriver) AuctioneerAuthority(auctionHouse solana.PublicKey) (Address, error) {
	return d.find("auctioneer authority", d.programs.Auctioneer,
		[]byte(AuctioneerAuthoritySeed),
		auctionHouse.Bytes(),
	)
}

// AuctioneerRecord derives the auction house's registration record for a delegated authority.
func (d *Deriver) AuctioneerRecord(auctionHouse, auctioneerAuthority solana.PublicKey) (Address, error) {
	return d.find("auctioneer", d.programs.AuctionHouse,
		[]byte(AuctioneerSeed),
		auctionHouse.Bytes(),
		auctioneerAuthority.Bytes(),
	)
}

// TradeState derives the trade state for the tuple. A zero price is a valid seed value.
func (d *Deriver) TradeState(s TradeStateSeeds) (Address, error) {
	return d.find("trade state", d.programs.AuctionHouse,
		[]byte(PrefixSeed),
		s.Wallet.Bytes(),
		s.AuctionHouse.Bytes(),
		s.TokenAccount.Bytes(),
		s.TreasuryMint.Bytes(),
		s.TokenMint.Bytes(),
		u64LE(s.Price),
		u64LE(s.TokenSize),
	)
}

// FreeTradeState derives the trade state of the tuple evaluated at price zero.
func (d *Deriver) FreeTradeState(s TradeStateSeeds) (Address, error) {
	addr, err := d.TradeState(s.Free())
	if err != nil {
		return Address{}, &DerivationError{Kind: "free trade state", Err: err}
	}
	return addr, nil
}

// AuctioneerTradeState derives the seller trade state used by auctioneer listings,
// which always carry the maximum price.
func (d *Deriver) AuctioneerTradeState(s TradeStateSeeds) (Address, error) {
	s.Price = math.MaxUint64
	return d.TradeState(s)
}

// ProgramAsSigner derives the address the auction house signs token transfers with.
func (d *Deriver) ProgramAsSigner() (Address, error) {
	return d.find("program as signer", d.programs.AuctionHouse,
		[]byte(PrefixSeed),
		[]byte(SignerSeed),
	)
}

// EscrowPaymentAccount derives the buyer escrow. The program hashes the auction
// house before the wallet.
func (d *Deriver) EscrowPaymentAccount(auctionHouse, wallet solana.PublicKey) (Address, error) {
	return d.find("escrow payment account", d.programs.AuctionHouse,
		[]byte(PrefixSeed),
		auctionHouse.Bytes(),
		wallet.Bytes(),
	)
}

// ListingConfigSeeds identifies an auctioneer listing.
type ListingConfigSeeds struct {
	Wallet       solana.PublicKey
	AuctionHouse solana.PublicKey
	TokenAccount solana.PublicKey
	TreasuryMint solana.PublicKey
	TokenMint    solana.PublicKey
	TokenSize    uint64
}

// ListingConfig derives the auctioneer's per-listing configuration account.
func (d *Deriver) ListingConfig(s ListingConfigSeeds) (Address, error) {
	return d.find("listing config", d.programs.Auctioneer,
		[]byte(ListingConfigSeed),
		s.Wallet.Bytes(),
		s.AuctionHouse.Bytes(),
		s.TokenAccount.Bytes(),
		s.TreasuryMint.Bytes(),
		s.TokenMint.Bytes(),
		u64LE(s.TokenSize),
	)
}

// AuctionHouse derives the auction house instance for a creator and treasury mint.
func (d *Deriver) AuctionHouse(creator, treasuryMint solana.PublicKey) (Address, error) {
	return d.find("auction house", d.programs.AuctionHouse,
		[]byte(PrefixSeed),
		creator.Bytes(),
		treasuryMint.Bytes(),
	)
}

// AuctionHouseFeeAccount derives the fee payer account of an auction house.
func (d *Deriver) AuctionHouseFeeAccount(auctionHouse solana.PublicKey) (Address, error) {
	return d.find("auction house fee account", d.programs.AuctionHouse,
		[]byte(PrefixSeed),
		auctionHouse.Bytes(),
		[]byte(FeePayerSeed),
	)
}

// AuctionHouseTreasury derives the treasury account of an auction house.
func (d *Deriver) AuctionHouseTreasury(auctionHouse solana.PublicKey) (Address, error) {
	return d.find("auction house treasury", d.programs.AuctionHouse,
		[]byte(PrefixSeed),
		auctionHouse.Bytes(),
		[]byte(TreasurySeed),
	)
}

// Metadata derives the token metadata account of a mint.
func (d *Deriver) Metadata(mint solana.PublicKey) (Address, error) {
	return d.find("metadata", d.programs.TokenMetadata,
		[]byte(MetadataSeed),
		d.programs.TokenMetadata.Bytes(),
		mint.Bytes(),
	)
}

// AssociatedTokenAccount derives the canonical token account of owner for mint.
func (d *Deriver) AssociatedTokenAccount(owner, mint solana.PublicKey) (Address, error) {
	return d.find("associated token account", d.programs.AssociatedToken,
		owner.Bytes(),
		d.programs.Token.Bytes(),
		mint.Bytes(),
	)
}

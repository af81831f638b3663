// =============================================
// File: internal/task/task.go
// =============================================
package task

import (
	"errors"
	"fmt"
	"math"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"

	"github.com/rovshanmuradov/solana-auctioneer/internal/auctionhouse"
	"github.com/rovshanmuradov/solana-auctioneer/internal/auctionhouse/pda"
)

// NativeDecimals is the precision of SOL, the default treasury mint.
const NativeDecimals = 9

var (
	ErrPricePrecision  = errors.New("price has more fractional digits than the treasury mint")
	ErrPriceRange      = errors.New("price out of range")
	ErrUnknownDecimals = errors.New("decimals required for non-native treasury mint")
)

var maxBaseUnits = decimal.NewFromBigInt(new(big.Int).SetUint64(math.MaxUint64), 0)

// Order is one execute-sale request loaded from the orders file.
type Order struct {
	ID                 int
	Name               string
	WalletName         string
	AuctionHouse       solana.PublicKey
	Mint               solana.PublicKey
	Seller             solana.PublicKey
	SellerTokenAccount solana.PublicKey // zero means ATA(seller, mint)
	Buyer              solana.PublicKey
	Price              decimal.Decimal // in treasury mint units, e.g. SOL
	Decimals           *uint8
	TokenSize          uint64
	Creators           []auctionhouse.Creator
}

// BasePrice converts the price into base units of treasuryMint. Decimals
// default to 9 only for the native mint.
func (o *Order) BasePrice(treasuryMint solana.PublicKey) (uint64, error) {
	var decimals uint8
	switch {
	case o.Decimals != nil:
		decimals = *o.Decimals
	case treasuryMint.Equals(solana.WrappedSol):
		decimals = NativeDecimals
	default:
		return 0, fmt.Errorf("order %s: %w (%s)", o.Name, ErrUnknownDecimals, treasuryMint)
	}
	return ToBaseUnits(o.Price, decimals)
}

// ToBaseUnits returns amount * 10^decimals as an integer.
func ToBaseUnits(amount decimal.Decimal, decimals uint8) (uint64, error) {
	scaled := amount.Shift(int32(decimals))
	if !scaled.Equal(scaled.Truncate(0)) {
		return 0, fmt.Errorf("%w: %s with %d decimals", ErrPricePrecision, amount, decimals)
	}
	if scaled.IsNegative() || scaled.GreaterThan(maxBaseUnits) {
		return 0, fmt.Errorf("%w: %s", ErrPriceRange, amount)
	}
	return scaled.BigInt().Uint64(), nil
}

// Params builds the execute-sale parameters for the order against house.
// Listing and bid accounts are derived the way the auctioneer creates them.
func (o *Order) Params(d *pda.Deriver, house auctionhouse.AuctionHouseConfig) (auctionhouse.ExecuteSaleParams, error) {
	price, err := o.BasePrice(house.TreasuryMint)
	if err != nil {
		return auctionhouse.ExecuteSaleParams{}, err
	}

	token := auctionhouse.TokenDescriptor{
		Mint:         o.Mint,
		Owner:        o.Seller,
		TokenAccount: o.SellerTokenAccount,
	}
	sell, err := auctionhouse.DeriveSellAccounts(d, house, token, o.TokenSize)
	if err != nil {
		return auctionhouse.ExecuteSaleParams{}, err
	}
	token.TokenAccount = sell.TokenAccount

	buy, err := auctionhouse.DeriveBuyAccounts(d, house, token, o.Buyer, price, o.TokenSize)
	if err != nil {
		return auctionhouse.ExecuteSaleParams{}, err
	}

	return auctionhouse.ExecuteSaleParams{
		AuctionHouse: house,
		Token:        token,
		Participants: auctionhouse.SaleParticipants{
			Buyer:      o.Buyer,
			Seller:     o.Seller,
			BuyerPrice: price,
			TokenSize:  o.TokenSize,
		},
		Sell:     sell,
		Buy:      buy,
		Creators: o.Creators,
	}, nil
}

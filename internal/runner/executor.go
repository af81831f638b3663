// internal/runner/executor.go
package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/rovshanmuradov/solana-auctioneer/internal/auctionhouse"
	"github.com/rovshanmuradov/solana-auctioneer/internal/logger"
	"github.com/rovshanmuradov/solana-auctioneer/internal/task"
	"github.com/rovshanmuradov/solana-auctioneer/internal/wallet"
)

var ErrWalletNotFound = errors.New("wallet not found")

// Journal records the outcome of every order.
type Journal interface {
	Record(r logger.SaleRecord) error
}

// DecimalsSource resolves the decimals of a treasury mint.
type DecimalsSource interface {
	Decimals(ctx context.Context, mint solana.PublicKey) (uint8, error)
}

// Options controls how orders are executed.
type Options struct {
	Retries         int           // extra attempts after the first
	RetryInterval   time.Duration // initial backoff interval
	CheckAuctioneer bool
	DryRun          bool
}

// Result is the outcome of one order.
type Result struct {
	Order     *task.Order
	Signature solana.Signature
	Attempts  int
	Status    string
	Err       error
}

// Executor runs single orders. Auction house snapshots are loaded once per
// address and shared between orders.
type Executor struct {
	service *auctionhouse.Service
	mints   DecimalsSource
	wallets map[string]*wallet.Wallet
	journal Journal
	metrics *Metrics
	opts    Options
	log     *logger.Logger

	loads     singleflight.Group
	mu        sync.Mutex
	snapshots map[solana.PublicKey]*auctionhouse.Snapshot
}

// NewExecutor builds an executor. mints may be nil when every order uses
// the native mint or sets its decimals.
func NewExecutor(service *auctionhouse.Service, mints DecimalsSource, wallets map[string]*wallet.Wallet, journal Journal, metrics *Metrics, opts Options, log *logger.Logger) *Executor {
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = 500 * time.Millisecond
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Executor{
		service:   service,
		mints:     mints,
		wallets:   wallets,
		journal:   journal,
		metrics:   metrics,
		opts:      opts,
		log:       log,
		snapshots: make(map[solana.PublicKey]*auctionhouse.Snapshot),
	}
}

// Execute runs o to completion and records the result.
func (e *Executor) Execute(ctx context.Context, o *task.Order) Result {
	done := e.log.TrackPerformance("execute_sale")
	defer done()
	log := e.log.WithOrder(o.Name, o.AuctionHouse.String(), o.Mint.String()).With(zap.Int("order_id", o.ID))

	res, price := e.execute(ctx, o, log)
	e.metrics.Order(res.Status)

	rec := logger.SaleRecord{
		Time:         time.Now(),
		OrderID:      o.ID,
		Order:        o.Name,
		AuctionHouse: o.AuctionHouse.String(),
		Mint:         o.Mint.String(),
		Buyer:        o.Buyer.String(),
		Seller:       o.Seller.String(),
		Price:        price,
		TokenSize:    o.TokenSize,
		Attempts:     res.Attempts,
		Status:       res.Status,
		Err:          res.Err,
	}
	if !res.Signature.IsZero() {
		rec.Signature = res.Signature.String()
	}
	if e.journal != nil {
		if err := e.journal.Record(rec); err != nil {
			log.Warn("Failed to record sale", zap.Error(err))
		}
	}
	return res
}

func (e *Executor) execute(ctx context.Context, o *task.Order, log *zap.Logger) (Result, uint64) {
	res := Result{Order: o, Status: logger.SaleFailed}

	payer := e.wallets[o.WalletName]
	if payer == nil {
		res.Err = fmt.Errorf("%w: %s", ErrWalletNotFound, o.WalletName)
		log.Error("Skipping order", zap.Error(res.Err))
		return res, 0
	}

	snap, err := e.snapshot(ctx, o.AuctionHouse)
	if err != nil {
		res.Err = err
		log.Error("Failed to load auction house", zap.Error(err))
		return res, 0
	}

	house := snap.Config()
	if o.Decimals == nil && !house.TreasuryMint.Equals(solana.WrappedSol) && e.mints != nil {
		decimals, err := e.mints.Decimals(ctx, house.TreasuryMint)
		if err != nil {
			res.Err = err
			log.Error("Failed to read treasury mint", zap.Error(err))
			return res, 0
		}
		withDecimals := *o
		withDecimals.Decimals = &decimals
		o = &withDecimals
	}

	params, err := o.Params(e.service.Deriver(), house)
	if err != nil {
		res.Err = err
		log.Error("Failed to build sale parameters", zap.Error(err))
		return res, 0
	}
	price := params.Participants.BuyerPrice

	plan, err := e.service.Prepare(params)
	if err != nil {
		res.Err = err
		return res, price
	}

	if e.opts.DryRun {
		res.Status = logger.SaleDryRun
		log.Info("Dry run: execute sale prepared",
			zap.Uint64("buyer_price", price),
			zap.Int("accounts", len(plan.AccountMetas())),
			zap.String("free_trade_state", plan.Derived.FreeTradeState.String()),
			zap.String("escrow", plan.Derived.EscrowPaymentAccount.String()))
		return res, price
	}

	res.Signature, res.Attempts, res.Err = e.submit(ctx, plan, payer, log)
	switch {
	case res.Err == nil:
		res.Status = logger.SaleConfirmed
		log.Info("Sale executed",
			zap.String("signature", logger.ShortenSignature(res.Signature.String())),
			zap.Int("attempts", res.Attempts))
	case isRejection(res.Err):
		res.Status = logger.SaleRejected
	}
	return res, price
}

// submit retries transient submission failures with exponential backoff.
// The plan is reused unchanged on every attempt.
func (e *Executor) submit(ctx context.Context, plan *auctionhouse.ExecuteSalePlan, payer *wallet.Wallet, log *zap.Logger) (solana.Signature, int, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = e.opts.RetryInterval
	policy.MaxInterval = e.opts.RetryInterval * 10

	attempts := 0
	operation := func() (solana.Signature, error) {
		attempts++
		sig, err := e.service.Submit(ctx, plan, payer)
		if err != nil && !auctionhouse.IsRetryable(err) {
			return sig, backoff.Permanent(err)
		}
		return sig, err
	}
	notify := func(err error, next time.Duration) {
		log.Warn("Execute sale attempt failed, retrying",
			zap.Int("attempt", attempts),
			zap.Duration("backoff", next),
			zap.Error(err))
	}

	sig, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(uint(e.opts.Retries+1)),
		backoff.WithNotify(notify))
	if err != nil {
		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			err = permanent.Unwrap()
		}
		log.Error("Execute sale failed", zap.Int("attempts", attempts), zap.Error(err))
	}
	return sig, attempts, err
}

// snapshot loads the auction house at address once per executor.
func (e *Executor) snapshot(ctx context.Context, address solana.PublicKey) (*auctionhouse.Snapshot, error) {
	e.mu.Lock()
	snap, ok := e.snapshots[address]
	e.mu.Unlock()
	if ok {
		return snap, nil
	}

	v, err, _ := e.loads.Do(address.String(), func() (interface{}, error) {
		snap, err := e.service.LoadAuctionHouse(ctx, address, e.opts.CheckAuctioneer)
		if err != nil {
			return nil, err
		}
		e.mu.Lock()
		e.snapshots[address] = snap
		e.mu.Unlock()
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*auctionhouse.Snapshot), nil
}

func isRejection(err error) bool {
	var rejection *auctionhouse.ProgramRejection
	return errors.As(err, &rejection)
}

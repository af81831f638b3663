package runner

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rovshanmuradov/solana-auctioneer/internal/auctionhouse"
	"github.com/rovshanmuradov/solana-auctioneer/internal/auctionhouse/pda"
	"github.com/rovshanmuradov/solana-auctioneer/internal/blockchain/mocks"
	"github.com/rovshanmuradov/solana-auctioneer/internal/blockchain/solbc"
	"github.com/rovshanmuradov/solana-auctioneer/internal/blockchain/solbc/transaction"
	"github.com/rovshanmuradov/solana-auctioneer/internal/logger"
	"github.com/rovshanmuradov/solana-auctioneer/internal/task"
	"github.com/rovshanmuradov/solana-auctioneer/internal/wallet"
)

func testKey(b byte) solana.PublicKey {
	var k solana.PublicKey
	for i := range k {
		k[i] = b
	}
	return k
}

var ahAddress = testKey(10)

type memJournal struct {
	mu      sync.Mutex
	records []logger.SaleRecord
}

func (j *memJournal) Record(r logger.SaleRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.records = append(j.records, r)
	return nil
}

func encodeAccount(t *testing.T, discriminator [8]byte, v interface{}) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	buf.Write(discriminator[:])
	require.NoError(t, bin.NewBorshEncoder(buf).Encode(v))
	return buf.Bytes()
}

// houseResponse is a delegated auction house with its auctioneer record.
func houseResponse(t *testing.T, d *pda.Deriver, treasuryMint solana.PublicKey) *rpc.GetMultipleAccountsResult {
	t.Helper()
	authority, err := d.AuctioneerAuthority(ahAddress)
	require.NoError(t, err)
	record, err := d.AuctioneerRecord(ahAddress, authority.Key)
	require.NoError(t, err)
	fee, err := d.AuctionHouseFeeAccount(ahAddress)
	require.NoError(t, err)
	treasury, err := d.AuctionHouseTreasury(ahAddress)
	require.NoError(t, err)

	house := auctionhouse.AuctionHouseAccount{
		AuctionHouseFeeAccount: fee.Key,
		AuctionHouseTreasury:   treasury.Key,
		TreasuryMint:           treasuryMint,
		Authority:              testKey(11),
		HasAuctioneer:          true,
		AuctioneerAddress:      record.Key,
	}
	rec := auctionhouse.AuctioneerAccount{AuctioneerAuthority: authority.Key, AuctionHouse: ahAddress, Bump: record.Bump}

	return &rpc.GetMultipleAccountsResult{
		Value: []*rpc.Account{
			{Owner: pda.AuctionHouseProgramID, Data: rpc.DataBytesOrJSONFromBytes(encodeAccount(t, auctionhouse.AuctionHouseAccountDiscriminator, house))},
			{Owner: pda.AuctionHouseProgramID, Data: rpc.DataBytesOrJSONFromBytes(encodeAccount(t, auctionhouse.AuctioneerAccountDiscriminator, rec))},
		},
	}
}

func testOrder(name string, buyer byte) *task.Order {
	return &task.Order{
		Name:         name,
		WalletName:   "payer",
		AuctionHouse: ahAddress,
		Mint:         testKey(14),
		Seller:       testKey(12),
		Buyer:        testKey(buyer),
		Price:        decimal.RequireFromString("0.25"),
		TokenSize:    1,
	}
}

type fixture struct {
	treasuryMint solana.PublicKey
	client       *mocks.Client
	journal      *memJournal
	registry     *prometheus.Registry
	executor     *Executor
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	zl := zaptest.NewLogger(t)
	client := new(mocks.Client)
	d := pda.NewDeriver(pda.DefaultPrograms())
	sender := transaction.NewManager(client, zl, transaction.Config{
		ConfirmationTime: 200 * time.Millisecond,
		PollInterval:     5 * time.Millisecond,
		Commitment:       rpc.CommitmentConfirmed,
	}, nil)
	svc := auctionhouse.NewService(d,
		auctionhouse.NewLoader(client, d, zl),
		auctionhouse.NewSubmitter(client, sender, transaction.PriorityConfig{}, zl),
		zl)

	key := solana.NewWallet().PrivateKey
	wallets := map[string]*wallet.Wallet{"payer": {PrivateKey: key, PublicKey: key.PublicKey()}}

	if opts.RetryInterval == 0 {
		opts.RetryInterval = time.Millisecond
	}
	reg := prometheus.NewRegistry()
	journal := &memJournal{}
	return &fixture{
		treasuryMint: solana.WrappedSol,
		client:       client,
		journal:      journal,
		registry:     reg,
		executor:     NewExecutor(svc, solbc.NewTokenMetadataCache(client, zl), wallets, journal, NewMetrics(reg), opts, logger.FromZap(zl)),
	}
}

func (f *fixture) expectHouse(t *testing.T) {
	authority, err := f.executor.service.Deriver().AuctioneerAuthority(ahAddress)
	require.NoError(t, err)
	record, err := f.executor.service.Deriver().AuctioneerRecord(ahAddress, authority.Key)
	require.NoError(t, err)
	f.client.On("GetMultipleAccounts", mock.Anything, []solana.PublicKey{ahAddress, record.Key}).
		Return(houseResponse(t, f.executor.service.Deriver(), f.treasuryMint), nil).Once()
}

func (f *fixture) ordersWithStatus(status string) float64 {
	return testutil.ToFloat64(f.executor.metrics.orders.WithLabelValues(status))
}

func TestRunnerExecutesAllOrders(t *testing.T) {
	f := newFixture(t, Options{CheckAuctioneer: true})
	f.expectHouse(t)
	f.client.On("GetRecentBlockhash", mock.Anything).Return(solana.Hash{9}, nil)
	f.client.On("SendTransactionWithOpts", mock.Anything, mock.Anything, mock.Anything).
		Return(solana.Signature{1}, nil)
	f.client.On("GetSignatureStatuses", mock.Anything, mock.Anything).Return(mocks.Status(rpc.ConfirmationStatusConfirmed, nil), nil)

	orders := []*task.Order{testOrder("a", 13), testOrder("b", 15), testOrder("c", 16)}
	for i, o := range orders {
		o.ID = i + 1
	}
	summary, err := NewRunner(f.executor, 2, zaptest.NewLogger(t)).Run(context.Background(), orders)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Confirmed)
	assert.Zero(t, summary.Failures())
	for i, res := range summary.Results {
		assert.Equal(t, orders[i], res.Order)
		assert.False(t, res.Signature.IsZero())
		assert.Equal(t, 1, res.Attempts)
	}

	// one snapshot serves every order of the same auction house
	f.client.AssertNumberOfCalls(t, "GetMultipleAccounts", 1)
	require.Len(t, f.journal.records, 3)
	var ids []int
	for _, rec := range f.journal.records {
		ids = append(ids, rec.OrderID)
		assert.Equal(t, logger.SaleConfirmed, rec.Status)
		assert.Equal(t, uint64(250_000_000), rec.Price)
		assert.NotEmpty(t, rec.Signature)
	}
	assert.ElementsMatch(t, []int{1, 2, 3}, ids)
	assert.Equal(t, float64(3), f.ordersWithStatus(logger.SaleConfirmed))
}

func TestExecutorRetriesTransientFailure(t *testing.T) {
	f := newFixture(t, Options{Retries: 2})
	f.expectHouse(t)
	f.client.On("GetRecentBlockhash", mock.Anything).Return(solana.Hash{9}, nil)
	f.client.On("SendTransactionWithOpts", mock.Anything, mock.Anything, mock.Anything).
		Return(solana.Signature{}, &jsonrpc.RPCError{Code: -32005, Message: "Node is unhealthy"}).Once()
	f.client.On("SendTransactionWithOpts", mock.Anything, mock.Anything, mock.Anything).
		Return(solana.Signature{7}, nil)
	f.client.On("GetSignatureStatuses", mock.Anything, mock.Anything).Return(mocks.Status(rpc.ConfirmationStatusConfirmed, nil), nil)

	res := f.executor.Execute(context.Background(), testOrder("retry", 13))
	require.NoError(t, res.Err)
	assert.Equal(t, logger.SaleConfirmed, res.Status)
	assert.Equal(t, 2, res.Attempts)
	f.client.AssertNumberOfCalls(t, "SendTransactionWithOpts", 2)
}

func TestExecutorGivesUpAfterRetries(t *testing.T) {
	f := newFixture(t, Options{Retries: 1})
	f.expectHouse(t)
	netErr := errors.New("connection refused")
	f.client.On("GetRecentBlockhash", mock.Anything).Return(solana.Hash{}, netErr)

	res := f.executor.Execute(context.Background(), testOrder("down", 13))

	var subErr *auctionhouse.SubmissionError
	require.ErrorAs(t, res.Err, &subErr)
	assert.Equal(t, auctionhouse.StageBlockhash, subErr.Stage)
	assert.Equal(t, logger.SaleFailed, res.Status)
	assert.Equal(t, 2, res.Attempts)
	f.client.AssertNumberOfCalls(t, "GetRecentBlockhash", 2)
}

func TestExecutorDoesNotRetryRejection(t *testing.T) {
	f := newFixture(t, Options{Retries: 3})
	f.expectHouse(t)
	f.client.On("GetRecentBlockhash", mock.Anything).Return(solana.Hash{9}, nil)
	f.client.On("SendTransactionWithOpts", mock.Anything, mock.Anything, mock.Anything).Return(solana.Signature{5}, nil)
	statusErr := map[string]interface{}{
		"InstructionError": []interface{}{float64(0), map[string]interface{}{"Custom": float64(6000)}},
	}
	f.client.On("GetSignatureStatuses", mock.Anything, mock.Anything).Return(mocks.Status(rpc.ConfirmationStatusConfirmed, statusErr), nil)

	res := f.executor.Execute(context.Background(), testOrder("rejected", 13))

	var rejection *auctionhouse.ProgramRejection
	require.ErrorAs(t, res.Err, &rejection)
	assert.Equal(t, int64(6000), rejection.Code)
	assert.Equal(t, logger.SaleRejected, res.Status)
	assert.Equal(t, 1, res.Attempts)
	assert.False(t, res.Signature.IsZero())
	f.client.AssertNumberOfCalls(t, "SendTransactionWithOpts", 1)

	require.Len(t, f.journal.records, 1)
	assert.Equal(t, logger.SaleRejected, f.journal.records[0].Status)
	assert.Equal(t, float64(1), f.ordersWithStatus(logger.SaleRejected))
}

func TestExecutorDryRun(t *testing.T) {
	f := newFixture(t, Options{DryRun: true})
	f.expectHouse(t)

	res := f.executor.Execute(context.Background(), testOrder("dry", 13))
	require.NoError(t, res.Err)
	assert.Equal(t, logger.SaleDryRun, res.Status)
	assert.Zero(t, res.Attempts)
	f.client.AssertNotCalled(t, "GetRecentBlockhash", mock.Anything)
	f.client.AssertNotCalled(t, "SendTransactionWithOpts", mock.Anything, mock.Anything, mock.Anything)
}

func TestExecutorMissingWallet(t *testing.T) {
	f := newFixture(t, Options{})
	o := testOrder("nowallet", 13)
	o.WalletName = "unknown"

	res := f.executor.Execute(context.Background(), o)
	assert.ErrorIs(t, res.Err, ErrWalletNotFound)
	assert.Equal(t, logger.SaleFailed, res.Status)
	f.client.AssertNotCalled(t, "GetMultipleAccounts", mock.Anything, mock.Anything)
}

func TestRunnerReportsFailures(t *testing.T) {
	f := newFixture(t, Options{CheckAuctioneer: true})
	f.client.On("GetMultipleAccounts", mock.Anything, mock.Anything).
		Return(&rpc.GetMultipleAccountsResult{Value: []*rpc.Account{nil, nil}}, nil)

	summary, err := NewRunner(f.executor, 4, zaptest.NewLogger(t)).
		Run(context.Background(), []*task.Order{testOrder("a", 13), testOrder("b", 15)})
	require.Error(t, err)
	assert.Equal(t, 2, summary.Failed)
	for _, res := range summary.Results {
		assert.ErrorIs(t, res.Err, auctionhouse.ErrAccountNotFound)
	}
}

func TestRunnerCancelledContext(t *testing.T) {
	f := newFixture(t, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := NewRunner(f.executor, 1, zaptest.NewLogger(t)).Run(ctx, []*task.Order{testOrder("a", 13)})
	require.Error(t, err)
	assert.ErrorIs(t, summary.Results[0].Err, context.Canceled)
	f.client.AssertNotCalled(t, "GetMultipleAccounts", mock.Anything, mock.Anything)
}

func TestExecutorReadsTreasuryMintDecimals(t *testing.T) {
	f := newFixture(t, Options{DryRun: true})
	f.treasuryMint = testKey(50)
	f.expectHouse(t)

	mintData := make([]byte, 82)
	mintData[44] = 6
	mintData[45] = 1
	f.client.On("GetMultipleAccounts", mock.Anything, []solana.PublicKey{testKey(50)}).
		Return(&rpc.GetMultipleAccountsResult{Value: []*rpc.Account{{
			Owner: solana.TokenProgramID,
			Data:  rpc.DataBytesOrJSONFromBytes(mintData),
		}}}, nil).Once()

	o := testOrder("usdc", 13)
	res := f.executor.Execute(context.Background(), o)
	require.NoError(t, res.Err)
	assert.Equal(t, logger.SaleDryRun, res.Status)
	assert.Nil(t, o.Decimals, "order is not modified")

	require.Len(t, f.journal.records, 1)
	assert.Equal(t, uint64(250_000), f.journal.records[0].Price)
}

// =============================
// File: internal/auctionhouse/submitter.go
// =============================
package auctionhouse

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-auctioneer/internal/blockchain"
	"github.com/rovshanmuradov/solana-auctioneer/internal/blockchain/solbc"
	"github.com/rovshanmuradov/solana-auctioneer/internal/blockchain/solbc/transaction"
	"github.com/rovshanmuradov/solana-auctioneer/internal/wallet"
)

// Sender sends a signed transaction once and waits for its confirmation.
type Sender interface {
	SendAndConfirm(ctx context.Context, tx *solana.Transaction) (*transaction.Status, error)
}

// Submitter turns a plan into a signed transaction and submits it. It makes
// one attempt per call.
type Submitter struct {
	client   blockchain.Client
	sender   Sender
	analyzer *solbc.ErrorAnalyzer
	priority transaction.PriorityConfig
	logger   *zap.Logger
}

func NewSubmitter(client blockchain.Client, sender Sender, priority transaction.PriorityConfig, logger *zap.Logger) *Submitter {
	return &Submitter{
		client:   client,
		sender:   sender,
		analyzer: solbc.NewErrorAnalyzer(logger),
		priority: priority,
		logger:   logger.Named("submitter"),
	}
}

// BuildTransaction assembles and signs the transaction for plan.
func (s *Submitter) BuildTransaction(ctx context.Context, plan *ExecuteSalePlan, payer *wallet.Wallet) (*solana.Transaction, error) {
	ix, err := plan.Instruction()
	if err != nil {
		return nil, &SubmissionError{Stage: StageEncode, Err: err}
	}
	instructions := append(s.priority.Instructions(), ix)

	blockhash, err := s.client.GetRecentBlockhash(ctx)
	if err != nil {
		return nil, &SubmissionError{Stage: StageBlockhash, Err: err}
	}

	tx, err := solana.NewTransaction(instructions, blockhash, solana.TransactionPayer(payer.PublicKey))
	if err != nil {
		return nil, &SubmissionError{Stage: StageEncode, Err: err}
	}
	if err := payer.SignTransaction(tx); err != nil {
		return nil, &SubmissionError{Stage: StageSign, Err: err}
	}
	return tx, nil
}

// Submit signs plan with payer as fee payer, sends it and waits for
// confirmation. The signature is logged and returned on success.
func (s *Submitter) Submit(ctx context.Context, plan *ExecuteSalePlan, payer *wallet.Wallet) (solana.Signature, error) {
	tx, err := s.BuildTransaction(ctx, plan, payer)
	if err != nil {
		s.logger.Warn("Failed to build execute sale transaction", zap.Error(err))
		return solana.Signature{}, err
	}
	signature := tx.Signatures[0]

	s.logger.Debug("Sending execute sale transaction",
		zap.String("signature", signature.String()),
		zap.String("payer", payer.String()),
		zap.Int("accounts", len(tx.Message.AccountKeys)))

	if _, err := s.sender.SendAndConfirm(ctx, tx); err != nil {
		return signature, s.classify(signature, err)
	}

	s.logger.Info("Transaction [Execute Sale]", zap.String("signature", signature.String()))
	return signature, nil
}

// classify maps a sender failure to a ProgramRejection or a SubmissionError.
func (s *Submitter) classify(signature solana.Signature, err error) error {
	var failed *transaction.FailedError
	if errors.As(err, &failed) {
		pe, _ := s.analyzer.FromStatusError(failed.Err, nil)
		return s.rejection(signature, pe, err)
	}

	if pe, ok := s.analyzer.FromRPCError(err); ok {
		return s.rejection(signature, pe, err)
	}

	stage := StageSend
	var txErr *transaction.Error
	if errors.As(err, &txErr) {
		switch txErr.Stage {
		case transaction.StageValidate:
			stage = StageValidate
		case transaction.StageConfirm:
			stage = StageConfirm
		}
	}

	s.logger.Warn("Execute sale submission failed",
		zap.String("stage", string(stage)),
		zap.String("signature", signature.String()),
		zap.Error(err))
	return &SubmissionError{Stage: stage, Signature: signature, Err: err}
}

func (s *Submitter) rejection(signature solana.Signature, pe *solbc.ProgramError, err error) error {
	r := &ProgramRejection{Signature: signature, Code: solbc.NoErrorCode, Instruction: -1, Err: err}
	if pe != nil {
		r.Instruction = pe.Instruction
		r.Code = pe.Code
		r.Name = pe.Name
		r.Message = pe.Msg
		r.Logs = pe.Logs
		s.logger.Debug("Program error analysis", zap.String("analysis", s.analyzer.FormatErrorAnalysis(pe)))
	}

	s.logger.Error("Execute sale rejected by program",
		zap.String("signature", signature.String()),
		zap.Int64("code", r.Code),
		zap.String("name", r.Name),
		zap.String("message", r.Message))
	return r
}

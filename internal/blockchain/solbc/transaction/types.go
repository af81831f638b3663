// internal/blockchain/solbc/transaction/types.go
package transaction

import (
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

var (
	ErrConfirmationTimeout = errors.New("transaction confirmation timeout")
	ErrInvalidSignature    = errors.New("invalid transaction signature")
	ErrInvalidBlockhash    = errors.New("invalid blockhash")
	ErrInvalidInstruction  = errors.New("invalid instruction")
)

// Stage names the step of SendAndConfirm that failed.
type Stage string

const (
	StageValidate Stage = "validate"
	StageSend     Stage = "send"
	StageConfirm  Stage = "confirm"
)

// Error wraps a failure of one SendAndConfirm step. Signature is zero when
// the transaction never reached the network.
type Error struct {
	Stage     Stage
	Signature solana.Signature
	Err       error
}

func (e *Error) Error() string {
	if e.Signature.IsZero() {
		return fmt.Sprintf("%s transaction: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s transaction %s: %v", e.Stage, e.Signature, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// FailedError means the transaction landed and its execution failed.
// Err is the raw status error as decoded from JSON.
type FailedError struct {
	Signature solana.Signature
	Err       interface{}
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("transaction %s failed: %v", e.Signature, e.Err)
}

type Config struct {
	ConfirmationTime time.Duration
	PollInterval     time.Duration
	SkipPreflight    bool
	Commitment       rpc.CommitmentType
}

func (c Config) withDefaults() Config {
	if c.ConfirmationTime <= 0 {
		c.ConfirmationTime = 60 * time.Second
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 500 * time.Millisecond
	}
	if c.Commitment == "" {
		c.Commitment = rpc.CommitmentConfirmed
	}
	return c
}

type Status struct {
	Signature     solana.Signature
	Status        string
	Confirmations uint64
	Slot          uint64
	Error         string
	Timestamp     time.Time
}
